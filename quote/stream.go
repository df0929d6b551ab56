// Package quote delivers live price ticks over a websocket feed. The
// stream is an independent writer to the engine's shared state: events
// arrive at any time and are merged by code, never touching the
// baseline fields set at detection.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kstocklab/kats/logger"
	"github.com/kstocklab/kats/types"
)

const (
	defaultPingPeriod       = 15 * time.Second
	defaultSendTimeout      = 5 * time.Second
	defaultHandshakeTimeout = 10 * time.Second
	defaultReadLimit        = 1 << 20
)

// ErrStreamClosed is reported when the stream shuts down.
var ErrStreamClosed = errors.New("quote stream closed")

// Config for the stream client.
type Config struct {
	Endpoint             string
	SubscriptionMessages [][]byte
	PingPeriod           time.Duration
	SendTimeout          time.Duration
}

// tickMessage is the wire format of one quote event.
type tickMessage struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ChangeAbs float64 `json:"change_abs"`
	ChangePct float64 `json:"change_pct"`
	Volume    float64 `json:"volume"`
}

// Stream reads quote events off a websocket and pushes them into
// Quotes until the context is cancelled or the connection drops.
type Stream struct {
	Quotes chan types.Quote

	cfg    Config
	log    logger.Logger
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	wg     sync.WaitGroup
}

// Dial connects, sends the subscription messages and starts the read
// and ping loops.
func Dial(ctx context.Context, cfg Config, log logger.Logger) (*Stream, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("endpoint URL is required")
	}
	if cfg.PingPeriod == 0 {
		cfg.PingPeriod = defaultPingPeriod
	}
	if cfg.SendTimeout == 0 {
		cfg.SendTimeout = defaultSendTimeout
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: defaultHandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, cfg.Endpoint, nil)
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(defaultReadLimit)

	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		Quotes: make(chan types.Quote, 1024),
		cfg:    cfg,
		log:    log,
		conn:   conn,
		ctx:    ctx,
		cancel: cancel,
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(cfg.PingPeriod * 2))
	})

	for _, msg := range cfg.SubscriptionMessages {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			cancel()
			conn.Close()
			return nil, err
		}
	}

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.readLoop()
	}()
	go func() {
		defer s.wg.Done()
		s.pingLoop()
	}()
	return s, nil
}

func (s *Stream) readLoop() {
	defer close(s.Quotes)
	for {
		if s.ctx.Err() != nil {
			return
		}
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Info("quote_stream_closed")
			} else if s.ctx.Err() == nil {
				s.log.Warn("quote_stream_read_failed", logger.Err(err))
			}
			return
		}
		q, err := ParseTick(data)
		if err != nil {
			s.log.Warn("quote_parse_failed", logger.Err(err))
			continue
		}
		select {
		case s.Quotes <- q:
		case <-s.ctx.Done():
			return
		default:
			// Consumer is behind; drop the tick rather than block the feed.
		}
	}
}

func (s *Stream) pingLoop() {
	ticker := time.NewTicker(s.cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(s.cfg.SendTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.log.Warn("quote_ping_failed", logger.Err(err))
			}
		case <-s.ctx.Done():
			return
		}
	}
}

// Close shuts the stream down; safe to call more than once.
func (s *Stream) Close() {
	s.once.Do(func() {
		s.cancel()
		deadline := time.Now().Add(time.Second)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = s.conn.Close()
		s.wg.Wait()
	})
}

// ParseTick decodes one wire message into a Quote.
func ParseTick(data []byte) (types.Quote, error) {
	var m tickMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return types.Quote{}, err
	}
	if m.Code == "" {
		return types.Quote{}, errors.New("tick without code")
	}
	return types.Quote{
		Code:      m.Code,
		Name:      m.Name,
		Price:     m.Price,
		ChangeAbs: m.ChangeAbs,
		ChangePct: m.ChangePct,
		Volume:    m.Volume,
	}, nil
}
