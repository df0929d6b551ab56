package quote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kstocklab/kats/logger"
)

func TestParseTick(t *testing.T) {
	data := []byte(`{"code":"005930","name":"삼성전자","price":71200,"change_abs":900,"change_pct":1.28,"volume":1234567}`)
	q, err := ParseTick(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if q.Code != "005930" || q.Price != 71200 || q.ChangePct != 1.28 {
		t.Fatalf("unexpected quote: %+v", q)
	}
}

func TestParseTickRejectsBadInput(t *testing.T) {
	if _, err := ParseTick([]byte(`not json`)); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
	if _, err := ParseTick([]byte(`{"price":100}`)); err == nil {
		t.Fatal("expected an error for a tick without a code")
	}
}

func TestStream_DeliversTicks(t *testing.T) {
	upgrader := websocket.Upgrader{}
	gotSub := make(chan []byte, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_, sub, err := conn.ReadMessage()
		if err != nil {
			return
		}
		gotSub <- sub

		tick := []byte(`{"code":"005930","name":"삼성전자","price":71200,"change_pct":1.28,"volume":1000}`)
		if err := conn.WriteMessage(websocket.TextMessage, tick); err != nil {
			return
		}
		// Keep the connection open until the client closes it.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	s, err := Dial(context.Background(), Config{
		Endpoint:             url,
		SubscriptionMessages: [][]byte{[]byte(`{"op":"subscribe","codes":["005930"]}`)},
	}, logger.NewNop())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer s.Close()

	select {
	case sub := <-gotSub:
		if !strings.Contains(string(sub), "005930") {
			t.Fatalf("unexpected subscription message: %s", sub)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the subscription")
	}

	select {
	case q := <-s.Quotes:
		if q.Code != "005930" || q.Price != 71200 {
			t.Fatalf("unexpected quote: %+v", q)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no quote delivered")
	}
}

func TestStream_CloseEndsTheChannel(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	s, err := Dial(context.Background(), Config{Endpoint: url}, logger.NewNop())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	s.Close()
	s.Close() // idempotent

	select {
	case _, open := <-s.Quotes:
		if open {
			t.Fatal("expected no quote after close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected the quote channel to close")
	}
}
