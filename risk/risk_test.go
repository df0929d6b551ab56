package risk

import "testing"

func TestOrderQty(t *testing.T) {
	// 50000 * (1 - 0.0092) = 49540 -> 10 shares at 4950.
	if got := OrderQty(50_000, 0.0092, 4950); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
	// 500000 * (1 - 0.0092) = 495400 -> 7 shares at 70000.
	if got := OrderQty(500_000, 0.0092, 70_000); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	// Budget too small for a single share.
	if got := OrderQty(10_000, 0.0092, 50_000); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestOrderQtyDegenerateInputs(t *testing.T) {
	if got := OrderQty(50_000, 0.0092, 0); got != 0 {
		t.Fatalf("expected 0 for zero price, got %d", got)
	}
	if got := OrderQty(50_000, 0.0092, -100); got != 0 {
		t.Fatalf("expected 0 for negative price, got %d", got)
	}
	if got := OrderQty(0, 0.0092, 4950); got != 0 {
		t.Fatalf("expected 0 for zero budget, got %d", got)
	}
}
