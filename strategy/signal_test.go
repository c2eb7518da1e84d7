package strategy

import "testing"

func TestEvaluateThresholdBoundary(t *testing.T) {
	cases := []struct {
		name     string
		prev     float64
		next     float64
		expected Signal
	}{
		{"no prior observation", 0, 100.0, SignalNone},
		{"no prior observation huge price", 0, 1e9, SignalNone},
		{"flat", 100.0, 100.0, SignalNone},
		{"down", 100.0, 99.0, SignalNone},
		{"exactly +0.1% is not a buy", 100.0, 100.1, SignalNone},
		{"just above +0.1%", 100.0, 100.10001, SignalBuy},
		{"well above threshold", 100.0, 101.2, SignalBuy},
		{"small base", 0.001, 0.0011, SignalBuy},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(tc.prev, tc.next); got != tc.expected {
				t.Fatalf("Evaluate(%v, %v) = %v, want %v", tc.prev, tc.next, got, tc.expected)
			}
		})
	}
}

func TestEvaluateIsPure(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := Evaluate(100.0, 101.2); got != SignalBuy {
			t.Fatalf("iteration %d: got %v", i, got)
		}
	}
}

func TestSignalString(t *testing.T) {
	if SignalNone.String() != "NONE" || SignalBuy.String() != "BUY" {
		t.Fatalf("unexpected names: %s %s", SignalNone, SignalBuy)
	}
	if Signal(42).String() != "UNKNOWN" {
		t.Fatalf("unexpected name for out-of-range signal")
	}
}
