package checkout

import (
	"testing"
	"time"
)

func TestGenerateOrderNumberFormat(t *testing.T) {
	at := time.Date(2026, 8, 1, 15, 4, 5, 0, time.UTC)
	number := GenerateOrderNumber(at, func(n int) int { return 42 })
	if number != "RG-20260801-000042" {
		t.Fatalf("unexpected number %q", number)
	}
}

func TestGenerateOrderNumberPadsSuffix(t *testing.T) {
	at := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	number := GenerateOrderNumber(at, func(n int) int { return 999999 })
	if number != "RG-20261231-999999" {
		t.Fatalf("unexpected number %q", number)
	}
}
