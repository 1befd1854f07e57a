package booking

import (
	"regexp"
	"testing"
	"time"
)

func TestCalculateTotalsAdultsOnly(t *testing.T) {
	got := CalculateTotals(10000, 2, 0, 0)

	if got.TotalAmount != 20000 {
		t.Fatalf("total = %v", got.TotalAmount)
	}
	if got.TaxAmount != 3600 {
		t.Fatalf("tax = %v", got.TaxAmount)
	}
	if got.FinalAmount != 23600 {
		t.Fatalf("final = %v", got.FinalAmount)
	}
}

func TestCalculateTotalsChildrenAtSeventyPercent(t *testing.T) {
	got := CalculateTotals(10000, 2, 1, 0)

	// 2 adults + one child at 70%: 27000, plus 18% GST.
	if got.TotalAmount != 27000 {
		t.Fatalf("total = %v", got.TotalAmount)
	}
	if got.TaxAmount != 4860 {
		t.Fatalf("tax = %v", got.TaxAmount)
	}
	if got.FinalAmount != 31860 {
		t.Fatalf("final = %v", got.FinalAmount)
	}
}

func TestCalculateTotalsDiscountBeforeTax(t *testing.T) {
	got := CalculateTotals(10000, 1, 0, 2000)

	if got.DiscountAmount != 2000 {
		t.Fatalf("discount = %v", got.DiscountAmount)
	}
	// GST applies to the discounted 8000, not the 10000 subtotal.
	if got.TaxAmount != 1440 {
		t.Fatalf("tax = %v", got.TaxAmount)
	}
	if got.FinalAmount != 9440 {
		t.Fatalf("final = %v", got.FinalAmount)
	}
}

func TestCalculateTotalsRoundsToPaise(t *testing.T) {
	got := CalculateTotals(24999, 1, 1, 0)

	// 24999 + 17499.30 = 42498.30
	if got.TotalAmount != 42498.30 {
		t.Fatalf("total = %v", got.TotalAmount)
	}
	if got.TaxAmount != 7649.69 {
		t.Fatalf("tax = %v", got.TaxAmount)
	}
	if got.FinalAmount != 50147.99 {
		t.Fatalf("final = %v", got.FinalAmount)
	}
}

func TestNewReferenceFormat(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^BK-20260315-[A-Z0-9]{4}$`)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		ref, err := NewReference(now)
		if err != nil {
			t.Fatalf("new reference: %v", err)
		}
		if !pattern.MatchString(ref) {
			t.Fatalf("unexpected format %q", ref)
		}
		seen[ref] = true
	}
	if len(seen) < 2 {
		t.Fatal("expected random suffixes to vary")
	}
}
