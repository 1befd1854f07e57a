// Package booking handles the customer-side half of booking capture:
// checkout totals shown before confirmation, reference formatting, and the
// draft parked between the booking form and the checkout page. The backend
// recomputes and stores the authoritative numbers.
package booking

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"time"
)

const (
	// childRate prices children at 70% of the adult fare.
	childRate = 0.7
	// taxRate is 18% GST, applied after discount.
	taxRate = 0.18
)

// Totals is the checkout price breakdown.
type Totals struct {
	TotalAmount    float64
	DiscountAmount float64
	TaxAmount      float64
	FinalAmount    float64
}

// CalculateTotals computes the breakdown for a party: adults at full fare,
// children at 70%, 18% GST on the discounted subtotal.
func CalculateTotals(pricePerPerson float64, numAdults, numChildren int, discount float64) Totals {
	adultTotal := pricePerPerson * float64(numAdults)
	childTotal := pricePerPerson * childRate * float64(numChildren)

	total := round2(adultTotal + childTotal)
	discounted := total - discount
	tax := round2(discounted * taxRate)

	return Totals{
		TotalAmount:    total,
		DiscountAmount: discount,
		TaxAmount:      tax,
		FinalAmount:    round2(discounted + tax),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

const refCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewReference returns a booking reference in the form BK-YYYYMMDD-XXXX.
// The backend issues the authoritative reference; this one labels drafts
// before submission.
func NewReference(now time.Time) (string, error) {
	suffix := make([]byte, 4)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(refCharset))))
		if err != nil {
			return "", fmt.Errorf("generate reference: %w", err)
		}
		suffix[i] = refCharset[n.Int64()]
	}
	return fmt.Sprintf("BK-%s-%s", now.Format("20060102"), suffix), nil
}
