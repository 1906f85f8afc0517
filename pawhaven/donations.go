package pawhaven

import (
	"errors"
	"fmt"
)

type Donation struct {
	ID                string  `json:"_id"`
	CampaignID        string  `json:"campaignId"`
	PetName           string  `json:"petName"`
	PetImage          string  `json:"petImage"`
	AddedBy           string  `json:"addedBy"`
	DonatedAmount     float64 `json:"donatedAmount"`
	DonorEmail        string  `json:"donorEmail"`
	DonorName         string  `json:"donorName"`
	IsRefundRequested bool    `json:"isRefundRequested"`
	PaymentIntentID   string  `json:"paymentIntentId"`
}

// MinimumDonation is the floor enforced on every donation amount.
const MinimumDonation = 1

var ErrAmountOutOfRange = errors.New("donation amount out of range")

// ValidateAmount enforces the checkout bound: amounts below $1 or above
// what the campaign can still absorb are rejected.
func ValidateAmount(amount, remaining float64) error {
	if amount < MinimumDonation {
		return fmt.Errorf("%w: minimum donation is $%d", ErrAmountOutOfRange, MinimumDonation)
	}
	if amount > remaining {
		return fmt.Errorf("%w: at most $%.2f can still be donated", ErrAmountOutOfRange, remaining)
	}
	return nil
}

var donationPresets = []float64{10, 25, 50, 100, 250, 500}

// SuggestedAmounts returns the quick-donate chips for a campaign with the
// given remaining capacity: every preset strictly below the remainder,
// then the full remainder itself. Empty when nothing can be donated.
func SuggestedAmounts(remaining float64) []float64 {
	if remaining < MinimumDonation {
		return nil
	}
	var amounts []float64
	for _, p := range donationPresets {
		if p < remaining {
			amounts = append(amounts, p)
		}
	}
	return append(amounts, remaining)
}
