package pawhaven

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go"
	"github.com/stripe/stripe-go/paymentintent"
)

// PaymentIntent is the server's answer to a create-payment-intent call:
// the pending charge the gateway is waiting to have confirmed.
type PaymentIntent struct {
	ClientSecret string `json:"clientSecret"`
}

// IntentID extracts the gateway's intent identifier from the client secret.
func (p PaymentIntent) IntentID() string {
	if i := strings.Index(p.ClientSecret, "_secret"); i > 0 {
		return p.ClientSecret[:i]
	}
	return p.ClientSecret
}

// CardConfirmer is the second half of the intent/confirm handshake. It
// returns the gateway's final status for the charge.
type CardConfirmer interface {
	ConfirmCardPayment(clientSecret, paymentMethod string) (string, error)
}

const PaymentSucceeded = "succeeded"

type stripeConfirmer struct{}

func NewStripeConfirmer() (CardConfirmer, error) {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	if stripe.Key == "" {
		return nil, errors.New("missing Stripe secret key")
	}

	return stripeConfirmer{}, nil
}

func (stripeConfirmer) ConfirmCardPayment(clientSecret, paymentMethod string) (string, error) {
	intentID := PaymentIntent{ClientSecret: clientSecret}.IntentID()

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(paymentMethod),
	}

	intent, err := paymentintent.Confirm(intentID, params)
	if err != nil {
		return "", fmt.Errorf("failed to confirm card payment: %w", err)
	}

	return string(intent.Status), nil
}

// DonationAPI is the slice of the remote API the money-moving flows need.
type DonationAPI interface {
	FindCampaign(id string) (Campaign, error)
	CreatePaymentIntent(amount float64) (PaymentIntent, error)
	SaveDonation(Donation) (Donation, error)
	DeleteDonation(id string) error
	ApplyDonation(campaignID string, newTotal float64) error
}

var (
	ErrCampaignClosed = errors.New("campaign is not accepting donations")

	// ErrTotalsPending means the donation (or refund) itself landed but the
	// campaign total patch did not; the journal holds the entry and a
	// reconcile run will replay the patch.
	ErrTotalsPending = errors.New("campaign total not yet applied")
)

// DonationFlow drives the multi-step donation path: bound the amount,
// create a payment intent, confirm the card, then issue the two dependent
// writes (record the donation, patch the campaign total) with the journal
// bridging the gap between them.
type DonationFlow struct {
	API     DonationAPI
	Cards   CardConfirmer
	Journal Journal
	Now     func() time.Time
}

func (f *DonationFlow) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now().UTC()
}

func (f *DonationFlow) Donate(ctx context.Context, campaignID string, amount float64, donor User, paymentMethod string) (Donation, error) {
	campaign, err := f.API.FindCampaign(campaignID)
	if err != nil {
		return Donation{}, err
	}

	if !campaign.Active(f.now()) {
		return Donation{}, ErrCampaignClosed
	}

	if err := ValidateAmount(amount, campaign.Remaining()); err != nil {
		return Donation{}, err
	}

	intent, err := f.API.CreatePaymentIntent(amount)
	if err != nil {
		return Donation{}, err
	}

	status, err := f.Cards.ConfirmCardPayment(intent.ClientSecret, paymentMethod)
	if err != nil {
		return Donation{}, err
	}

	if status != PaymentSucceeded {
		return Donation{}, fmt.Errorf("card payment not confirmed: status %q", status)
	}

	// The card is charged from here on. Journal the two-step write before
	// issuing it so a failure between the writes stays discoverable.
	key := uuid.NewString()

	entry := JournalEntry{
		Key:        key,
		Kind:       JournalDonation,
		CampaignID: campaign.ID,
		Amount:     amount,
		NewTotal:   campaign.CurrentDonation + amount,
		RecordedAt: f.now(),
	}

	if err := f.Journal.Begin(ctx, entry); err != nil {
		return Donation{}, err
	}

	saved, err := f.API.SaveDonation(Donation{
		CampaignID:      campaign.ID,
		PetName:         campaign.PetName,
		PetImage:        campaign.PetImage,
		AddedBy:         campaign.AddedBy,
		DonatedAmount:   amount,
		DonorEmail:      donor.Email,
		DonorName:       donor.Name,
		PaymentIntentID: intent.IntentID(),
	})
	if err != nil {
		// No donation record exists, so the totals patch must never fire.
		// The journal entry stays at the confirmed stage for operator
		// review: the card was charged.
		return Donation{}, fmt.Errorf("failed to record donation (payment %s succeeded, see journal entry %s): %w", intent.IntentID(), key, err)
	}

	if err := f.Journal.MarkRecorded(ctx, key, saved.ID); err != nil {
		return saved, err
	}

	if err := f.API.ApplyDonation(campaign.ID, entry.NewTotal); err != nil {
		return saved, fmt.Errorf("%w: donation %s recorded, run reconcile to finish (journal entry %s): %v", ErrTotalsPending, saved.ID, key, err)
	}

	return saved, f.Journal.Complete(ctx, key)
}

// Refund removes a donation and subtracts its amount from the campaign
// total, the same two-step shape as Donate, journaled the same way.
func (f *DonationFlow) Refund(ctx context.Context, donation Donation) error {
	campaign, err := f.API.FindCampaign(donation.CampaignID)
	if err != nil {
		return err
	}

	newTotal := campaign.CurrentDonation - donation.DonatedAmount
	if newTotal < 0 {
		newTotal = 0
	}

	key := uuid.NewString()

	entry := JournalEntry{
		Key:        key,
		Kind:       JournalRefund,
		CampaignID: campaign.ID,
		DonationID: donation.ID,
		Amount:     -donation.DonatedAmount,
		NewTotal:   newTotal,
		RecordedAt: f.now(),
	}

	if err := f.Journal.Begin(ctx, entry); err != nil {
		return err
	}

	if err := f.API.DeleteDonation(donation.ID); err != nil {
		if abandonErr := f.Journal.Abandon(ctx, key); abandonErr != nil {
			return errors.Join(err, abandonErr)
		}
		return err
	}

	if err := f.Journal.MarkRecorded(ctx, key, donation.ID); err != nil {
		return err
	}

	if err := f.API.ApplyDonation(campaign.ID, newTotal); err != nil {
		return fmt.Errorf("%w: refund of donation %s recorded, run reconcile to finish (journal entry %s): %v", ErrTotalsPending, donation.ID, key, err)
	}

	return f.Journal.Complete(ctx, key)
}

// Reconcile replays the totals patch for every journal entry whose first
// write landed but whose patch did not, retrying each with exponential
// backoff. It returns how many entries it finished.
func (f *DonationFlow) Reconcile(ctx context.Context) (int, error) {
	pending, err := f.Journal.Pending(ctx)
	if err != nil {
		return 0, err
	}

	var applied int
	var firstErr error

	for _, entry := range pending {
		operation := func() (struct{}, error) {
			return struct{}{}, f.API.ApplyDonation(entry.CampaignID, entry.NewTotal)
		}

		_, err := backoff.Retry(ctx, operation,
			backoff.WithBackOff(backoff.NewExponentialBackOff()),
			backoff.WithMaxTries(5))
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to apply totals for journal entry %s: %w", entry.Key, err)
			}
			continue
		}

		if err := f.Journal.Complete(ctx, entry.Key); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		applied++
	}

	return applied, firstErr
}
