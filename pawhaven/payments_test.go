package pawhaven

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	campaign  Campaign
	intent    PaymentIntent
	saveErr   error
	deleteErr error
	applyErr  error
	applyFail int

	calls   []string
	applied []float64
}

func (f *fakeAPI) FindCampaign(id string) (Campaign, error) {
	f.calls = append(f.calls, "find")
	return f.campaign, nil
}

func (f *fakeAPI) CreatePaymentIntent(amount float64) (PaymentIntent, error) {
	f.calls = append(f.calls, "intent")
	return f.intent, nil
}

func (f *fakeAPI) SaveDonation(donation Donation) (Donation, error) {
	f.calls = append(f.calls, "save")
	if f.saveErr != nil {
		return Donation{}, f.saveErr
	}
	donation.ID = "don-1"
	return donation, nil
}

func (f *fakeAPI) DeleteDonation(id string) error {
	f.calls = append(f.calls, "delete")
	return f.deleteErr
}

func (f *fakeAPI) ApplyDonation(campaignID string, newTotal float64) error {
	f.calls = append(f.calls, "apply")
	if f.applyFail > 0 {
		f.applyFail--
		return errors.New("network partition")
	}
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, newTotal)
	return nil
}

type fakeConfirmer struct {
	status string
	err    error
	calls  int
}

func (f *fakeConfirmer) ConfirmCardPayment(clientSecret, paymentMethod string) (string, error) {
	f.calls++
	return f.status, f.err
}

type memoryJournal struct {
	entries map[string]*JournalEntry
}

func newMemoryJournal() *memoryJournal {
	return &memoryJournal{entries: map[string]*JournalEntry{}}
}

func (j *memoryJournal) Begin(_ context.Context, entry JournalEntry) error {
	entry.Stage = StageConfirmed
	j.entries[entry.Key] = &entry
	return nil
}

func (j *memoryJournal) MarkRecorded(_ context.Context, key, donationID string) error {
	j.entries[key].Stage = StageRecorded
	j.entries[key].DonationID = donationID
	return nil
}

func (j *memoryJournal) Complete(_ context.Context, key string) error {
	now := time.Now().UTC()
	j.entries[key].CompletedAt = &now
	return nil
}

func (j *memoryJournal) Abandon(_ context.Context, key string) error {
	delete(j.entries, key)
	return nil
}

func (j *memoryJournal) Pending(context.Context) ([]JournalEntry, error) {
	var pending []JournalEntry
	for _, entry := range j.entries {
		if entry.Stage == StageRecorded && entry.CompletedAt == nil {
			pending = append(pending, *entry)
		}
	}
	return pending, nil
}

func (j *memoryJournal) Stalled(context.Context, time.Duration) ([]JournalEntry, error) {
	var stalled []JournalEntry
	for _, entry := range j.entries {
		if entry.Stage == StageConfirmed && entry.CompletedAt == nil {
			stalled = append(stalled, *entry)
		}
	}
	return stalled, nil
}

func openCampaign() Campaign {
	return Campaign{
		ID:              "camp-1",
		PetName:         "Biscuit",
		MaxDonation:     5000,
		CurrentDonation: 4950,
		LastDate:        time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
	}
}

func newTestFlow(api *fakeAPI, cards *fakeConfirmer) (*DonationFlow, *memoryJournal) {
	journal := newMemoryJournal()
	return &DonationFlow{API: api, Cards: cards, Journal: journal}, journal
}

func TestDonateHappyPath(t *testing.T) {
	api := &fakeAPI{campaign: openCampaign(), intent: PaymentIntent{ClientSecret: "pi_123_secret_abc"}}
	flow, journal := newTestFlow(api, &fakeConfirmer{status: PaymentSucceeded})

	donation, err := flow.Donate(context.Background(), "camp-1", 50, User{Name: "Dana", Email: "dana@example.com"}, "pm_card")

	require.NoError(t, err)
	assert.Equal(t, "don-1", donation.ID)
	assert.Equal(t, "pi_123", donation.PaymentIntentID)
	assert.Equal(t, []string{"find", "intent", "save", "apply"}, api.calls)
	assert.Equal(t, []float64{5000}, api.applied)

	pending, _ := journal.Pending(context.Background())
	assert.Empty(t, pending, "a finished donation leaves nothing to reconcile")
}

func TestDonateRecordWritePrecedesTotalsPatch(t *testing.T) {
	api := &fakeAPI{campaign: openCampaign(), intent: PaymentIntent{ClientSecret: "pi_1_secret_x"}}
	flow, _ := newTestFlow(api, &fakeConfirmer{status: PaymentSucceeded})

	_, err := flow.Donate(context.Background(), "camp-1", 25, User{Email: "dana@example.com"}, "pm_card")
	require.NoError(t, err)

	saveAt, applyAt := -1, -1
	for i, call := range api.calls {
		switch call {
		case "save":
			saveAt = i
		case "apply":
			applyAt = i
		}
	}

	require.NotEqual(t, -1, saveAt)
	require.NotEqual(t, -1, applyAt)
	assert.Less(t, saveAt, applyAt, "the donation record must land before the totals patch")
}

func TestDonateRecordFailureSkipsTotalsPatch(t *testing.T) {
	api := &fakeAPI{
		campaign: openCampaign(),
		intent:   PaymentIntent{ClientSecret: "pi_1_secret_x"},
		saveErr:  errors.New("boom"),
	}
	flow, journal := newTestFlow(api, &fakeConfirmer{status: PaymentSucceeded})

	_, err := flow.Donate(context.Background(), "camp-1", 25, User{Email: "dana@example.com"}, "pm_card")

	require.Error(t, err)
	assert.NotContains(t, api.calls, "apply", "the totals patch must never fire without a donation record")

	stalled, _ := journal.Stalled(context.Background(), 0)
	require.Len(t, stalled, 1, "the charged-but-unrecorded payment stays on record for review")
	assert.Equal(t, float64(25), stalled[0].Amount)
}

func TestDonateTotalsPatchFailureLeavesPendingEntry(t *testing.T) {
	api := &fakeAPI{
		campaign: openCampaign(),
		intent:   PaymentIntent{ClientSecret: "pi_1_secret_x"},
		applyErr: errors.New("tab closed mid-flow"),
	}
	flow, journal := newTestFlow(api, &fakeConfirmer{status: PaymentSucceeded})

	donation, err := flow.Donate(context.Background(), "camp-1", 25, User{Email: "dana@example.com"}, "pm_card")

	require.ErrorIs(t, err, ErrTotalsPending)
	assert.Equal(t, "don-1", donation.ID, "the donation itself landed")

	pending, _ := journal.Pending(context.Background())
	require.Len(t, pending, 1)
	assert.Equal(t, float64(4975), pending[0].NewTotal)
	assert.Equal(t, "don-1", pending[0].DonationID)
}

func TestDonateClosedCampaign(t *testing.T) {
	paused := openCampaign()
	paused.IsPaused = true

	api := &fakeAPI{campaign: paused}
	cards := &fakeConfirmer{status: PaymentSucceeded}
	flow, _ := newTestFlow(api, cards)

	_, err := flow.Donate(context.Background(), "camp-1", 25, User{}, "pm_card")

	assert.ErrorIs(t, err, ErrCampaignClosed)
	assert.Equal(t, []string{"find"}, api.calls, "no intent is created for a closed campaign")
	assert.Zero(t, cards.calls)
}

func TestDonateAmountOutOfRange(t *testing.T) {
	api := &fakeAPI{campaign: openCampaign()}
	flow, _ := newTestFlow(api, &fakeConfirmer{status: PaymentSucceeded})

	_, err := flow.Donate(context.Background(), "camp-1", 51, User{}, "pm_card")

	assert.ErrorIs(t, err, ErrAmountOutOfRange)
	assert.Equal(t, []string{"find"}, api.calls)
}

func TestDonateCardNotConfirmed(t *testing.T) {
	api := &fakeAPI{campaign: openCampaign(), intent: PaymentIntent{ClientSecret: "pi_1_secret_x"}}
	flow, journal := newTestFlow(api, &fakeConfirmer{status: "requires_payment_method"})

	_, err := flow.Donate(context.Background(), "camp-1", 25, User{}, "pm_card")

	require.Error(t, err)
	assert.NotContains(t, api.calls, "save")
	assert.Empty(t, journal.entries, "nothing is journaled before the card is charged")
}

func TestRefundDeletesBeforeSubtracting(t *testing.T) {
	api := &fakeAPI{campaign: openCampaign()}
	flow, journal := newTestFlow(api, nil)

	donation := Donation{ID: "don-9", CampaignID: "camp-1", DonatedAmount: 100}
	err := flow.Refund(context.Background(), donation)

	require.NoError(t, err)
	assert.Equal(t, []string{"find", "delete", "apply"}, api.calls)
	assert.Equal(t, []float64{4850}, api.applied)

	pending, _ := journal.Pending(context.Background())
	assert.Empty(t, pending)
}

func TestRefundDeleteFailureSkipsSubtraction(t *testing.T) {
	api := &fakeAPI{campaign: openCampaign(), deleteErr: errors.New("boom")}
	flow, journal := newTestFlow(api, nil)

	err := flow.Refund(context.Background(), Donation{ID: "don-9", CampaignID: "camp-1", DonatedAmount: 100})

	require.Error(t, err)
	assert.NotContains(t, api.calls, "apply")
	assert.Empty(t, journal.entries, "the abandoned entry is removed")
}

func TestRefundSubtractionFailureLeavesPendingEntry(t *testing.T) {
	api := &fakeAPI{campaign: openCampaign(), applyErr: errors.New("boom")}
	flow, journal := newTestFlow(api, nil)

	err := flow.Refund(context.Background(), Donation{ID: "don-9", CampaignID: "camp-1", DonatedAmount: 100})

	require.ErrorIs(t, err, ErrTotalsPending)

	pending, _ := journal.Pending(context.Background())
	require.Len(t, pending, 1)
	assert.Equal(t, JournalRefund, pending[0].Kind)
	assert.Equal(t, float64(4850), pending[0].NewTotal)
}

func TestReconcileAppliesPendingPatches(t *testing.T) {
	api := &fakeAPI{}
	flow, journal := newTestFlow(api, nil)

	require.NoError(t, journal.Begin(context.Background(), JournalEntry{
		Key: "k1", Kind: JournalDonation, CampaignID: "camp-1", Amount: 25, NewTotal: 4975,
	}))
	require.NoError(t, journal.MarkRecorded(context.Background(), "k1", "don-1"))

	applied, err := flow.Reconcile(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, []float64{4975}, api.applied)

	pending, _ := journal.Pending(context.Background())
	assert.Empty(t, pending)
}

func TestReconcileRetriesTransientFailures(t *testing.T) {
	api := &fakeAPI{applyFail: 1}
	flow, journal := newTestFlow(api, nil)

	require.NoError(t, journal.Begin(context.Background(), JournalEntry{
		Key: "k1", Kind: JournalDonation, CampaignID: "camp-1", Amount: 25, NewTotal: 4975,
	}))
	require.NoError(t, journal.MarkRecorded(context.Background(), "k1", "don-1"))

	applied, err := flow.Reconcile(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, applied)
}

func TestReconcileIgnoresStalledEntries(t *testing.T) {
	api := &fakeAPI{}
	flow, journal := newTestFlow(api, nil)

	// Confirmed but never recorded: a blind replay would inflate the total
	// with no donation behind it.
	require.NoError(t, journal.Begin(context.Background(), JournalEntry{
		Key: "k1", Kind: JournalDonation, CampaignID: "camp-1", Amount: 25, NewTotal: 4975,
	}))

	applied, err := flow.Reconcile(context.Background())

	require.NoError(t, err)
	assert.Zero(t, applied)
	assert.Empty(t, api.calls)
}

func TestIntentID(t *testing.T) {
	assert.Equal(t, "pi_123", PaymentIntent{ClientSecret: "pi_123_secret_abc"}.IntentID())
	assert.Equal(t, "pi_123", PaymentIntent{ClientSecret: "pi_123"}.IntentID())
}
