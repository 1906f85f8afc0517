package pawhaven

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// The money-moving flows write two independent calls: record the donation
// (or refund), then patch the campaign's running total. The journal is a
// local write-ahead record of that pair so a failure between the two calls
// is detectable and the totals patch can be replayed later.

const (
	JournalDonation = "donation"
	JournalRefund   = "refund"
)

// Entry stages. An entry is created once the card payment is confirmed,
// advances to recorded once the donation write lands, and is completed
// once the totals patch lands.
const (
	StageConfirmed = "confirmed"
	StageRecorded  = "recorded"
)

// StalledAfter is how long a confirmed-but-unrecorded entry may sit before
// the reconcile sweep flags it for manual review.
const StalledAfter = time.Hour

type JournalEntry struct {
	Key         string
	Kind        string
	Stage       string
	CampaignID  string
	DonationID  string
	Amount      float64
	NewTotal    float64
	RecordedAt  time.Time
	CompletedAt *time.Time
}

type Journal interface {
	Begin(context.Context, JournalEntry) error
	MarkRecorded(ctx context.Context, key, donationID string) error
	Complete(ctx context.Context, key string) error
	Abandon(ctx context.Context, key string) error
	// Pending returns entries whose donation write landed but whose totals
	// patch has not, oldest first.
	Pending(context.Context) ([]JournalEntry, error)
	// Stalled returns entries still at the confirmed stage older than age:
	// the card was charged but the donation write never landed. These need
	// operator review, not a blind replay.
	Stalled(ctx context.Context, age time.Duration) ([]JournalEntry, error)
}

type defaultJournal struct {
	db *sql.DB
}

func NewJournal() (Journal, error) {
	db, err := openDatabase()
	if err != nil {
		return nil, err
	}

	return defaultJournal{db}, nil
}

// NewJournalWithDB wraps an already-open database, used by the CLI to
// share one connection between the journal and the settings store.
func NewJournalWithDB(db *sql.DB) Journal {
	return defaultJournal{db}
}

func (j defaultJournal) Begin(ctx context.Context, entry JournalEntry) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO donation_journal (key, kind, stage, campaign_id, donation_id, amount, new_total, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Key, entry.Kind, StageConfirmed, entry.CampaignID, entry.DonationID, entry.Amount, entry.NewTotal, entry.RecordedAt)
	if err != nil {
		return fmt.Errorf("encountered an error persisting a journal entry: %s", err)
	}

	return nil
}

func (j defaultJournal) MarkRecorded(ctx context.Context, key, donationID string) error {
	_, err := j.db.ExecContext(ctx,
		`UPDATE donation_journal SET stage = ?, donation_id = ? WHERE key = ?`,
		StageRecorded, donationID, key)
	if err != nil {
		return fmt.Errorf("encountered an error advancing a journal entry: %s", err)
	}

	return nil
}

func (j defaultJournal) Complete(ctx context.Context, key string) error {
	_, err := j.db.ExecContext(ctx,
		`UPDATE donation_journal SET completed_at = ? WHERE key = ?`,
		time.Now().UTC(), key)
	if err != nil {
		return fmt.Errorf("encountered an error completing a journal entry: %s", err)
	}

	return nil
}

func (j defaultJournal) Abandon(ctx context.Context, key string) error {
	_, err := j.db.ExecContext(ctx, `DELETE FROM donation_journal WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("encountered an error abandoning a journal entry: %s", err)
	}

	return nil
}

func (j defaultJournal) Pending(ctx context.Context) ([]JournalEntry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT key, kind, stage, campaign_id, donation_id, amount, new_total, recorded_at
		 FROM donation_journal
		 WHERE stage = ? AND completed_at IS NULL
		 ORDER BY recorded_at`, StageRecorded)
	if err != nil {
		return nil, fmt.Errorf("encountered an error fetching pending journal entries: %s", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func (j defaultJournal) Stalled(ctx context.Context, age time.Duration) ([]JournalEntry, error) {
	cutoff := time.Now().UTC().Add(-age)

	rows, err := j.db.QueryContext(ctx,
		`SELECT key, kind, stage, campaign_id, donation_id, amount, new_total, recorded_at
		 FROM donation_journal
		 WHERE stage = ? AND completed_at IS NULL AND recorded_at < ?
		 ORDER BY recorded_at`, StageConfirmed, cutoff)
	if err != nil {
		return nil, fmt.Errorf("encountered an error fetching stalled journal entries: %s", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]JournalEntry, error) {
	var entries []JournalEntry

	for rows.Next() {
		var entry JournalEntry
		var donationID sql.NullString

		if err := rows.Scan(&entry.Key, &entry.Kind, &entry.Stage, &entry.CampaignID,
			&donationID, &entry.Amount, &entry.NewTotal, &entry.RecordedAt); err != nil {
			return nil, fmt.Errorf("encountered an error scanning a journal entry: %s", err)
		}

		entry.DonationID = donationID.String
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
