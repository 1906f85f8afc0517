package pawhaven

import (
	"math"
	"time"
)

// Campaign is a fundraising effort tied to one pet. LastDate is the
// server's YYYY-MM-DD deadline string.
type Campaign struct {
	ID               string  `json:"_id"`
	PetName          string  `json:"petName"`
	PetImage         string  `json:"petImage"`
	MaxDonation      float64 `json:"maxDonation"`
	CurrentDonation  float64 `json:"currentDonation"`
	LastDate         string  `json:"lastDate"`
	IsPaused         bool    `json:"isPaused"`
	ShortDescription string  `json:"shortDescription"`
	LongDescription  string  `json:"longDescription"`
	AddedBy          string  `json:"addedBy"`
	Donors           int     `json:"donors"`
}

const lastDateLayout = "2006-01-02"

// PercentFunded is capped at 100 even when the raised total overshoots
// the goal.
func (c Campaign) PercentFunded() float64 {
	if c.MaxDonation <= 0 {
		return 0
	}
	return math.Min(100, c.CurrentDonation/c.MaxDonation*100)
}

// DaysRemaining counts whole days until the deadline, rounding up so a
// campaign ending later today still reports one day left. An unparsable
// deadline counts as ended.
func (c Campaign) DaysRemaining(now time.Time) int {
	last, err := time.Parse(lastDateLayout, c.LastDate)
	if err != nil {
		return 0
	}
	days := int(math.Ceil(last.Sub(now).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

// Active reports whether the campaign can accept new donations:
// not paused, deadline not passed, and goal not yet met.
func (c Campaign) Active(now time.Time) bool {
	return !c.IsPaused && c.DaysRemaining(now) > 0 && c.CurrentDonation < c.MaxDonation
}

// Remaining is how much can still be donated before the goal is met.
func (c Campaign) Remaining() float64 {
	r := c.MaxDonation - c.CurrentDonation
	if r < 0 {
		return 0
	}
	return r
}

// CampaignPage is one page of the campaign listing.
type CampaignPage struct {
	Campaigns []Campaign `json:"campaigns"`
	NextPage  *int       `json:"nextPage"`
}
