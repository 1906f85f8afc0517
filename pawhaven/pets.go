package pawhaven

import (
	"fmt"
	"time"
)

// Categories the listing filter understands.
const (
	CategoryCats    = "Cats"
	CategoryDogs    = "Dogs"
	CategoryBirds   = "Birds"
	CategoryRabbits = "Rabbits"
	CategoryFish    = "Fish"
)

func Categories() []string {
	return []string{CategoryCats, CategoryDogs, CategoryBirds, CategoryRabbits, CategoryFish}
}

type Pet struct {
	ID               string    `json:"_id"`
	PetName          string    `json:"petName"`
	PetAge           float64   `json:"petAge"`
	PetCategory      string    `json:"petCategory"`
	PetLocation      string    `json:"petLocation"`
	PetImage         string    `json:"petImage"`
	ShortDescription string    `json:"shortDescription"`
	LongDescription  string    `json:"longDescription"`
	Adopted          bool      `json:"adopted"`
	AddedBy          string    `json:"addedBy"`
	AddedDate        time.Time `json:"AddedDate"`
}

// AgeLabel renders ages under a year in months the way the listing does.
func (p Pet) AgeLabel() string {
	if p.PetAge < 1 {
		months := int(p.PetAge*10 + 0.5)
		if months == 1 {
			return "1 month"
		}
		return fmt.Sprintf("%d months", months)
	}
	years := int(p.PetAge)
	if years == 1 {
		return "1 year"
	}
	return fmt.Sprintf("%d years", years)
}

// PetPage is one page of the pet listing. NextPage is nil once the server
// has no further pages.
type PetPage struct {
	Pets     []Pet `json:"pets"`
	NextPage *int  `json:"nextPage"`
}

const (
	AdoptionPending  = "pending"
	AdoptionAccepted = "accepted"
	AdoptionRejected = "rejected"
)

type AdoptionRequest struct {
	ID             string    `json:"_id"`
	PetID          string    `json:"petId"`
	PetName        string    `json:"petName"`
	PetImage       string    `json:"petImage"`
	RequesterName  string    `json:"requesterName"`
	RequesterEmail string    `json:"requesterEmail"`
	PhoneNumber    string    `json:"phoneNumber"`
	Address        string    `json:"address"`
	Experience     string    `json:"experience"`
	Notes          string    `json:"notes"`
	Status         string    `json:"status"`
	AddedBy        string    `json:"addedBy"`
	Date           time.Time `json:"date"`
}
