package cli

import (
	"fmt"
	"time"

	"github.com/pawhaven/pawhaven-tools/pawhaven"
	pawhavenhttp "github.com/pawhaven/pawhaven-tools/pawhaven/http"
)

type AdoptionsCmd struct {
	Request AdoptionRequestCmd `cmd help:"Submits an adoption request for a pet."`
	List    AdoptionListCmd    `cmd help:"Lists adoption requests for pets you listed."`
	Accept  AdoptionAcceptCmd  `cmd help:"Accepts an adoption request."`
	Reject  AdoptionRejectCmd  `cmd help:"Rejects an adoption request."`
}

type AdoptionRequestCmd struct {
	PetID      string `arg required help:"the pet to adopt."`
	Name       string `help:"your name (defaults to your account name)."`
	Phone      string `required help:"a phone number the lister can reach you at."`
	Address    string `required help:"your address."`
	Experience string `required help:"your experience with pets."`
	Notes      string `help:"anything else the lister should know."`
}

func (cmd *AdoptionRequestCmd) Run(env *Environment, client pawhavenhttp.Client, settings *pawhaven.Settings) error {
	email, err := settings.Email()
	if err != nil {
		return err
	}

	pet, err := client.FindPet(cmd.PetID)
	if err != nil {
		return err
	}

	if pet.Adopted {
		return fmt.Errorf("%v has already been adopted", pet.PetName)
	}

	saved, err := client.SubmitAdoptionRequest(pawhaven.AdoptionRequest{
		PetID:          pet.ID,
		PetName:        pet.PetName,
		PetImage:       pet.PetImage,
		RequesterName:  cmd.Name,
		RequesterEmail: email,
		PhoneNumber:    cmd.Phone,
		Address:        cmd.Address,
		Experience:     cmd.Experience,
		Notes:          cmd.Notes,
		AddedBy:        pet.AddedBy,
		Date:           time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Stdout, "Adoption request submitted! (requestId=%v)\n", saved.ID)
	return nil
}

type AdoptionListCmd struct{}

func (cmd *AdoptionListCmd) Run(env *Environment, client pawhavenhttp.Client, settings *pawhaven.Settings) error {
	email, err := settings.Email()
	if err != nil {
		return err
	}

	requests, err := client.ListAdoptionRequests(email)
	if err != nil {
		return err
	}

	table := newTable(env.Stdout)
	fmt.Fprintln(table, "ID\tPET\tREQUESTER\tPHONE\tSTATUS")

	for _, request := range requests {
		fmt.Fprintf(table, "%v\t%v\t%v <%v>\t%v\t%v\n",
			request.ID, request.PetName, request.RequesterName, request.RequesterEmail,
			request.PhoneNumber, request.Status)
	}

	return table.Flush()
}

type AdoptionAcceptCmd struct {
	ID string `arg required help:"the adoption request id."`
}

func (cmd *AdoptionAcceptCmd) Run(env *Environment, client pawhavenhttp.Client) error {
	if err := client.ResolveAdoptionRequest(cmd.ID, pawhaven.AdoptionAccepted); err != nil {
		return err
	}

	fmt.Fprintln(env.Stdout, "Adoption request accepted.")
	return nil
}

type AdoptionRejectCmd struct {
	ID string `arg required help:"the adoption request id."`
}

func (cmd *AdoptionRejectCmd) Run(env *Environment, client pawhavenhttp.Client) error {
	if err := client.ResolveAdoptionRequest(cmd.ID, pawhaven.AdoptionRejected); err != nil {
		return err
	}

	fmt.Fprintln(env.Stdout, "Adoption request rejected.")
	return nil
}
