package cli

import (
	"fmt"
	"time"

	"github.com/pawhaven/pawhaven-tools/pawhaven"
	pawhavenhttp "github.com/pawhaven/pawhaven-tools/pawhaven/http"
)

type PetsCmd struct {
	List   PetListCmd   `cmd help:"Lists adoptable pets, filterable by name and category."`
	Show   PetShowCmd   `cmd help:"Shows one pet's full details."`
	Add    PetAddCmd    `cmd help:"Lists a new pet for adoption."`
	Update PetUpdateCmd `cmd help:"Updates a pet you listed."`
	Adopt  PetAdoptCmd  `cmd help:"Marks a pet as adopted."`
	Delete PetDeleteCmd `cmd help:"Removes a pet listing."`
	Mine   PetMineCmd   `cmd help:"Lists the pets you added."`
}

type PetListCmd struct {
	Search   string `help:"free-text name filter."`
	Category string `help:"category filter (Cats, Dogs, Birds, Rabbits, Fish)."`
	Limit    int    `default:"9" help:"page size."`
}

func (cmd *PetListCmd) Run(env *Environment, client pawhavenhttp.Client) error {
	pager := pawhavenhttp.NewPetPager(client, pawhavenhttp.PetFilter{
		Search:   cmd.Search,
		Category: cmd.Category,
	}, cmd.Limit)

	table := newTable(env.Stdout)
	fmt.Fprintln(table, "ID\tNAME\tAGE\tCATEGORY\tLOCATION\tADOPTED")

	total := 0

	for pager.HasNext() {
		pets, err := pager.Next()
		if err != nil {
			return err
		}

		for _, pet := range pets {
			fmt.Fprintf(table, "%v\t%v\t%v\t%v\t%v\t%v\n",
				pet.ID, pet.PetName, pet.AgeLabel(), pet.PetCategory, pet.PetLocation, pet.Adopted)
		}

		total += len(pets)
	}

	if err := table.Flush(); err != nil {
		return err
	}

	if total == 0 {
		fmt.Fprintln(env.Stdout, "No pets found. Try a different search or category.")
		return nil
	}

	fmt.Fprintln(env.Stdout, "No more pets to load.")
	return nil
}

type PetShowCmd struct {
	ID string `arg required help:"the pet id."`
}

func (cmd *PetShowCmd) Run(env *Environment, client pawhavenhttp.Client) error {
	pet, err := client.FindPet(cmd.ID)
	if err != nil {
		return err
	}

	status := "available"
	if pet.Adopted {
		status = "adopted"
	}

	fmt.Fprintf(env.Stdout, "%v (%v)\n", pet.PetName, pet.PetCategory)
	fmt.Fprintf(env.Stdout, "Age: %v\n", pet.AgeLabel())
	fmt.Fprintf(env.Stdout, "Location: %v\n", pet.PetLocation)
	fmt.Fprintf(env.Stdout, "Status: %v\n", status)
	fmt.Fprintf(env.Stdout, "Listed by: %v\n\n", pet.AddedBy)
	fmt.Fprintln(env.Stdout, pet.LongDescription)

	return nil
}

type PetAddCmd struct {
	Name             string  `required help:"the pet's name."`
	Age              float64 `required help:"the pet's age in years (fractions under 1 read as months)."`
	Category         string  `required enum:"Cats,Dogs,Birds,Rabbits,Fish" help:"the pet's category."`
	Location         string  `required help:"where the pet can be picked up."`
	Image            string  `help:"an image URL for the listing."`
	ShortDescription string  `help:"a one-line description."`
	LongDescription  string  `help:"the full description."`
}

func (cmd *PetAddCmd) Run(env *Environment, client pawhavenhttp.Client, settings *pawhaven.Settings, cache *pawhaven.Cache) error {
	email, err := settings.Email()
	if err != nil {
		return err
	}

	saved, err := client.SavePet(pawhaven.Pet{
		PetName:          cmd.Name,
		PetAge:           cmd.Age,
		PetCategory:      cmd.Category,
		PetLocation:      cmd.Location,
		PetImage:         cmd.Image,
		ShortDescription: cmd.ShortDescription,
		LongDescription:  cmd.LongDescription,
		AddedBy:          email,
		AddedDate:        time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	cache.Invalidate("my-pets")

	fmt.Fprintf(env.Stdout, "Pet added successfully! (petId=%v)\n", saved.ID)
	return nil
}

type PetUpdateCmd struct {
	ID               string   `arg required help:"the pet id."`
	Name             *string  `help:"new name."`
	Age              *float64 `help:"new age."`
	Category         *string  `help:"new category."`
	Location         *string  `help:"new location."`
	Image            *string  `help:"new image URL."`
	ShortDescription *string  `help:"new one-line description."`
	LongDescription  *string  `help:"new full description."`
}

func (cmd *PetUpdateCmd) Run(env *Environment, client pawhavenhttp.Client, cache *pawhaven.Cache) error {
	pet, err := client.FindPet(cmd.ID)
	if err != nil {
		return err
	}

	if cmd.Name != nil {
		pet.PetName = *cmd.Name
	}
	if cmd.Age != nil {
		pet.PetAge = *cmd.Age
	}
	if cmd.Category != nil {
		pet.PetCategory = *cmd.Category
	}
	if cmd.Location != nil {
		pet.PetLocation = *cmd.Location
	}
	if cmd.Image != nil {
		pet.PetImage = *cmd.Image
	}
	if cmd.ShortDescription != nil {
		pet.ShortDescription = *cmd.ShortDescription
	}
	if cmd.LongDescription != nil {
		pet.LongDescription = *cmd.LongDescription
	}

	if _, err := client.SavePet(pet); err != nil {
		return err
	}

	cache.Invalidate("my-pets")

	fmt.Fprintf(env.Stdout, "Pet %v updated.\n", pet.PetName)
	return nil
}

type PetAdoptCmd struct {
	ID string `arg required help:"the pet id."`
}

func (cmd *PetAdoptCmd) Run(env *Environment, client pawhavenhttp.Client, cache *pawhaven.Cache) error {
	if err := client.SetPetAdopted(cmd.ID, true); err != nil {
		return err
	}

	cache.Invalidate("my-pets")

	fmt.Fprintln(env.Stdout, "Pet marked as adopted.")
	return nil
}

type PetDeleteCmd struct {
	ID string `arg required help:"the pet id."`
}

func (cmd *PetDeleteCmd) Run(env *Environment, client pawhavenhttp.Client, cache *pawhaven.Cache) error {
	if err := client.DeletePet(cmd.ID); err != nil {
		return err
	}

	cache.Invalidate("my-pets")

	fmt.Fprintln(env.Stdout, "Pet listing removed.")
	return nil
}

type PetMineCmd struct{}

func (cmd *PetMineCmd) Run(env *Environment, client pawhavenhttp.Client, settings *pawhaven.Settings, cache *pawhaven.Cache) error {
	email, err := settings.Email()
	if err != nil {
		return err
	}

	value, err := cache.Get("my-pets", func() (any, error) {
		return client.ListPetsByOwner(email)
	})
	if err != nil {
		return err
	}

	pets := value.([]pawhaven.Pet)

	table := newTable(env.Stdout)
	fmt.Fprintln(table, "ID\tNAME\tCATEGORY\tADOPTED")

	for _, pet := range pets {
		fmt.Fprintf(table, "%v\t%v\t%v\t%v\n", pet.ID, pet.PetName, pet.PetCategory, pet.Adopted)
	}

	return table.Flush()
}
