package cli

import (
	"fmt"
	"time"

	"github.com/pawhaven/pawhaven-tools/pawhaven"
	pawhavenhttp "github.com/pawhaven/pawhaven-tools/pawhaven/http"
)

type CampaignsCmd struct {
	List   CampaignListCmd   `cmd help:"Lists donation campaigns."`
	Show   CampaignShowCmd   `cmd help:"Shows a campaign with funding progress and suggested amounts."`
	Create CampaignCreateCmd `cmd help:"Creates a donation campaign for a pet."`
	Update CampaignUpdateCmd `cmd help:"Updates a campaign you created."`
	Pause  CampaignPauseCmd  `cmd help:"Pauses a campaign so it stops accepting donations."`
	Resume CampaignResumeCmd `cmd help:"Resumes a paused campaign."`
	Delete CampaignDeleteCmd `cmd help:"Deletes a campaign."`
	Mine   CampaignMineCmd   `cmd help:"Lists the campaigns you created."`
}

type CampaignListCmd struct {
	Limit int `default:"9" help:"page size."`
}

func (cmd *CampaignListCmd) Run(env *Environment, client pawhavenhttp.Client) error {
	pager := pawhavenhttp.NewCampaignPager(client, cmd.Limit)

	table := newTable(env.Stdout)
	fmt.Fprintln(table, "ID\tPET\tRAISED\tGOAL\tFUNDED\tDAYS LEFT\tSTATUS")

	now := time.Now()

	for pager.HasNext() {
		campaigns, err := pager.Next()
		if err != nil {
			return err
		}

		for _, campaign := range campaigns {
			status := "Closed"
			if campaign.Active(now) {
				status = "Active"
			}

			fmt.Fprintf(table, "%v\t%v\t$%.2f\t$%.2f\t%.1f%%\t%v\t%v\n",
				campaign.ID, campaign.PetName, campaign.CurrentDonation, campaign.MaxDonation,
				campaign.PercentFunded(), campaign.DaysRemaining(now), status)
		}
	}

	return table.Flush()
}

type CampaignShowCmd struct {
	ID string `arg required help:"the campaign id."`
}

func (cmd *CampaignShowCmd) Run(env *Environment, client pawhavenhttp.Client) error {
	campaign, err := client.FindCampaign(cmd.ID)
	if err != nil {
		return err
	}

	now := time.Now()

	fmt.Fprintf(env.Stdout, "Help %v, organized by %v\n", campaign.PetName, campaign.AddedBy)
	fmt.Fprintf(env.Stdout, "$%.2f raised of $%.2f goal (%.1f%% funded)\n",
		campaign.CurrentDonation, campaign.MaxDonation, campaign.PercentFunded())

	if days := campaign.DaysRemaining(now); days > 0 {
		fmt.Fprintf(env.Stdout, "Days remaining: %v\n", days)
	} else {
		fmt.Fprintln(env.Stdout, "Days remaining: Ended")
	}

	fmt.Fprintf(env.Stdout, "Supporters: %v\n", campaign.Donors)

	if campaign.Active(now) {
		amounts := pawhaven.SuggestedAmounts(campaign.Remaining())

		fmt.Fprint(env.Stdout, "Suggested amounts:")
		for i, amount := range amounts {
			if i == len(amounts)-1 {
				fmt.Fprintf(env.Stdout, " Full $%v", amount)
			} else {
				fmt.Fprintf(env.Stdout, " $%v", amount)
			}
		}
		fmt.Fprintln(env.Stdout)
	} else {
		fmt.Fprintln(env.Stdout, "Campaign Closed")
	}

	fmt.Fprintf(env.Stdout, "\n%v\n", campaign.LongDescription)

	featured, err := client.FeaturedCampaigns(campaign.ID)
	if err == nil && len(featured) > 0 {
		fmt.Fprintln(env.Stdout, "\nOther pets needing help:")
		for _, camp := range featured {
			fmt.Fprintf(env.Stdout, "  %v: %v ($%.2f of $%.2f)\n",
				camp.ID, camp.PetName, camp.CurrentDonation, camp.MaxDonation)
		}
	}

	return nil
}

type CampaignCreateCmd struct {
	PetName          string  `required help:"the pet this campaign supports."`
	Max              float64 `required help:"the donation goal in dollars."`
	LastDate         string  `required help:"the deadline, YYYY-MM-DD."`
	Image            string  `help:"an image URL for the campaign."`
	ShortDescription string  `help:"a one-line description."`
	LongDescription  string  `help:"the full story."`
}

func (cmd *CampaignCreateCmd) Run(env *Environment, client pawhavenhttp.Client, settings *pawhaven.Settings, cache *pawhaven.Cache) error {
	email, err := settings.Email()
	if err != nil {
		return err
	}

	if _, err := time.Parse("2006-01-02", cmd.LastDate); err != nil {
		return fmt.Errorf("invalid last date: %w", err)
	}

	saved, err := client.SaveCampaign(pawhaven.Campaign{
		PetName:          cmd.PetName,
		PetImage:         cmd.Image,
		MaxDonation:      cmd.Max,
		LastDate:         cmd.LastDate,
		ShortDescription: cmd.ShortDescription,
		LongDescription:  cmd.LongDescription,
		AddedBy:          email,
	})
	if err != nil {
		return err
	}

	cache.Invalidate("my-campaigns")

	fmt.Fprintf(env.Stdout, "Donation campaign created successfully! (campaignId=%v)\n", saved.ID)
	return nil
}

type CampaignUpdateCmd struct {
	ID               string   `arg required help:"the campaign id."`
	Max              *float64 `help:"new donation goal."`
	LastDate         *string  `help:"new deadline, YYYY-MM-DD."`
	Image            *string  `help:"new image URL."`
	ShortDescription *string  `help:"new one-line description."`
	LongDescription  *string  `help:"new full story."`
}

func (cmd *CampaignUpdateCmd) Run(env *Environment, client pawhavenhttp.Client, cache *pawhaven.Cache) error {
	campaign, err := client.FindCampaign(cmd.ID)
	if err != nil {
		return err
	}

	if cmd.Max != nil {
		campaign.MaxDonation = *cmd.Max
	}
	if cmd.LastDate != nil {
		if _, err := time.Parse("2006-01-02", *cmd.LastDate); err != nil {
			return fmt.Errorf("invalid last date: %w", err)
		}
		campaign.LastDate = *cmd.LastDate
	}
	if cmd.Image != nil {
		campaign.PetImage = *cmd.Image
	}
	if cmd.ShortDescription != nil {
		campaign.ShortDescription = *cmd.ShortDescription
	}
	if cmd.LongDescription != nil {
		campaign.LongDescription = *cmd.LongDescription
	}

	if _, err := client.SaveCampaign(campaign); err != nil {
		return err
	}

	cache.Invalidate("my-campaigns")

	fmt.Fprintln(env.Stdout, "Campaign updated.")
	return nil
}

type CampaignPauseCmd struct {
	ID string `arg required help:"the campaign id."`
}

func (cmd *CampaignPauseCmd) Run(env *Environment, client pawhavenhttp.Client, cache *pawhaven.Cache) error {
	if err := client.SetCampaignPaused(cmd.ID, true); err != nil {
		return err
	}

	cache.Invalidate("my-campaigns")

	fmt.Fprintln(env.Stdout, "Campaign paused.")
	return nil
}

type CampaignResumeCmd struct {
	ID string `arg required help:"the campaign id."`
}

func (cmd *CampaignResumeCmd) Run(env *Environment, client pawhavenhttp.Client, cache *pawhaven.Cache) error {
	if err := client.SetCampaignPaused(cmd.ID, false); err != nil {
		return err
	}

	cache.Invalidate("my-campaigns")

	fmt.Fprintln(env.Stdout, "Campaign resumed.")
	return nil
}

type CampaignDeleteCmd struct {
	ID string `arg required help:"the campaign id."`
}

func (cmd *CampaignDeleteCmd) Run(env *Environment, client pawhavenhttp.Client, cache *pawhaven.Cache) error {
	if err := client.DeleteCampaign(cmd.ID); err != nil {
		return err
	}

	cache.Invalidate("my-campaigns")

	fmt.Fprintln(env.Stdout, "Campaign deleted.")
	return nil
}

type CampaignMineCmd struct{}

func (cmd *CampaignMineCmd) Run(env *Environment, client pawhavenhttp.Client, settings *pawhaven.Settings, cache *pawhaven.Cache) error {
	email, err := settings.Email()
	if err != nil {
		return err
	}

	value, err := cache.Get("my-campaigns", func() (any, error) {
		return client.ListCampaignsByOwner(email)
	})
	if err != nil {
		return err
	}

	campaigns := value.([]pawhaven.Campaign)

	table := newTable(env.Stdout)
	fmt.Fprintln(table, "ID\tPET\tRAISED\tGOAL\tPAUSED")

	for _, campaign := range campaigns {
		fmt.Fprintf(table, "%v\t%v\t$%.2f\t$%.2f\t%v\n",
			campaign.ID, campaign.PetName, campaign.CurrentDonation, campaign.MaxDonation, campaign.IsPaused)
	}

	return table.Flush()
}
