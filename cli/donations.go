package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/pawhaven/pawhaven-tools/pawhaven"
	pawhavenhttp "github.com/pawhaven/pawhaven-tools/pawhaven/http"
)

type DonateCmd struct {
	CampaignID    string  `arg required help:"the campaign to donate to."`
	Amount        float64 `required help:"the amount in dollars."`
	PaymentMethod string  `required help:"the payment method id from the gateway (pm_...)."`
	Name          string  `help:"the name on the donation (defaults to your account name)."`
}

func (cmd *DonateCmd) Run(env *Environment, client pawhavenhttp.Client, settings *pawhaven.Settings, cache *pawhaven.Cache, flow *pawhaven.DonationFlow) error {
	donor, err := currentUser(client, settings, cache)
	if err != nil {
		return err
	}

	if cmd.Name != "" {
		donor.Name = cmd.Name
	}
	if donor.Name == "" {
		donor.Name = "Anonymous Donor"
	}

	if flow.Cards == nil {
		confirmer, err := pawhaven.NewStripeConfirmer()
		if err != nil {
			return err
		}
		flow.Cards = confirmer
	}

	donation, err := flow.Donate(context.Background(), cmd.CampaignID, cmd.Amount, donor, cmd.PaymentMethod)

	if errors.Is(err, pawhaven.ErrTotalsPending) {
		cache.Invalidate("my-donations")
		fmt.Fprintln(env.Stderr, err.Error())
		fmt.Fprintln(env.Stderr, "Your donation was received; run `pawhaven reconcile` to finish updating the campaign total.")
		return nil
	}
	if err != nil {
		return err
	}

	cache.Invalidate("my-donations")

	fmt.Fprintf(env.Stdout, "You have successfully donated $%v to %v (donationId=%v)\n",
		cmd.Amount, donation.PetName, donation.ID)
	return nil
}

type DonationsCmd struct {
	Mine          MyDonationsCmd       `cmd help:"Lists your donations."`
	RequestRefund RequestRefundCmd     `cmd help:"Asks for a donation to be refunded."`
	Refund        ProcessRefundCmd     `cmd help:"Processes a refund: removes the donation and subtracts it from the campaign total (admin only)."`
	ByCampaign    CampaignDonationsCmd `cmd help:"Lists donations to one campaign."`
}

type MyDonationsCmd struct{}

func (cmd *MyDonationsCmd) Run(env *Environment, client pawhavenhttp.Client, settings *pawhaven.Settings, cache *pawhaven.Cache) error {
	email, err := settings.Email()
	if err != nil {
		return err
	}

	value, err := cache.Get("my-donations", func() (any, error) {
		return client.ListDonationsByDonor(email)
	})
	if err != nil {
		return err
	}

	donations := value.([]pawhaven.Donation)

	table := newTable(env.Stdout)
	fmt.Fprintln(table, "ID\tPET\tAMOUNT\tREFUND")

	for _, donation := range donations {
		refund := ""
		if donation.IsRefundRequested {
			refund = "Refund Requested"
		}

		fmt.Fprintf(table, "%v\t%v\t$%.2f\t%v\n", donation.ID, donation.PetName, donation.DonatedAmount, refund)
	}

	return table.Flush()
}

type RequestRefundCmd struct {
	ID string `arg required help:"the donation id."`
}

func (cmd *RequestRefundCmd) Run(env *Environment, client pawhavenhttp.Client, settings *pawhaven.Settings, cache *pawhaven.Cache) error {
	email, err := settings.Email()
	if err != nil {
		return err
	}

	donations, err := client.ListDonationsByDonor(email)
	if err != nil {
		return err
	}

	for _, donation := range donations {
		if donation.ID != cmd.ID {
			continue
		}

		if donation.IsRefundRequested {
			return fmt.Errorf("a refund has already been requested for donation %v", cmd.ID)
		}

		if err := client.RequestRefund(cmd.ID); err != nil {
			return err
		}

		cache.Invalidate("my-donations")

		fmt.Fprintln(env.Stdout, "Refund request submitted.")
		return nil
	}

	return fmt.Errorf("no donation %v found for %v", cmd.ID, email)
}

type ProcessRefundCmd struct {
	CampaignID string `required help:"the campaign the donation belongs to."`
	ID         string `arg required help:"the donation id."`
}

func (cmd *ProcessRefundCmd) Run(env *Environment, client pawhavenhttp.Client, settings *pawhaven.Settings, cache *pawhaven.Cache, flow *pawhaven.DonationFlow) error {
	if _, err := requireAdmin(client, settings, cache); err != nil {
		return err
	}

	donations, err := client.ListDonationsByCampaign(cmd.CampaignID)
	if err != nil {
		return err
	}

	for _, donation := range donations {
		if donation.ID != cmd.ID {
			continue
		}

		err := flow.Refund(context.Background(), donation)

		if errors.Is(err, pawhaven.ErrTotalsPending) {
			fmt.Fprintln(env.Stderr, err.Error())
			fmt.Fprintln(env.Stderr, "The donation was removed; run `pawhaven reconcile` to finish updating the campaign total.")
			return nil
		}
		if err != nil {
			return err
		}

		cache.Invalidate("my-donations")

		fmt.Fprintf(env.Stdout, "Refunded $%.2f to %v.\n", donation.DonatedAmount, donation.DonorEmail)
		return nil
	}

	return fmt.Errorf("no donation %v found in campaign %v", cmd.ID, cmd.CampaignID)
}

type CampaignDonationsCmd struct {
	CampaignID string `arg required help:"the campaign id."`
}

func (cmd *CampaignDonationsCmd) Run(env *Environment, client pawhavenhttp.Client) error {
	donations, err := client.ListDonationsByCampaign(cmd.CampaignID)
	if err != nil {
		return err
	}

	table := newTable(env.Stdout)
	fmt.Fprintln(table, "ID\tDONOR\tAMOUNT\tREFUND REQUESTED")

	for _, donation := range donations {
		fmt.Fprintf(table, "%v\t%v <%v>\t$%.2f\t%v\n",
			donation.ID, donation.DonorName, donation.DonorEmail, donation.DonatedAmount, donation.IsRefundRequested)
	}

	return table.Flush()
}

type ReconcileCmd struct{}

func (cmd *ReconcileCmd) Run(env *Environment, journal pawhaven.Journal, flow *pawhaven.DonationFlow) error {
	ctx := context.Background()

	applied, err := flow.Reconcile(ctx)

	fmt.Fprintf(env.Stdout, "Applied %v outstanding campaign total patch(es).\n", applied)

	stalled, stalledErr := journal.Stalled(ctx, pawhaven.StalledAfter)
	if stalledErr == nil && len(stalled) > 0 {
		fmt.Fprintln(env.Stderr, "The following charges were confirmed but never recorded as donations; they need manual review:")

		for _, entry := range stalled {
			fmt.Fprintf(env.Stderr, "  %v: $%.2f to campaign %v at %v\n",
				entry.Key, entry.Amount, entry.CampaignID, entry.RecordedAt.Format("2006-01-02 15:04:05"))
		}
	}

	return err
}
