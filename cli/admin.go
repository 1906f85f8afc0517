package cli

import (
	"fmt"

	"github.com/pawhaven/pawhaven-tools/pawhaven"
	pawhavenhttp "github.com/pawhaven/pawhaven-tools/pawhaven/http"
)

type UsersCmd struct {
	List    UserListCmd    `cmd help:"Lists every platform user."`
	Promote UserPromoteCmd `cmd help:"Promotes a user to admin."`
	Ban     UserBanCmd     `cmd help:"Bans a user."`
}

type UserListCmd struct{}

func (cmd *UserListCmd) Run(env *Environment, client pawhavenhttp.Client, settings *pawhaven.Settings, cache *pawhaven.Cache) error {
	admin, err := requireAdmin(client, settings, cache)
	if err != nil {
		return err
	}

	value, err := cache.Get("users", func() (any, error) {
		return client.ListUsers(admin.Email)
	})
	if err != nil {
		return err
	}

	users := value.([]pawhaven.User)

	table := newTable(env.Stdout)
	fmt.Fprintln(table, "ID\tNAME\tEMAIL\tROLE\tBANNED")

	for _, user := range users {
		fmt.Fprintf(table, "%v\t%v\t%v\t%v\t%v\n", user.ID, user.Name, user.Email, user.Role, user.IsBanned)
	}

	return table.Flush()
}

type UserPromoteCmd struct {
	ID string `arg required help:"the user id."`
}

func (cmd *UserPromoteCmd) Run(env *Environment, client pawhavenhttp.Client, settings *pawhaven.Settings, cache *pawhaven.Cache) error {
	if _, err := requireAdmin(client, settings, cache); err != nil {
		return err
	}

	if err := client.PromoteUser(cmd.ID); err != nil {
		return err
	}

	cache.Invalidate("users")

	fmt.Fprintln(env.Stdout, "User promoted to admin successfully.")
	return nil
}

type UserBanCmd struct {
	ID string `arg required help:"the user id."`
}

func (cmd *UserBanCmd) Run(env *Environment, client pawhavenhttp.Client, settings *pawhaven.Settings, cache *pawhaven.Cache) error {
	if _, err := requireAdmin(client, settings, cache); err != nil {
		return err
	}

	if err := client.BanUser(cmd.ID); err != nil {
		return err
	}

	cache.Invalidate("users")

	fmt.Fprintln(env.Stdout, "User has been banned.")
	return nil
}

type StatsCmd struct{}

func (cmd *StatsCmd) Run(env *Environment, client pawhavenhttp.Client, cache *pawhaven.Cache) error {
	value, err := cache.Get("stats", func() (any, error) {
		return client.Stats()
	})
	if err != nil {
		return err
	}

	stats := value.(pawhaven.Stats)

	table := newTable(env.Stdout)
	fmt.Fprintf(table, "Total Users\t%v\n", stats.TotalUsers)
	fmt.Fprintf(table, "Pets Listed\t%v\n", stats.TotalPets)
	fmt.Fprintf(table, "Total Donations\t$%.2f\n", stats.TotalDonations)
	fmt.Fprintf(table, "Total Campaigns\t%v\n", stats.TotalCampaigns)
	fmt.Fprintf(table, "Adopted Pets\t%v\n", stats.AdoptedPets)

	return table.Flush()
}
