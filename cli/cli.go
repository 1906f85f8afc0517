package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/pawhaven/pawhaven-tools/pawhaven"
	pawhavenhttp "github.com/pawhaven/pawhaven-tools/pawhaven/http"
)

// Environment provides an abstraction around the execution environment
type Environment struct {
	Stderr io.Writer
	Stdout io.Writer
	Stdin  io.Reader
}

type CLI struct {
	Login  LoginCmd  `cmd help:"Signs in: stores your Paw Haven session token locally."`
	Logout LogoutCmd `cmd help:"Signs out: clears the locally stored session."`
	Theme  ThemeCmd  `cmd help:"Shows or sets the dark/light theme preference."`

	Pets      PetsCmd      `cmd help:"Browse and manage pets."`
	Adoptions AdoptionsCmd `cmd help:"Submit and manage adoption requests."`
	Campaigns CampaignsCmd `cmd help:"Browse and manage donation campaigns."`

	Donate    DonateCmd    `cmd help:"Donates to a campaign via the payment gateway."`
	Donations DonationsCmd `cmd help:"List your donations and handle refunds."`
	Reconcile ReconcileCmd `cmd help:"Replays campaign total patches left unfinished by interrupted donations or refunds."`

	Users UsersCmd `cmd help:"Manage platform users (admin only)."`
	Stats StatsCmd `cmd help:"Shows platform-wide totals."`
	Serve ServeCmd `cmd help:"Serves the dashboard API with session and role gating."`
}

type LoginCmd struct {
	Email string `required help:"the email you signed up with."`
	Token string `required help:"the session token issued by the identity provider."`
}

func (cmd *LoginCmd) Run(env *Environment, settings *pawhaven.Settings) error {
	if err := settings.SaveSession(cmd.Email, cmd.Token); err != nil {
		return err
	}

	fmt.Fprintf(env.Stdout, "Signed in as %v\n", cmd.Email)
	return nil
}

type LogoutCmd struct{}

func (cmd *LogoutCmd) Run(env *Environment, settings *pawhaven.Settings) error {
	if err := settings.Clear(); err != nil {
		return err
	}

	fmt.Fprintln(env.Stdout, "Signed out.")
	return nil
}

type ThemeCmd struct {
	Theme string `arg optional enum:"dark,light," help:"the theme to switch to."`
}

func (cmd *ThemeCmd) Run(env *Environment, settings *pawhaven.Settings) error {
	if cmd.Theme == "" {
		fmt.Fprintln(env.Stdout, settings.Theme())
		return nil
	}

	return settings.SetTheme(pawhaven.Theme(cmd.Theme))
}

// currentUser resolves the signed-in user's server-side record, role
// included. The reported role gates commands as a convenience; the API
// still authorizes every request itself.
func currentUser(client pawhavenhttp.Client, settings *pawhaven.Settings, cache *pawhaven.Cache) (pawhaven.User, error) {
	email, err := settings.Email()
	if err != nil {
		return pawhaven.User{}, err
	}

	if email == "" {
		return pawhaven.User{}, fmt.Errorf("not signed in: run `pawhaven login` first")
	}

	value, err := cache.Get("current-user", func() (any, error) {
		users, err := client.ListUsers(email)
		if err != nil {
			return nil, err
		}

		for _, user := range users {
			if user.Email == email {
				return user, nil
			}
		}

		return pawhaven.User{Email: email, Role: pawhaven.RoleUser}, nil
	})
	if err != nil {
		return pawhaven.User{}, err
	}

	return value.(pawhaven.User), nil
}

func requireAdmin(client pawhavenhttp.Client, settings *pawhaven.Settings, cache *pawhaven.Cache) (pawhaven.User, error) {
	user, err := currentUser(client, settings, cache)
	if err != nil {
		return pawhaven.User{}, err
	}

	if !user.IsAdmin() {
		return pawhaven.User{}, fmt.Errorf("admin only: %v has role %v", user.Email, user.Role)
	}

	return user, nil
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func Run(env Environment) int {
	app := CLI{}

	settings, err := pawhaven.NewSettings()
	if err != nil {
		panic(err.Error())
	}

	journal := pawhaven.NewJournalWithDB(settings.DB())

	client, err := pawhavenhttp.NewPawHavenClient(settings, func() {
		fmt.Fprintln(env.Stderr, "Session expired: signed out. Run `pawhaven login` to sign in again.")
	})
	if err != nil {
		panic(err.Error())
	}

	cache := pawhaven.NewCache()

	flow := &pawhaven.DonationFlow{
		API:     client,
		Journal: journal,
	}

	cntx := kong.Parse(&app,
		kong.Description("Paw Haven adoption & donation tools"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	cntx.BindTo(client, (*pawhavenhttp.Client)(nil))
	cntx.BindTo(journal, (*pawhaven.Journal)(nil))
	cntx.Bind(settings)
	cntx.Bind(cache)
	cntx.Bind(flow)

	err = cntx.Run(&env)
	cntx.FatalIfErrorf(err)

	return 0
}
