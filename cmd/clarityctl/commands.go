package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
	"github.com/ndewijer/Income-Clarity-Backend/internal/app"
	"github.com/ndewijer/Income-Clarity-Backend/internal/config"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
	"github.com/ndewijer/Income-Clarity-Backend/internal/report"
	"github.com/ndewijer/Income-Clarity-Backend/internal/secrets"
	"github.com/ndewijer/Income-Clarity-Backend/internal/service"
)

var commands = []subcommands.Command{
	&migrateCmd{},
	&refreshCmd{},
	&superCardsCmd{},
	&genKeyCmd{},
}

func open(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return app.New(ctx, cfg)
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply pending database migrations" }
func (*migrateCmd) Usage() string {
	return `clarityctl migrate

  Applies all pending schema migrations to DB_PATH.
`
}
func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	// opening the app migrates
	a, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	a.Close()
	return subcommands.ExitSuccess
}

type refreshCmd struct{}

func (*refreshCmd) Name() string     { return "refresh-prices" }
func (*refreshCmd) Synopsis() string { return "refresh persisted prices for every tracked ticker" }
func (*refreshCmd) Usage() string {
	return `clarityctl refresh-prices

  Runs the background price refresh once and prints its summary.
`
}
func (*refreshCmd) SetFlags(*flag.FlagSet) {}

func (*refreshCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	summary, err := a.Prices.RefreshPrices(ctx)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("%d tickers, %d refreshed, %d holdings updated in %s\n", summary.Tickers, summary.Updated, summary.HoldingsUpdated, summary.Duration)
	if len(summary.Skipped) > 0 {
		fmt.Printf("skipped: %s\n", strings.Join(summary.Skipped, ", "))
	}
	return subcommands.ExitSuccess
}

type superCardsCmd struct {
	user   string
	period string
	month  string
	style  string
	width  int
	asJSON bool
}

func (*superCardsCmd) Name() string     { return "supercards" }
func (*superCardsCmd) Synopsis() string { return "print the five Super Cards for a user" }
func (*superCardsCmd) Usage() string {
	return `clarityctl supercards -u <user-id> [-p 1M|3M|6M|1Y|ALL] [-m YYYY-MM] [-json]

  Computes the Super Cards and renders them as styled markdown.
`
}

func (c *superCardsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "u", "", "user ID")
	f.StringVar(&c.period, "p", "1Y", "performance period")
	f.StringVar(&c.month, "m", "", "income month (defaults to the current month)")
	f.StringVar(&c.style, "style", "", "glamour style (dark, light, notty); auto-detected when empty")
	f.IntVar(&c.width, "width", 100, "word wrap width")
	f.BoolVar(&c.asJSON, "json", false, "print JSON instead of markdown")
}

func (c *superCardsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "Error: -u is required")
		return subcommands.ExitUsageError
	}
	var q service.SuperCardQuery
	period, err := model.ParsePeriod(strings.ToUpper(c.period))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	q.Period = period
	if c.month != "" {
		if q.Month, err = request.ParseMonth(c.month); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	a, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	cards, err := a.Services.SuperCards.ComputeSuperCards(ctx, c.user, q)
	if err != nil {
		return fail(err)
	}

	if c.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cards); err != nil {
			return fail(err)
		}
		return subcommands.ExitSuccess
	}

	md, err := report.Markdown(cards)
	if err != nil {
		return fail(err)
	}
	out, err := report.Terminal(md, c.style, c.width)
	if err != nil {
		return fail(err)
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}

type genKeyCmd struct{}

func (*genKeyCmd) Name() string     { return "gen-key" }
func (*genKeyCmd) Synopsis() string { return "generate a key for ACCOUNT_TOKEN_KEY" }
func (*genKeyCmd) Usage() string {
	return `clarityctl gen-key

  Prints a new random key. To rotate, prepend it to the existing
  comma-separated ACCOUNT_TOKEN_KEY list.
`
}
func (*genKeyCmd) SetFlags(*flag.FlagSet) {}

func (*genKeyCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	key, err := secrets.GenerateKey()
	if err != nil {
		return fail(err)
	}
	fmt.Println(key)
	return subcommands.ExitSuccess
}
