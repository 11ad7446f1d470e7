// Command wallet is the headless wallet client. It talks to the configured
// data source through the gateway and prints the dashboard, account and
// transaction views.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"wallet/internal/backend"
	"wallet/internal/cli"
	"wallet/internal/config"
	"wallet/internal/core"
	"wallet/internal/gateway"
	"wallet/internal/log"
	"wallet/internal/money"
	"wallet/internal/report"
	"wallet/internal/session"
	"wallet/internal/store"
)

type command struct {
	usage        string
	requiresAuth bool
	needsGateway bool
	run          func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"dashboard":   {"dashboard [-period MTD|30D|YTD] [-account ID]", true, true, runDashboard},
	"accounts":    {"accounts", true, true, runAccounts},
	"account":     {"account -id ID", true, true, runAccount},
	"new-account": {"new-account -name NAME -currency CODE [-amount 0.00]", true, true, runNewAccount},
	"new-tx":      {"new-tx -account ID -type IN|OUT -amount 0.00 -description TEXT [-at RFC3339]", true, true, runNewTx},
	"register":    {"register -name NAME -email EMAIL -password PASSWORD", false, true, runRegister},
	"logout":      {"logout", false, false, runLogout},
	"set-url":     {"set-url URL", false, false, runSetURL},
}

type app struct {
	cfg     *config.Config
	logger  *log.Logger
	session *session.Session
	gw      *gateway.Gateway
	builder *report.Builder
	out     io.Writer
	errOut  io.Writer
}

// errUsage marks argument errors; run answers it with the command usage.
var errUsage = errors.New("usage")

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		printUsage(stderr)
		return 2
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp, os.Getenv("LOG_LEVEL"), stderr)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	sess := session.New(repo)
	if err := sess.SeedBaseURL(ctx, cfg.APIBaseURL); err != nil {
		logger.Warn("Failed to seed base URL", log.FieldError, err)
	}

	a := &app{cfg: cfg, logger: logger, session: sess, out: stdout, errOut: stderr}

	if cmd.requiresAuth && !sess.LoggedIn(ctx) {
		fmt.Fprintln(stderr, "not logged in: run `wallet register` first")
		return 1
	}

	if cmd.needsGateway {
		cleanup, err := a.connect(ctx)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		defer cleanup()
	}

	if err := cmd.run(ctx, a, args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "usage: wallet %s\n", cmd.usage)
			return 2
		}
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

// connect builds the data source and the gateway over it. The remote source
// resolves its base URL from the session on every request.
func (a *app) connect(ctx context.Context) (func(), error) {
	bcfg, err := backend.FromAppConfig(a.cfg)
	if err != nil {
		return nil, err
	}
	bcfg.BaseURL = a.session.BaseURL

	res, err := backend.NewFactory(a.logger.WithComponent(log.ComponentBackend)).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	a.gw = gateway.New(res.Source,
		gateway.WithPublisher(res.Publisher),
		gateway.WithLogger(a.logger.WithComponent(log.ComponentGateway)),
		gateway.WithStatusFunc(func(op string, s gateway.Status) {
			a.logger.Debug("Operation status", log.FieldOperation, op, log.FieldStatus, string(s))
		}))
	a.builder = report.NewBuilder(a.gw, store.NewAccounts(), store.NewTransactions(), a.cfg.Locale)

	return func() {
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				a.logger.Warn("Backend cleanup failed", log.FieldError, err)
			}
		}
	}, nil
}

func runDashboard(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("dashboard")
	period := fs.String("period", string(core.MonthToDate), "MTD, 30D or YTD")
	account := fs.Int64("account", 0, "restrict the summary to one account")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	p, ok := core.ParsePeriod(*period)
	if !ok {
		return fmt.Errorf("unknown period %q", *period)
	}
	var filter *int64
	if *account > 0 {
		filter = account
	}

	d, err := a.builder.Dashboard(ctx, p, filter)
	if err != nil {
		return err
	}
	return report.RenderDashboard(a.out, d)
}

func runAccounts(ctx context.Context, a *app, args []string) error {
	res := a.gw.ListAccounts(ctx)
	if !res.OK() {
		return failure(res.Message)
	}
	formatter := money.NewFormatter()
	cards := make([]report.AccountCard, 0, len(res.Data))
	for _, acc := range res.Data {
		cards = append(cards, report.AccountCard{
			ID:           acc.ID,
			Name:         acc.Name,
			Currency:     acc.Currency,
			BalanceCents: acc.Balance,
			Balance:      formatter.Format(acc.Balance, acc.Currency, a.cfg.Locale),
		})
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	return report.RenderAccounts(a.out, cards)
}

func runAccount(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("account")
	id := fs.Int64("id", 0, "account id")
	if err := fs.Parse(args); err != nil || *id <= 0 {
		return errUsage
	}

	d, err := a.builder.AccountDetail(ctx, *id)
	if err != nil {
		return err
	}
	if !d.Reconciliation.Consistent {
		a.logger.Warn("Cached balance differs from history",
			log.FieldAccountID, d.Account.ID,
			log.FieldDrift, d.Reconciliation.Drift)
	}
	return report.RenderAccountDetail(a.out, d)
}

func runNewAccount(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("new-account")
	name := fs.String("name", "", "account name")
	currency := fs.String("currency", a.cfg.BaseCurrency, "ISO 4217 code")
	amount := fs.String("amount", "", "opening balance, e.g. 1500.00")
	if err := fs.Parse(args); err != nil || strings.TrimSpace(*name) == "" {
		return errUsage
	}

	var initial int64
	if s := strings.TrimSpace(*amount); s != "" && s != "0" {
		cents, err := core.ParseAmountToCents(s)
		if err != nil {
			return err
		}
		initial = cents
	}

	res := a.gw.CreateAccount(ctx, *name, *currency, initial)
	if !res.OK() {
		return failure(res.Message)
	}
	fmt.Fprintf(a.out, "Created account %d %s (%s)\n",
		res.Data.ID, res.Data.Name, money.Format(res.Data.Balance, res.Data.Currency, a.cfg.Locale))
	a.noteEphemeral()
	return nil
}

func runNewTx(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("new-tx")
	account := fs.Int64("account", 0, "account id")
	typ := fs.String("type", "", "IN or OUT")
	amount := fs.String("amount", "", "amount, e.g. 49.99")
	description := fs.String("description", "", "what the money was for")
	at := fs.String("at", "", "when it happened, RFC3339 (default now)")
	if err := fs.Parse(args); err != nil || *account <= 0 || *typ == "" || *amount == "" {
		return errUsage
	}

	txType, err := core.ParseTxType(*typ)
	if err != nil {
		return err
	}
	cents, err := core.ParseAmountToCents(*amount)
	if err != nil {
		return err
	}
	var occurredAt *time.Time
	if *at != "" {
		t, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			return fmt.Errorf("-at must be RFC3339: %w", err)
		}
		occurredAt = &t
	}

	res := a.gw.CreateTransaction(ctx, *account, txType, cents, *description, occurredAt)
	if !res.OK() {
		return failure(res.Message)
	}

	currency := a.cfg.BaseCurrency
	if acc := a.gw.ListAccounts(ctx); acc.OK() {
		for _, x := range acc.Data {
			if x.ID == res.Data.AccountID {
				currency = x.Currency
			}
		}
	}
	fmt.Fprintf(a.out, "Recorded transaction %d %s %s\n",
		res.Data.ID, money.Signed(res.Data, currency, a.cfg.Locale), res.Data.Description)
	a.noteEphemeral()
	return nil
}

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("register")
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (min 6 characters)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	res := a.gw.Register(ctx, *name, *email, *password)
	if !res.OK() {
		return failure(res.Message)
	}
	if err := a.session.LogIn(ctx); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s\n", res.Data.Name)
	return nil
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	if err := a.session.LogOut(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func runSetURL(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.session.SetBaseURL(ctx, args[0]); err != nil {
		return err
	}
	url, err := a.session.BaseURL(ctx)
	if errors.Is(err, session.ErrNoBaseURL) {
		fmt.Fprintln(a.out, "API base URL cleared")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "API base URL set to %s\n", url)
	return nil
}

// noteEphemeral warns that the memory backend is rebuilt from the demo data on
// every invocation, so a write does not outlive the command.
func (a *app) noteEphemeral() {
	if backend.BackendType(a.cfg.DataBackend) == backend.MemoryBackend {
		fmt.Fprintln(a.errOut, ephemeralNote)
	}
}

const ephemeralNote = "note: DATA_BACKEND=memory keeps changes for this command only; set DATA_BACKEND=remote to persist them"

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// failure carries a gateway message to the user unchanged.
func failure(msg string) error {
	return errors.New(msg)
}

func printUsage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "usage: wallet <command> [flags]")
	fmt.Fprintln(w)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "DATA_BACKEND=remote talks to the API at the session base URL. The default,")
	fmt.Fprintln(w, "memory, starts from the demo data on every run and forgets writes on exit.")
}
