package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/basket/tgt/internal/actionbus"
	"github.com/basket/tgt/internal/audit"
	"github.com/basket/tgt/internal/authfsm"
	"github.com/basket/tgt/internal/config"
	"github.com/basket/tgt/internal/dispatcher"
	"github.com/basket/tgt/internal/domaincache"
	"github.com/basket/tgt/internal/housekeeping"
	"github.com/basket/tgt/internal/logging"
	"github.com/basket/tgt/internal/openchatstore"
	"github.com/basket/tgt/internal/otel"
	"github.com/basket/tgt/internal/playback"
	"github.com/basket/tgt/internal/tgclient"
	"github.com/basket/tgt/internal/ui"
)

// Version is set via ldflags at build time: -ldflags "-X main.Version=..."
var Version = "v0.1-dev"

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage of %s:

INTERACTIVE MODE (default):
  %s                                Start the interactive terminal client

FLAGS:
  -l, --logout, --lo               Log out the current session and exit
  -s, --send-message, --sm         Send one message and exit: CHAT_NAME MESSAGE
  --version                        Print version and exit
  --help                           Print this message and exit

ENVIRONMENT VARIABLES:
  API_ID                  Telegram application id (required)
  API_HASH                Telegram application hash (required)
  TGT_CONFIG_HOME         Config/state directory (overrides XDG/HOME default)
  HOME, XDG_CONFIG_HOME   Used to derive the default config directory
  RUST_LOG                Log level compatibility alias
`, os.Args[0], os.Args[0])
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("tgt", flag.ContinueOnError)
	fs.Usage = printUsage

	logout := fs.Bool("logout", false, "log out and exit")
	fs.BoolVar(logout, "l", false, "log out and exit (shorthand)")
	fs.BoolVar(logout, "lo", false, "log out and exit (shorthand)")

	sendMessage := fs.Bool("send-message", false, "send one message and exit")
	fs.BoolVar(sendMessage, "s", false, "send one message and exit (shorthand)")
	fs.BoolVar(sendMessage, "sm", false, "send one message and exit (shorthand)")

	version := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *version {
		fmt.Println("tgt " + Version)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "tgt: load config:", err)
		return 1
	}

	logger, closer, err := logging.New(cfg.HomeDir, cfg.Logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tgt: init logging:", err)
		return 1
	}
	defer closer.Close()

	if err := audit.Init(cfg.HomeDir); err != nil {
		fmt.Fprintln(os.Stderr, "tgt: init audit log:", err)
		return 1
	}
	defer audit.Close()

	if cfg.Telegram.APIID == 0 || cfg.Telegram.APIHash == "" {
		fmt.Fprintln(os.Stderr, "tgt: API_ID and API_HASH must be set")
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch {
	case *logout:
		return runLogout(ctx, cfg, logger)
	case *sendMessage:
		rest := fs.Args()
		if len(rest) < 2 {
			fmt.Fprintln(os.Stderr, "tgt: --send-message requires CHAT_NAME and MESSAGE")
			return 2
		}
		return runSendMessage(ctx, cfg, logger, rest[0], rest[1])
	default:
		return runInteractive(ctx, cfg, logger)
	}
}

func newClient(cfg config.Config, prompt authfsm.Prompter, logger *slog.Logger) *tgclient.GotdClient {
	return tgclient.NewGotdClient(int(cfg.Telegram.APIID), cfg.Telegram.APIHash, cfg.Telegram.Phone, prompt, logger)
}

func runLogout(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	prompt := newStdinPrompter()
	client := newClient(cfg, prompt, logger)
	if _, err := client.Create(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "tgt: create client:", err)
		return 1
	}
	if err := client.LogOut(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "tgt: log out:", err)
		return 1
	}
	fmt.Println("logged out")
	return 0
}

// runSendMessage implements the one-shot CLI send path: it loads the
// chat list far enough to resolve CHAT_NAME, then issues a single
// SendMessage and exits without starting the TUI.
func runSendMessage(ctx context.Context, cfg config.Config, logger *slog.Logger, chatName, text string) int {
	prompt := newStdinPrompter()
	client := newClient(cfg, prompt, logger)
	if _, err := client.Create(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "tgt: create client:", err)
		return 1
	}

	cache := domaincache.New()
	open := openchatstore.New()
	fsm := authfsm.New(client, prompt, authfsm.Credentials{
		APIID: cfg.Telegram.APIID, APIHash: cfg.Telegram.APIHash, DatabaseDir: cfg.Telegram.DatabaseDir,
	}, nil)
	disp := dispatcher.New(cache, open, fsmAuthSink{fsm}, nil)

	updates, err := client.Receive(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tgt: receive updates:", err)
		return 1
	}
	drain := make(chan struct{})
	go func() {
		defer close(drain)
		for u := range updates {
			disp.Apply(u)
		}
	}()

	if err := client.LoadChats(ctx, "main", 200); err != nil {
		fmt.Fprintln(os.Stderr, "tgt: load chats:", err)
		return 1
	}

	var target int64
	for _, entry := range cache.OrderedChatListEntries() {
		if entry.DisplayName == chatName {
			target = int64(entry.ChatID)
			break
		}
	}
	if target == 0 {
		fmt.Fprintf(os.Stderr, "tgt: no chat named %q\n", chatName)
		return 1
	}

	if err := client.SendMessage(ctx, tgclient.SendMessageRequest{ChatID: target, Text: text}); err != nil {
		fmt.Fprintln(os.Stderr, "tgt: send message:", err)
		return 1
	}
	return 0
}

func runInteractive(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	telemetry, err := otel.Init(ctx, cfg.Otel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tgt: init telemetry:", err)
		return 1
	}
	defer telemetry.Shutdown(context.Background())
	metrics, err := otel.NewMetrics(telemetry.Meter)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tgt: init metrics:", err)
		return 1
	}

	bus := actionbus.New()
	bus.SetMetrics(metrics)
	cache := domaincache.New()
	open := openchatstore.New()

	prompt := newStdinPrompter()
	client := newClient(cfg, prompt, logger)

	fsm := authfsm.New(client, prompt, authfsm.Credentials{
		APIID:       cfg.Telegram.APIID,
		APIHash:     cfg.Telegram.APIHash,
		DatabaseDir: cfg.Telegram.DatabaseDir,
	}, func(format string, args ...interface{}) { logger.Info(fmt.Sprintf(format, args...)) })

	disp := dispatcher.New(cache, open, fsmAuthSink{fsm}, func(format string, args ...interface{}) {
		logger.Debug(fmt.Sprintf(format, args...))
	})
	disp.SetMetrics(metrics)

	if _, err := client.Create(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "tgt: create client:", err)
		return 1
	}
	updates, err := client.Receive(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tgt: receive updates:", err)
		return 1
	}
	go func() {
		for u := range updates {
			disp.Apply(u)
		}
	}()

	worker := playback.NewWorker(bus, "")
	worker.SetMetrics(metrics)
	go worker.Run(ctx)

	resync := housekeeping.NewScheduler(housekeeping.Config{
		Client:   client,
		Logger:   logger,
		CronExpr: cfg.App.ResyncCron,
		Metrics:  metrics,
	})
	resync.Start(ctx)
	defer resync.Stop()

	model := ui.New(ctx, bus, cache, open, client, fsm, disp, cfg.App, cfg.Keymap, cfg.Theme, config.ThemeNames())
	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "tgt:", err)
		return 1
	}
	return 0
}

// fsmAuthSink adapts authfsm.Fsm to dispatcher.AuthSink.
type fsmAuthSink struct{ fsm *authfsm.Fsm }

func (a fsmAuthSink) HandleAuthorizationState(state interface{}) {
	s, ok := state.(authfsm.State)
	if !ok {
		return
	}
	a.fsm.Handle(context.Background(), s)
}
