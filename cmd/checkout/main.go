// Command checkout runs the purchase step of a seat reservation in the
// terminal. It is started with a session and the seats already held for
// it:
//
//	checkout --session 42 --seats 11,12 --backend-url http://localhost:8080
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-checkout/internal/backend"
	"github.com/iliyamo/cinema-checkout/internal/checkout"
	"github.com/iliyamo/cinema-checkout/internal/config"
	"github.com/iliyamo/cinema-checkout/internal/logging"
	"github.com/iliyamo/cinema-checkout/internal/model"
	"github.com/iliyamo/cinema-checkout/internal/tui"
)

// errUsage reports a command line problem already explained on stderr.
var errUsage = errors.New("usage")

func main() {
	err := run(os.Args[1:], os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "checkout:", err)
		os.Exit(1)
	}
}

func run(args []string, stderr io.Writer) error {
	fs := pflag.NewFlagSet("checkout", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	config.ClientFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	cfg, err := config.LoadClientConfig(fs)
	if errors.Is(err, config.ErrNoSelection) {
		fmt.Fprintf(stderr, "checkout: %v\n\nUsage of checkout:\n%s", err, fs.FlagUsages())
		return errUsage
	}
	if err != nil {
		return err
	}

	log, err := logging.New(logging.Options{Env: cfg.Env, Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	nav := tui.NewChanNavigator()
	flow := checkout.NewFlow(checkout.Options{
		Config: checkout.Config{
			SessionID:     model.ID(cfg.SessionID),
			SeatIDs:       cfg.SeatIDs(),
			Hold:          cfg.Hold,
			Tick:          cfg.Tick,
			MessageTTL:    cfg.MessageTTL,
			LoaderDelay:   cfg.LoaderDelay,
			RedirectDelay: cfg.RedirectDelay,
		},
		Backend:   backend.New(cfg.BackendURL, &http.Client{Timeout: cfg.RequestTTL}, log.Named("backend")),
		Sink:      checkout.NewFileSink(cfg.DownloadDir, cfg.OpenDocument),
		Navigator: nav,
		Logger:    log.Named("checkout"),
	})

	flowErr := make(chan error, 1)
	go func() { flowErr <- flow.Run(ctx) }()

	m := tui.NewModel(flow, nav.C(), tui.DefaultKeyMap, tui.DefaultTheme)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	stop()
	<-flow.Done()
	if ferr := <-flowErr; ferr != nil {
		log.Error("checkout stopped", zap.Error(ferr))
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}

	if fm, ok := final.(tui.Model); ok {
		if fm.Err() != nil {
			log.Warn("checkout action failed", zap.Error(fm.Err()))
		}
		if fm.Destination() != tui.StayHere {
			fmt.Printf("Continue at: %s\n", fm.Destination())
		}
	}
	if a := flow.Current().Attempt; a.DocumentPath != "" {
		fmt.Printf("Ticket: %s\n", a.DocumentPath)
	}
	return nil
}
