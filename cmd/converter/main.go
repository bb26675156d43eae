package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"fx-converter-go/internal/config"
	"fx-converter-go/internal/logger"
	"fx-converter-go/internal/rate"
	"fx-converter-go/internal/widget"
	"go.uber.org/zap"
)

const help = `commands: amount <value> | override [value] | toggle | show | history | help | quit`

var errQuit = errors.New("quit")

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	out := os.Stdout
	w := widget.New(cfg, log, widget.WithTickHook(func(s widget.Snapshot) {
		fmt.Fprintf(out, "\n[tick] real-time rate 1 EUR = %s USD\n> ", s.SimulatedRate)
	}))

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	fmt.Fprintf(out, "EUR/USD converter, real-time rate starts at %s\n%s\n", rate.Format(cfg.Simulator.InitialRate), help)
	if err := repl(ctx, w, os.Stdin, out); err != nil && !errors.Is(err, errQuit) && !errors.Is(err, context.Canceled) {
		log.Error("Input loop failed", zap.Error(err))
	}

	cancel()
	if err := <-done; err != nil {
		log.Error("Widget stopped with error", zap.Error(err))
	}
	log.Info("Converter has been shut down.")
}

// repl reads one command per line until quit, EOF or ctx is done.
func repl(ctx context.Context, w *widget.Widget, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	for {
		fmt.Fprint(out, "> ")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			if err := execute(ctx, w, line, out); err != nil {
				if errors.Is(err, errQuit) || errors.Is(err, widget.ErrStopped) {
					return err
				}
				fmt.Fprintf(out, "error: %v\n", err)
			}
		}
	}
}

func execute(ctx context.Context, w *widget.Widget, line string, out io.Writer) error {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	var (
		snap widget.Snapshot
		err  error
	)
	switch cmd {
	case "":
		return nil
	case "quit", "exit":
		return errQuit
	case "help":
		fmt.Fprintln(out, help)
		return nil
	case "amount", "a":
		snap, err = w.SetAmount(ctx, arg)
	case "override", "o":
		snap, err = w.SetOverride(ctx, arg)
	case "toggle", "t":
		snap, err = w.Toggle(ctx)
	case "show", "s":
		snap, err = w.Snapshot(ctx)
	case "history", "h":
		snap, err = w.Snapshot(ctx)
		if err == nil {
			renderHistory(out, snap.History)
		}
		return err
	default:
		return fmt.Errorf("unknown command %q (%s)", cmd, help)
	}
	if err != nil {
		return err
	}
	render(out, snap)
	return nil
}
