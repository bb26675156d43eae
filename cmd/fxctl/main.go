package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"fx-converter-go/internal/client"
	"fx-converter-go/internal/config"
	"fx-converter-go/internal/converter"
	"fx-converter-go/internal/logger"
)

const usage = `usage: fxctl <command> [value]

commands:
  status             print the current snapshot
  history            print the last conversions
  amount <value>     set the amount to convert
  override <value>   set the override rate ("" clears it)
  toggle             flip the conversion direction
  mode <EUR|USD>     select the currency to convert from`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	rc := client.NewRestClient(&cfg.Client, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := run(ctx, rc, os.Args[1], os.Args[2:])
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Snapshot != nil {
			printJSON(apiErr.Snapshot)
		}
		fmt.Fprintf(os.Stderr, "fxctl: %v\n", err)
		os.Exit(1)
	}
	printJSON(result)
}

func run(ctx context.Context, rc client.RestClientInterface, cmd string, args []string) (any, error) {
	value := func() (string, error) {
		if len(args) != 1 {
			return "", fmt.Errorf("%s expects exactly one value", cmd)
		}
		return args[0], nil
	}

	switch cmd {
	case "status":
		return rc.Status(ctx)
	case "history":
		return rc.History(ctx)
	case "toggle":
		return rc.Toggle(ctx)
	case "amount":
		v, err := value()
		if err != nil {
			return nil, err
		}
		return rc.SetAmount(ctx, v)
	case "override":
		v, err := value()
		if err != nil {
			return nil, err
		}
		return rc.SetOverride(ctx, v)
	case "mode":
		v, err := value()
		if err != nil {
			return nil, err
		}
		mode, err := converter.ParseMode(v)
		if err != nil {
			return nil, err
		}
		return rc.SetMode(ctx, mode)
	}
	return nil, fmt.Errorf("unknown command %q\n%s", cmd, usage)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
