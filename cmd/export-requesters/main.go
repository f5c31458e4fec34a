// export-requesters dumps every requester with its derived lifecycle state,
// as CSV or JSON lines, from the same store the server uses.
//
// Usage:
//
//	REDIS_URL=redis://localhost:6379/0 export-requesters --format csv --state locality_chosen > requesters.csv
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"procuration/internal/kv"
	"procuration/internal/platform/config"
	platformredis "procuration/internal/platform/redis"
	"procuration/internal/request/export"
	"procuration/internal/request/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var format, state, output string

	flagSet := pflag.NewFlagSet("export-requesters", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&format, "format", "csv", "output format (csv, json)")
	flagSet.StringVar(&state, "state", "", "only export requesters in this state (new, submitted, verified, locality_chosen, matched, confirmed)")
	flagSet.StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	opts := export.Options{}
	var err error
	if opts.Format, err = export.ParseFormat(format); err != nil {
		return err
	}
	if opts.State, err = export.ParseState(state); err != nil {
		return err
	}

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	client, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if client == nil {
		return errors.New("REDIS_URL is required: the in-memory store is private to the server process")
	}
	defer client.Close()

	w := stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	n, err := export.Write(ctx, store.New(kv.NewRedis(client.Client)), w, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(stderr, "exported %d requesters\n", n)
	return nil
}
