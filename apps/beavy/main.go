//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// The beavy command runs two-party BEAVY benchmark circuits.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/backend"
	"github.com/markkurossi/beavy/circuit"
	"github.com/markkurossi/beavy/p2p"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	myID        int
	parties     []string
	threads     int
	numSIMD     int
	repetitions int
	ringSize    int
	json        bool
	noRun       bool
	sync        bool
	interleaved bool
	verbose     bool
}

var reParty = regexp.MustCompile(`^([01]),([^,]+),(\d{1,5})$`)

func parseParty(arg string) (p2p.Party, error) {
	m := reParty.FindStringSubmatch(arg)
	if m == nil {
		return p2p.Party{}, errors.Newf("invalid party argument %q", arg)
	}
	id, _ := strconv.Atoi(m[1])
	port, err := strconv.Atoi(m[3])
	if err != nil || port > 65535 {
		return p2p.Party{}, errors.Newf("invalid port in party argument %q",
			arg)
	}
	return p2p.Party{
		ID:   id,
		Host: m[2],
		Port: port,
	}, nil
}

func parseParties(args []string) ([2]p2p.Party, error) {
	var result [2]p2p.Party
	if len(args) != 2 {
		return result, errors.Newf("expected two --party options, got %d",
			len(args))
	}
	var seen [2]bool
	for _, arg := range args {
		p, err := parseParty(arg)
		if err != nil {
			return result, err
		}
		if seen[p.ID] {
			return result, errors.New("need party arguments for party 0 and 1")
		}
		seen[p.ID] = true
		result[p.ID] = p
	}
	return result, nil
}

func (opts *options) validate() error {
	if opts.myID != 0 && opts.myID != 1 {
		return errors.Newf("invalid party ID %d", opts.myID)
	}
	switch opts.ringSize {
	case 8, 16, 32, 64:
	default:
		return errors.Newf("unsupported ring size %d", opts.ringSize)
	}
	if opts.numSIMD <= 0 {
		return errors.Newf("invalid number of SIMD values %d", opts.numSIMD)
	}
	if opts.repetitions <= 0 {
		return errors.Newf("invalid number of repetitions %d",
			opts.repetitions)
	}
	return nil
}

// benchmark builds one circuit on the backend and returns a function
// reporting its result after the run.
type benchmark func(b *backend.TwoParty, opts *options) (func(), error)

func run(ctx context.Context, opts *options, name string,
	build benchmark) error {

	if err := opts.validate(); err != nil {
		return err
	}
	parties, err := parseParties(opts.parties)
	if err != nil {
		return err
	}
	log, err := backend.NewLogger(opts.myID, opts.verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	session, err := p2p.Connect(ctx, log, opts.myID, parties)
	if err != nil {
		return err
	}
	cfg := backend.Config{
		MyID:                      opts.myID,
		Threads:                   opts.threads,
		SyncBetweenSetupAndOnline: opts.sync,
		Logger:                    log,
	}
	if opts.interleaved {
		cfg.Evaluation = circuit.Interleaved
	}
	b, err := backend.NewFromSession(session, cfg)
	if err != nil {
		session.Conn.Close()
		return err
	}
	defer b.Close()

	log.Info(name,
		zap.Stringer("session", b.Session()),
		zap.Int("ring-size", opts.ringSize),
		zap.Int("num-simd", opts.numSIMD),
		zap.Int("repetitions", opts.repetitions))

	for rep := 0; rep < opts.repetitions; rep++ {
		if rep > 0 {
			b.Reset()
		}
		report, err := build(b, opts)
		if err != nil {
			return err
		}
		if opts.noRun {
			log.Info("circuit built",
				zap.Int("gates", b.Register().NumGates()),
				zap.Int("wires", b.Register().NumWires()),
				zap.Stringer("ops", b.Register().Stats()))
			return nil
		}
		if err := b.Run(ctx); err != nil {
			return err
		}
		report()
	}

	if opts.json {
		return b.PrintJSON(os.Stdout)
	}
	b.PrintStats(os.Stdout)
	return nil
}

func newCommand(opts *options, name, short string, build benchmark) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, name, build)
		},
	}
}

func main() {
	opts := new(options)

	root := &cobra.Command{
		Use:           "beavy",
		Short:         "Two-party BEAVY benchmarks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.IntVar(&opts.myID, "my-id", 0, "my party ID")
	flags.StringArrayVar(&opts.parties, "party", nil,
		"party ID, host, and port, e.g. --party 1,127.0.0.1,7777")
	flags.IntVar(&opts.threads, "threads", 0,
		"number of concurrently evaluated gates, 0 for unlimited")
	flags.IntVar(&opts.numSIMD, "num-simd", 1, "number of SIMD values")
	flags.IntVar(&opts.repetitions, "repetitions", 1,
		"number of repetitions")
	flags.IntVar(&opts.ringSize, "ring-size", 16, "input bit size")
	flags.BoolVar(&opts.json, "json", false, "print statistics as JSON")
	flags.BoolVar(&opts.noRun, "no-run", false,
		"build the circuit without running it")
	flags.BoolVar(&opts.sync, "sync-between-setup-and-online", false,
		"synchronize parties between the setup and online phases")
	flags.BoolVar(&opts.interleaved, "interleaved", false,
		"run the online phase of each gate right after its setup")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	root.MarkPersistentFlagRequired("my-id")
	root.MarkPersistentFlagRequired("party")

	root.AddCommand(newCommand(opts, "equality",
		"Test equality of the parties' inputs", buildEquality))
	root.AddCommand(newCommand(opts, "hamming",
		"Compute the Hamming distance of the parties' inputs", buildHamming))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "beavy: %v\n", err)
		stop()
		os.Exit(1)
	}
}
