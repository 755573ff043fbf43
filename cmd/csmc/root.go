package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"csmc/internal/collector"
	"csmc/internal/config"
	"csmc/internal/console"
	"csmc/internal/coordinator"
	"csmc/internal/core"
	"csmc/internal/logging"
	"csmc/internal/progress"
)

const (
	ExitSuccess = 0
	ExitUsage   = 1
	ExitError   = 2
)

const usageLine = "Usage: ./csmc [#students] [#tutors] [#chairs] [#help]"

// usageError marks a failure caused by how csmc was invoked or configured.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// run executes csmc with args and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(negativeCountsAsArgs(cmd.Flags(), args))
	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	var uerr *usageError
	if errors.As(err, &uerr) {
		fmt.Fprintf(stderr, "error: %v\n", err)
		fmt.Fprintln(stderr, usageLine)
		return ExitUsage
	}
	if errors.Is(err, coordinator.ErrInterrupted) {
		return ExitError
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return ExitError
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "csmc [flags] <students> <tutors> <seats> <helps>",
		Short: "Simulate the CS mentoring center",
		Long: `csmc runs one goroutine per student and per tutor. Students work for a
random time, then try to take one of the waiting-room seats; a seated
student waits for a tutor. The run ends when every student has received
the required number of helps.

The four counts may instead come from --config. Flags override the
environment (CSMC_*), which overrides the config file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd.Context(), v, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	flags := cmd.Flags()
	flags.StringP("config", "c", "", "YAML config file")
	flags.Int("max-work", config.DefaultMaxWork, "upper bound of a student's work time, in units")
	flags.Int("max-help", config.DefaultMaxHelp, "upper bound of a tutor's help time, in units")
	flags.Duration("unit", config.DefaultUnit, "length of one time unit")
	flags.Uint64("seed", 0, "random seed shared by every worker")
	flags.String("pairing", "anonymous", "help completion pairing: anonymous or ticket")
	flags.Int("arrival-rate", 0, "seat attempts admitted per second (0 = unlimited)")
	flags.String("summary", "none", "summary after the run: text, json or none")
	flags.Bool("progress", false, "show a live status line on stderr")
	flags.Bool("quiet", false, "suppress per-event console lines and stderr notices")
	flags.Bool("print-config", false, "print the effective configuration as YAML and exit")
	flags.String("log-level", "info", "diagnostic log level")
	_ = v.BindPFlags(flags)

	v.SetEnvPrefix("CSMC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return cmd
}

// negativeCountsAsArgs moves negative integers that are not flag values
// behind "--", so "csmc -1 1 1 1" fails count validation instead of flag
// parsing. Args without a negative count are returned unchanged.
func negativeCountsAsArgs(flags *pflag.FlagSet, args []string) []string {
	var flagArgs, positional []string
	found := false
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			positional = append(positional, args[i+1:]...)
			i = len(args)
		case isNegativeInt(a):
			found = true
			positional = append(positional, a)
		case strings.HasPrefix(a, "-") && len(a) > 1:
			flagArgs = append(flagArgs, a)
			if takesValue(flags, a) && i+1 < len(args) {
				i++
				flagArgs = append(flagArgs, args[i])
			}
		default:
			positional = append(positional, a)
		}
	}
	if !found {
		return args
	}
	return append(append(flagArgs, "--"), positional...)
}

func isNegativeInt(s string) bool {
	if len(s) < 2 || s[0] != '-' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// takesValue reports whether arg is a known flag that consumes the next arg.
func takesValue(flags *pflag.FlagSet, arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}
	var f *pflag.Flag
	switch {
	case strings.HasPrefix(arg, "--"):
		f = flags.Lookup(arg[2:])
	case len(arg) == 2:
		f = flags.ShorthandLookup(arg[1:])
	}
	return f != nil && f.NoOptDefVal == ""
}

// loadConfig merges the config file, environment and flags, in increasing
// order of precedence, then applies the positional counts.
func loadConfig(v *viper.Viper, args []string) (*config.Config, error) {
	cfg := config.Default()
	path := v.GetString("config")
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, &usageError{err: err}
		}
		cfg = loaded
	}

	// file values sit below env and flags in viper's lookup order
	v.SetDefault("max-work", cfg.Timing.MaxWork)
	v.SetDefault("max-help", cfg.Timing.MaxHelp)
	v.SetDefault("unit", cfg.Timing.Unit)
	v.SetDefault("seed", cfg.Timing.Seed)
	v.SetDefault("arrival-rate", cfg.Timing.ArrivalRate)
	v.SetDefault("pairing", cfg.Pairing)

	cfg.Timing.MaxWork = v.GetInt("max-work")
	cfg.Timing.MaxHelp = v.GetInt("max-help")
	cfg.Timing.Unit = v.GetDuration("unit")
	cfg.Timing.Seed = v.GetUint64("seed")
	cfg.Timing.ArrivalRate = v.GetInt("arrival-rate")
	cfg.Pairing = v.GetString("pairing")

	switch {
	case len(args) == 4:
		counts, err := config.ParseCounts(args)
		if err != nil {
			return nil, &usageError{err: err}
		}
		cfg.Center = counts
	case len(args) == 0 && path != "":
	default:
		return nil, usagef("expected 4 counts, got %d", len(args))
	}

	if err := cfg.Validate(); err != nil {
		return nil, &usageError{err: err}
	}
	return cfg, nil
}

func execute(ctx context.Context, v *viper.Viper, args []string, stdout, stderr io.Writer) error {
	logging.SetOutput(stderr)
	logging.SetLevel(v.GetString("log-level"))

	cfg, err := loadConfig(v, args)
	if err != nil {
		return err
	}
	if v.GetBool("print-config") {
		return cfg.Write(stdout)
	}

	summary := v.GetString("summary")
	switch summary {
	case "text", "json", "none":
	default:
		return usagef("--summary must be text, json or none, got %q", summary)
	}

	coll := collector.NewCollector()
	reporters := []core.Reporter{coll}
	if !v.GetBool("quiet") {
		reporters = append(reporters, console.NewPrinter(stdout, cfg.Timing.Unit))
	}

	coord, err := coordinator.New(cfg, coordinator.WithReporter(core.MultiReporter(reporters...)))
	if err != nil {
		return &usageError{err: err}
	}

	prog := progress.NewProgress(coord.Center().Snapshot, v.GetBool("quiet"))
	prog.SetOutput(stderr)
	prog.Printf("CSMC open: %d students, %d tutors, %d seats, %d helps each (run %s)",
		cfg.Center.Students, cfg.Center.Tutors, cfg.Center.Seats, cfg.Center.Helps, coord.RunID())

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			prog.Print("Received interrupt signal, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	if v.GetBool("progress") {
		prog.Start()
	}

	res, runErr := coord.Run(ctx)
	prog.Stop()
	coll.Close()

	switch summary {
	case "text":
		collector.FormatText(stdout, coll.Compute())
	case "json":
		collector.FormatJSON(stdout, coll.Compute())
	}

	if res != nil {
		log.WithFields(log.Fields{
			"run":         res.RunID,
			"elapsed":     res.Elapsed,
			"finished":    res.Snapshot.Finished,
			"interrupted": res.Interrupted,
		}).Debug("run result")
	}
	return runErr
}
