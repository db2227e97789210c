package main

import (
	"flag"
	"log/slog"
)

// flagSet wraps flag.FlagSet the way the rest of this ecosystem's CLIs do,
// so additional custom Value types can be hung off it later without
// touching call sites (see the uint64Value pattern in other eth2030-style
// binaries). This analyzer only needs the flag.ContinueOnError behavior for
// now.
type flagSet struct {
	*flag.FlagSet
}

func newCustomFlagSet(name string) *flagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return &flagSet{FlagSet: fs}
}

// config holds the resolved CLI configuration.
type config struct {
	Verbosity int    // 0=silent .. 5=trace
	Hex       string // positional hex argument; empty means "read stdin"
}

func defaultConfig() config {
	return config{Verbosity: 3}
}

// parseFlags parses CLI arguments into a config. Returns the config,
// whether the caller should exit immediately, and the exit code.
func parseFlags(args []string) (config, bool, int) {
	cfg := defaultConfig()
	fs := newCustomFlagSet("evmir-analyze")
	fs.IntVar(&cfg.Verbosity, "verbosity", cfg.Verbosity, "log level 0-5 (0=silent, 5=trace)")
	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return cfg, true, 2
	}

	if *showVersion {
		return cfg, true, 0
	}

	if fs.NArg() > 0 {
		cfg.Hex = fs.Arg(0)
	}

	return cfg, false, 0
}

// verbosityToLevel maps the 0-5 verbosity knob (0=silent .. 5=trace) to a
// slog.Level, the way node.VerbosityToLogLevel maps verbosity for the rest
// of this ecosystem's binaries. slog has no distinct "trace" level, so 5
// collapses onto Debug.
func verbosityToLevel(v int) slog.Level {
	switch {
	case v <= 0:
		// Above every level slog emits, so nothing is logged.
		return slog.LevelError + 1
	case v == 1:
		return slog.LevelError
	case v == 2:
		return slog.LevelWarn
	case v == 3:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
