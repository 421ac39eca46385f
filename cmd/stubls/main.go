// Command stubls serves the Language Server Protocol over stdin and stdout.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/stubls/stubls/internal/config"
	"github.com/stubls/stubls/internal/core"
	"github.com/stubls/stubls/internal/ls"
	"github.com/stubls/stubls/internal/lsp"
	"github.com/stubls/stubls/internal/project/logging"
	"golang.org/x/term"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type flags struct {
	configPath     string
	logFile        string
	verbose        bool
	requestTimeout time.Duration
	features       string
	wordPattern    string
	sync           string
	version        bool
	stdio          bool
}

func parseFlags(args []string, stderr io.Writer) (*flags, *flag.FlagSet, error) {
	var f flags
	fs := flag.NewFlagSet("stubls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configPath, "config", "", "path to a YAML config file, reloaded on change")
	fs.StringVar(&f.logFile, "log-file", "", "write the log to this file instead of stderr")
	fs.BoolVar(&f.verbose, "verbose", false, "log message params and document changes")
	fs.DurationVar(&f.requestTimeout, "request-timeout", 0, "fail feature requests that take longer than this (0 disables)")
	fs.StringVar(&f.features, "features", "", "comma separated built-in features: "+strings.Join(ls.FeatureNames(), ", "))
	fs.StringVar(&f.wordPattern, "word-pattern", "", "ECMAScript regular expression matching a word for hover")
	fs.StringVar(&f.sync, "sync", "", `document sync kind, "incremental" or "full"`)
	fs.BoolVar(&f.version, "version", false, "print the version and exit")
	fs.BoolVar(&f.stdio, "stdio", true, "serve over stdin and stdout (the only transport)")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return &f, fs, nil
}

// apply overrides opts with the flags given on the command line.
func (f *flags) apply(fs *flag.FlagSet, opts *config.Options) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "log-file":
			opts.LogFile = f.logFile
		case "verbose":
			opts.Verbose = f.verbose
		case "request-timeout":
			opts.RequestTimeout = f.requestTimeout
		case "features":
			opts.Features = nil
			for name := range strings.SplitSeq(f.features, ",") {
				if name = strings.TrimSpace(name); name != "" {
					opts.Features = append(opts.Features, name)
				}
			}
		case "word-pattern":
			opts.WordPattern = f.wordPattern
		case "sync":
			opts.Sync = f.sync
		}
	})
}

// reload applies the reloadable options of a changed config file. Flags given
// on the command line keep precedence over the file.
func (f *flags) reload(fs *flag.FlagSet, opts *config.Options, logger logging.Logger, server *lsp.Server) {
	f.apply(fs, opts)
	logger.SetVerbose(opts.Verbose)
	server.SetRequestTimeout(opts.RequestTimeout)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	f, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if f.version {
		fmt.Fprintln(stdout, core.Version())
		return 0
	}

	opts, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintln(stderr, "stubls:", err)
		return 1
	}
	f.apply(fs, opts)
	if err := opts.Validate(); err != nil {
		fmt.Fprintln(stderr, "stubls: invalid options:", err)
		return 1
	}

	output := stderr
	if opts.LogFile != "" {
		file, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintln(stderr, "stubls:", err)
			return 1
		}
		defer file.Close()
		output = file
	}
	logger := logging.NewLogger(output)
	defer logger.Close()
	logger.SetVerbose(opts.Verbose)

	if file, ok := stdin.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		logger.Warn("stdin is a terminal; stubls expects an LSP client to talk to it")
	}

	features := lsp.NewFeatures()
	if err := ls.Register(features, opts.Features, opts.UserPreferences()); err != nil {
		logger.Error("failed to register features: ", err)
		return 1
	}

	server := lsp.NewServer(&lsp.ServerOptions{
		In:                   lsp.ToReader(stdin),
		Out:                  lsp.ToWriter(stdout),
		Logger:               logger,
		Features:             features,
		PositionEncodings:    opts.PositionEncodingKinds(),
		SyncKind:             opts.SyncKind(),
		RequestTimeout:       opts.RequestTimeout,
		QueueSize:            opts.QueueSize,
		ConfigurationSection: opts.ConfigurationSection,
		SessionID:            uuid.NewString(),
		ShutdownGrace:        opts.ShutdownGrace,
	})

	if f.configPath != "" {
		err := config.Watch(ctx, f.configPath, logger, func(reloaded *config.Options) {
			f.reload(fs, reloaded, logger, server)
		})
		if err != nil {
			logger.Warn("config changes will not be picked up: ", err)
		}
	}

	if err := server.Run(ctx); err != nil {
		return 1
	}
	return 0
}
