// Package config loads server options from defaults, the environment, a YAML
// file and command line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/stubls/stubls/internal/ls"
	"github.com/stubls/stubls/internal/lsp/lsproto"
	"gopkg.in/yaml.v3"
)

const (
	SyncIncremental = "incremental"
	SyncFull        = "full"
)

type Options struct {
	// LogFile receives the log instead of stderr when set.
	LogFile string `yaml:"logFile" env:"STUBLS_LOG_FILE"`
	Verbose bool   `yaml:"verbose" env:"STUBLS_VERBOSE,default=false"`
	// RequestTimeout bounds every feature request. Zero disables it.
	RequestTimeout time.Duration `yaml:"requestTimeout" env:"STUBLS_REQUEST_TIMEOUT,default=0s"`
	QueueSize      int           `yaml:"queueSize" env:"STUBLS_QUEUE_SIZE,default=100"`
	// ShutdownGrace is how long shutdown waits for running feature requests.
	ShutdownGrace time.Duration `yaml:"shutdownGrace" env:"STUBLS_SHUTDOWN_GRACE,default=1s"`
	// Features lists the built-in features to enable.
	Features    []string `yaml:"features" env:"STUBLS_FEATURES"`
	WordPattern string   `yaml:"wordPattern" env:"STUBLS_WORD_PATTERN"`
	// ConfigurationSection is the section requested with workspace/configuration.
	ConfigurationSection string   `yaml:"configurationSection" env:"STUBLS_CONFIGURATION_SECTION,default=stubls"`
	PositionEncodings    []string `yaml:"positionEncodings" env:"STUBLS_POSITION_ENCODINGS,default=utf-8;utf-16"`
	Sync                 string   `yaml:"sync" env:"STUBLS_SYNC,default=incremental"`
}

// FromEnv returns the defaults overridden by STUBLS_* environment variables.
func FromEnv() (*Options, error) {
	var opts Options
	if err := envdecode.StrictDecode(&opts); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &opts, nil
}

// LoadFile overlays the keys present in the YAML file at path onto opts.
func (o *Options) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, o); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// Load reads the environment and then, if path is not empty, the YAML file.
func Load(path string) (*Options, error) {
	opts, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := opts.LoadFile(path); err != nil {
			return nil, err
		}
	}
	return opts, nil
}

func (o *Options) Validate() error {
	var errs []error
	if o.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("requestTimeout must not be negative, got %s", o.RequestTimeout))
	}
	if o.ShutdownGrace < 0 {
		errs = append(errs, fmt.Errorf("shutdownGrace must not be negative, got %s", o.ShutdownGrace))
	}
	if o.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("queueSize must be positive, got %d", o.QueueSize))
	}
	for i, feature := range o.Features {
		if !slices.Contains(ls.FeatureNames(), feature) {
			errs = append(errs, fmt.Errorf("unknown feature %q", feature))
		} else if slices.Index(o.Features, feature) != i {
			errs = append(errs, fmt.Errorf("feature %q listed twice", feature))
		}
	}
	if o.WordPattern != "" {
		if err := ls.ValidateWordPattern(o.WordPattern); err != nil {
			errs = append(errs, err)
		}
	}
	for _, encoding := range o.PositionEncodings {
		switch lsproto.PositionEncodingKind(encoding) {
		case lsproto.PositionEncodingKindUTF8, lsproto.PositionEncodingKindUTF16, lsproto.PositionEncodingKindUTF32:
		default:
			errs = append(errs, fmt.Errorf("unknown position encoding %q", encoding))
		}
	}
	if o.Sync != SyncIncremental && o.Sync != SyncFull {
		errs = append(errs, fmt.Errorf("sync must be %q or %q, got %q", SyncIncremental, SyncFull, o.Sync))
	}
	return errors.Join(errs...)
}

func (o *Options) SyncKind() lsproto.TextDocumentSyncKind {
	if o.Sync == SyncFull {
		return lsproto.TextDocumentSyncKindFull
	}
	return lsproto.TextDocumentSyncKindIncremental
}

func (o *Options) PositionEncodingKinds() []lsproto.PositionEncodingKind {
	kinds := make([]lsproto.PositionEncodingKind, len(o.PositionEncodings))
	for i, encoding := range o.PositionEncodings {
		kinds[i] = lsproto.PositionEncodingKind(encoding)
	}
	return kinds
}

func (o *Options) UserPreferences() *ls.UserPreferences {
	return &ls.UserPreferences{WordPattern: o.WordPattern}
}
