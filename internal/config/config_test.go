package config_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stubls/stubls/internal/config"
	"github.com/stubls/stubls/internal/lsp/lsproto"
	"github.com/stubls/stubls/internal/project/logging"
	"gotest.tools/v3/assert"
)

func defaults() *config.Options {
	return &config.Options{
		QueueSize:            100,
		ShutdownGrace:        time.Second,
		ConfigurationSection: "stubls",
		PositionEncodings:    []string{"utf-8", "utf-16"},
		Sync:                 config.SyncIncremental,
	}
}

func TestFromEnvDefaults(t *testing.T) {
	opts, err := config.FromEnv()
	assert.NilError(t, err)
	assert.DeepEqual(t, opts, defaults())
	assert.NilError(t, opts.Validate())
}

func TestFromEnv(t *testing.T) {
	t.Setenv("STUBLS_VERBOSE", "true")
	t.Setenv("STUBLS_REQUEST_TIMEOUT", "2s")
	t.Setenv("STUBLS_FEATURES", "hover;foldingRange")
	t.Setenv("STUBLS_SYNC", "full")
	t.Setenv("STUBLS_SHUTDOWN_GRACE", "0s")

	opts, err := config.FromEnv()
	assert.NilError(t, err)
	assert.Equal(t, opts.Verbose, true)
	assert.Equal(t, opts.RequestTimeout, 2*time.Second)
	assert.DeepEqual(t, opts.Features, []string{"hover", "foldingRange"})
	assert.Equal(t, opts.SyncKind(), lsproto.TextDocumentSyncKindFull)
	assert.Equal(t, opts.ShutdownGrace, time.Duration(0))
}

func TestFromEnvInvalid(t *testing.T) {
	t.Setenv("STUBLS_QUEUE_SIZE", "many")

	_, err := config.FromEnv()
	assert.ErrorContains(t, err, "failed to read environment")
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stubls.yaml")
	assert.NilError(t, os.WriteFile(path, []byte("verbose: true\nrequestTimeout: 1500ms\nfeatures: [hover]\n"), 0o644))

	opts := defaults()
	assert.NilError(t, opts.LoadFile(path))

	want := defaults()
	want.Verbose = true
	want.RequestTimeout = 1500 * time.Millisecond
	want.Features = []string{"hover"}
	assert.DeepEqual(t, opts, want)

	assert.Assert(t, opts.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")) != nil)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	assert.NilError(t, os.WriteFile(bad, []byte("queueSize: [1"), 0o644))
	assert.ErrorContains(t, opts.LoadFile(bad), "failed to parse")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*config.Options)
		wantErr string
	}{
		{"defaults", func(*config.Options) {}, ""},
		{"negative timeout", func(o *config.Options) { o.RequestTimeout = -time.Second }, "requestTimeout must not be negative"},
		{"negative shutdown grace", func(o *config.Options) { o.ShutdownGrace = -time.Second }, "shutdownGrace must not be negative"},
		{"queue size", func(o *config.Options) { o.QueueSize = 0 }, "queueSize must be positive"},
		{"unknown feature", func(o *config.Options) { o.Features = []string{"rename"} }, `unknown feature "rename"`},
		{"duplicate feature", func(o *config.Options) { o.Features = []string{"hover", "hover"} }, `feature "hover" listed twice`},
		{"word pattern", func(o *config.Options) { o.WordPattern = "(" }, "invalid word pattern"},
		{"position encoding", func(o *config.Options) { o.PositionEncodings = []string{"utf-7"} }, `unknown position encoding "utf-7"`},
		{"sync", func(o *config.Options) { o.Sync = "none" }, `sync must be "incremental" or "full"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := defaults()
			tt.modify(opts)
			err := opts.Validate()
			if tt.wantErr == "" {
				assert.NilError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestPositionEncodingKinds(t *testing.T) {
	t.Parallel()

	assert.DeepEqual(t, defaults().PositionEncodingKinds(), []lsproto.PositionEncodingKind{
		lsproto.PositionEncodingKindUTF8,
		lsproto.PositionEncodingKindUTF16,
	})
}

func TestWatch(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stubls.yaml")
	assert.NilError(t, os.WriteFile(path, []byte("verbose: false\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := logging.NewLogCollector()
	defer logger.Close()

	reloaded := make(chan *config.Options, 16)
	assert.NilError(t, config.Watch(ctx, path, logger, func(opts *config.Options) {
		reloaded <- opts
	}))

	assert.NilError(t, os.WriteFile(path, []byte("verbose: true\nrequestTimeout: 3s\n"), 0o644))

	deadline := time.After(10 * time.Second)
	for {
		select {
		case opts := <-reloaded:
			// A write may be observed before it is complete.
			if !opts.Verbose || opts.RequestTimeout != 3*time.Second {
				continue
			}
			assert.Assert(t, strings.Contains(logger.String(), "reloaded "+path), logger.String())
			return
		case <-deadline:
			t.Fatalf("config was not reloaded; log:\n%s", logger.String())
		}
	}
}
