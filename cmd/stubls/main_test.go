package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stubls/stubls/internal/config"
	"github.com/stubls/stubls/internal/lsp"
	"github.com/stubls/stubls/internal/project/logging"
	"gotest.tools/v3/assert"
)

func frame(bodies ...string) *strings.Reader {
	var b strings.Builder
	for _, body := range bodies {
		fmt.Fprintf(&b, "Content-Length: %d\r\n\r\n%s", len(body), body)
	}
	return strings.NewReader(b.String())
}

const (
	initialize  = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"processId":null,"rootUri":null,"capabilities":{}}}`
	initialized = `{"jsonrpc":"2.0","method":"initialized","params":{}}`
	didOpen     = `{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{"textDocument":{"uri":"file:///a.txt","languageId":"plaintext","version":1,"text":"hello hello"}}}`
	hover       = `{"jsonrpc":"2.0","id":2,"method":"textDocument/hover","params":{"textDocument":{"uri":"file:///a.txt"},"position":{"line":0,"character":1}}}`
	shutdown    = `{"jsonrpc":"2.0","id":3,"method":"shutdown"}`
	exit        = `{"jsonrpc":"2.0","method":"exit"}`
)

func TestRunSession(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-features", "hover"}, frame(initialize, initialized, didOpen, hover, shutdown, exit), &stdout, &stderr)
	assert.Equal(t, code, 0, stderr.String())

	out := stdout.String()
	assert.Assert(t, strings.Contains(out, `"hoverProvider":true`), out)
	assert.Assert(t, strings.Contains(out, `"message":"server initialized!"`), out)
	assert.Assert(t, strings.Contains(out, `hello: 2 occurrence(s), version 1`), out)
	assert.Assert(t, strings.Contains(out, `{"jsonrpc":"2.0","id":3,"result":null}`), out)
	assert.Assert(t, strings.Contains(stderr.String(), "session "), stderr.String())
}

func TestRunExitCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		args  []string
		input []string
		want  int
	}{
		{"exit without shutdown", nil, []string{initialize, initialized, exit}, 1},
		{"end of input", nil, []string{initialize, initialized}, 1},
		{"end of input after shutdown", nil, []string{initialize, initialized, shutdown}, 0},
		{"unknown flag", []string{"-nope"}, nil, 2},
		{"help", []string{"-h"}, nil, 0},
		{"unknown feature", []string{"-features", "hover,rename"}, nil, 1},
		{"bad sync", []string{"-sync", "sometimes"}, nil, 1},
		{"missing config", []string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}, nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, frame(tt.input...), &stdout, &stderr)
			assert.Equal(t, code, tt.want, stderr.String())
		})
	}
}

func TestRunVersion(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	assert.Equal(t, run(context.Background(), []string{"-version"}, frame(), &stdout, &stderr), 0)
	assert.Assert(t, stdout.Len() > 0)
}

func TestRunConfigFileAndLogFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logFile := filepath.Join(dir, "stubls.log")
	configFile := filepath.Join(dir, "stubls.yaml")
	assert.NilError(t, os.WriteFile(configFile, []byte("verbose: true\nfeatures: [foldingRange]\nlogFile: "+logFile+"\n"), 0o644))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", configFile}, frame(initialize, initialized, didOpen, shutdown, exit), &stdout, &stderr)
	assert.Equal(t, code, 0, stderr.String())
	assert.Assert(t, strings.Contains(stdout.String(), `"foldingRangeProvider":true`), stdout.String())

	log, err := os.ReadFile(logFile)
	assert.NilError(t, err)
	assert.Assert(t, strings.Contains(string(log), "open file:///a.txt: version 1, 11 bytes"), string(log))
	assert.Equal(t, stderr.Len(), 0)
}

func TestReloadKeepsFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		args        []string
		wantVerbose bool
		wantTimeout time.Duration
	}{
		{"file values", nil, true, time.Second},
		{"flags win", []string{"-verbose=false", "-request-timeout", "5s"}, false, 5 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f, fs, err := parseFlags(tt.args, &bytes.Buffer{})
			assert.NilError(t, err)

			logger := logging.NewLogCollector()
			defer logger.Close()
			server := lsp.NewServer(&lsp.ServerOptions{Logger: logger})

			f.reload(fs, &config.Options{Verbose: true, RequestTimeout: time.Second}, logger, server)
			assert.Equal(t, logger.IsVerbose(), tt.wantVerbose)
			assert.Equal(t, server.RequestTimeout(), tt.wantTimeout)
		})
	}
}
