package core

import (
	"context"
	"runtime/debug"

	"golang.org/x/text/language"
)

// version is overridden at link time with -ldflags "-X github.com/stubls/stubls/internal/core.version=...".
var version = ""

// Version returns the server version reported in the initialize result.
func Version() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "0.0.0-dev"
}

func IfElse[T any](b bool, whenTrue T, whenFalse T) T {
	if b {
		return whenTrue
	}
	return whenFalse
}

func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

type (
	requestIDKey struct{}
	localeKey    struct{}
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID returns the JSON-RPC request id attached to ctx, or "" for notifications.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

func WithLocale(ctx context.Context, locale language.Tag) context.Context {
	return context.WithValue(ctx, localeKey{}, locale)
}

// GetLocale returns the client locale negotiated at initialize, or language.Und.
func GetLocale(ctx context.Context) language.Tag {
	if locale, ok := ctx.Value(localeKey{}).(language.Tag); ok {
		return locale
	}
	return language.Und
}
