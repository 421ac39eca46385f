package core_test

import (
	"context"
	"testing"

	"github.com/stubls/stubls/internal/core"
	"golang.org/x/text/language"
	"gotest.tools/v3/assert"
)

func TestContextValues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Equal(t, core.GetRequestID(ctx), "")
	assert.Equal(t, core.GetLocale(ctx), language.Und)

	ctx = core.WithLocale(core.WithRequestID(ctx, "42"), language.German)
	assert.Equal(t, core.GetRequestID(ctx), "42")
	assert.Equal(t, core.GetLocale(ctx), language.German)
}

func TestIfElse(t *testing.T) {
	t.Parallel()

	assert.Equal(t, core.IfElse(true, "a", "b"), "a")
	assert.Equal(t, core.IfElse(false, 1, 2), 2)
	assert.Assert(t, core.Version() != "")
}
