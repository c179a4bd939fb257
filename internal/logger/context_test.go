package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestFromContextFallback ensures the global logger is used when the
// context carries none.
func TestFromContextFallback(t *testing.T) {
	t.Parallel()

	require.NotNil(t, FromContext(context.Background()))
	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestToContextRoundtrip ensures a logger stored in a context is returned.
func TestToContextRoundtrip(t *testing.T) {
	t.Parallel()

	named := Logger().Named("test")
	ctx := ToContext(context.Background(), named)

	require.Same(t, named, FromContext(ctx))

	// WithName and WithKV derive without touching the parent context.
	derived := WithName(ctx, "child")
	require.NotSame(t, FromContext(ctx), FromContext(derived))

	derived = WithKV(ctx, "addon", "plugin.video.x")
	require.NotSame(t, FromContext(ctx), FromContext(derived))
}

// TestNewWithLevel builds a logger whose core is capped at a level.
func TestNewWithLevel(t *testing.T) {
	t.Parallel()

	l := New(nil, WithLevel(zapcore.WarnLevel))
	require.NotNil(t, l)
	require.False(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
	require.True(t, l.Desugar().Core().Enabled(zapcore.ErrorLevel))
}
