package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryFlagsDefaults(t *testing.T) {
	ctx := context.Background()
	flags := NewInMemoryFlags()

	// Unset flags read as disabled with no variant.
	assert.False(t, flags.IsEnabled(ctx, FlagAutoFXConversion))
	assert.Empty(t, flags.GetVariant(ctx, FlagBetaUI))
	assert.Nil(t, flags.GetValue(ctx, FlagAdvancedReports))
}

func TestInMemoryFlagsSetAndRead(t *testing.T) {
	ctx := context.Background()
	flags := NewInMemoryFlags()

	flags.SetFlag(FlagAsyncCommit, true)
	flags.SetVariant(FlagBetaUI, "compact")
	flags.SetValue(FlagAdvancedReports, map[string]any{"maxRows": 500})

	assert.True(t, flags.IsEnabled(ctx, FlagAsyncCommit))
	assert.Equal(t, "compact", flags.GetVariant(ctx, FlagBetaUI))
	assert.Equal(t, map[string]any{"maxRows": 500}, flags.GetValue(ctx, FlagAdvancedReports))

	flags.SetFlag(FlagAsyncCommit, false)
	assert.False(t, flags.IsEnabled(ctx, FlagAsyncCommit))
}
