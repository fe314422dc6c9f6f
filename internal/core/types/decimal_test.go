package types

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeAmount(t *testing.T) {
	assert.True(t, SanitizeAmount(math.NaN()).IsZero())
	assert.True(t, SanitizeAmount(math.Inf(1)).IsZero())
	assert.True(t, SanitizeAmount(math.Inf(-1)).IsZero())
	assert.True(t, SanitizeAmount(-5.5).IsZero())
	assert.True(t, SanitizeAmount(12.34).Equal(decimal.NewFromFloat(12.34)))
}

func TestClampPercent(t *testing.T) {
	assert.True(t, ClampPercent(MustMoney("150")).Equal(decimal.NewFromInt(100)))
	assert.True(t, ClampPercent(MustMoney("-3")).IsZero())
	assert.True(t, ClampPercent(MustMoney("17.5")).Equal(MustMoney("17.5")))
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, "10.35", RoundMoney(MustMoney("10.345")).StringFixed(2))
	assert.Equal(t, "10.34", RoundMoney(MustMoney("10.344")).StringFixed(2))
}
