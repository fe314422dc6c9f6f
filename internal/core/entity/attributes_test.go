package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributesScanPreservesDecimalPrecision(t *testing.T) {
	var a Attributes
	require.NoError(t, a.Scan([]byte(`{"creditLimit": 12345.6789012345678901, "netDays": 30, "vip": true, "segment": "enterprise"}`)))

	// float64 round-trips would lose the tail digits
	want := decimal.RequireFromString("12345.6789012345678901")
	assert.True(t, want.Equal(a.GetDecimal("creditLimit")))

	assert.Equal(t, int64(30), a.GetInt("netDays"))
	assert.True(t, a.GetBool("vip"))
	assert.Equal(t, "enterprise", a.GetString("segment"))
}

func TestAttributesScanNil(t *testing.T) {
	a := Attributes{"k": "v"}
	require.NoError(t, a.Scan(nil))
	assert.Nil(t, a)
	assert.False(t, a.Has("k"))

	// Accessors are nil-safe
	assert.Equal(t, "", a.GetString("k"))
	assert.True(t, a.GetDecimal("k").IsZero())
}

func TestAttributesSetAndValue(t *testing.T) {
	var a Attributes
	a.Set("poNumber", "PO-4711")
	a.Set("netDays", 45)

	assert.Equal(t, "PO-4711", a.GetString("poNumber"))

	v, err := a.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"poNumber":"PO-4711","netDays":45}`, string(v.([]byte)))
}
