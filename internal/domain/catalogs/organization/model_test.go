package organization

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facture/internal/core/id"
)

func TestValidateRequiresBaseCurrency(t *testing.T) {
	org := NewOrganization("ORG-001", "Acme Consulting", id.Nil())

	err := org.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base currency")
}

func TestValidateOK(t *testing.T) {
	org := NewOrganization("ORG-001", "Acme Consulting", id.New())
	legal := "Acme Consulting LLC"
	org.LegalName = &legal

	assert.NoError(t, org.Validate(context.Background()))
}
