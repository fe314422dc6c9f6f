package security

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facture/internal/core/apperror"
	appctx "facture/internal/core/context"
)

func TestNewRuleGuardRejectsBadExpressions(t *testing.T) {
	_, err := NewRuleGuard([]CommitRule{{Name: "broken", Expression: "totalAmount >"}})
	require.Error(t, err)

	_, err = NewRuleGuard([]CommitRule{{Name: "not-bool", Expression: "totalAmount + 1.0"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must return bool")
}

func TestRuleGuardAllowsWhenRulesPass(t *testing.T) {
	guard, err := NewRuleGuard([]CommitRule{
		{Name: "ceiling", Expression: `totalAmount < 10000.0`},
	})
	require.NoError(t, err)

	err = guard.Check(context.Background(), CommitInput{
		DocumentType: "Invoice",
		TotalAmount:  205,
		Currency:     "EUR",
		Date:         time.Now(),
	})
	assert.NoError(t, err)
}

func TestRuleGuardBlocksWithMessage(t *testing.T) {
	guard, err := NewRuleGuard([]CommitRule{
		{
			Name:       "ceiling",
			Expression: `totalAmount < 1000.0 || "admin" in roles`,
			Message:    "Invoices over 1000 need an admin",
		},
	})
	require.NoError(t, err)

	input := CommitInput{DocumentType: "Invoice", TotalAmount: 5000, Date: time.Now()}

	err = guard.Check(context.Background(), input)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeBusinessRule, appErr.Code)
	assert.Equal(t, "Invoices over 1000 need an admin", appErr.Message)

	// Same document passes for an admin.
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{Roles: []string{"admin"}})
	assert.NoError(t, guard.Check(ctx, input))
}

func TestRuleGuardEmptyIsOpen(t *testing.T) {
	guard, err := NewRuleGuard(nil)
	require.NoError(t, err)
	assert.NoError(t, guard.Check(context.Background(), CommitInput{}))
}
