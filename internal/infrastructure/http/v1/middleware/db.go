package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"facture/internal/core/dbctx"
	"facture/internal/infrastructure/storage/postgres"
)

// Database middleware injects the connection pool and a TxManager into
// the request context. This middleware MUST run before any database
// operations: repositories resolve both from the context.
func Database(pool *pgxpool.Pool) gin.HandlerFunc {
	txManager := postgres.NewTxManagerFromRawPool(pool)

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		ctx = dbctx.WithPool(ctx, pool)
		ctx = dbctx.WithTxManager(ctx, txManager)

		c.Request = c.Request.WithContext(ctx)

		// Also set in Gin context for handlers that use c.Get()
		c.Set("tx_manager", txManager)

		c.Next()
	}
}

// GetTxManagerFromContext retrieves TxManager from Gin context.
// Returns nil if not found. Use this in handlers.
func GetTxManagerFromContext(c *gin.Context) *postgres.TxManager {
	if v, exists := c.Get("tx_manager"); exists {
		if txm, ok := v.(*postgres.TxManager); ok {
			return txm
		}
	}
	return nil
}
