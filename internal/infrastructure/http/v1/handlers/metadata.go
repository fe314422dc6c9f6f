package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"facture/internal/core/security"
	"facture/internal/infrastructure/cache"
	"facture/internal/metadata"
)

type MetadataHandler struct {
	registry *metadata.Registry
}

func NewMetadataHandler(registry *metadata.Registry) *MetadataHandler {
	return &MetadataHandler{
		registry: registry,
	}
}

// ListEntities returns a list of all registered entities (summarized).
// GET /api/v1/meta
func (h *MetadataHandler) ListEntities(c *gin.Context) {
	// We might want to return a simplified list (names/types/labels) only,
	// but for now returning full definitions is fine for MVP.
	entities := h.registry.List()
	c.JSON(http.StatusOK, entities)
}

// FeatureFlagsHandler returns the current state of known feature flags.
// GET /api/v1/meta/feature-flags
func FeatureFlagsHandler(flags security.FeatureFlagProvider) gin.HandlerFunc {
	known := []string{
		security.FlagAutoFXConversion,
		security.FlagAsyncCommit,
		security.FlagAdvancedReports,
		security.FlagBetaUI,
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		result := make(map[string]any, len(known))
		for _, flag := range known {
			entry := gin.H{"enabled": flags.IsEnabled(ctx, flag)}
			if variant := flags.GetVariant(ctx, flag); variant != "" {
				entry["variant"] = variant
			}
			result[flag] = entry
		}

		c.JSON(http.StatusOK, result)
	}
}

// CustomFieldsHandler returns the admin-defined custom field schemas
// for an entity type, served from the schema cache.
// GET /api/v1/meta/custom-fields/:entityType
func CustomFieldsHandler(schemaCache *cache.SchemaCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		entityType := c.Param("entityType")

		fields := schemaCache.GetCustomFields(entityType)
		items := make([]gin.H, len(fields))
		for i, f := range fields {
			item := gin.H{
				"fieldName":   f.FieldName,
				"fieldType":   f.FieldType,
				"displayName": f.DisplayName,
				"isRequired":  f.IsRequired,
				"sortOrder":   f.SortOrder,
			}
			if f.Description != "" {
				item["description"] = f.Description
			}
			if f.DefaultValue != nil {
				item["defaultValue"] = f.DefaultValue
			}
			if len(f.EnumValues) > 0 {
				item["enumValues"] = f.EnumValues
			}
			if f.ReferenceType != "" {
				item["referenceType"] = f.ReferenceType
			}
			items[i] = item
		}

		c.JSON(http.StatusOK, gin.H{
			"entityType": entityType,
			"fields":     items,
		})
	}
}

// GetEntity returns the full metadata for a specific entity.
// GET /api/v1/meta/:name
func (h *MetadataHandler) GetEntity(c *gin.Context) {
	name := c.Param("name")
	if def, ok := h.registry.Get(name); ok {
		c.JSON(http.StatusOK, def)
	} else {
		c.Status(http.StatusNotFound)
	}
}
