package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/wiki-api-connector/app/mapper"
	"github.com/lysyi3m/wiki-api-connector/app/records"
	"github.com/lysyi3m/wiki-api-connector/app/unit"
)

// NewHandler returns the preview handler. cache may be nil when caching is
// disabled.
func NewHandler(registry *unit.Registry, catalog mapper.Catalog, cache CacheStatsInterface, version string) *Handler {
	return &Handler{
		registry: registry,
		catalog:  catalog,
		cache:    cache,
		version:  version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
		"units":     len(h.registry.Names()),
	}

	if h.cache != nil {
		if count, err := h.cache.Count(c.Request.Context()); err == nil {
			health["cached_responses"] = count
		}
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) ListUnits(c *gin.Context) {
	names := h.registry.Names()
	units := make([]map[string]interface{}, 0, len(names))

	for _, name := range names {
		u, err := h.registry.Get(name)
		if err != nil {
			continue
		}
		units = append(units, map[string]interface{}{
			"name":       u.Name,
			"template":   u.Template.Type,
			"fields":     len(u.Template.Fields),
			"statements": u.Wikibase != nil && len(u.Wikibase.Statements) > 0,
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"units": units,
		"total": len(units),
	})
}

func (h *Handler) GetUnit(c *gin.Context) {
	u, ok := h.unit(c)
	if !ok {
		return
	}

	fields := make([]string, 0, len(u.Template.Fields))
	for _, f := range u.Template.Fields {
		fields = append(fields, f.Name)
	}

	c.JSON(http.StatusOK, gin.H{
		"name":           u.Name,
		"template":       u.Template.Type,
		"filename_order": u.Template.FilenameOrder,
		"edit_summary":   u.Template.EditSummary,
		"fields":         fields,
	})
}

// GetRecords maps one identifier with a fresh mapper, so filenames are not
// deduplicated across requests.
func (h *Handler) GetRecords(c *gin.Context) {
	u, ok := h.unit(c)
	if !ok {
		return
	}
	identifier := c.Param("identifier")

	recs, err := mapper.New(h.catalog).Map(c.Request.Context(), u, identifier)
	if err != nil {
		slog.Error("Mapping failed", "unit", u.Name, "identifier", identifier, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Catalog lookup failed"})
		return
	}
	if recs == nil {
		recs = []records.Record{}
	}

	c.JSON(http.StatusOK, recs)
}

func (h *Handler) GetClaims(c *gin.Context) {
	u, ok := h.unit(c)
	if !ok {
		return
	}
	identifier := c.Param("identifier")

	claims, err := mapper.New(h.catalog).Claims(c.Request.Context(), u, identifier)
	if errors.Is(err, mapper.ErrNoStatements) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unit has no statements configured"})
		return
	}
	if err != nil {
		slog.Error("Claim mapping failed", "unit", u.Name, "identifier", identifier, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Catalog lookup failed"})
		return
	}
	if claims == nil {
		claims = []mapper.Claim{}
	}

	c.JSON(http.StatusOK, claims)
}

func (h *Handler) unit(c *gin.Context) (*unit.Unit, bool) {
	name := c.Param("name")
	u, err := h.registry.Get(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unit not found"})
		return nil, false
	}
	return u, true
}
