package api

import (
	"context"

	"github.com/lysyi3m/wiki-api-connector/app/database"
	"github.com/lysyi3m/wiki-api-connector/app/mapper"
	"github.com/lysyi3m/wiki-api-connector/app/unit"
)

// CacheStatsInterface reports the size of the response cache.
type CacheStatsInterface interface {
	Count(ctx context.Context) (int, error)
}

var _ CacheStatsInterface = (*database.ResponseRepository)(nil)

type Handler struct {
	registry *unit.Registry
	catalog  mapper.Catalog
	cache    CacheStatsInterface
	version  string
}
