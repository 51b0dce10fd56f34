package service

import (
	"context"
	"fmt"
	"log"

	"pokeguess/internal/cache"
)

// NameLister lists catalog subject names
type NameLister interface {
	ListNames(ctx context.Context, limit int) ([]string, error)
}

// CatalogService serves the subject name list used for guess autocomplete
type CatalogService struct {
	lister NameLister
	cache  cache.CatalogCache
	limit  int
}

// NewCatalogService creates a new catalog service listing ids up to limit
func NewCatalogService(lister NameLister, catalogCache cache.CatalogCache, limit int) *CatalogService {
	return &CatalogService{
		lister: lister,
		cache:  catalogCache,
		limit:  limit,
	}
}

// Names returns the cached name list, loading it from the catalog on a miss
func (s *CatalogService) Names(ctx context.Context) ([]string, error) {
	names, err := s.cache.GetNames(ctx)
	if err != nil {
		log.Printf("[Catalog] Warning: name cache read failed: %v", err)
	}
	if len(names) > 0 {
		return names, nil
	}

	names, err = s.lister.ListNames(ctx, s.limit)
	if err != nil {
		return nil, fmt.Errorf("load names: %w", err)
	}
	if err := s.cache.SetNames(ctx, names); err != nil {
		log.Printf("[Catalog] Warning: name cache write failed: %v", err)
	}
	return names, nil
}
