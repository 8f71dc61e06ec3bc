// ABOUTME: Cached category and map catalogs for filters and the upload form
// ABOUTME: Both lists are fetched concurrently and kept for a few minutes

package catalog

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/materialhub/materialhub-cli/internal/cache"
	"github.com/materialhub/materialhub-cli/internal/models"
)

// DefaultTTL is how long catalogs are reused before refetching
const DefaultTTL = 5 * time.Minute

// Source is the part of the materials API the catalog reads
type Source interface {
	Categories(ctx context.Context) ([]models.Category, error)
	Maps(ctx context.Context) ([]string, error)
}

// Catalog bundles the selectable categories and maps
type Catalog struct {
	Categories []models.Category
	Maps       []string
}

// Label returns the display label for a category value
func (c *Catalog) Label(value string) string {
	for _, cat := range c.Categories {
		if cat.Value == value {
			return cat.Label
		}
	}
	return value
}

// Loader fetches catalogs through a TTL cache
type Loader struct {
	src        Source
	categories *cache.Cache[[]models.Category]
	maps       *cache.Cache[[]string]
}

func NewLoader(src Source, ttl time.Duration) *Loader {
	return &Loader{
		src:        src,
		categories: cache.New[[]models.Category](ttl),
		maps:       cache.New[[]string](ttl),
	}
}

// Load returns both catalogs, fetching the missing ones in parallel
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	var out Catalog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cats, err := l.categories.GetOrLoad(gctx, "categories", l.src.Categories)
		out.Categories = cats
		return err
	})
	g.Go(func() error {
		maps, err := l.maps.GetOrLoad(gctx, "maps", l.src.Maps)
		out.Maps = maps
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// Invalidate drops cached catalogs, e.g. after an upload added a map
func (l *Loader) Invalidate() {
	l.categories.Clear("categories")
	l.maps.Clear("maps")
}

// Close stops the cache sweepers
func (l *Loader) Close() {
	l.categories.Close()
	l.maps.Close()
}
