package assistant

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

const (
	catalogContextKey = "ai:catalog_context"
	catalogContextTTL = 5 * time.Minute
)

// ContextBuilder renders the product catalog as prompt text, one line per
// product, cached under a short TTL so each chat request does not re-read the
// whole catalog.
type ContextBuilder struct {
	catalog Catalog
	cache   Cache
	logger  *slog.Logger
}

func NewContextBuilder(catalog Catalog, cache Cache, logger *slog.Logger) *ContextBuilder {
	return &ContextBuilder{catalog: catalog, cache: cache, logger: logger}
}

// Build returns the catalog context text. It never fails: a cache outage
// falls through to a direct store read, and a store failure degrades to an
// empty context so chat keeps working without catalog grounding.
func (b *ContextBuilder) Build(ctx context.Context) string {
	if b.cache != nil {
		if cached, ok := b.cache.Get(ctx, catalogContextKey); ok {
			return string(cached)
		}
	}

	products, err := b.catalog.ListProducts(ctx)
	if err != nil {
		b.logger.Error("catalog read failed, chatting without catalog context", "error", err)
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Available products:")
	for _, p := range products {
		sb.WriteString("\n- ")
		sb.WriteString(p.Name)
		sb.WriteString(" (")
		sb.WriteString(p.Category)
		sb.WriteString("/")
		sb.WriteString(p.Subcategory)
		sb.WriteString("): $")
		sb.WriteString(strconv.FormatFloat(p.Price, 'g', -1, 64))
		sb.WriteString("/")
		sb.WriteString(p.Unit)
	}
	result := sb.String()

	if b.cache != nil {
		b.cache.Set(ctx, catalogContextKey, []byte(result), catalogContextTTL)
	}
	return result
}
