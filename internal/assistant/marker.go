package assistant

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
)

const (
	markerOpen  = "[["
	markerClose = "]]"

	kindSuggestion = "product"
	kindCartAdd    = "add-to-cart"

	// Streamed markers carry no model confidence, so resolved suggestions
	// get a fixed one. Synchronous mode uses the model's own confidence.
	markerConfidence = 0.9
)

type marker struct {
	kind string
	name string
	qty  int
}

// parseMarker parses one captured [[kind:name:qty]] occurrence. The quantity
// is the trailing run of decimal digits before the closing delimiter and the
// name is everything between the kind separator and that run, which keeps
// names containing colons or digits unambiguous.
func parseMarker(captured string) (marker, bool) {
	inner := strings.TrimSuffix(strings.TrimPrefix(captured, markerOpen), markerClose)

	kind, rest, found := strings.Cut(inner, ":")
	if !found {
		return marker{}, false
	}
	if kind != kindSuggestion && kind != kindCartAdd {
		return marker{}, false
	}

	i := len(rest)
	for i > 0 && rest[i-1] >= '0' && rest[i-1] <= '9' {
		i--
	}
	if i == len(rest) {
		return marker{}, false // no quantity
	}
	qty, err := strconv.Atoi(rest[i:])
	if err != nil {
		return marker{}, false
	}

	name, hadSep := strings.CutSuffix(rest[:i], ":")
	if !hadSep || name == "" {
		return marker{}, false
	}

	return marker{kind: kind, name: name, qty: qty}, true
}

// resolver matches marker names against the catalog. It owns no state; the
// demuxer owns the per-request accumulators.
type resolver struct {
	catalog Catalog
	logger  *slog.Logger
}

// resolve interprets one captured marker occurrence. It returns the text that
// replaces the marker in the output stream plus at most one accumulator
// entry. A malformed marker, a name with no catalog match, or a store failure
// all preserve the captured text (minus delimiters) and add nothing.
func (r *resolver) resolve(ctx context.Context, captured string) (string, *ProductSuggestion, *CartItem) {
	inner := strings.TrimSuffix(strings.TrimPrefix(captured, markerOpen), markerClose)

	m, ok := parseMarker(captured)
	if !ok {
		r.logger.Debug("malformed marker", "captured", captured)
		return inner, nil, nil
	}

	matches, err := r.catalog.SearchProductsByName(ctx, m.name)
	if err != nil {
		r.logger.Error("marker lookup failed", "name", m.name, "error", err)
		return inner, nil, nil
	}
	if len(matches) == 0 {
		r.logger.Debug("marker matched no product", "name", m.name)
		return inner, nil, nil
	}

	// Multiple matches resolve deterministically to the first in store order.
	product := matches[0]

	switch m.kind {
	case kindCartAdd:
		return product.Name, nil, &CartItem{Product: product, Quantity: float64(m.qty)}
	default:
		return product.Name, &ProductSuggestion{
			Product:           product,
			SuggestedQuantity: float64(m.qty),
			Confidence:        markerConfidence,
		}, nil
	}
}
