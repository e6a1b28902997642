// Package assistant implements the conversational ordering pipeline: prompt
// assembly with a cached catalog context, synchronous and streaming chat
// against a generation backend, and marker-aware demultiplexing of the
// streamed reply into typed events.
package assistant

import (
	"context"
	"time"

	"github.com/freshline/concierge/internal/store"
)

// Message is one turn of a conversation. History is append-only and
// immutable once sent to the backend.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ProductSuggestion is a passive recommendation surfaced to the client. It
// never mutates the cart.
type ProductSuggestion struct {
	Product           store.Product `json:"product"`
	SuggestedQuantity float64       `json:"suggested_quantity"`
	Confidence        float64       `json:"confidence"`
}

// CartItem is a resolved instruction to add a product to the in-progress
// order. Only markers explicitly tagged add-to-cart produce these.
type CartItem struct {
	Product  store.Product `json:"product"`
	Quantity float64       `json:"quantity"`
}

// ChatResponse is the synchronous-mode result. It is always well-formed:
// backend failures are converted into a clarification fallback, never
// propagated raw.
type ChatResponse struct {
	Message               string              `json:"message"`
	Suggestions           []ProductSuggestion `json:"suggestions"`
	NeedsClarification    bool                `json:"needs_clarification"`
	ClarificationQuestion string              `json:"clarification_question,omitempty"`
	Error                 string              `json:"error,omitempty"`
}

// Generator is the narrow port to the text-generation backend. Both methods
// take the fully-assembled system prompt; the assistant owns prompt assembly.
// Stream returns a delta channel that closes at end of stream, then a single
// value (nil on success) on the error channel.
type Generator interface {
	Complete(ctx context.Context, system string, history []Message, userMessage string) (string, error)
	Stream(ctx context.Context, system string, history []Message, userMessage string) (<-chan string, <-chan error)
}

// Catalog is the read-only product store contract. Both methods return
// products in the store's stable iteration order.
type Catalog interface {
	ListProducts(ctx context.Context) ([]store.Product, error)
	SearchProductsByName(ctx context.Context, term string) ([]store.Product, error)
}

// Cache is the best-effort TTL cache contract. Implementations must degrade
// silently: a miss and an outage are indistinguishable to callers.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool
}
