package assistant

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/kaptinlin/jsonrepair"
)

// Assistant runs chat requests against the generation backend and the
// catalog. Safe for concurrent use: per-request state lives on the stack of
// each call, only the catalog store and cache are shared.
type Assistant struct {
	gen      Generator
	catalog  Catalog
	contextB *ContextBuilder
	logger   *slog.Logger
}

func New(gen Generator, catalog Catalog, cache Cache, logger *slog.Logger) *Assistant {
	return &Assistant{
		gen:      gen,
		catalog:  catalog,
		contextB: NewContextBuilder(catalog, cache, logger),
		logger:   logger,
	}
}

// completionPayload is the JSON contract the synchronous system prompt asks
// the backend to honor.
type completionPayload struct {
	Message         string         `json:"message"`
	ProductMatches  []productMatch `json:"product_matches"`
	NeedsClarify    bool           `json:"needs_clarification"`
	ClarifyQuestion string         `json:"clarification_question"`
}

type productMatch struct {
	SearchTerm        string  `json:"search_term"`
	SuggestedQuantity float64 `json:"suggested_quantity"`
	Confidence        float64 `json:"confidence"`
}

// Chat handles one synchronous request. The result is always well-formed: a
// backend transport failure or an unparseable payload yields the
// clarification fallback rather than an error.
func (a *Assistant) Chat(ctx context.Context, userMessage string, history []Message) ChatResponse {
	system := systemPrompt + "\n\n" + a.contextB.Build(ctx)

	raw, err := a.gen.Complete(ctx, system, history, userMessage)
	if err != nil {
		a.logger.Error("generation call failed", "error", err)
		return fallbackResponse(err)
	}

	var payload completionPayload
	if err := unmarshalLLM([]byte(raw), &payload); err != nil {
		a.logger.Error("unparseable generation payload", "error", err, "raw", raw)
		return fallbackResponse(err)
	}

	resp := ChatResponse{
		Message:               payload.Message,
		Suggestions:           []ProductSuggestion{},
		NeedsClarification:    payload.NeedsClarify,
		ClarificationQuestion: payload.ClarifyQuestion,
	}
	if resp.Message == "" {
		resp.Message = "I found some products for you."
	}

	for _, match := range payload.ProductMatches {
		if match.SearchTerm == "" {
			continue
		}
		products, err := a.catalog.SearchProductsByName(ctx, match.SearchTerm)
		if err != nil {
			a.logger.Error("catalog search failed", "term", match.SearchTerm, "error", err)
			continue
		}
		// Top 3 matches per search term.
		if len(products) > 3 {
			products = products[:3]
		}
		for _, p := range products {
			qty := match.SuggestedQuantity
			if qty <= 0 {
				qty = 1
			}
			confidence := match.Confidence
			if confidence <= 0 {
				confidence = 0.8
			}
			resp.Suggestions = append(resp.Suggestions, ProductSuggestion{
				Product:           p,
				SuggestedQuantity: qty,
				Confidence:        confidence,
			})
		}
	}

	return resp
}

// ChatStream handles one streaming request. The returned channel carries the
// full event sequence and closes after DoneEvent. A cancelled context stops
// the stream early and discards any unflushed accumulators; the channel
// closes without a terminal Done.
func (a *Assistant) ChatStream(ctx context.Context, userMessage string, history []Message) <-chan StreamEvent {
	out := make(chan StreamEvent, 16)

	go func() {
		defer close(out)

		system := streamSystemPrompt + "\n\n" + a.contextB.Build(ctx)
		deltas, errs := a.gen.Stream(ctx, system, history, userMessage)

		d := newDemuxer(&resolver{catalog: a.catalog, logger: a.logger})

		for delta := range deltas {
			for _, ev := range d.feed(ctx, delta) {
				if !send(ctx, out, ev) {
					return
				}
			}
		}

		if err := <-errs; err != nil {
			a.logger.Error("stream generation failed", "error", err)
			send(ctx, out, ErrorEvent{Message: fallbackMessage})
			send(ctx, out, DoneEvent{})
			return
		}

		for _, ev := range d.finish(ctx) {
			if !send(ctx, out, ev) {
				return
			}
		}
		for _, ev := range d.flush() {
			if !send(ctx, out, ev) {
				return
			}
		}
		send(ctx, out, DoneEvent{})
	}()

	return out
}

func send(ctx context.Context, out chan<- StreamEvent, ev StreamEvent) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func fallbackResponse(err error) ChatResponse {
	return ChatResponse{
		Message:            fallbackMessage,
		Suggestions:        []ProductSuggestion{},
		NeedsClarification: true,
		Error:              err.Error(),
	}
}

// unmarshalLLM parses model-produced JSON, repairing minor syntax damage
// (trailing commas, unquoted keys) before giving up.
func unmarshalLLM(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	if _, ok := err.(*json.SyntaxError); ok {
		fixed, repairErr := jsonrepair.JSONRepair(string(data))
		if repairErr != nil {
			return err
		}
		return json.Unmarshal([]byte(fixed), v)
	}
	return err
}
