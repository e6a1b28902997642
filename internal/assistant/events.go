package assistant

import (
	"encoding/json"
	"fmt"
)

// StreamEvent is the closed set of events a streaming chat produces. The
// transport encodes events through EncodeEvent's type switch, so an unhandled
// kind fails at compile time rather than on the wire.
type StreamEvent interface {
	streamEvent()
}

// TextEvent carries a span of assistant prose with marker syntax already
// replaced by resolved product names (or the captured text on a miss).
type TextEvent struct {
	Content string
}

// SuggestionsEvent carries every suggestion accumulated over the stream. It
// is emitted at most once, after the last text event.
type SuggestionsEvent struct {
	Suggestions []ProductSuggestion
}

// CartAddEvent carries every cart addition accumulated over the stream.
// Emitted at most once, and only if an add-to-cart marker resolved.
type CartAddEvent struct {
	Items []CartItem
}

// ErrorEvent is terminal apart from the Done that follows it.
type ErrorEvent struct {
	Message string
}

// DoneEvent unconditionally closes every stream.
type DoneEvent struct{}

func (TextEvent) streamEvent()        {}
func (SuggestionsEvent) streamEvent() {}
func (CartAddEvent) streamEvent()     {}
func (ErrorEvent) streamEvent()       {}
func (DoneEvent) streamEvent()        {}

// EncodeEvent serializes a StreamEvent into its wire envelope, one JSON
// object per event.
func EncodeEvent(ev StreamEvent) ([]byte, error) {
	switch e := ev.(type) {
	case TextEvent:
		return json.Marshal(struct {
			Type    string `json:"type"`
			Content string `json:"content"`
		}{"text", e.Content})
	case SuggestionsEvent:
		return json.Marshal(struct {
			Type        string              `json:"type"`
			Suggestions []ProductSuggestion `json:"suggestions"`
		}{"suggestions", e.Suggestions})
	case CartAddEvent:
		return json.Marshal(struct {
			Type  string     `json:"type"`
			Items []CartItem `json:"items"`
		}{"cart_add", e.Items})
	case ErrorEvent:
		return json.Marshal(struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}{"error", e.Message})
	case DoneEvent:
		return json.Marshal(struct {
			Type string `json:"type"`
		}{"done"})
	default:
		return nil, fmt.Errorf("unknown stream event %T", ev)
	}
}
