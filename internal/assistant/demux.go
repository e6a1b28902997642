package assistant

import (
	"context"
	"strings"
)

// demuxer splits an incremental delta stream into plain text and marker
// occurrences. The upstream chunks text arbitrarily, so a marker may arrive
// split across any number of deltas; the buffer carries the unfinished suffix
// from one delta to the next. All state is owned by a single request; the
// demuxer is never shared.
//
// Invariant: after feed returns, the buffer holds at most one dangling marker
// prefix. Complete markers are consumed (and their bytes dropped) the moment
// they close, so re-scans cannot double-count an occurrence.
type demuxer struct {
	res *resolver
	buf string

	suggestions []ProductSuggestion
	cart        []CartItem
}

func newDemuxer(res *resolver) *demuxer {
	return &demuxer{res: res}
}

// feed appends one delta and returns the text events it releases. Text ahead
// of a marker is released immediately; marker bytes are replaced with the
// resolver's replacement text.
func (d *demuxer) feed(ctx context.Context, delta string) []StreamEvent {
	d.buf += delta

	var events []StreamEvent
	for {
		start := strings.Index(d.buf, markerOpen)
		if start < 0 {
			// No opening delimiter. Hold back a trailing "[", it may be
			// the first half of one split across deltas.
			hold := 0
			if strings.HasSuffix(d.buf, "[") {
				hold = 1
			}
			if text := d.buf[:len(d.buf)-hold]; text != "" {
				events = append(events, TextEvent{Content: text})
			}
			d.buf = d.buf[len(d.buf)-hold:]
			return events
		}

		rel := strings.Index(d.buf[start:], markerClose)
		if rel < 0 {
			// Unmatched opener: release the text ahead of it, carry the
			// dangling suffix into the next delta.
			if start > 0 {
				events = append(events, TextEvent{Content: d.buf[:start]})
				d.buf = d.buf[start:]
			}
			return events
		}
		end := start + rel + len(markerClose)

		if start > 0 {
			events = append(events, TextEvent{Content: d.buf[:start]})
		}
		if text := d.consume(ctx, d.buf[start:end]); text != "" {
			events = append(events, TextEvent{Content: text})
		}
		d.buf = d.buf[end:]
	}
}

// consume resolves one complete marker occurrence, records its accumulator
// entry if any, and returns the replacement text.
func (d *demuxer) consume(ctx context.Context, captured string) string {
	replacement, suggestion, item := d.res.resolve(ctx, captured)
	if suggestion != nil {
		d.suggestions = append(d.suggestions, *suggestion)
	}
	if item != nil {
		d.cart = append(d.cart, *item)
	}
	return replacement
}

// finish runs at end of stream: one last marker pass (a marker can close on
// the final delta) and the remaining buffer released as plain text.
func (d *demuxer) finish(ctx context.Context) []StreamEvent {
	events := d.feed(ctx, "")
	if d.buf != "" {
		events = append(events, TextEvent{Content: d.buf})
		d.buf = ""
	}
	return events
}

// flush returns the batched structured events, each only when non-empty.
func (d *demuxer) flush() []StreamEvent {
	var events []StreamEvent
	if len(d.suggestions) > 0 {
		events = append(events, SuggestionsEvent{Suggestions: d.suggestions})
	}
	if len(d.cart) > 0 {
		events = append(events, CartAddEvent{Items: d.cart})
	}
	return events
}
