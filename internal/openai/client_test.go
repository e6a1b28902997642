package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/freshline/concierge/internal/assistant"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func completionBody(content string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "test-model",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	}
}

func TestComplete_Success(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionBody(`{"message":"hi"}`))
	}))
	defer server.Close()

	c := NewClient("test-key", server.URL, "test-model", time.Minute, discardLogger())

	history := []assistant.Message{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}
	raw, err := c.Complete(context.Background(), "system text", history, "latest question")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw != `{"message":"hi"}` {
		t.Errorf("unexpected content %q", raw)
	}

	// system + two history turns + latest user message, in order
	messages := gotBody["messages"].([]any)
	if len(messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(messages))
	}
	first := messages[0].(map[string]any)
	last := messages[3].(map[string]any)
	if first["role"] != "system" {
		t.Errorf("expected leading system message, got %v", first["role"])
	}
	if last["role"] != "user" || last["content"] != "latest question" {
		t.Errorf("unexpected final message %v", last)
	}
	if _, ok := gotBody["response_format"]; !ok {
		t.Error("expected json response_format in request")
	}
}

func TestComplete_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad request"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewClient("test-key", server.URL, "test-model", time.Minute, discardLogger())

	if _, err := c.Complete(context.Background(), "system", nil, "hello"); err == nil {
		t.Fatal("expected error on non-success status")
	}
}

func TestComplete_Timeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	c := NewClient("test-key", server.URL, "test-model", 50*time.Millisecond, discardLogger())

	if _, err := c.Complete(context.Background(), "system", nil, "hello"); err == nil {
		t.Fatal("expected timeout error")
	}
}

func sseChunk(content string) string {
	chunk := map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion.chunk",
		"model":  "test-model",
		"choices": []map[string]any{
			{"index": 0, "delta": map[string]any{"content": content}},
		},
	}
	data, _ := json.Marshal(chunk)
	return fmt.Sprintf("data: %s\n\n", data)
}

func TestStream_Deltas(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, sseChunk("Hello"))
		io.WriteString(w, sseChunk(" world"))
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	c := NewClient("test-key", server.URL, "test-model", time.Minute, discardLogger())

	deltas, errs := c.Stream(context.Background(), "system", nil, "hello")

	var got string
	for d := range deltas {
		got += d
	}
	if err := <-errs; err != nil {
		t.Fatalf("unexpected stream error: %v", err)
	}
	if got != "Hello world" {
		t.Errorf("unexpected deltas %q", got)
	}
}

func TestStream_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad request"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewClient("test-key", server.URL, "test-model", time.Minute, discardLogger())

	deltas, errs := c.Stream(context.Background(), "system", nil, "hello")
	for range deltas {
	}
	if err := <-errs; err == nil {
		t.Fatal("expected terminal stream error")
	}
}

func TestStream_Cancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, sseChunk("Hello"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	c := NewClient("test-key", server.URL, "test-model", time.Minute, discardLogger())

	deltas, errs := c.Stream(ctx, "system", nil, "hello")
	<-deltas
	cancel()

	for range deltas {
	}
	if err := <-errs; err == nil {
		t.Fatal("expected cancellation to surface as stream error")
	}
}
