package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/freshline/concierge/internal/assistant"
)

type chatRequest struct {
	Message             string              `json:"message"`
	ConversationHistory []assistant.Message `json:"conversation_history"`
}

// chat handles POST /api/ai/chat. The assistant guarantees a well-formed
// response body even when the generation backend fails, so this handler
// always answers 200.
func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	resp := s.assistant.Chat(r.Context(), req.Message, req.ConversationHistory)
	writeJSON(w, http.StatusOK, resp)
}

// chatStream handles POST /api/ai/chat/stream as Server-Sent Events: one
// event per line, in exactly the order the assistant emitted them. Text
// arrives as it is generated; the structured suggestion/cart payloads arrive
// at stream completion. A client disconnect cancels the request context,
// which aborts the in-flight generation call.
func (s *Server) chatStream(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ev := range s.assistant.ChatStream(r.Context(), req.Message, req.ConversationHistory) {
		data, err := assistant.EncodeEvent(ev)
		if err != nil {
			s.logger.Error("event encoding failed", "error", err)
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}

// examplePrompts handles GET /api/ai/chat/suggestions, serving starter
// prompts for an empty chat box.
func (s *Server) examplePrompts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"suggestions": {
			"I need 5 pounds of chicken breast and a dozen eggs",
			"Can I get a case of olive oil and some garlic?",
			"I'm looking for pasta and tomato sauce for Italian night",
			"What dairy products do you have?",
			"I need supplies for a breakfast menu - eggs, bacon, and butter",
		},
	})
}
