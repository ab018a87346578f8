package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hupe1980/winemesh/assembler"
)

// writeSSE writes one event in SSE format and flushes it.
func writeSSE(w http.ResponseWriter, flusher http.Flusher, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("serialize %s event: %w", event, err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return fmt.Errorf("write %s event: %w", event, err)
	}
	flusher.Flush()
	return nil
}

// handleChatStream streams chunk events followed by a done event, or an
// error event when the turn fails after the stream has started.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if s.opts.Chat == nil {
		s.fail(w, r, errUnavailable)
		return
	}
	req, err := s.chatRequest(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal_error", "streaming not supported")
		return
	}

	started := false
	begin := func() {
		if started {
			return
		}
		started = true
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
	}

	chunks := 0
	resp, err := s.opts.Chat.ReplyStream(r.Context(), req, func(c assembler.Chunk) error {
		begin()
		chunks++
		return writeSSE(w, flusher, "chunk", c)
	})
	if err != nil {
		if !started {
			s.fail(w, r, err)
			return
		}
		status, code := mapError(err)
		s.logger.Error("http.stream.failed", "status", status, "chunks", chunks, "error", err)
		_ = writeSSE(w, flusher, "error", errorDetail{Code: code, Message: err.Error()})
		return
	}

	begin()
	_ = writeSSE(w, flusher, "done", resp)
	s.logger.Info("http.stream.completed", "agent", resp.Agent, "chunks", chunks, "duration_ms", time.Since(start).Milliseconds())
}
