package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/winemesh/auth"
	"github.com/hupe1980/winemesh/chat"
	"github.com/hupe1980/winemesh/core"
	"github.com/hupe1980/winemesh/wine"
)

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"res":     "pong",
		"version": s.opts.Version,
		"time":    float64(time.Now().UnixMicro()) / 1e6,
	})
}

func (s *Server) handleSayHi(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "query parameter name is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Hi, %s!", name)})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.opts.Ready != nil {
		if err := s.opts.Ready(r.Context()); err != nil {
			s.logger.Warn("http.not_ready", "error", err)
			writeError(w, http.StatusServiceUnavailable, "unavailable", err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleProtected(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "This is a protected endpoint and you reached it!",
		"user_data": claims,
	})
}

type chatRequest struct {
	Message string         `json:"message"`
	UserID  int64          `json:"user_id"`
	Agent   string         `json:"agent,omitempty"`
	History []core.Message `json:"history,omitempty"`
}

func (s *Server) chatRequest(r *http.Request) (chat.Request, error) {
	var in chatRequest
	if err := decode(r, &in); err != nil {
		return chat.Request{}, err
	}
	userID, err := callerUserID(r, in.UserID)
	if err != nil {
		return chat.Request{}, err
	}
	in.UserID = userID
	return chat.Request(in), nil
}

// callerUserID resolves the user a request acts for. A user id in the token
// wins; a different requested id is rejected. Tokens without one accept the
// requested id as is.
func callerUserID(r *http.Request, requested int64) (int64, error) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		return requested, nil
	}
	own, ok := claims.UserID()
	if !ok {
		return requested, nil
	}
	if requested != 0 && requested != own {
		return 0, errForbidden
	}
	return own, nil
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.opts.Chat == nil {
		s.fail(w, r, errUnavailable)
		return
	}
	req, err := s.chatRequest(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp, err := s.opts.Chat.Reply(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type summaryRequest struct {
	Name     string `json:"wine_name"`
	Producer string `json:"wine_producer"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if s.opts.Summary == nil {
		s.fail(w, r, errUnavailable)
		return
	}
	var in summaryRequest
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	text, err := s.opts.Summary.Summarize(r.Context(), in.Name, in.Producer)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": text})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.opts.Collections == nil {
		s.fail(w, r, errUnavailable)
		return
	}
	userID, err := strconv.ParseInt(r.PathValue("userID"), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "userID must be a positive integer")
		return
	}
	if userID, err = callerUserID(r, userID); err != nil {
		s.fail(w, r, err)
		return
	}
	records, err := s.opts.Collections.Collection(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	stats, err := wine.Analyze(records)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type sqlExecuteRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleSQLExecute(w http.ResponseWriter, r *http.Request) {
	if s.opts.SQL == nil {
		s.fail(w, r, errUnavailable)
		return
	}
	var in sqlExecuteRequest
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.opts.SQL.Execute(r.Context(), in.Query)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": rows})
}

type sqlGenerateRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleSQLGenerate(w http.ResponseWriter, r *http.Request) {
	if s.opts.SQLGen == nil {
		s.fail(w, r, errUnavailable)
		return
	}
	var in sqlGenerateRequest
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.opts.SQLGen.Generate(r.Context(), strings.TrimSpace(in.Question))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
