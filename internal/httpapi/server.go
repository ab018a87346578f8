// Package httpapi exposes the wine assistant over HTTP.
package httpapi

import (
	"context"
	"net/http"

	"github.com/hupe1980/winemesh/assembler"
	"github.com/hupe1980/winemesh/auth"
	"github.com/hupe1980/winemesh/chat"
	"github.com/hupe1980/winemesh/logging"
	"github.com/hupe1980/winemesh/sqlgen"
	"github.com/hupe1980/winemesh/wine"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

// ChatService answers chat messages.
type ChatService interface {
	Reply(ctx context.Context, req chat.Request) (*chat.Response, error)
	ReplyStream(ctx context.Context, req chat.Request, emit func(assembler.Chunk) error) (*chat.Response, error)
}

// Summarizer writes wine summaries.
type Summarizer interface {
	Summarize(ctx context.Context, name, producer string) (string, error)
}

// SQLGenerator turns questions into SQL.
type SQLGenerator interface {
	Generate(ctx context.Context, question string) (*sqlgen.Result, error)
}

// SQLExecutor runs raw SQL.
type SQLExecutor interface {
	Execute(ctx context.Context, query string) ([]map[string]any, error)
}

// CollectionSource loads a user's wines.
type CollectionSource interface {
	Collection(ctx context.Context, userID int64) ([]wine.Record, error)
}

// Options wire the server's dependencies. Nil services answer 503.
type Options struct {
	Chat        ChatService
	Summary     Summarizer
	SQLGen      SQLGenerator
	SQL         SQLExecutor
	Collections CollectionSource
	Verifier    *auth.Verifier
	// Ready reports whether backing services are reachable.
	Ready       func(ctx context.Context) error
	CORSOrigins []string
	Version     string
	Logger      logging.Logger
}

// Server routes requests to the services.
type Server struct {
	opts    Options
	logger  logging.Logger
	handler http.Handler
}

// New creates a Server.
func New(optFns ...func(o *Options)) *Server {
	opts := Options{
		Version: "dev",
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{opts: opts, logger: opts.Logger}
	s.handler = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /ping", s.handlePing)
	mux.HandleFunc("GET /sayhi", s.handleSayHi)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("POST /summary", s.handleSummary)

	mux.Handle("GET /protected-endpoint", s.protect(s.handleProtected))
	mux.Handle("POST /chat", s.protect(s.handleChat))
	mux.Handle("POST /chat/stream", s.protect(s.handleChatStream))
	mux.Handle("GET /collection/{userID}/analysis", s.protect(s.handleAnalysis))
	mux.Handle("POST /sql/execute", s.protect(s.handleSQLExecute))
	mux.Handle("POST /sql/generate", s.protect(s.handleSQLGenerate))

	var h http.Handler = mux
	h = limitBody(h, MaxBodyBytes)
	h = cors(h, s.opts.CORSOrigins)
	h = s.logRequests(h)
	h = s.recoverPanics(h)
	return h
}

func (s *Server) protect(fn http.HandlerFunc) http.Handler {
	if s.opts.Verifier == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusServiceUnavailable, "unavailable", "authentication is not configured")
		})
	}
	return s.opts.Verifier.Middleware(fn)
}
