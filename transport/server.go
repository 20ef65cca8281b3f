//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.
// All rights reserved.
//
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the  Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.
//
//

// Package transport exposes an Orchestrator over HTTP: agent discovery, a
// liveness probe, and the multi/single WebSocket and SSE routes that start
// and feed one task tree per connection or request.
package transport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"trpc.group/trpc-go/trpc-agentrt-go/agent"
	"trpc.group/trpc-go/trpc-agentrt-go/log"
	"trpc.group/trpc-go/trpc-agentrt-go/runner"
)

// traceIDHeader propagates a caller-supplied correlation id into the
// request context, where TraceID reads it back; a UUID is synthesized when
// the header is absent.
const traceIDHeader = "Step-Trace-ID"

type traceIDKeyType struct{}

var traceIDKey traceIDKeyType

// TraceID extracts the Step-Trace-ID carried on ctx, or "" if none was set
// (ctx did not originate from a request the Server's middleware handled).
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}

// Server is the HTTP front door for one Registry/Orchestrator pair.
type Server struct {
	registry     *runner.Registry
	orchestrator *runner.Orchestrator
	router       *mux.Router
}

// New builds a Server whose agent discovery is backed by registry and
// whose WS/SSE routes start tasks through orchestrator. orchestrator must
// have been built from the same registry.
func New(registry *runner.Registry, orchestrator *runner.Orchestrator) *Server {
	s := &Server{
		registry:     registry,
		orchestrator: orchestrator,
		router:       mux.NewRouter(),
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type", traceIDHeader},
	})
	s.router.Use(c.Handler)
	s.router.Use(s.traceIDMiddleware)
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler serving every route this Server owns.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/agents", s.handleAgents).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	s.router.HandleFunc("/multi/ws/{agent}/{contextID}", s.handleWS(runner.ModeMulti)).Methods(http.MethodGet)
	s.router.HandleFunc("/single/ws/{agent}/{contextID}", s.handleWS(runner.ModeSingle)).Methods(http.MethodGet)

	s.router.HandleFunc("/multi/sse/{agent}/{contextID}", s.handleSSE(runner.ModeMulti)).Methods(http.MethodPost)
	s.router.HandleFunc("/single/sse/{agent}/{contextID}", s.handleSSE(runner.ModeSingle)).Methods(http.MethodPost)

	preflight := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
	for _, path := range []string{
		"/agents", "/health",
		"/multi/ws/{agent}/{contextID}", "/single/ws/{agent}/{contextID}",
		"/multi/sse/{agent}/{contextID}", "/single/sse/{agent}/{contextID}",
	} {
		s.router.HandleFunc(path, preflight).Methods(http.MethodOptions)
	}
}

func (s *Server) traceIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(traceIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(traceIDHeader, id)
		ctx := context.WithValue(r.Context(), traceIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// handleAgents lists every registered agent's Info. Each factory is
// instantiated transiently (and discarded) to read it, since Registry only
// indexes factories, not constructed agents.
func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	log.Infof("[%s] handleAgents called: path=%s", TraceID(r.Context()), r.URL.Path)
	names := s.registry.List()
	infos := make([]agent.Info, 0, len(names))
	for _, name := range names {
		factory, err := s.registry.Get(name)
		if err != nil {
			continue
		}
		infos = append(infos, factory().Info())
	}
	s.writeJSON(w, infos)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
