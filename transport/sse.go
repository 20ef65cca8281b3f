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

package transport

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"trpc.group/trpc-go/trpc-agentrt-go/event"
	"trpc.group/trpc-go/trpc-agentrt-go/log"
	"trpc.group/trpc-go/trpc-agentrt-go/runner"
)

// handleSSE decodes one AgentEvent from the request body, starts the task
// through the Orchestrator in mode, and streams the merged event channel
// back as one `data: <json>\n\n` line per event.
func (s *Server) handleSSE(mode runner.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		agentName := vars["agent"]
		contextID := vars["contextID"]

		var entry event.Event
		if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if entry.Type != event.TypeRequest {
			http.Error(w, fmt.Sprintf("body must be a %q AgentEvent", event.TypeRequest), http.StatusBadRequest)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		events, err := s.orchestrator.Run(r.Context(), agentName, &entry, mode, contextID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		for evt := range events {
			data, err := json.Marshal(evt)
			if err != nil {
				log.Errorf("transport: marshal SSE event for %s/%s: %v", agentName, contextID, err)
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
