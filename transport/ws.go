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
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"trpc.group/trpc-go/trpc-agentrt-go/event"
	"trpc.group/trpc-go/trpc-agentrt-go/log"
	"trpc.group/trpc-go/trpc-agentrt-go/runner"
)

const (
	wsHeartbeatInterval = 10 * time.Second
	wsWriteWait         = 10 * time.Second
	wsSendBuffer        = 64
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  8192,
	WriteBufferSize: 8192,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// controlFrame is the app-level heartbeat: a bare {"type":"ping"} or
// {"type":"pong"}, distinguished from an AgentEvent frame by Type never
// matching an event.Type value.
type controlFrame struct {
	Type string `json:"type"`
}

// handleWS upgrades the connection and, once the first frame is a valid
// REQUEST AgentEvent, starts one task tree through the Orchestrator in
// mode, bound to the path's agent and context id.
func (s *Server) handleWS(mode runner.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		agentName := vars["agent"]
		contextID := vars["contextID"]

		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Errorf("transport: websocket upgrade failed: %v", err)
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		sess := &wsSession{
			orchestrator: s.orchestrator,
			agentName:    agentName,
			contextID:    contextID,
			mode:         mode,
			conn:         conn,
			send:         make(chan []byte, wsSendBuffer),
			ctx:          ctx,
			cancel:       cancel,
		}
		sess.run()
	}
}

// wsSession drives one upgraded connection: a read loop decoding client
// frames, a write loop draining outbound frames, and a ticker emitting the
// heartbeat ping.
type wsSession struct {
	orchestrator *runner.Orchestrator
	agentName    string
	contextID    string
	mode         runner.Mode

	conn   *websocket.Conn
	send   chan []byte
	ctx    context.Context
	cancel context.CancelFunc
}

func (s *wsSession) run() {
	defer s.close()
	go s.writeLoop()
	go s.pingLoop()
	s.readLoop()
}

func (s *wsSession) close() {
	s.cancel()
	close(s.send)
	_ = s.conn.Close()
}

// readLoop decodes every client frame: a control ping/pong, or (after the
// task has started) a further AgentEvent routed to the Orchestrator. The
// very first non-control frame must be a REQUEST AgentEvent that starts
// the task; anything else before that is dropped with a warning.
func (s *wsSession) readLoop() {
	started := false
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var ctrl controlFrame
		if err := json.Unmarshal(data, &ctrl); err == nil {
			switch ctrl.Type {
			case "ping":
				s.enqueue(controlFrame{Type: "pong"})
				continue
			case "pong":
				continue
			}
		}

		var evt event.Event
		if err := json.Unmarshal(data, &evt); err != nil {
			log.Warnf("transport: dropping malformed websocket frame for %s/%s: %v", s.agentName, s.contextID, err)
			continue
		}

		if !started {
			if evt.Type != event.TypeRequest {
				log.Warnf("transport: first frame on %s/%s was %q, want %q", s.agentName, s.contextID, evt.Type, event.TypeRequest)
				continue
			}
			if err := s.start(&evt); err != nil {
				log.Errorf("transport: start task %s/%s: %v", s.agentName, s.contextID, err)
				return
			}
			started = true
			continue
		}

		if err := s.orchestrator.SendEvent(s.ctx, &evt); err != nil {
			log.Errorf("transport: route websocket frame for %s/%s: %v", s.agentName, s.contextID, err)
		}
	}
}

func (s *wsSession) start(entry *event.Event) error {
	events, err := s.orchestrator.Run(s.ctx, s.agentName, entry, s.mode, s.contextID)
	if err != nil {
		return err
	}
	go s.pump(events)
	return nil
}

// pump forwards every merged event to the client until events closes or the
// session's context is cancelled.
func (s *wsSession) pump(events <-chan *event.Event) {
	for evt := range events {
		data, err := json.Marshal(evt)
		if err != nil {
			log.Errorf("transport: marshal event for %s/%s: %v", s.agentName, s.contextID, err)
			continue
		}
		if !s.enqueueRaw(data) {
			return
		}
	}
}

func (s *wsSession) writeLoop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case msg, ok := <-s.send:
			if !ok {
				return
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

func (s *wsSession) pingLoop() {
	ticker := time.NewTicker(wsHeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.enqueue(controlFrame{Type: "ping"})
		}
	}
}

func (s *wsSession) enqueue(v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return s.enqueueRaw(data)
}

func (s *wsSession) enqueueRaw(data []byte) bool {
	select {
	case s.send <- data:
		return true
	case <-s.ctx.Done():
		return false
	}
}
