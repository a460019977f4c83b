package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/teranos/eavto/logger"
	"github.com/teranos/eavto/version"
)

// HandleWebSocket upgrades the connection and starts the client pumps.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.State() != ServerStateRunning {
		s.writeErr(w, r, errDraining)
		return
	}
	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnw("WebSocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	client := newClient(s, conn, fmt.Sprintf("%s_%d", r.RemoteAddr, time.Now().UnixNano()))

	// Send hello BEFORE starting writePump (avoid concurrent writes)
	info := version.Get()
	hello, _ := json.Marshal(map[string]interface{}{
		"version":    info.Version,
		"commit":     info.Short(),
		"schema":     info.Schema,
		"generation": s.svc.Store().Generation(),
	})
	if err := conn.WriteJSON(&ServerMessage{Type: MsgHello, Data: hello}); err != nil {
		s.logger.Debugw("Failed to send hello", "client_id", client.id, "error", err)
		conn.Close()
		return
	}

	select {
	case s.register <- client:
	case <-s.ctx.Done():
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// HandleHealth reports liveness and the store generation.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if s.State() != ServerStateRunning {
		status = stateString(s.State())
		code = http.StatusServiceUnavailable
	}
	_ = writeJSON(w, code, HealthResponse{
		Status:     status,
		Version:    version.Get().Version,
		Generation: s.svc.Store().Generation(),
		Clients:    s.ClientCount(),
	})
}

// HandleResolve serves GET /api/resolve?id=.
func (s *Server) HandleResolve(w http.ResponseWriter, r *http.Request) {
	id, ok := requireParam(w, r, "id")
	if !ok {
		return
	}
	view, err := s.svc.ResolveEntity(requestContext(r), id)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, view)
}

// HandleSearch serves GET /api/search?q=&limit=.
func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q, ok := requireParam(w, r, "q")
	if !ok {
		return
	}
	limit, err := intParam(r, "limit")
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	res, err := s.svc.Search(requestContext(r), q, limit)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, res)
}

// HandleIcon serves GET /api/icon?id=.
func (s *Server) HandleIcon(w http.ResponseWriter, r *http.Request) {
	id, ok := requireParam(w, r, "id")
	if !ok {
		return
	}
	res, err := s.svc.GetIcon(requestContext(r), id)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, res)
}

// HandleBacklinks serves GET /api/backlinks?id=.
func (s *Server) HandleBacklinks(w http.ResponseWriter, r *http.Request) {
	id, ok := requireParam(w, r, "id")
	if !ok {
		return
	}
	links, err := s.svc.ListBacklinks(requestContext(r), id)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":        id,
		"backlinks": links,
	})
}

// HandleStats serves GET /api/stats.
func (s *Server) HandleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Stats(requestContext(r))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, st)
}

// HandleIngest serves POST /api/ingest. A source that fails to parse is
// answered 422 with the sync report alongside the error.
func (s *Server) HandleIngest(w http.ResponseWriter, r *http.Request) {
	if s.State() != ServerStateRunning {
		s.writeErr(w, r, errDraining)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxIngestBytes)

	var req IngestRequest
	if err := readJSON(w, r, &req); err != nil {
		return
	}

	report, err := s.svc.Ingest(requestContext(r), req.Name, []byte(req.Content))
	if err != nil {
		status := statusFor(err)
		if report == nil || status == http.StatusInternalServerError {
			s.writeErr(w, r, err)
			return
		}
		_ = writeJSON(w, status, map[string]interface{}{
			"error":  publicMessage(err),
			"report": report,
		})
		return
	}
	_ = writeJSON(w, http.StatusOK, report)
}

// requestContext carries chi's request id into the logging context.
func requestContext(r *http.Request) context.Context {
	return logger.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
}
