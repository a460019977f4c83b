package server

import (
	"encoding/json"
	"time"
)

const (
	// MaxClients is the maximum number of concurrent WebSocket clients
	MaxClients = 100
	// MaxClientMessageQueueSize is the size of per-client message queues
	MaxClientMessageQueueSize = 256
	// ShutdownTimeout is how long to wait for graceful shutdown
	ShutdownTimeout = 10 * time.Second
	// MaxIngestBytes bounds the body of an ingest request
	MaxIngestBytes = 16 << 20
)

// ServerState represents the server lifecycle state
type ServerState int

const (
	ServerStateRunning  ServerState = iota // Normal operation
	ServerStateDraining                    // Graceful shutdown in progress
	ServerStateStopped                     // Shutdown complete
)

// Message types on the WebSocket.
const (
	MsgResolve   = "resolve"
	MsgSearch    = "search"
	MsgIcon      = "icon"
	MsgBacklinks = "backlinks"
	MsgIngest    = "ingest"
	MsgStats     = "stats"
	MsgPing      = "ping"

	MsgResult = "result"
	MsgError  = "error"
	MsgCommit = "commit"
	MsgPong   = "pong"
	MsgHello  = "hello"
)

// ClientMessage is a request frame from a WebSocket client.
type ClientMessage struct {
	Type      string `json:"type"`                 // one of the Msg* request types
	RequestID string `json:"request_id,omitempty"` // echoed in the reply
	ID        string `json:"id,omitempty"`         // entity id for resolve, icon, backlinks
	Text      string `json:"text,omitempty"`       // search text
	Limit     int    `json:"limit,omitempty"`      // search limit
	Name      string `json:"name,omitempty"`       // ingest source name
	Content   string `json:"content,omitempty"`    // ingest source content
}

// ServerMessage is a reply or push frame to a WebSocket client.
type ServerMessage struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	For       string          `json:"for,omitempty"` // request type a result answers
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	Status    int             `json:"status,omitempty"`
}

// CommitMessage is pushed to every client after a store commit.
type CommitMessage struct {
	Type       string  `json:"type"`
	Generation uint64  `json:"generation"`
	Entries    []int64 `json:"entries"`
	Appended   int     `json:"appended"`
	Retracted  int     `json:"retracted"`
	Timestamp  int64   `json:"timestamp"`
}

// IngestRequest is the body of POST /api/ingest.
type IngestRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Generation uint64 `json:"generation"`
	Clients    int    `json:"clients"`
}
