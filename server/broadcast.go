package server

import (
	"time"

	"github.com/teranos/eavto/eav/storage"
	"github.com/teranos/eavto/logger"
	"github.com/teranos/eavto/sym"
)

// broadcastMessage sends a message to all connected clients.
// Returns the number of clients that accepted the message (channel not full).
func (s *Server) broadcastMessage(msg interface{}) int {
	s.mu.RLock()
	clients := make([]*Client, 0, len(s.clients))
	for client := range s.clients {
		clients = append(clients, client)
	}
	s.mu.RUnlock()

	sent := 0
	for _, client := range clients {
		select {
		case client.send <- msg:
			sent++
		default:
			s.broadcastDrops.Add(1)
		}
	}
	return sent
}

// onCommit runs after every store commit, on the committing goroutine.
func (s *Server) onCommit(ev storage.CommitEvent) {
	s.metrics.observeCommit(ev)

	sent := s.broadcastMessage(CommitMessage{
		Type:       MsgCommit,
		Generation: ev.Generation,
		Entries:    ev.Entries,
		Appended:   ev.Appended,
		Retracted:  ev.Retracted,
		Timestamp:  time.Now().Unix(),
	})
	s.logger.Debugw("Broadcast commit",
		logger.FieldSymbol, sym.DB,
		"generation", ev.Generation,
		"clients", sent,
	)
}
