package server

import (
	"net/http"
	"time"

	"stock-dashboard/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub
// -----------------------------------------------------------------------------

// handleWebsockets owns the client set. Only this goroutine adds, removes or
// closes client send channels.
func (s *DashboardServer) handleWebsockets() {
	drop := func(c *liveClient) {
		if _, ok := s.clients[c]; ok {
			delete(s.clients, c)
			close(c.send)
		}
	}

	for {
		select {
		case <-s.done:
			for c := range s.clients {
				drop(c)
			}
			s.setClientCount(0)
			return

		case c := <-s.register:
			s.clients[c] = struct{}{}
			latest := s.latestSnapshot()
			c.deliver(&latest, "INITIAL")

		case c := <-s.resync:
			if _, ok := s.clients[c]; ok {
				latest := s.latestSnapshot()
				c.deliver(&latest, "INITIAL")
			}

		case c := <-s.unregister:
			drop(c)

		case snap := <-s.broadcast:
			s.SetLatestState(snap)
			for c := range s.clients {
				if !c.deliver(snap, "UPDATE") {
					s.Logger.Warning("websocket client %s too slow, dropping", c.conn.RemoteAddr())
					drop(c)
				}
			}
		}
		s.setClientCount(len(s.clients))
	}
}

func (s *DashboardServer) setClientCount(n int) {
	s.stateMutex.Lock()
	s.clientCount = n
	s.stateMutex.Unlock()
}

// -----------------------------------------------------------------------------
// Broadcast side
// -----------------------------------------------------------------------------

// Broadcast queues a live snapshot for every connected client. Anything that
// is not an MLiveSnapshot is logged and dropped.
func (s *DashboardServer) Broadcast(payload interface{}) {
	var snap *models.MLiveSnapshot
	switch v := payload.(type) {
	case *models.MLiveSnapshot:
		snap = v
	case models.MLiveSnapshot:
		snap = &v
	default:
		s.Logger.Warning("Broadcast expected MLiveSnapshot, got %T", payload)
		return
	}
	if snap == nil {
		return
	}

	select {
	case s.broadcast <- snap:
	case <-s.done:
	default:
		// hub stopped or backlogged; new clients still get it as INITIAL
		s.SetLatestState(snap)
		s.Logger.Warning("Broadcast queue full, snapshot stored without push")
	}
}

// ClientCount reports connected websocket clients.
func (s *DashboardServer) ClientCount() int {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	return s.clientCount
}

// SetLatestState records snap as the state handed to new clients.
func (s *DashboardServer) SetLatestState(snap *models.MLiveSnapshot) {
	s.stateMutex.Lock()
	s.latestState = filterSnapshot(snap, nil, "UPDATE")
	s.stateMutex.Unlock()
}

// LatestState returns a copy of the last broadcast snapshot.
func (s *DashboardServer) LatestState() models.MLiveSnapshot {
	return s.latestSnapshot()
}

func (s *DashboardServer) latestSnapshot() models.MLiveSnapshot {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	return *filterSnapshot(s.latestState, nil, s.latestState.Type)
}

// -----------------------------------------------------------------------------
// Upgrade
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     sameOrigin,
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := newLiveClient(s, conn)
	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	case <-time.After(writeWait):
		s.Logger.Warning("Hub not accepting clients, closing websocket")
		conn.Close()
		return
	}

	go client.writeLoop()
	go client.readLoop()
}
