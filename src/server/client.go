package server

import (
	"encoding/json"
	"sync"
	"time"

	"stock-dashboard/src/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024 // subscribe commands only
	sendBuffer     = 64
)

// -----------------------------------------------------------------------------
// liveClient
// -----------------------------------------------------------------------------

// liveClient is one browser tab on /ws. It receives every snapshot until it
// sends a subscribe command, after which only the named symbols are pushed.
type liveClient struct {
	hub  *DashboardServer
	conn *websocket.Conn
	send chan *models.MLiveSnapshot

	mu      sync.RWMutex
	symbols map[string]struct{}
}

func newLiveClient(hub *DashboardServer, conn *websocket.Conn) *liveClient {
	return &liveClient{
		hub:  hub,
		conn: conn,
		send: make(chan *models.MLiveSnapshot, sendBuffer),
	}
}

// subscribe replaces the symbol filter. An empty list means everything.
func (c *liveClient) subscribe(symbols []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(symbols) == 0 {
		c.symbols = nil
		return
	}
	c.symbols = make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		if sym = normalizeSymbol(sym); sym != "" {
			c.symbols[sym] = struct{}{}
		}
	}
}

func (c *liveClient) filter() map[string]struct{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.symbols
}

// deliver queues a filtered copy of snap. False means the buffer is full.
func (c *liveClient) deliver(snap *models.MLiveSnapshot, kind string) bool {
	select {
	case c.send <- filterSnapshot(snap, c.filter(), kind):
		return true
	default:
		return false
	}
}

// -----------------------------------------------------------------------------
// Pumps
// -----------------------------------------------------------------------------

// readLoop consumes client commands and keeps the read deadline alive on pong.
func (c *liveClient) readLoop() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
		c.hub.Logger.Debug("websocket client %s gone", c.conn.RemoteAddr())
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.Logger.Info("websocket read: %v", err)
			}
			return
		}
		if !c.handleCommand(raw) {
			return
		}
	}
}

// handleCommand applies one client message. Unparseable input ends the
// connection.
func (c *liveClient) handleCommand(raw []byte) bool {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(raw, &cmd); err != nil {
		c.hub.Logger.Info("bad websocket command from %s: %v", c.conn.RemoteAddr(), err)
		return false
	}
	switch cmd.Command {
	case "subscribe":
		c.subscribe(cmd.Symbols)
	case "unsubscribe":
		c.subscribe(nil)
	default:
		return true
	}

	// the hub owns c.send, so the fresh INITIAL goes through it
	select {
	case c.hub.resync <- c:
	case <-c.hub.done:
		return false
	}
	return true
}

// writeLoop owns all writes on the connection.
func (c *liveClient) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case snap, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(snap); err != nil {
				c.hub.Logger.Info("websocket write: %v", err)
				return
			}

		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// -----------------------------------------------------------------------------

// filterSnapshot copies src keeping only the symbols in keep (all when keep
// is empty) and stamps the copy with kind.
func filterSnapshot(src *models.MLiveSnapshot, keep map[string]struct{}, kind string) *models.MLiveSnapshot {
	wanted := func(sym string) bool {
		if len(keep) == 0 {
			return true
		}
		_, ok := keep[sym]
		return ok
	}

	out := &models.MLiveSnapshot{
		Type:        kind,
		Ticks:       make(map[string]models.MTick, len(src.Ticks)),
		MarketsOpen: src.MarketsOpen,
		Timestamp:   src.Timestamp,
		Metrics:     src.Metrics,
	}
	for sym, t := range src.Ticks {
		if wanted(sym) {
			out.Ticks[sym] = t
		}
	}
	for _, sym := range src.Unavailable {
		if wanted(sym) {
			out.Unavailable = append(out.Unavailable, sym)
		}
	}
	return out
}
