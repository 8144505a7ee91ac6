package models

// -----------------------------------------------------------------------------
// Live watchlist push structures
// -----------------------------------------------------------------------------

// MTick is one refresh observation of a symbol's last price.
type MTick struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	PercentChange float64 `json:"percent_change"`
	Volume        float64 `json:"volume"`
	Timestamp     int64   `json:"timestamp"`
}

// MLiveSnapshot is what the hub pushes to websocket clients.
type MLiveSnapshot struct {
	Type        string           `json:"type"` // "INITIAL" or "UPDATE"
	Ticks       map[string]MTick `json:"ticks"`
	Unavailable []string         `json:"unavailable"`
	MarketsOpen bool             `json:"markets_open"`
	Timestamp   int64            `json:"timestamp"`
	Metrics     MRefreshMetrics  `json:"metrics"`
}

// MRefreshMetrics describes the last refresher run.
type MRefreshMetrics struct {
	DurationSeconds float64 `json:"duration_seconds"`
	Symbols         int     `json:"symbols"`
	Failed          int     `json:"failed"`
}

// -----------------------------------------------------------------------------
// MSubscribeCommand for client messages
// -----------------------------------------------------------------------------

type MSubscribeCommand struct {
	Command string   `json:"command"`
	Symbols []string `json:"symbols"`
}
