package interfaces

// IDataExchanger is the push side of the dashboard: the refresher hands each
// live snapshot to it and it fans the snapshot out to websocket listeners.
type IDataExchanger interface {
	// Broadcast sends payload to every listener and keeps it as the state
	// new listeners start from.
	Broadcast(payload interface{})

	ClientCount() int
}
