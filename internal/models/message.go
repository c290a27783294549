package models

import "encoding/json"

// EventType identifies a matchmaking signaling event
type EventType string

const (
	// Client -> server
	EventFindConnection   EventType = "find-connection-request"
	EventStopFind         EventType = "stop-find-connection"
	EventNotifyDisconnect EventType = "notify-remote-disconnect"

	// Server -> client
	EventFindResponse       EventType = "find-connection-response"
	EventRemoteDisconnected EventType = "remote-disconnected"
)

// ClientEvent is the envelope for every message a client sends over
// the signaling channel
type ClientEvent struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerEvent is the envelope for every message sent back to a client
type ServerEvent struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// FindConnectionRequest starts a partner search. An empty Filters list
// selects the unfiltered FIFO policy.
type FindConnectionRequest struct {
	PeerID  string   `json:"peerId"`
	Filters []string `json:"filters"`
}

// NotifyDisconnectRequest asks the server to relay a disconnect notice
// to a paired session
type NotifyDisconnectRequest struct {
	RemoteSessionID string `json:"remoteSessionId"`
}

// PeerInfo describes one side of a pairing to the other side
type PeerInfo struct {
	PeerID    string `json:"peerId"`
	SessionID string `json:"sessionId"`
}

// FindConnectionResponse is sent to both parties of a match. The party
// that was already waiting receives IsInitiator=false; the requester
// whose arrival completed the match receives true. MatchedFilters is
// null for unfiltered pairs.
type FindConnectionResponse struct {
	Peer           PeerInfo `json:"peer"`
	IsInitiator    bool     `json:"isInitiator"`
	MatchedFilters []string `json:"matchedFilters"`
}
