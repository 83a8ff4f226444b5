package websocket

import "encoding/json"

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// Actions pushed to clients.
const (
	ActionVoteCast    = "vote.cast"
	ActionAlertNew    = "alert.new"
	ActionSystemStats = "system.stats"
	ActionAuditEntry  = "audit.entry"
	ActionError       = "error"
	ActionPong        = "pong"
)

// Topics clients can be subscribed to.
const (
	TopicAdmin  = "admin"
	TopicPublic = "public"
)

func encode(action string, payload interface{}) []byte {
	b, err := json.Marshal(Message{Action: action, Payload: payload})
	if err != nil {
		b, _ = json.Marshal(Message{Action: ActionError, Payload: err.Error()})
	}
	return b
}

// NewMessage encodes a single frame.
func NewMessage(action string, payload interface{}) []byte {
	return encode(action, payload)
}

// NewErrorMessage builds an error frame for a single client.
func NewErrorMessage(text string) []byte {
	return encode(ActionError, map[string]string{"message": text})
}
