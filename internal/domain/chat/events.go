package chat

// Event types broadcast to room members.
const (
	EventTypeJoin    = "chat_join"
	EventTypeMessage = "chat_message"
	EventTypeLeave   = "chat_leave"
)

// InboundTypeMessage is the only inbound frame type the room understands.
// Frames with any other type are ignored by the connection adapter.
const InboundTypeMessage = "message"

// Event is a single frame broadcast to room members. Username carries the
// sender's display name; Message is set only for chat_message events (a
// pointer so an empty message body is still encoded on the wire).
type Event struct {
	Type     string  `json:"type"`
	Username string  `json:"username"`
	Message  *string `json:"message,omitempty"`
}

// InboundFrame is a frame received from a connected client.
type InboundFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func joinEvent(p Participant) Event {
	return Event{Type: EventTypeJoin, Username: p.DisplayName}
}

func messageEvent(p Participant, text string) Event {
	return Event{Type: EventTypeMessage, Username: p.DisplayName, Message: &text}
}

func leaveEvent(p Participant) Event {
	return Event{Type: EventTypeLeave, Username: p.DisplayName}
}
