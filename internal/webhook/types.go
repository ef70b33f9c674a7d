package webhook

// Payload is the body of one inbound webhook request: a batch of
// events plus the destination bot id.
type Payload struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Event is one inbound unit from the LINE platform. Only text message
// events are processed; everything else is ignored.
type Event struct {
	Type       string       `json:"type"`
	ReplyToken string       `json:"replyToken"`
	Source     EventSource  `json:"source"`
	Message    EventMessage `json:"message"`
}

// EventSource identifies the sender.
type EventSource struct {
	UserID string `json:"userId"`
}

// EventMessage is the message attached to a message event.
type EventMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
