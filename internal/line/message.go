package line

// Message is one outgoing LINE message. Only text messages (optionally
// carrying a quick-reply menu) are used by the reservation bot.
type Message struct {
	Type       string      `json:"type"`
	Text       string      `json:"text"`
	QuickReply *QuickReply `json:"quickReply,omitempty"`
}

// QuickReply presents tappable shortcut buttons below a message.
type QuickReply struct {
	Items []QuickReplyItem `json:"items"`
}

// QuickReplyItem is one quick-reply button.
type QuickReplyItem struct {
	Type   string `json:"type"`
	Action Action `json:"action"`
}

// Action is what tapping a quick-reply button sends back.
type Action struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// TextMessage builds a plain text message.
func TextMessage(text string) Message {
	return Message{Type: "text", Text: text}
}

// MessageAction builds a quick-reply item that sends text when tapped.
func MessageAction(label, text string) QuickReplyItem {
	return QuickReplyItem{
		Type:   "action",
		Action: Action{Type: "message", Label: label, Text: text},
	}
}
