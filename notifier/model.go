package main

// ChannelResult is outcome of delivery to one channel
type ChannelResult struct {
	OK     bool        `json:"ok"`
	Status int         `json:"status,omitempty"`
	Error  string      `json:"error,omitempty"`
	Body   interface{} `json:"body,omitempty"`
}

// NotifyResponse is answer of /api/notify, results are keyed by channel
type NotifyResponse struct {
	OK      bool                     `json:"ok"`
	Results map[string]ChannelResult `json:"results"`
}

// DBEvent is change of a row posted by database webhook
type DBEvent struct {
	Table     string                 `json:"table"`
	Type      string                 `json:"type"`
	Record    map[string]interface{} `json:"record"`
	OldRecord map[string]interface{} `json:"old_record"`
}

type whatsappText struct {
	Body string `json:"body"`
}

type whatsappMessage struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             whatsappText `json:"text"`
}
