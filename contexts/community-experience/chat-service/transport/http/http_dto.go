package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PostMessageRequest struct {
	Channel string `json:"channel"`
	Content string `json:"content"`
}

type PostPrivateMessageRequest struct {
	To      string `json:"to"`
	Content string `json:"content"`
}

type MessageData struct {
	MessageID      string `json:"message_id"`
	Channel        string `json:"channel"`
	Author         string `json:"author"`
	Content        string `json:"content"`
	SequenceNumber int64  `json:"sequence_number"`
	CreatedAt      string `json:"created_at"`
}

type MessageResponse struct {
	Status    string      `json:"status"`
	Data      MessageData `json:"data"`
	Timestamp string      `json:"timestamp"`
}

type MessagesResponse struct {
	Status string `json:"status"`
	Data   struct {
		Channel  string        `json:"channel"`
		Messages []MessageData `json:"messages"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}
