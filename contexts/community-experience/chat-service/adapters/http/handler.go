package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"veilian/contexts/community-experience/chat-service/application"
	"veilian/contexts/community-experience/chat-service/ports"
	httptransport "veilian/contexts/community-experience/chat-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) PostMessageHandler(ctx context.Context, idempotencyKey string, author string, req httptransport.PostMessageRequest) (httptransport.MessageResponse, error) {
	message, err := h.Service.PostMessage(ctx, idempotencyKey, ports.CreateMessageInput{
		ChannelKey: strings.TrimSpace(req.Channel),
		Author:     author,
		Content:    req.Content,
	})
	if err != nil {
		return httptransport.MessageResponse{}, err
	}
	return httptransport.MessageResponse{
		Status:    "success",
		Data:      mapMessage(message),
		Timestamp: timestamp(),
	}, nil
}

func (h Handler) PostPrivateMessageHandler(ctx context.Context, idempotencyKey string, author string, req httptransport.PostPrivateMessageRequest) (httptransport.MessageResponse, error) {
	message, err := h.Service.PostPrivateMessage(ctx, idempotencyKey, author, strings.TrimSpace(req.To), req.Content)
	if err != nil {
		return httptransport.MessageResponse{}, err
	}
	return httptransport.MessageResponse{
		Status:    "success",
		Data:      mapMessage(message),
		Timestamp: timestamp(),
	}, nil
}

func (h Handler) ListMessagesHandler(ctx context.Context, viewer string, channel string, afterSequence int64, limit int) (httptransport.MessagesResponse, error) {
	messages, err := h.Service.ListMessages(ctx, viewer, ports.ListMessagesInput{
		ChannelKey:    strings.TrimSpace(channel),
		AfterSequence: afterSequence,
		Limit:         limit,
	})
	if err != nil {
		return httptransport.MessagesResponse{}, err
	}
	resp := httptransport.MessagesResponse{Status: "success", Timestamp: timestamp()}
	resp.Data.Channel = strings.TrimSpace(channel)
	resp.Data.Messages = make([]httptransport.MessageData, 0, len(messages))
	for _, message := range messages {
		resp.Data.Messages = append(resp.Data.Messages, mapMessage(message))
	}
	return resp, nil
}

func mapMessage(message ports.Message) httptransport.MessageData {
	return httptransport.MessageData{
		MessageID:      message.MessageID,
		Channel:        message.ChannelKey,
		Author:         message.Author,
		Content:        message.Content,
		SequenceNumber: message.SequenceNumber,
		CreatedAt:      message.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
