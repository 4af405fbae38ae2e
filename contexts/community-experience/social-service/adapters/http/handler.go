package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"veilian/contexts/community-experience/social-service/application"
	"veilian/contexts/community-experience/social-service/ports"
	httptransport "veilian/contexts/community-experience/social-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) CreatePostHandler(ctx context.Context, idempotencyKey string, author string, req httptransport.CreatePostRequest) (httptransport.PostResponse, error) {
	post, err := h.Service.CreatePost(ctx, idempotencyKey, ports.CreatePostInput{
		Author:   author,
		Caption:  req.Caption,
		VideoURL: req.VideoURL,
	})
	if err != nil {
		return httptransport.PostResponse{}, err
	}
	return httptransport.PostResponse{
		Status:    "success",
		Data:      mapPost(post),
		Timestamp: timestamp(),
	}, nil
}

func (h Handler) ListFeedHandler(ctx context.Context, viewer string, limit int) (httptransport.FeedResponse, error) {
	posts, err := h.Service.ListFeed(ctx, viewer, ports.ListFeedInput{Limit: limit})
	if err != nil {
		return httptransport.FeedResponse{}, err
	}
	resp := httptransport.FeedResponse{Status: "success", Timestamp: timestamp()}
	resp.Data.Posts = make([]httptransport.PostData, 0, len(posts))
	for _, post := range posts {
		resp.Data.Posts = append(resp.Data.Posts, mapPost(post))
	}
	return resp, nil
}

func mapPost(post ports.Post) httptransport.PostData {
	return httptransport.PostData{
		PostID:    post.PostID,
		Author:    post.Author,
		Caption:   post.Caption,
		VideoURL:  post.VideoURL,
		CreatedAt: post.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
