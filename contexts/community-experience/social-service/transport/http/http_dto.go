package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreatePostRequest struct {
	Caption  string `json:"caption"`
	VideoURL string `json:"video_url"`
}

type PostData struct {
	PostID    string `json:"post_id"`
	Author    string `json:"author"`
	Caption   string `json:"caption"`
	VideoURL  string `json:"video_url"`
	CreatedAt string `json:"created_at"`
}

type PostResponse struct {
	Status    string   `json:"status"`
	Data      PostData `json:"data"`
	Timestamp string   `json:"timestamp"`
}

type FeedResponse struct {
	Status string `json:"status"`
	Data   struct {
		Posts []PostData `json:"posts"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}
