package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SignupRequest struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

type UpdateBioRequest struct {
	Bio string `json:"bio"`
}

type UpdateAvatarRequest struct {
	AvatarURL string `json:"avatar_url"`
}

type ProfileResponse struct {
	Status string `json:"status"`
	Data   struct {
		Handle   string `json:"handle"`
		Role     string `json:"role"`
		Banned   bool   `json:"banned"`
		Avatar   string `json:"avatar"`
		Bio      string `json:"bio"`
		JoinDate string `json:"join_date"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}
