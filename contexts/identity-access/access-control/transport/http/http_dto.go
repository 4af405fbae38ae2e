package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type BanRequest struct {
	Target string `json:"target"`
	Reason string `json:"reason,omitempty"`
}

type UnbanRequest struct {
	Target string `json:"target"`
}

type PromoteModeratorRequest struct {
	Target string `json:"target"`
}

type ModerationResponse struct {
	Status string `json:"status"`
	Data   struct {
		Actor      string `json:"actor"`
		ActorRole  string `json:"actor_role"`
		Target     string `json:"target"`
		Action     string `json:"action"`
		TargetRole string `json:"target_role"`
		Banned     bool   `json:"banned"`
		AppliedAt  string `json:"applied_at"`
		NoOp       bool   `json:"no_op"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}

type CheckAccessRequest struct {
	Handle  string `json:"handle"`
	Channel string `json:"channel"`
	Mode    string `json:"mode"`
}

type CheckAccessResponse struct {
	Status string `json:"status"`
	Data   struct {
		Handle  string `json:"handle"`
		Channel string `json:"channel"`
		Mode    string `json:"mode"`
		Allowed bool   `json:"allowed"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}

type ChannelsResponse struct {
	Status string `json:"status"`
	Data   struct {
		Handle   string   `json:"handle"`
		Channels []string `json:"channels"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}

type OpenSessionRequest struct {
	Handle string `json:"handle"`
}

type RefreshSessionRequest struct {
	Token string `json:"token"`
}

type SessionResponse struct {
	Status string `json:"status"`
	Data   struct {
		Token     string   `json:"token"`
		Handle    string   `json:"handle"`
		Role      string   `json:"role"`
		Channels  []string `json:"channels"`
		IssuedAt  string   `json:"issued_at"`
		ExpiresAt string   `json:"expires_at"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}

type RealtimeAuthRequest struct {
	SocketID    string `json:"socket_id"`
	ChannelName string `json:"channel_name"`
	Handle      string `json:"handle"`
}

type RealtimeAuthResponse struct {
	Status string `json:"status"`
	Data   struct {
		SocketID    string         `json:"socket_id"`
		Channel     string         `json:"channel"`
		GrantID     string         `json:"grant_id"`
		ChannelData map[string]any `json:"channel_data"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}
