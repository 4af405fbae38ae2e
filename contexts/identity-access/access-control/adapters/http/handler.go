package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"veilian/contexts/identity-access/access-control/application"
	domainerrors "veilian/contexts/identity-access/access-control/domain/errors"
	"veilian/contexts/identity-access/access-control/ports"
	httptransport "veilian/contexts/identity-access/access-control/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) BanHandler(ctx context.Context, idempotencyKey string, actor string, req httptransport.BanRequest) (httptransport.ModerationResponse, error) {
	result, err := h.Service.Ban(ctx, idempotencyKey, actor, strings.TrimSpace(req.Target), strings.TrimSpace(req.Reason))
	if err != nil {
		return httptransport.ModerationResponse{}, err
	}
	return mapModerationResponse(result), nil
}

func (h Handler) UnbanHandler(ctx context.Context, idempotencyKey string, actor string, req httptransport.UnbanRequest) (httptransport.ModerationResponse, error) {
	result, err := h.Service.Unban(ctx, idempotencyKey, actor, strings.TrimSpace(req.Target))
	if err != nil {
		return httptransport.ModerationResponse{}, err
	}
	return mapModerationResponse(result), nil
}

func (h Handler) PromoteModeratorHandler(ctx context.Context, idempotencyKey string, actor string, req httptransport.PromoteModeratorRequest) (httptransport.ModerationResponse, error) {
	result, err := h.Service.PromoteModerator(ctx, idempotencyKey, actor, strings.TrimSpace(req.Target))
	if err != nil {
		return httptransport.ModerationResponse{}, err
	}
	return mapModerationResponse(result), nil
}

func (h Handler) CheckAccessHandler(ctx context.Context, req httptransport.CheckAccessRequest) (httptransport.CheckAccessResponse, error) {
	mode := strings.TrimSpace(strings.ToLower(req.Mode))
	var allowed bool
	var err error
	switch mode {
	case "", "subscribe":
		mode = "subscribe"
		allowed, err = h.Service.CanSubscribe(ctx, req.Handle, req.Channel)
	case "publish":
		allowed, err = h.Service.CanPublish(ctx, req.Handle, req.Channel)
	default:
		return httptransport.CheckAccessResponse{}, domainerrors.ErrInvalidRequest
	}
	if err != nil {
		return httptransport.CheckAccessResponse{}, err
	}
	resp := httptransport.CheckAccessResponse{Status: "success", Timestamp: timestamp()}
	resp.Data.Handle = strings.TrimSpace(req.Handle)
	resp.Data.Channel = strings.TrimSpace(req.Channel)
	resp.Data.Mode = mode
	resp.Data.Allowed = allowed
	return resp, nil
}

func (h Handler) PermittedChannelsHandler(ctx context.Context, handle string) (httptransport.ChannelsResponse, error) {
	channels, err := h.Service.PermittedChannels(ctx, handle)
	if err != nil {
		return httptransport.ChannelsResponse{}, err
	}
	resp := httptransport.ChannelsResponse{Status: "success", Timestamp: timestamp()}
	resp.Data.Handle = strings.TrimSpace(handle)
	resp.Data.Channels = channels
	return resp, nil
}

func (h Handler) OpenSessionHandler(ctx context.Context, req httptransport.OpenSessionRequest) (httptransport.SessionResponse, error) {
	grant, err := h.Service.OpenSession(ctx, req.Handle)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return mapSessionResponse(grant), nil
}

func (h Handler) RefreshSessionHandler(ctx context.Context, req httptransport.RefreshSessionRequest) (httptransport.SessionResponse, error) {
	grant, err := h.Service.RefreshSession(ctx, req.Token)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return mapSessionResponse(grant), nil
}

func (h Handler) RevokeSessionsHandler(ctx context.Context, handle string) error {
	return h.Service.Revoke(ctx, handle)
}

func (h Handler) RealtimeAuthHandler(ctx context.Context, req httptransport.RealtimeAuthRequest) (httptransport.RealtimeAuthResponse, error) {
	auth, err := h.Service.AuthorizeRealtime(ctx, req.SocketID, req.ChannelName, req.Handle)
	if err != nil {
		return httptransport.RealtimeAuthResponse{}, err
	}
	resp := httptransport.RealtimeAuthResponse{Status: "success", Timestamp: timestamp()}
	resp.Data.SocketID = auth.SocketID
	resp.Data.Channel = auth.ChannelKey
	resp.Data.GrantID = auth.GrantID
	resp.Data.ChannelData = auth.PresenceRaw
	return resp, nil
}

func mapModerationResponse(result ports.ModerationResult) httptransport.ModerationResponse {
	resp := httptransport.ModerationResponse{Status: "success", Timestamp: timestamp()}
	resp.Data.Actor = result.Actor
	resp.Data.ActorRole = string(result.ActorRole)
	resp.Data.Target = result.Target
	resp.Data.Action = result.Action
	resp.Data.TargetRole = string(result.TargetRole)
	resp.Data.Banned = result.Banned
	resp.Data.AppliedAt = result.AppliedAt.UTC().Format(time.RFC3339)
	resp.Data.NoOp = result.NoOp
	return resp
}

func mapSessionResponse(grant ports.SubscriptionGrant) httptransport.SessionResponse {
	resp := httptransport.SessionResponse{Status: "success", Timestamp: timestamp()}
	resp.Data.Token = grant.Token
	resp.Data.Handle = grant.Handle
	resp.Data.Role = string(grant.Role)
	resp.Data.Channels = grant.Channels
	resp.Data.IssuedAt = grant.IssuedAt.UTC().Format(time.RFC3339)
	resp.Data.ExpiresAt = grant.ExpiresAt.UTC().Format(time.RFC3339)
	return resp
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
