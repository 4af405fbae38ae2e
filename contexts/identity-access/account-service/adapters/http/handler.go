package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"veilian/contexts/identity-access/account-service/application"
	"veilian/contexts/identity-access/account-service/ports"
	httptransport "veilian/contexts/identity-access/account-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) SignupHandler(ctx context.Context, req httptransport.SignupRequest) (httptransport.ProfileResponse, error) {
	profile, err := h.Service.Signup(ctx, req.Handle, req.Password)
	if err != nil {
		return httptransport.ProfileResponse{}, err
	}
	return mapProfileResponse(profile), nil
}

func (h Handler) LoginHandler(ctx context.Context, req httptransport.LoginRequest) (httptransport.ProfileResponse, error) {
	profile, err := h.Service.Login(ctx, req.Handle, req.Password)
	if err != nil {
		return httptransport.ProfileResponse{}, err
	}
	return mapProfileResponse(profile), nil
}

func (h Handler) ProfileHandler(ctx context.Context, handle string) (httptransport.ProfileResponse, error) {
	profile, err := h.Service.Profile(ctx, handle)
	if err != nil {
		return httptransport.ProfileResponse{}, err
	}
	return mapProfileResponse(profile), nil
}

func (h Handler) UpdateBioHandler(ctx context.Context, handle string, req httptransport.UpdateBioRequest) (httptransport.ProfileResponse, error) {
	profile, err := h.Service.UpdateBio(ctx, handle, req.Bio)
	if err != nil {
		return httptransport.ProfileResponse{}, err
	}
	return mapProfileResponse(profile), nil
}

func (h Handler) UpdateAvatarHandler(ctx context.Context, handle string, req httptransport.UpdateAvatarRequest) (httptransport.ProfileResponse, error) {
	profile, err := h.Service.UpdateAvatar(ctx, handle, req.AvatarURL)
	if err != nil {
		return httptransport.ProfileResponse{}, err
	}
	return mapProfileResponse(profile), nil
}

func mapProfileResponse(profile ports.Profile) httptransport.ProfileResponse {
	resp := httptransport.ProfileResponse{Status: "success", Timestamp: time.Now().UTC().Format(time.RFC3339)}
	resp.Data.Handle = profile.Handle
	resp.Data.Role = profile.Role
	resp.Data.Banned = profile.Banned
	resp.Data.Avatar = profile.Avatar
	resp.Data.Bio = profile.Bio
	resp.Data.JoinDate = profile.JoinedAt.UTC().Format(time.RFC3339)
	return resp
}
