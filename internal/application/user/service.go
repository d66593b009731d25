package user

import (
	"context"
	"log/slog"
	"sort"

	"github.com/go-otp-login/internal/domain"
)

// UpdateResult is the reply of the updateUser callable.
type UpdateResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

const placeholderMessage = "updateUser is a placeholder and not actively used for profile updates. " +
	"Profile changes are written by the web application."

type Service interface {
	// Update acknowledges a profile update request without changing any state.
	Update(ctx context.Context, req domain.UpdateUserRequest) (*UpdateResult, error)
}

type service struct{}

func NewService() Service {
	return &service{}
}

func (s *service) Update(ctx context.Context, req domain.UpdateUserRequest) (*UpdateResult, error) {
	fields := make([]string, 0, len(req.ProfileData))
	for k := range req.ProfileData {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	slog.InfoContext(ctx, "update user called", "uid", req.UID, "fields", fields)
	slog.WarnContext(ctx, "update user is a placeholder and does not perform profile updates")

	return &UpdateResult{Success: false, Message: placeholderMessage}, nil
}
