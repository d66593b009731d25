package user

import (
	"context"
	"testing"

	"github.com/go-otp-login/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdate_IsPlaceholder(t *testing.T) {
	svc := NewService()
	res, err := svc.Update(context.Background(), domain.UpdateUserRequest{
		UID:         "01J0000000000000000000000A",
		ProfileData: map[string]interface{}{"name": "Ana", "mobile": "+34 600 000 000"},
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "placeholder")
}

func TestUpdate_EmptyPayload(t *testing.T) {
	res, err := NewService().Update(context.Background(), domain.UpdateUserRequest{})
	require.NoError(t, err)
	assert.False(t, res.Success)
}
