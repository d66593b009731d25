package handler

import (
	"net/http"
	"testing"

	"github.com/go-otp-login/internal/application/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateUser_Placeholder(t *testing.T) {
	rr := postCallable(t, NewUserHandler(user.NewService()).Update,
		`{"data":{"uid":"u1","profileData":{"name":"Ana"}}}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"success":false`)
	assert.Contains(t, rr.Body.String(), "placeholder")
}

func TestUpdateUser_BadProfileData(t *testing.T) {
	rr := postCallable(t, NewUserHandler(user.NewService()).Update, `{"data":{"uid":"u1","profileData":"nope"}}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_ARGUMENT", decodeError(t, rr).Status)
}
