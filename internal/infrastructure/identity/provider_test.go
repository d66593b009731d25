package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-otp-login/internal/domain"
	"github.com/go-otp-login/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockIdentityStore struct{ mock.Mock }

func (m *mockIdentityStore) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.Identity); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockIdentityStore) Create(ctx context.Context, id *domain.Identity) error {
	return m.Called(ctx, id).Error(0)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(uid string) (string, error) {
	args := m.Called(uid)
	return args.String(0), args.Error(1)
}

var now = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

func TestCreateUser_AssignsUIDAndVerifiedFlag(t *testing.T) {
	store := &mockIdentityStore{}
	store.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.Identity) bool {
		return u.UID == "uid-1" && u.Email == "a@b.com" && u.EmailVerified && u.CreatedAt.Equal(now)
	})).Return(nil)

	p := NewProvider(store, nil, &clock.Fixed{T: now})
	p.newUID = func() string { return "uid-1" }

	u, err := p.CreateUser(context.Background(), domain.CreateIdentityParams{Email: "a@b.com", EmailVerified: true})
	require.NoError(t, err)
	assert.Equal(t, "uid-1", u.UID)
	store.AssertExpectations(t)
}

func TestCreateUser_EmailTaken(t *testing.T) {
	store := &mockIdentityStore{}
	store.On("Create", mock.Anything, mock.Anything).Return(domain.ErrConflict)

	_, err := NewProvider(store, nil, &clock.Fixed{T: now}).CreateUser(context.Background(), domain.CreateIdentityParams{Email: "a@b.com"})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestCreateUser_EmptyEmail(t *testing.T) {
	_, err := NewProvider(&mockIdentityStore{}, nil, &clock.Fixed{T: now}).CreateUser(context.Background(), domain.CreateIdentityParams{})
	assert.Error(t, err)
}

func TestCreateCustomToken(t *testing.T) {
	signer := &mockSigner{}
	signer.On("Sign", "uid-1").Return("tok", nil)
	signer.On("Sign", "").Return("", errors.New("uid is required"))

	p := NewProvider(nil, signer, &clock.Fixed{T: now})
	tok, err := p.CreateCustomToken(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)

	_, err = p.CreateCustomToken(context.Background(), "")
	assert.ErrorContains(t, err, "sign custom token")
}
