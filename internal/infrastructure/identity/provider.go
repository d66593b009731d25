// Package identity implements the identity provider the login flow relies
// on: account lookup by email, passwordless account creation and custom
// token minting.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-otp-login/internal/domain"
	"github.com/go-otp-login/internal/pkg/clock"
	"github.com/go-otp-login/internal/pkg/id"
)

type identityStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Identity, error)
	Create(ctx context.Context, id *domain.Identity) error
}

type tokenSigner interface {
	Sign(uid string) (string, error)
}

type Provider struct {
	store  identityStore
	signer tokenSigner
	clock  clock.Clock
	newUID func() string
}

func NewProvider(store identityStore, signer tokenSigner, clk clock.Clock) *Provider {
	return &Provider{store: store, signer: signer, clock: clk, newUID: id.NewUID}
}

// GetUserByEmail returns domain.ErrNotFound (wrapped) when no account exists.
func (p *Provider) GetUserByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	return p.store.GetByEmail(ctx, email)
}

// CreateUser creates a passwordless identity. A taken email surfaces as a
// wrapped domain.ErrConflict.
func (p *Provider) CreateUser(ctx context.Context, params domain.CreateIdentityParams) (*domain.Identity, error) {
	if params.Email == "" {
		return nil, errors.New("email is required")
	}
	u := &domain.Identity{
		UID:           p.newUID(),
		Email:         params.Email,
		EmailVerified: params.EmailVerified,
		CreatedAt:     p.clock.Now(),
	}
	if err := p.store.Create(ctx, u); err != nil {
		// domain.ErrConflict stays visible: the email already has an account.
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (p *Provider) CreateCustomToken(_ context.Context, uid string) (string, error) {
	token, err := p.signer.Sign(uid)
	if err != nil {
		return "", fmt.Errorf("sign custom token: %w", err)
	}
	return token, nil
}
