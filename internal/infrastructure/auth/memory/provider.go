// Package memory is a local auth provider for development and tests. Accounts
// live in process memory with bcrypt password hashes.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pantrysense/v2/internal/domain/user"
	"github.com/pantrysense/v2/internal/ports/outbound"
	"golang.org/x/crypto/bcrypt"
)

type account struct {
	identity user.Identity
	hash     []byte
}

// Provider implements outbound.AuthProvider
type Provider struct {
	mu       sync.RWMutex
	accounts map[string]account
	cost     int
}

// NewProvider creates an empty provider. cost 0 uses bcrypt.DefaultCost.
func NewProvider(cost int) *Provider {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Provider{accounts: make(map[string]account), cost: cost}
}

// SignUp implements outbound.AuthProvider
func (p *Provider) SignUp(ctx context.Context, creds user.Credentials) (*user.Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), p.cost)
	if err != nil {
		return nil, err
	}

	key := strings.ToLower(creds.Email)

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.accounts[key]; exists {
		return nil, user.ErrEmailExists
	}
	acc := account{
		identity: user.Identity{UID: uuid.NewString(), Email: creds.Email},
		hash:     hash,
	}
	p.accounts[key] = acc

	identity := acc.identity
	return &identity, nil
}

// SignIn implements outbound.AuthProvider
func (p *Provider) SignIn(ctx context.Context, creds user.Credentials) (*user.Identity, error) {
	p.mu.RLock()
	acc, ok := p.accounts[strings.ToLower(creds.Email)]
	p.mu.RUnlock()

	if !ok {
		return nil, user.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(creds.Password)); err != nil {
		return nil, user.ErrInvalidCredentials
	}

	identity := acc.identity
	return &identity, nil
}

// SignOut implements outbound.AuthProvider
func (p *Provider) SignOut(ctx context.Context, uid string) error {
	return nil
}

var _ outbound.AuthProvider = (*Provider)(nil)
