package outbound

import (
	"context"

	"github.com/pantrysense/v2/internal/domain/ai"
	"github.com/pantrysense/v2/internal/domain/inventory"
	"github.com/pantrysense/v2/internal/domain/recipe"
	"github.com/pantrysense/v2/internal/domain/user"
)

// FeedEvent is one delivery from the push channel. A nil Reading with a nil
// Err means the channel holds no data; a non-nil Err is a transport failure.
type FeedEvent struct {
	Reading *inventory.SensorReading
	Err     error
}

// Subscription is a live push-channel subscription. Close stops delivery and
// closes the Updates channel; it is safe to call more than once.
type Subscription interface {
	Updates() <-chan FeedEvent
	Close() error
}

// InventoryFeed opens subscriptions on a named push channel
type InventoryFeed interface {
	Subscribe(ctx context.Context, channel string) (Subscription, error)
	Name() string
}

// AIService generates recipes and suggestions from a hosted model
type AIService interface {
	GenerateRecipes(ctx context.Context, req ai.RecipeRequest) ([]recipe.Recipe, error)
	Suggest(ctx context.Context, req ai.SuggestionRequest) (string, error)
	HealthCheck(ctx context.Context) error
	Provider() string
}

// AuthProvider delegates authentication to the hosted identity service
type AuthProvider interface {
	SignIn(ctx context.Context, creds user.Credentials) (*user.Identity, error)
	SignUp(ctx context.Context, creds user.Credentials) (*user.Identity, error)
	SignOut(ctx context.Context, uid string) error
}
