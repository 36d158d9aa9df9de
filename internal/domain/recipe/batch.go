package recipe

import (
	"time"

	"github.com/pantrysense/v2/internal/domain/shared"
)

// Source tells where a batch came from
type Source string

const (
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
)

// Batch is one wholesale result of a generation request
type Batch struct {
	Recipes     []Recipe  `json:"recipes"`
	Source      Source    `json:"source"`
	Mood        Mood      `json:"mood,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// NewBatch scores recipes against inventory and stamps the batch
func NewBatch(recipes []Recipe, inventory []string, source Source, mood Mood) Batch {
	return Batch{
		Recipes:     Match(recipes, inventory),
		Source:      source,
		Mood:        mood,
		GeneratedAt: time.Now(),
	}
}

// Find returns the recipe with id in the batch
func (b Batch) Find(id string) (Recipe, error) {
	return FindByID(b.Recipes, id)
}

// Tiers applies f to the batch and partitions what is left
func (b Batch) Tiers(f Filter) Tiers {
	return Partition(f.Apply(b.Recipes))
}

const EventBatchGenerated = "recipe.batch_generated"

// BatchGeneratedEvent is raised when a batch resolves, generated or fallback
type BatchGeneratedEvent struct {
	shared.BaseEvent
	Session string
	Source  Source
	Count   int
}

// NewBatchGeneratedEvent builds the event for batch b
func NewBatchGeneratedEvent(session string, b Batch) BatchGeneratedEvent {
	return BatchGeneratedEvent{
		BaseEvent: shared.NewBaseEvent(EventBatchGenerated),
		Session:   session,
		Source:    b.Source,
		Count:     len(b.Recipes),
	}
}
