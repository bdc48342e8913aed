package source

import (
	"context"

	"github.com/jokeeffe/pulse/internal/pulse"
)

// Nostr is a reserved extension point. It participates in aggregation
// but contributes nothing until a relay client lands.
type Nostr struct{}

func NewNostr() *Nostr { return &Nostr{} }

func (n *Nostr) Platform() pulse.Platform { return pulse.PlatformNostr }

func (n *Nostr) Fetch(ctx context.Context) ([]pulse.Activity, error) {
	return nil, nil
}
