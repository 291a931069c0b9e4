package sources

import (
	"context"

	"github.com/legodeal/legodealbot/internal/models"
)

// Source interface defines the contract for feed sources
type Source interface {
	Name() string
	// Poll returns the newest submissions, in any order
	Poll(ctx context.Context) ([]models.Record, error)
}
