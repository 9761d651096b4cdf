package ports

import (
	"context"

	"github.com/bnema/claude-usage-tracker/internal/domain"
)

// UsageSource performs one authenticated fetch of the usage endpoint.
// No retries, no caching.
type UsageSource interface {
	Fetch(ctx context.Context) (domain.UsageSnapshot, error)
}
