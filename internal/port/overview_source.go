package port

import (
	"context"

	"github.com/rl1809/ticket-inventory/internal/core/domain"
)

type OverviewSource interface {
	Overview(ctx context.Context) (domain.Overview, error)
}
