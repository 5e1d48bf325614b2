package contracts

import (
	"context"
	"telemed-service/internal/pkg/dto/responses"
)

type AdminUsecase interface {
	GetStats(ctx context.Context) (*responses.AdminStats, error)
}
