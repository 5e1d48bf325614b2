package contracts

import (
	"context"
	"telemed-service/internal/app/models"
)

type DoctorRepository interface {
	FindByID(ctx context.Context, doctorID string) (*models.Doctor, error)
	FindByUserID(ctx context.Context, userID string) (*models.Doctor, error)
	FindByIDs(ctx context.Context, doctorIDs []string) (map[string]models.Doctor, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, userID string) (*models.User, error)
	CountAll(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}
