package admin

import (
	"context"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/responses"

	"go.uber.org/zap"
)

type adminUsecase struct {
	AppointmentRepository contracts.AppointmentRepository
	UserRepository        contracts.UserRepository
	Log                   *zap.Logger
}

func NewAdminUsecase(
	appointmentRepository contracts.AppointmentRepository,
	userRepository contracts.UserRepository,
	logger *zap.Logger,
) contracts.AdminUsecase {
	return &adminUsecase{
		AppointmentRepository: appointmentRepository,
		UserRepository:        userRepository,
		Log:                   logger,
	}
}

func (uc *adminUsecase) GetStats(ctx context.Context) (*responses.AdminStats, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("adminUsecase.GetStats called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	totalUsers, err := uc.UserRepository.CountAll(ctx)
	if err != nil {
		uc.Log.Error("adminUsecase.GetStats error counting users",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	totalDoctors, err := uc.UserRepository.CountByRole(ctx, constvars.RoleDoctor)
	if err != nil {
		uc.Log.Error("adminUsecase.GetStats error counting doctors",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	appointmentStats, err := uc.AppointmentRepository.GetStats(ctx)
	if err != nil {
		uc.Log.Error("adminUsecase.GetStats error aggregating appointments",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	return &responses.AdminStats{
		TotalUsers:        totalUsers,
		TotalDoctors:      totalDoctors,
		TotalAppointments: appointmentStats.TotalAppointments,
		Revenue:           appointmentStats.Revenue,
	}, nil
}
