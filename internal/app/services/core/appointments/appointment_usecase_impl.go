package appointments

import (
	"context"
	"telemed-service/internal/app/config"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/dto/responses"
	"telemed-service/internal/pkg/exceptions"
	"telemed-service/internal/pkg/utils"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type appointmentUsecase struct {
	AppointmentRepository contracts.AppointmentRepository
	DoctorRepository      contracts.DoctorRepository
	CapacityLedger        contracts.CapacityLedger
	ReceiptService        contracts.ReceiptService
	InternalConfig        *config.InternalConfig
	Log                   *zap.Logger
}

func NewAppointmentUsecase(
	appointmentRepository contracts.AppointmentRepository,
	doctorRepository contracts.DoctorRepository,
	capacityLedger contracts.CapacityLedger,
	receiptService contracts.ReceiptService,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.AppointmentUsecase {
	return &appointmentUsecase{
		AppointmentRepository: appointmentRepository,
		DoctorRepository:      doctorRepository,
		CapacityLedger:        capacityLedger,
		ReceiptService:        receiptService,
		InternalConfig:        internalConfig,
		Log:                   logger,
	}
}

func (uc *appointmentUsecase) CreateAppointment(ctx context.Context, session *models.Session, request *requests.CreateAppointment) (*responses.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.CreateAppointment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, session.UserID),
		zap.String(constvars.LoggingDoctorIDKey, request.DoctorID),
		zap.String(constvars.LoggingDateKey, request.Date),
	)

	doctor, err := uc.DoctorRepository.FindByID(ctx, request.DoctorID)
	if err != nil {
		uc.Log.Error("appointmentUsecase.CreateAppointment error fetching doctor",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if doctor == nil {
		return nil, exceptions.ErrDoctorNotFound(nil, request.DoctorID)
	}

	appointment := &models.Appointment{
		ID:            uuid.NewString(),
		PatientID:     session.UserID,
		DoctorID:      doctor.ID.Hex(),
		Date:          request.Date,
		Time:          request.Time,
		Status:        models.AppointmentScheduled,
		PaymentStatus: models.PaymentPending,
		Amount:        doctor.Fee(),
	}
	appointment.SetCreatedAtUpdatedAt()

	err = uc.AppointmentRepository.WithinTransaction(ctx, func(ctx context.Context, tx contracts.AppointmentTransaction) error {
		admitted, err := uc.CapacityLedger.CheckAndAdmit(ctx, tx, doctor, appointment.Date)
		if err != nil {
			return err
		}
		if !admitted {
			return exceptions.ErrCapacityExceeded(nil, appointment.DoctorID, appointment.Date)
		}
		return tx.Create(ctx, appointment)
	})
	if err != nil {
		uc.Log.Error("appointmentUsecase.CreateAppointment error booking appointment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDoctorIDKey, appointment.DoctorID),
			zap.Error(err),
		)
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, constvars.BusinessEventAppointmentBooked, requestID,
		zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
		zap.String(constvars.LoggingDoctorIDKey, appointment.DoctorID),
		zap.String(constvars.LoggingDateKey, appointment.Date),
		zap.Int64(constvars.LoggingAmountKey, appointment.Amount),
	)

	response := utils.ConvertAppointmentToResponse(appointment, doctor)
	return &response, nil
}

func (uc *appointmentUsecase) CancelAppointment(ctx context.Context, session *models.Session, appointmentID string) (*responses.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.CancelAppointment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, session.UserID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	var (
		canceled *models.Appointment
		changed  bool
	)
	err := uc.AppointmentRepository.WithinTransaction(ctx, func(ctx context.Context, tx contracts.AppointmentTransaction) error {
		appointment, err := tx.FindByIDForUpdate(ctx, appointmentID)
		if err != nil {
			return err
		}
		if appointment == nil {
			return exceptions.ErrAppointmentNotFound(nil, appointmentID)
		}
		if !appointment.IsOwnedBy(session.UserID) && !session.IsAdmin() {
			return exceptions.ErrForbidden(nil, session.UserID, session.Role, appointmentID)
		}

		switch appointment.Status {
		case models.AppointmentCanceled:
			canceled = appointment
			return nil
		case models.AppointmentCompleted:
			return exceptions.ErrInvalidAppointmentTransition(nil, appointmentID,
				string(appointment.Status), string(models.AppointmentCanceled))
		}

		appointment.Status = models.AppointmentCanceled
		appointment.SetUpdatedAt()
		if err := tx.Update(ctx, appointment); err != nil {
			return err
		}
		canceled = appointment
		changed = true
		return nil
	})
	if err != nil {
		uc.Log.Error("appointmentUsecase.CancelAppointment error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err),
		)
		return nil, err
	}

	if changed {
		utils.LogBusinessEvent(uc.Log, constvars.BusinessEventAppointmentCanceled, requestID,
			zap.String(constvars.LoggingAppointmentIDKey, canceled.ID),
			zap.String(constvars.LoggingUserIDKey, session.UserID),
			zap.String(constvars.LoggingRoleKey, session.Role),
		)
	}

	response := utils.ConvertAppointmentToResponse(canceled, nil)
	return &response, nil
}

func (uc *appointmentUsecase) CompleteAppointment(ctx context.Context, session *models.Session, appointmentID string) (*responses.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.CompleteAppointment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, session.UserID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	if !session.IsDoctor() {
		return nil, exceptions.ErrForbidden(nil, session.UserID, session.Role, appointmentID)
	}

	doctor, err := uc.DoctorRepository.FindByUserID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, exceptions.ErrForbidden(nil, session.UserID, session.Role, appointmentID)
	}

	var (
		completed *models.Appointment
		changed   bool
	)
	err = uc.AppointmentRepository.WithinTransaction(ctx, func(ctx context.Context, tx contracts.AppointmentTransaction) error {
		appointment, err := tx.FindByIDForUpdate(ctx, appointmentID)
		if err != nil {
			return err
		}
		if appointment == nil {
			return exceptions.ErrAppointmentNotFound(nil, appointmentID)
		}
		if appointment.DoctorID != doctor.ID.Hex() {
			return exceptions.ErrForbidden(nil, session.UserID, session.Role, appointmentID)
		}

		switch appointment.Status {
		case models.AppointmentCompleted:
			completed = appointment
			return nil
		case models.AppointmentCanceled:
			return exceptions.ErrInvalidAppointmentTransition(nil, appointmentID,
				string(appointment.Status), string(models.AppointmentCompleted))
		}

		appointment.Status = models.AppointmentCompleted
		appointment.SetUpdatedAt()
		if err := tx.Update(ctx, appointment); err != nil {
			return err
		}
		completed = appointment
		changed = true
		return nil
	})
	if err != nil {
		uc.Log.Error("appointmentUsecase.CompleteAppointment error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err),
		)
		return nil, err
	}

	if changed {
		utils.LogBusinessEvent(uc.Log, constvars.BusinessEventAppointmentCompleted, requestID,
			zap.String(constvars.LoggingAppointmentIDKey, completed.ID),
			zap.String(constvars.LoggingDoctorIDKey, completed.DoctorID),
		)
	}

	response := utils.ConvertAppointmentToResponse(completed, doctor)
	return &response, nil
}

func (uc *appointmentUsecase) FindAll(ctx context.Context, session *models.Session) ([]responses.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.FindAll called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, session.UserID),
		zap.String(constvars.LoggingRoleKey, session.Role),
	)

	var (
		appointments []models.Appointment
		err          error
	)
	if session.IsDoctor() {
		doctor, err := uc.DoctorRepository.FindByUserID(ctx, session.UserID)
		if err != nil {
			return nil, err
		}
		if doctor == nil {
			return []responses.Appointment{}, nil
		}
		appointments, err = uc.AppointmentRepository.FindAllByDoctorID(ctx, doctor.ID.Hex())
		if err != nil {
			return nil, err
		}
	} else {
		appointments, err = uc.AppointmentRepository.FindAllByPatientID(ctx, session.UserID)
		if err != nil {
			return nil, err
		}
	}

	doctorIDs := make([]string, 0, len(appointments))
	seen := make(map[string]struct{}, len(appointments))
	for _, appointment := range appointments {
		if _, ok := seen[appointment.DoctorID]; ok {
			continue
		}
		seen[appointment.DoctorID] = struct{}{}
		doctorIDs = append(doctorIDs, appointment.DoctorID)
	}

	doctors := map[string]models.Doctor{}
	if len(doctorIDs) > 0 {
		doctors, err = uc.DoctorRepository.FindByIDs(ctx, doctorIDs)
		if err != nil {
			uc.Log.Error("appointmentUsecase.FindAll error fetching doctors",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
			return nil, err
		}
	}

	result := make([]responses.Appointment, 0, len(appointments))
	for i := range appointments {
		var doctor *models.Doctor
		if found, ok := doctors[appointments[i].DoctorID]; ok {
			doctor = &found
		}
		result = append(result, utils.ConvertAppointmentToResponse(&appointments[i], doctor))
	}

	uc.Log.Info("appointmentUsecase.FindAll succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(result)),
	)
	return result, nil
}

func (uc *appointmentUsecase) GetReceipt(ctx context.Context, session *models.Session, appointmentID string) (*responses.AppointmentReceipt, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.GetReceipt called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, session.UserID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	appointment, err := uc.AppointmentRepository.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, exceptions.ErrAppointmentNotFound(nil, appointmentID)
	}

	allowed, err := uc.canViewReceipt(ctx, session, appointment)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, exceptions.ErrForbidden(nil, session.UserID, session.Role, appointmentID)
	}

	if !appointment.IsPaid() {
		return nil, exceptions.ErrReceiptNotAvailable(nil, appointmentID, string(appointment.PaymentStatus))
	}

	doctor, err := uc.DoctorRepository.FindByID(ctx, appointment.DoctorID)
	if err != nil {
		return nil, err
	}

	paymentConfig := uc.InternalConfig.PaymentGateway
	pdf, err := uc.ReceiptService.Render(appointment, doctor, paymentConfig.PlatformFee, paymentConfig.Currency)
	if err != nil {
		uc.Log.Error("appointmentUsecase.GetReceipt error rendering receipt",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	objectKey := utils.GenerateReceiptObjectKey(appointment.ID)
	if err := uc.ReceiptService.Store(ctx, objectKey, pdf); err != nil {
		uc.Log.Error("appointmentUsecase.GetReceipt error storing receipt",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingObjectKey, objectKey),
			zap.Error(err),
		)
		return nil, err
	}

	expiry := time.Duration(uc.InternalConfig.App.MinioPreSignedUrlObjectExpiryInHours) * time.Hour
	url, err := uc.ReceiptService.PresignedURL(ctx, objectKey, expiry)
	if err != nil {
		return nil, err
	}

	return &responses.AppointmentReceipt{
		AppointmentID: appointment.ID,
		ObjectKey:     objectKey,
		URL:           url,
		ExpiresAt:     time.Now().UTC().Add(expiry),
	}, nil
}

// canViewReceipt admits the booking patient, admins, and the doctor the
// appointment was booked with.
func (uc *appointmentUsecase) canViewReceipt(ctx context.Context, session *models.Session, appointment *models.Appointment) (bool, error) {
	if appointment.IsOwnedBy(session.UserID) || session.IsAdmin() {
		return true, nil
	}
	if !session.IsDoctor() {
		return false, nil
	}

	doctor, err := uc.DoctorRepository.FindByUserID(ctx, session.UserID)
	if err != nil {
		return false, err
	}
	return doctor != nil && doctor.ID.Hex() == appointment.DoctorID, nil
}
