package payments

import (
	"context"
	"errors"
	"fmt"
	"telemed-service/internal/app/config"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/app/models"
	"telemed-service/internal/app/services/shared/payment_gateway"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/dto/responses"
	"telemed-service/internal/pkg/exceptions"
	"telemed-service/internal/pkg/utils"
	"time"

	"go.uber.org/zap"
)

// orderLockGrace keeps the order lock alive a little past the gateway deadline
// so a slow gateway answer cannot race a second order for the same appointment.
const orderLockGrace = 5 * time.Second

type paymentUsecase struct {
	AppointmentRepository contracts.AppointmentRepository
	PaymentGateway        contracts.PaymentGatewayService
	LockService           contracts.LockerService
	NotificationService   contracts.NotificationService
	InternalConfig        *config.InternalConfig
	Log                   *zap.Logger
}

func NewPaymentUsecase(
	appointmentRepository contracts.AppointmentRepository,
	paymentGateway contracts.PaymentGatewayService,
	lockService contracts.LockerService,
	notificationService contracts.NotificationService,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.PaymentUsecase {
	return &paymentUsecase{
		AppointmentRepository: appointmentRepository,
		PaymentGateway:        paymentGateway,
		LockService:           lockService,
		NotificationService:   notificationService,
		InternalConfig:        internalConfig,
		Log:                   logger,
	}
}

// OrderAmountMinorUnits is the amount charged at the gateway: the consultation
// fee plus the platform fee, in the currency's minor units.
func OrderAmountMinorUnits(amount, platformFee int64) int64 {
	return (amount + platformFee) * constvars.MinorUnitsPerMajorUnit
}

func (uc *paymentUsecase) CreateOrder(ctx context.Context, session *models.Session, request *requests.CreatePaymentOrder) (*responses.PaymentOrder, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.CreateOrder called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, session.UserID),
		zap.String(constvars.LoggingAppointmentIDKey, request.AppointmentID),
	)

	appointment, err := uc.AppointmentRepository.FindByID(ctx, request.AppointmentID)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, exceptions.ErrAppointmentNotFound(nil, request.AppointmentID)
	}
	if !appointment.IsOwnedBy(session.UserID) && !session.IsAdmin() {
		return nil, exceptions.ErrForbidden(nil, session.UserID, session.Role, appointment.ID)
	}
	if appointment.IsPaid() {
		return nil, exceptions.ErrAppointmentAlreadyPaid(nil, appointment.ID)
	}
	if appointment.Status == models.AppointmentCanceled {
		return nil, exceptions.ErrAppointmentNotPayable(nil, appointment.ID, string(appointment.Status))
	}

	gatewayTimeout := uc.gatewayTimeout()
	lockKey := fmt.Sprintf(constvars.RedisKeyPaymentOrderLockFormat, appointment.ID)

	acquired, lockValue, err := uc.LockService.TryLock(ctx, lockKey, gatewayTimeout+orderLockGrace)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, exceptions.ErrOrderCreationInProgress(nil, appointment.ID)
	}
	defer func() {
		if err := uc.LockService.Unlock(context.WithoutCancel(ctx), lockKey, lockValue); err != nil {
			uc.Log.Warn("paymentUsecase.CreateOrder error releasing order lock",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingRedisKey, lockKey),
				zap.Error(err),
			)
		}
	}()

	gatewayCtx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	paymentConfig := uc.InternalConfig.PaymentGateway
	order, err := uc.PaymentGateway.CreateOrder(gatewayCtx, &requests.GatewayOrder{
		AmountMinorUnits: OrderAmountMinorUnits(appointment.Amount, paymentConfig.PlatformFee),
		Currency:         paymentConfig.Currency,
		Receipt:          fmt.Sprintf(constvars.PaymentReceiptFormat, appointment.ID),
		Notes: map[string]string{
			"appointmentId": appointment.ID,
			"patientId":     appointment.PatientID,
		},
	})
	if err != nil {
		uc.Log.Error("paymentUsecase.CreateOrder error calling payment gateway",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
			zap.Error(err),
		)
		if errors.Is(err, payment_gateway.ErrMalformedOrder) {
			return nil, exceptions.ErrPaymentGatewayMalformedOrder(err)
		}
		return nil, exceptions.ErrPaymentGateway(err)
	}

	utils.LogBusinessEvent(uc.Log, constvars.BusinessEventPaymentOrderCreated, requestID,
		zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
		zap.String(constvars.LoggingOrderIDKey, order.ID),
		zap.Int64(constvars.LoggingAmountKey, order.Amount),
	)

	return &responses.PaymentOrder{
		OrderID:       order.ID,
		AppointmentID: appointment.ID,
		Amount:        order.Amount,
		Currency:      order.Currency,
		Receipt:       order.Receipt,
		Status:        order.Status,
		KeyID:         paymentConfig.KeyID,
	}, nil
}

// VerifyPayment reconciles a gateway callback. A proof counts only when its
// signature is valid and the signed order was created for this appointment's
// receipt and amount. The appointment row stays locked for the whole check so
// duplicate callbacks settle one at a time, and only the first valid one moves
// the payment to paid.
func (uc *paymentUsecase) VerifyPayment(ctx context.Context, session *models.Session, request *requests.VerifyPayment) (*responses.PaymentVerification, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.VerifyPayment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, session.UserID),
		zap.String(constvars.LoggingAppointmentIDKey, request.AppointmentID),
		zap.String(constvars.LoggingOrderIDKey, request.GatewayOrderID),
	)

	validSignature := utils.IsValidPaymentSignature(
		uc.InternalConfig.PaymentGateway.KeySecret,
		request.GatewayOrderID,
		request.GatewayPaymentID,
		request.GatewaySignature,
	)

	var order *responses.GatewayOrder
	if validSignature {
		gatewayCtx, cancel := context.WithTimeout(ctx, uc.gatewayTimeout())
		fetched, err := uc.PaymentGateway.FetchOrder(gatewayCtx, request.GatewayOrderID)
		cancel()
		if err != nil {
			uc.Log.Error("paymentUsecase.VerifyPayment error fetching order from payment gateway",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingOrderIDKey, request.GatewayOrderID),
				zap.Error(err),
			)
			return nil, exceptions.ErrPaymentGatewayFetchOrder(err, request.GatewayOrderID)
		}
		order = fetched
	}

	var (
		appointment  *models.Appointment
		orderMatches bool
		settledNow   bool
	)
	err := uc.AppointmentRepository.WithinTransaction(ctx, func(ctx context.Context, tx contracts.AppointmentTransaction) error {
		found, err := tx.FindByIDForUpdate(ctx, request.AppointmentID)
		if err != nil {
			return err
		}
		if found == nil {
			return exceptions.ErrAppointmentNotFound(nil, request.AppointmentID)
		}
		if !found.IsOwnedBy(session.UserID) && !session.IsAdmin() {
			return exceptions.ErrForbidden(nil, session.UserID, session.Role, found.ID)
		}
		appointment = found
		orderMatches = validSignature && uc.orderBelongsTo(order, appointment)

		if appointment.IsPaid() {
			return nil
		}
		if !orderMatches {
			appointment.MarkPaymentFailed()
			return tx.Update(ctx, appointment)
		}

		appointment.MarkPaid(request.GatewayPaymentID)
		if err := tx.Update(ctx, appointment); err != nil {
			return err
		}
		settledNow = true
		return nil
	})
	if err != nil {
		if errors.Is(err, contracts.ErrPaymentIDTaken) {
			utils.LogSecurityEvent(uc.Log, constvars.SecurityEventPaymentIDReplayed, requestID, constvars.SecuritySeverityHigh,
				zap.String(constvars.LoggingUserIDKey, session.UserID),
				zap.String(constvars.LoggingAppointmentIDKey, request.AppointmentID),
				zap.String(constvars.LoggingOrderIDKey, request.GatewayOrderID),
				zap.String(constvars.LoggingPaymentIDKey, request.GatewayPaymentID),
			)
			return nil, err
		}
		uc.Log.Error("paymentUsecase.VerifyPayment error reconciling appointment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, request.AppointmentID),
			zap.Error(err),
		)
		return nil, err
	}

	if !validSignature {
		utils.LogSecurityEvent(uc.Log, constvars.SecurityEventSignatureMismatch, requestID, constvars.SecuritySeverityHigh,
			zap.String(constvars.LoggingUserIDKey, session.UserID),
			zap.String(constvars.LoggingAppointmentIDKey, request.AppointmentID),
			zap.String(constvars.LoggingOrderIDKey, request.GatewayOrderID),
			zap.String(constvars.LoggingPaymentIDKey, request.GatewayPaymentID),
		)
		return nil, exceptions.ErrSignatureMismatch(nil)
	}
	if !orderMatches {
		utils.LogSecurityEvent(uc.Log, constvars.SecurityEventPaymentOrderMismatch, requestID, constvars.SecuritySeverityHigh,
			zap.String(constvars.LoggingUserIDKey, session.UserID),
			zap.String(constvars.LoggingAppointmentIDKey, request.AppointmentID),
			zap.String(constvars.LoggingOrderIDKey, request.GatewayOrderID),
			zap.String(constvars.LoggingPaymentIDKey, request.GatewayPaymentID),
			zap.String(constvars.LoggingReceiptKey, order.Receipt),
			zap.Int64(constvars.LoggingAmountKey, order.Amount),
		)
		return nil, exceptions.ErrPaymentOrderMismatch(nil, request.GatewayOrderID, request.AppointmentID)
	}

	if settledNow {
		utils.LogBusinessEvent(uc.Log, constvars.BusinessEventPaymentSettled, requestID,
			zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
			zap.String(constvars.LoggingPaymentIDKey, request.GatewayPaymentID),
			zap.Int64(constvars.LoggingAmountKey, appointment.Amount),
		)

		if appointment.Status == models.AppointmentScheduled {
			if err := uc.NotificationService.NotifyAppointmentConfirmed(ctx, appointment); err != nil {
				uc.Log.Warn("paymentUsecase.VerifyPayment confirmation notification failed",
					zap.String(constvars.LoggingRequestIDKey, requestID),
					zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
					zap.Error(err),
				)
			}
		}
	}

	response := utils.ConvertAppointmentToResponse(appointment, nil)
	return &responses.PaymentVerification{
		Verified:    true,
		Appointment: &response,
	}, nil
}

// orderBelongsTo reports whether order was minted by CreateOrder for
// appointment. Every order for an appointment shares its receipt and amount,
// so a proof from an older order of the same appointment still matches.
func (uc *paymentUsecase) orderBelongsTo(order *responses.GatewayOrder, appointment *models.Appointment) bool {
	if order == nil {
		return false
	}
	paymentConfig := uc.InternalConfig.PaymentGateway
	return order.Receipt == fmt.Sprintf(constvars.PaymentReceiptFormat, appointment.ID) &&
		order.Amount == OrderAmountMinorUnits(appointment.Amount, paymentConfig.PlatformFee) &&
		order.Currency == paymentConfig.Currency
}

func (uc *paymentUsecase) gatewayTimeout() time.Duration {
	return time.Duration(uc.InternalConfig.App.PaymentGatewayRequestTimeoutInSeconds) * time.Second
}

func (uc *paymentUsecase) GetConfig(ctx context.Context) *responses.PaymentConfig {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.GetConfig called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	return &responses.PaymentConfig{
		KeyID:    uc.InternalConfig.PaymentGateway.KeyID,
		Currency: uc.InternalConfig.PaymentGateway.Currency,
	}
}
