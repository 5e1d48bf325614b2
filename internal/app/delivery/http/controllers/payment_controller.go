package controllers

import (
	"context"
	"net/http"
	"telemed-service/internal/app/config"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/exceptions"
	"telemed-service/internal/pkg/utils"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const defaultHandlerTimeout = 10 * time.Second

type PaymentController struct {
	Log            *zap.Logger
	PaymentUsecase contracts.PaymentUsecase
	InternalConfig *config.InternalConfig
}

func NewPaymentController(logger *zap.Logger, paymentUsecase contracts.PaymentUsecase, internalConfig *config.InternalConfig) *PaymentController {
	return &PaymentController{
		Log:            logger,
		PaymentUsecase: paymentUsecase,
		InternalConfig: internalConfig,
	}
}

// gatewayHandlerTimeout leaves room for the full gateway timeout plus the
// database work around it, so a slow gateway surfaces as 502 and not 504.
func (ctrl *PaymentController) gatewayHandlerTimeout() time.Duration {
	gatewayTimeout := time.Duration(ctrl.InternalConfig.App.PaymentGatewayRequestTimeoutInSeconds) * time.Second
	if timeout := gatewayTimeout + 5*time.Second; timeout > defaultHandlerTimeout {
		return timeout
	}
	return defaultHandlerTimeout
}

func (ctrl *PaymentController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, session, ok := requestScope(ctrl.Log, w, r, "PaymentController.CreateOrder")
	if !ok {
		return
	}

	request := new(requests.CreatePaymentOrder)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		ctrl.Log.Error("PaymentController.CreateOrder error parsing request body",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}

	utils.SanitizeCreatePaymentOrderRequest(request)

	if err := utils.ValidateStruct(request); err != nil {
		ctrl.Log.Error("PaymentController.CreateOrder validation failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.gatewayHandlerTimeout())
	defer cancel()

	response, err := ctrl.PaymentUsecase.CreateOrder(ctx, session, request)
	if err != nil {
		ctrl.Log.Error("PaymentController.CreateOrder error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, request.AppointmentID),
			zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
			zap.Error(err),
		)
		writeUsecaseError(ctx, ctrl.Log, w, err)
		return
	}

	ctrl.Log.Info("PaymentController.CreateOrder succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOrderIDKey, response.OrderID),
		zap.Int64(constvars.LoggingAmountKey, response.Amount),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.CreatePaymentOrderSuccessMessage, response)
}

func (ctrl *PaymentController) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, session, ok := requestScope(ctrl.Log, w, r, "PaymentController.VerifyPayment")
	if !ok {
		return
	}

	utils.LogSecurityEvent(ctrl.Log, constvars.SecurityEventPaymentVerifyCalled, requestID, constvars.SecuritySeverityMedium,
		zap.String(constvars.LoggingUserIDKey, session.UserID),
		zap.String(constvars.LoggingRemoteAddrKey, r.RemoteAddr),
		zap.String(constvars.LoggingUserAgentKey, r.UserAgent()),
	)

	request := new(requests.VerifyPayment)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		ctrl.Log.Error("PaymentController.VerifyPayment error parsing request body",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}

	utils.SanitizeVerifyPaymentRequest(request)

	if err := utils.ValidateStruct(request); err != nil {
		ctrl.Log.Error("PaymentController.VerifyPayment validation failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.gatewayHandlerTimeout())
	defer cancel()

	response, err := ctrl.PaymentUsecase.VerifyPayment(ctx, session, request)
	if err != nil {
		ctrl.Log.Error("PaymentController.VerifyPayment error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, request.AppointmentID),
			zap.String(constvars.LoggingOrderIDKey, request.GatewayOrderID),
			zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
			zap.Error(err),
		)
		writeUsecaseError(ctx, ctrl.Log, w, err)
		return
	}

	ctrl.Log.Info("PaymentController.VerifyPayment succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, request.AppointmentID),
		zap.String(constvars.LoggingPaymentIDKey, request.GatewayPaymentID),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.VerifyPaymentSuccessMessage, response)
}

func (ctrl *PaymentController) GetConfig(w http.ResponseWriter, r *http.Request) {
	requestID, _, ok := requestScope(ctrl.Log, w, r, "PaymentController.GetConfig")
	if !ok {
		return
	}

	response := ctrl.PaymentUsecase.GetConfig(r.Context())

	ctrl.Log.Debug("PaymentController.GetConfig succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID))
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetPaymentConfigSuccessMessage, response)
}
