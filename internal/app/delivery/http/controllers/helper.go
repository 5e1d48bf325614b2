package controllers

import (
	"context"
	"errors"
	"net/http"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/exceptions"
	"telemed-service/internal/pkg/utils"

	"go.uber.org/zap"
)

// requestScope reads the request id and session placed by the middlewares,
// writing the error response itself when either is missing.
func requestScope(log *zap.Logger, w http.ResponseWriter, r *http.Request, operation string) (string, *models.Session, bool) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		log.Error(operation+" requestID not found in context",
			zap.String(constvars.LoggingEndpointKey, r.URL.Path),
			zap.String(constvars.LoggingMethodKey, r.Method),
		)
		utils.BuildErrorResponse(log, w, exceptions.ErrMissingRequestID(nil))
		return "", nil, false
	}

	session, ok := r.Context().Value(constvars.CONTEXT_SESSION_DATA_KEY).(*models.Session)
	if !ok || session == nil {
		log.Error(operation+" session not found in context",
			zap.String(constvars.LoggingRequestIDKey, requestID))
		utils.BuildErrorResponse(log, w, exceptions.ErrMissingSessionData(nil))
		return "", nil, false
	}

	log.Info(operation+" called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, session.UserID),
		zap.String(constvars.LoggingRoleKey, session.Role),
	)
	return requestID, session, true
}

// writeUsecaseError reports 504 only when the handler's own deadline fired.
// Upstream timeouts already carry their mapped status inside err.
func writeUsecaseError(ctx context.Context, log *zap.Logger, w http.ResponseWriter, err error) {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		var customErr *exceptions.CustomError
		if !errors.As(err, &customErr) || customErr.StatusCode == constvars.StatusInternalServerError {
			utils.BuildErrorResponse(log, w, exceptions.ErrServerDeadlineExceeded(err))
			return
		}
	}
	utils.BuildErrorResponse(log, w, err)
}
