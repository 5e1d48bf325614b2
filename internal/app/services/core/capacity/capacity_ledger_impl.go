package capacity

import (
	"context"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/constvars"

	"go.uber.org/zap"
)

type capacityLedger struct {
	Log *zap.Logger
}

func NewCapacityLedger(logger *zap.Logger) contracts.CapacityLedger {
	return &capacityLedger{Log: logger}
}

// CheckAndAdmit must run inside the booking transaction that will insert the
// appointment. The per doctor/day lock it takes is held until that transaction
// ends, so the count it reads cannot go stale before the insert commits.
func (l *capacityLedger) CheckAndAdmit(ctx context.Context, store contracts.CapacityStore, doctor *models.Doctor, date string) (bool, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	doctorID := doctor.ID.Hex()

	if err := store.LockDoctorDay(ctx, doctorID, date); err != nil {
		l.Log.Error("capacityLedger.CheckAndAdmit error locking doctor day",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDoctorIDKey, doctorID),
			zap.String(constvars.LoggingDateKey, date),
			zap.Error(err),
		)
		return false, err
	}

	count, err := store.CountActiveByDoctorAndDate(ctx, doctorID, date)
	if err != nil {
		l.Log.Error("capacityLedger.CheckAndAdmit error counting appointments",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDoctorIDKey, doctorID),
			zap.Error(err),
		)
		return false, err
	}

	limit := doctor.DailyCapacity()
	admitted := count < limit

	l.Log.Info("capacityLedger.CheckAndAdmit evaluated",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, doctorID),
		zap.String(constvars.LoggingDateKey, date),
		zap.Int("active_count", count),
		zap.Int("max_patients_per_day", limit),
		zap.Bool("admitted", admitted),
	)
	return admitted, nil
}
