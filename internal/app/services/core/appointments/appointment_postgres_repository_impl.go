package appointments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/exceptions"
	"telemed-service/internal/pkg/queries"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	appointmentsTable = "appointments"

	uniqueViolationCode  = "23505"
	uniquePaymentIDIndex = "uq_appointments_payment_id"
)

var appointmentColumns = []interface{}{
	"id",
	"patient_id",
	"doctor_id",
	"appointment_date",
	"appointment_time",
	"status",
	"payment_status",
	"payment_id",
	"amount",
	"created_at",
	"updated_at",
}

type appointmentPostgresRepository struct {
	DB      *sqlx.DB
	Dialect goqu.DialectWrapper
	Log     *zap.Logger
}

func NewAppointmentPostgresRepository(db *sqlx.DB, logger *zap.Logger) contracts.AppointmentRepository {
	return &appointmentPostgresRepository{
		DB:      db,
		Dialect: goqu.Dialect("postgres"),
		Log:     logger,
	}
}

func (repo *appointmentPostgresRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx contracts.AppointmentTransaction) error) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	sqlTx, err := repo.DB.BeginTxx(ctx, nil)
	if err != nil {
		repo.Log.Error("appointmentPostgresRepository.WithinTransaction error beginning transaction",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return exceptions.ErrPostgresDBBeginTx(err)
	}

	if err := fn(ctx, &appointmentTransaction{Tx: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			repo.Log.Warn("appointmentPostgresRepository.WithinTransaction rollback failed",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(rbErr),
			)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		repo.Log.Error("appointmentPostgresRepository.WithinTransaction error committing transaction",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return exceptions.ErrPostgresDBCommitTx(err)
	}
	return nil
}

func (repo *appointmentPostgresRepository) FindByID(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	var appointment models.Appointment
	err := repo.DB.GetContext(ctx, &appointment, queries.GetAppointmentByID, appointmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return &appointment, nil
}

func (repo *appointmentPostgresRepository) FindAllByPatientID(ctx context.Context, patientID string) ([]models.Appointment, error) {
	return repo.findAllWhere(ctx, goqu.Ex{"patient_id": patientID})
}

func (repo *appointmentPostgresRepository) FindAllByDoctorID(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	return repo.findAllWhere(ctx, goqu.Ex{"doctor_id": doctorID})
}

func (repo *appointmentPostgresRepository) findAllWhere(ctx context.Context, filter goqu.Ex) ([]models.Appointment, error) {
	query, args, err := repo.Dialect.
		From(appointmentsTable).
		Select(appointmentColumns...).
		Where(filter).
		Order(goqu.I("created_at").Desc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, exceptions.ErrPostgresDBBuildQuery(err)
	}

	appointments := make([]models.Appointment, 0)
	if err := repo.DB.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return appointments, nil
}

// GetStats counts every appointment and sums the booked amount of paid ones.
func (repo *appointmentPostgresRepository) GetStats(ctx context.Context) (*models.AppointmentStats, error) {
	revenue := goqu.COALESCE(
		goqu.SUM(goqu.Case().
			When(goqu.C("payment_status").Eq(string(models.PaymentPaid)), goqu.C("amount")).
			Else(0)),
		0,
	)

	query, args, err := repo.Dialect.
		From(appointmentsTable).
		Select(
			goqu.COUNT(goqu.Star()).As("total_appointments"),
			revenue.As("revenue"),
		).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, exceptions.ErrPostgresDBBuildQuery(err)
	}

	var stats models.AppointmentStats
	if err := repo.DB.GetContext(ctx, &stats, query, args...); err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return &stats, nil
}

type appointmentTransaction struct {
	Tx *sqlx.Tx
}

func (tx *appointmentTransaction) LockDoctorDay(ctx context.Context, doctorID, date string) error {
	if _, err := tx.Tx.ExecContext(ctx, queries.LockDoctorDay, doctorID+"|"+date); err != nil {
		return exceptions.ErrPostgresDBLock(err)
	}
	return nil
}

func (tx *appointmentTransaction) CountActiveByDoctorAndDate(ctx context.Context, doctorID, date string) (int, error) {
	var count int
	if err := tx.Tx.GetContext(ctx, &count, queries.CountActiveAppointmentsByDoctorAndDate, doctorID, date); err != nil {
		return 0, exceptions.ErrPostgresDBFindData(err)
	}
	return count, nil
}

func (tx *appointmentTransaction) Create(ctx context.Context, appointment *models.Appointment) error {
	_, err := tx.Tx.ExecContext(ctx, queries.InsertAppointment,
		appointment.ID,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.Date,
		appointment.Time,
		appointment.Status,
		appointment.PaymentStatus,
		appointment.PaymentID,
		appointment.Amount,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return exceptions.ErrPostgresDBInsertData(err)
	}
	return nil
}

func (tx *appointmentTransaction) FindByIDForUpdate(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	var appointment models.Appointment
	err := tx.Tx.GetContext(ctx, &appointment, queries.GetAppointmentByIDForUpdate, appointmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return &appointment, nil
}

func (tx *appointmentTransaction) Update(ctx context.Context, appointment *models.Appointment) error {
	_, err := tx.Tx.ExecContext(ctx, queries.UpdateAppointmentState,
		appointment.ID,
		appointment.Status,
		appointment.PaymentStatus,
		appointment.PaymentID,
		appointment.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode && pqErr.Constraint == uniquePaymentIDIndex {
			return exceptions.ErrPaymentIDAlreadyRecorded(fmt.Errorf("%w: %v", contracts.ErrPaymentIDTaken, err), appointment.PaymentID.String)
		}
		return exceptions.ErrPostgresDBUpdateData(err)
	}
	return nil
}
