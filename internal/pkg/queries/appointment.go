package queries

const (
	LockDoctorDay = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`

	CountActiveAppointmentsByDoctorAndDate = `
		SELECT COUNT(*)
		FROM appointments
		WHERE doctor_id = $1
			AND appointment_date = $2
			AND status <> 'canceled'
	`

	InsertAppointment = `
		INSERT INTO appointments (
			id,
			patient_id,
			doctor_id,
			appointment_date,
			appointment_time,
			status,
			payment_status,
			payment_id,
			amount,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	GetAppointmentByID = `
		SELECT
			id,
			patient_id,
			doctor_id,
			appointment_date,
			appointment_time,
			status,
			payment_status,
			payment_id,
			amount,
			created_at,
			updated_at
		FROM appointments
		WHERE id = $1
	`

	GetAppointmentByIDForUpdate = GetAppointmentByID + ` FOR UPDATE`

	// amount and patient_id are intentionally absent: they never change after booking.
	UpdateAppointmentState = `
		UPDATE appointments
		SET
			status = $2,
			payment_status = $3,
			payment_id = $4,
			updated_at = $5
		WHERE id = $1
	`
)
