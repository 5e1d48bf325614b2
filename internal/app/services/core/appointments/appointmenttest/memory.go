// Package appointmenttest provides in-memory implementations of the
// appointment and doctor repositories for use in tests.
package appointmenttest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository mimics the Postgres repository: writes made inside a
// transaction become visible on commit, and doctor/day and row locks are
// held until the transaction ends.
type MemoryRepository struct {
	mu           sync.Mutex
	appointments map[string]models.Appointment
	locks        map[string]*sync.Mutex
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		appointments: make(map[string]models.Appointment),
		locks:        make(map[string]*sync.Mutex),
	}
}

var _ contracts.AppointmentRepository = (*MemoryRepository)(nil)

func (r *MemoryRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx contracts.AppointmentTransaction) error) error {
	tx := &memoryTransaction{
		repo:    r,
		pending: make(map[string]models.Appointment),
		held:    make(map[string]*sync.Mutex),
	}
	defer tx.release()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	r.mu.Lock()
	for id, appointment := range tx.pending {
		r.appointments[id] = appointment
	}
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appointment, ok := r.appointments[appointmentID]
	if !ok {
		return nil, nil
	}
	return &appointment, nil
}

func (r *MemoryRepository) FindAllByPatientID(ctx context.Context, patientID string) ([]models.Appointment, error) {
	return r.filter(func(a models.Appointment) bool { return a.PatientID == patientID }), nil
}

func (r *MemoryRepository) FindAllByDoctorID(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	return r.filter(func(a models.Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (r *MemoryRepository) GetStats(ctx context.Context) (*models.AppointmentStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := &models.AppointmentStats{TotalAppointments: int64(len(r.appointments))}
	for _, appointment := range r.appointments {
		if appointment.IsPaid() {
			stats.Revenue += appointment.Amount
		}
	}
	return stats, nil
}

// Len reports how many appointments have been committed.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.appointments)
}

// Put stores appointment directly, bypassing any transaction.
func (r *MemoryRepository) Put(appointment models.Appointment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appointments[appointment.ID] = appointment
}

func (r *MemoryRepository) filter(match func(models.Appointment) bool) []models.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]models.Appointment, 0)
	for _, appointment := range r.appointments {
		if match(appointment) {
			result = append(result, appointment)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (r *MemoryRepository) lockFor(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[key] = lock
	}
	return lock
}

type memoryTransaction struct {
	repo    *MemoryRepository
	pending map[string]models.Appointment
	held    map[string]*sync.Mutex
}

func (tx *memoryTransaction) acquire(key string) {
	if _, ok := tx.held[key]; ok {
		return
	}
	lock := tx.repo.lockFor(key)
	lock.Lock()
	tx.held[key] = lock
}

func (tx *memoryTransaction) release() {
	for _, lock := range tx.held {
		lock.Unlock()
	}
}

func (tx *memoryTransaction) LockDoctorDay(ctx context.Context, doctorID, date string) error {
	tx.acquire("day:" + doctorID + "|" + date)
	return nil
}

func (tx *memoryTransaction) CountActiveByDoctorAndDate(ctx context.Context, doctorID, date string) (int, error) {
	active := func(a models.Appointment) bool {
		return a.DoctorID == doctorID && a.Date == date && a.Status != models.AppointmentCanceled
	}

	tx.repo.mu.Lock()
	defer tx.repo.mu.Unlock()

	count := 0
	for id, appointment := range tx.repo.appointments {
		if pending, ok := tx.pending[id]; ok {
			appointment = pending
		}
		if active(appointment) {
			count++
		}
	}
	for id, appointment := range tx.pending {
		if _, committed := tx.repo.appointments[id]; !committed && active(appointment) {
			count++
		}
	}
	return count, nil
}

func (tx *memoryTransaction) Create(ctx context.Context, appointment *models.Appointment) error {
	tx.pending[appointment.ID] = *appointment
	return nil
}

func (tx *memoryTransaction) FindByIDForUpdate(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	tx.acquire("row:" + appointmentID)

	if appointment, ok := tx.pending[appointmentID]; ok {
		return &appointment, nil
	}
	return tx.repo.FindByID(ctx, appointmentID)
}

// Update enforces the unique payment id index the way Postgres does.
func (tx *memoryTransaction) Update(ctx context.Context, appointment *models.Appointment) error {
	if appointment.PaymentID.Valid && tx.paymentIDTaken(appointment.ID, appointment.PaymentID.String) {
		return exceptions.ErrPaymentIDAlreadyRecorded(
			fmt.Errorf("%w: %s", contracts.ErrPaymentIDTaken, appointment.PaymentID.String),
			appointment.PaymentID.String,
		)
	}
	tx.pending[appointment.ID] = *appointment
	return nil
}

func (tx *memoryTransaction) paymentIDTaken(appointmentID, paymentID string) bool {
	tx.repo.mu.Lock()
	defer tx.repo.mu.Unlock()

	for id, other := range tx.repo.appointments {
		if id != appointmentID && other.PaymentID.Valid && other.PaymentID.String == paymentID {
			return true
		}
	}
	for id, other := range tx.pending {
		if id != appointmentID && other.PaymentID.Valid && other.PaymentID.String == paymentID {
			return true
		}
	}
	return false
}

// DoctorDirectory is a fixed set of doctor profiles.
type DoctorDirectory struct {
	doctors []models.Doctor
}

var _ contracts.DoctorRepository = (*DoctorDirectory)(nil)

func NewDoctorDirectory(doctors ...models.Doctor) *DoctorDirectory {
	return &DoctorDirectory{doctors: doctors}
}

// NewDoctor builds a profile with fresh ids. Zero fee or capacity keeps the defaults.
func NewDoctor(name string, fee int64, maxPatientsPerDay int) models.Doctor {
	return models.Doctor{
		ID:                primitive.NewObjectID(),
		UserID:            primitive.NewObjectID(),
		Name:              name,
		Specialization:    "General Medicine",
		ConsultationFee:   fee,
		MaxPatientsPerDay: maxPatientsPerDay,
	}
}

func (d *DoctorDirectory) FindByID(ctx context.Context, doctorID string) (*models.Doctor, error) {
	for _, doctor := range d.doctors {
		if doctor.ID.Hex() == doctorID {
			found := doctor
			return &found, nil
		}
	}
	return nil, nil
}

func (d *DoctorDirectory) FindByUserID(ctx context.Context, userID string) (*models.Doctor, error) {
	for _, doctor := range d.doctors {
		if doctor.UserID.Hex() == userID {
			found := doctor
			return &found, nil
		}
	}
	return nil, nil
}

func (d *DoctorDirectory) FindByIDs(ctx context.Context, doctorIDs []string) (map[string]models.Doctor, error) {
	result := make(map[string]models.Doctor, len(doctorIDs))
	for _, doctorID := range doctorIDs {
		if doctor, _ := d.FindByID(ctx, doctorID); doctor != nil {
			result[doctorID] = *doctor
		}
	}
	return result, nil
}
