package payments

import (
	"context"
	"errors"
	"sync"
	"telemed-service/internal/app/config"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/app/models"
	"telemed-service/internal/app/services/core/appointments"
	"telemed-service/internal/app/services/core/appointments/appointmenttest"
	"telemed-service/internal/app/services/core/capacity"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/dto/responses"
	"telemed-service/internal/pkg/exceptions"
	"telemed-service/internal/pkg/utils"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const testKeySecret = "rzp_test_secret"

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateOrder(ctx context.Context, request *requests.GatewayOrder) (*responses.GatewayOrder, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*responses.GatewayOrder), args.Error(1)
}

func (m *mockGateway) FetchOrder(ctx context.Context, orderID string) (*responses.GatewayOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*responses.GatewayOrder), args.Error(1)
}

type mockLocker struct {
	mock.Mock
}

func (m *mockLocker) TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	args := m.Called(ctx, key, expiration)
	return args.Bool(0), args.String(1), args.Error(2)
}

func (m *mockLocker) Unlock(ctx context.Context, key, lockValue string) error {
	return m.Called(ctx, key, lockValue).Error(0)
}

func (m *mockLocker) Refresh(ctx context.Context, key, lockValue string, expiration time.Duration) error {
	return m.Called(ctx, key, lockValue, expiration).Error(0)
}

type countingNotifier struct {
	mu       sync.Mutex
	notified []string
	err      error
}

func (n *countingNotifier) NotifyAppointmentConfirmed(ctx context.Context, appointment *models.Appointment) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notified = append(n.notified, appointment.ID)
	return n.err
}

func (n *countingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notified)
}

type paymentFixture struct {
	usecase  *paymentUsecase
	repo     *appointmenttest.MemoryRepository
	gateway  *mockGateway
	locker   *mockLocker
	notifier *countingNotifier
	config   *config.InternalConfig
}

func newPaymentFixture() *paymentFixture {
	repo := appointmenttest.NewMemoryRepository()
	gateway := new(mockGateway)
	locker := new(mockLocker)
	notifier := &countingNotifier{}
	internalConfig := &config.InternalConfig{
		App: config.AppConfig{PaymentGatewayRequestTimeoutInSeconds: 15},
		PaymentGateway: config.AppPaymentGateway{
			KeyID:       "rzp_test_key",
			KeySecret:   testKeySecret,
			PlatformFee: constvars.DefaultPlatformFee,
			Currency:    constvars.DefaultPaymentCurrency,
		},
	}

	usecase := NewPaymentUsecase(repo, gateway, locker, notifier, internalConfig, zap.NewNop()).(*paymentUsecase)
	return &paymentFixture{
		usecase:  usecase,
		repo:     repo,
		gateway:  gateway,
		locker:   locker,
		notifier: notifier,
		config:   internalConfig,
	}
}

func seedAppointment(repo *appointmenttest.MemoryRepository, patientID string, amount int64) models.Appointment {
	appointment := models.Appointment{
		ID:            primitive.NewObjectID().Hex(),
		PatientID:     patientID,
		DoctorID:      primitive.NewObjectID().Hex(),
		Date:          "2025-03-01",
		Time:          "10:30",
		Status:        models.AppointmentScheduled,
		PaymentStatus: models.PaymentPending,
		Amount:        amount,
	}
	appointment.SetCreatedAtUpdatedAt()
	repo.Put(appointment)
	return appointment
}

// expectOrder makes the gateway report orderID as minted for appointment.
func (fx *paymentFixture) expectOrder(orderID string, appointment models.Appointment) {
	fx.gateway.On("FetchOrder", mock.Anything, orderID).Return(&responses.GatewayOrder{
		ID:       orderID,
		Amount:   OrderAmountMinorUnits(appointment.Amount, constvars.DefaultPlatformFee),
		Currency: constvars.DefaultPaymentCurrency,
		Receipt:  "receipt_" + appointment.ID,
		Status:   "paid",
	}, nil)
}

func ownerOf(appointment models.Appointment) *models.Session {
	return &models.Session{UserID: appointment.PatientID, Role: constvars.RolePatient}
}

func verifyRequest(appointmentID, orderID, paymentID string) *requests.VerifyPayment {
	return &requests.VerifyPayment{
		AppointmentID:    appointmentID,
		GatewayOrderID:   orderID,
		GatewayPaymentID: paymentID,
		GatewaySignature: utils.GeneratePaymentSignature(testKeySecret, orderID, paymentID),
	}
}

func assertStatusCode(t *testing.T, err error, statusCode int) {
	t.Helper()
	var customErr *exceptions.CustomError
	require.ErrorAs(t, err, &customErr)
	assert.Equal(t, statusCode, customErr.StatusCode)
}

func TestOrderAmountMinorUnits(t *testing.T) {
	assert.Equal(t, int64(54900), OrderAmountMinorUnits(500, 49))
	assert.Equal(t, int64(84900), OrderAmountMinorUnits(800, 49))
	assert.Equal(t, int64(4900), OrderAmountMinorUnits(0, 49))
}

func TestCreateOrder_Success(t *testing.T) {
	fx := newPaymentFixture()
	session := &models.Session{UserID: "patient-1", Role: constvars.RolePatient}
	appointment := seedAppointment(fx.repo, session.UserID, 500)
	lockKey := "payment:order:" + appointment.ID

	fx.locker.On("TryLock", mock.Anything, lockKey, 20*time.Second).Return(true, "token-1", nil).Once()
	fx.locker.On("Unlock", mock.Anything, lockKey, "token-1").Return(nil).Once()
	fx.gateway.On("CreateOrder", mock.Anything, mock.MatchedBy(func(request *requests.GatewayOrder) bool {
		return request.AmountMinorUnits == 54900 &&
			request.Currency == "INR" &&
			request.Receipt == "receipt_"+appointment.ID
	})).Return(&responses.GatewayOrder{
		ID:       "order_abc",
		Amount:   54900,
		Currency: "INR",
		Receipt:  "receipt_" + appointment.ID,
		Status:   "created",
	}, nil).Once()

	order, err := fx.usecase.CreateOrder(context.Background(), session, &requests.CreatePaymentOrder{AppointmentID: appointment.ID})
	require.NoError(t, err)
	assert.Equal(t, "order_abc", order.OrderID)
	assert.Equal(t, int64(54900), order.Amount)
	assert.Equal(t, "rzp_test_key", order.KeyID)
	fx.gateway.AssertExpectations(t)
	fx.locker.AssertExpectations(t)
}

func TestCreateOrder_Rejections(t *testing.T) {
	owner := &models.Session{UserID: "patient-1", Role: constvars.RolePatient}

	t.Run("not found", func(t *testing.T) {
		fx := newPaymentFixture()
		_, err := fx.usecase.CreateOrder(context.Background(), owner, &requests.CreatePaymentOrder{AppointmentID: "missing"})
		assertStatusCode(t, err, constvars.StatusNotFound)
	})

	t.Run("someone else's appointment", func(t *testing.T) {
		fx := newPaymentFixture()
		appointment := seedAppointment(fx.repo, "patient-2", 500)
		_, err := fx.usecase.CreateOrder(context.Background(), owner, &requests.CreatePaymentOrder{AppointmentID: appointment.ID})
		assertStatusCode(t, err, constvars.StatusForbidden)
	})

	t.Run("already paid", func(t *testing.T) {
		fx := newPaymentFixture()
		appointment := seedAppointment(fx.repo, owner.UserID, 500)
		appointment.MarkPaid("pay_1")
		fx.repo.Put(appointment)
		_, err := fx.usecase.CreateOrder(context.Background(), owner, &requests.CreatePaymentOrder{AppointmentID: appointment.ID})
		assertStatusCode(t, err, constvars.StatusConflict)
	})

	t.Run("canceled", func(t *testing.T) {
		fx := newPaymentFixture()
		appointment := seedAppointment(fx.repo, owner.UserID, 500)
		appointment.Status = models.AppointmentCanceled
		fx.repo.Put(appointment)
		_, err := fx.usecase.CreateOrder(context.Background(), owner, &requests.CreatePaymentOrder{AppointmentID: appointment.ID})
		assertStatusCode(t, err, constvars.StatusConflict)
	})

	t.Run("order already being created", func(t *testing.T) {
		fx := newPaymentFixture()
		appointment := seedAppointment(fx.repo, owner.UserID, 500)
		fx.locker.On("TryLock", mock.Anything, mock.Anything, mock.Anything).Return(false, "", nil).Once()

		_, err := fx.usecase.CreateOrder(context.Background(), owner, &requests.CreatePaymentOrder{AppointmentID: appointment.ID})
		assertStatusCode(t, err, constvars.StatusConflict)
		fx.gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})
}

func TestCreateOrder_GatewayFailures(t *testing.T) {
	tests := []struct {
		name       string
		gatewayErr error
	}{
		{name: "gateway error", gatewayErr: errors.New("BAD_REQUEST_ERROR")},
		{name: "gateway timeout", gatewayErr: context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newPaymentFixture()
			session := &models.Session{UserID: "patient-1", Role: constvars.RolePatient}
			appointment := seedAppointment(fx.repo, session.UserID, 500)

			fx.locker.On("TryLock", mock.Anything, mock.Anything, mock.Anything).Return(true, "token-1", nil).Once()
			fx.locker.On("Unlock", mock.Anything, mock.Anything, "token-1").Return(nil).Once()
			fx.gateway.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, tt.gatewayErr).Once()

			_, err := fx.usecase.CreateOrder(context.Background(), session, &requests.CreatePaymentOrder{AppointmentID: appointment.ID})
			assertStatusCode(t, err, constvars.StatusBadGateway)
			assert.ErrorIs(t, err, tt.gatewayErr)
			fx.locker.AssertExpectations(t)
		})
	}
}

func TestVerifyPayment_IdempotentNotifiesOnce(t *testing.T) {
	fx := newPaymentFixture()
	appointment := seedAppointment(fx.repo, "patient-1", 500)
	fx.expectOrder("order_abc", appointment)
	request := verifyRequest(appointment.ID, "order_abc", "pay_xyz")

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := fx.usecase.VerifyPayment(context.Background(), ownerOf(appointment), request)
			if assert.NoError(t, err) {
				assert.True(t, result.Verified)
				assert.Equal(t, string(models.PaymentPaid), result.Appointment.PaymentStatus)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, fx.notifier.count())

	stored, err := fx.repo.FindByID(context.Background(), appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, "pay_xyz", stored.PaymentID.String)
	assert.Equal(t, models.AppointmentScheduled, stored.Status)
}

func TestVerifyPayment_TamperedSignature(t *testing.T) {
	fx := newPaymentFixture()
	appointment := seedAppointment(fx.repo, "patient-1", 500)
	fx.expectOrder("order_def", appointment)

	request := verifyRequest(appointment.ID, "order_abc", "pay_xyz")
	request.GatewayPaymentID = "pay_forged"

	result, err := fx.usecase.VerifyPayment(context.Background(), ownerOf(appointment), request)
	assert.Nil(t, result)
	assertStatusCode(t, err, constvars.StatusBadRequest)
	fx.gateway.AssertNotCalled(t, "FetchOrder", mock.Anything, "order_abc")

	stored, err := fx.repo.FindByID(context.Background(), appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, stored.PaymentStatus)
	assert.False(t, stored.PaymentID.Valid)
	assert.Equal(t, 0, fx.notifier.count())

	result, err = fx.usecase.VerifyPayment(context.Background(), ownerOf(appointment), verifyRequest(appointment.ID, "order_def", "pay_retry"))
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, 1, fx.notifier.count())
}

func TestVerifyPayment_ForgedCallbackCannotDowngradePaid(t *testing.T) {
	fx := newPaymentFixture()
	appointment := seedAppointment(fx.repo, "patient-1", 500)
	fx.expectOrder("order_abc", appointment)

	_, err := fx.usecase.VerifyPayment(context.Background(), ownerOf(appointment), verifyRequest(appointment.ID, "order_abc", "pay_xyz"))
	require.NoError(t, err)

	forged := verifyRequest(appointment.ID, "order_abc", "pay_xyz")
	forged.GatewaySignature = "deadbeef"
	_, err = fx.usecase.VerifyPayment(context.Background(), ownerOf(appointment), forged)
	assertStatusCode(t, err, constvars.StatusBadRequest)

	stored, err := fx.repo.FindByID(context.Background(), appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, "pay_xyz", stored.PaymentID.String)
}

func TestVerifyPayment_ProofFromAnotherAppointmentIsRejected(t *testing.T) {
	fx := newPaymentFixture()
	cheap := seedAppointment(fx.repo, "patient-1", 100)
	expensive := seedAppointment(fx.repo, "patient-1", 5000)
	fx.expectOrder("order_cheap", cheap)

	_, err := fx.usecase.VerifyPayment(context.Background(), ownerOf(cheap), verifyRequest(cheap.ID, "order_cheap", "pay_cheap"))
	require.NoError(t, err)

	result, err := fx.usecase.VerifyPayment(context.Background(), ownerOf(expensive), verifyRequest(expensive.ID, "order_cheap", "pay_cheap"))
	assert.Nil(t, result)
	assertStatusCode(t, err, constvars.StatusBadRequest)

	stored, err := fx.repo.FindByID(context.Background(), expensive.ID)
	require.NoError(t, err)
	assert.NotEqual(t, models.PaymentPaid, stored.PaymentStatus)
	assert.False(t, stored.PaymentID.Valid)
	assert.Equal(t, []string{cheap.ID}, fx.notifier.notified)
}

func TestVerifyPayment_OrderAmountMustMatch(t *testing.T) {
	fx := newPaymentFixture()
	appointment := seedAppointment(fx.repo, "patient-1", 800)
	fx.gateway.On("FetchOrder", mock.Anything, "order_low").Return(&responses.GatewayOrder{
		ID:       "order_low",
		Amount:   4900,
		Currency: "INR",
		Receipt:  "receipt_" + appointment.ID,
	}, nil).Once()

	_, err := fx.usecase.VerifyPayment(context.Background(), ownerOf(appointment), verifyRequest(appointment.ID, "order_low", "pay_low"))
	assertStatusCode(t, err, constvars.StatusBadRequest)

	stored, err := fx.repo.FindByID(context.Background(), appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, stored.PaymentStatus)
	assert.Equal(t, 0, fx.notifier.count())
}

func TestVerifyPayment_PaymentIDRecordedElsewhereIsRejected(t *testing.T) {
	fx := newPaymentFixture()
	first := seedAppointment(fx.repo, "patient-1", 500)
	second := seedAppointment(fx.repo, "patient-1", 500)
	fx.expectOrder("order_first", first)
	fx.expectOrder("order_second", second)

	_, err := fx.usecase.VerifyPayment(context.Background(), ownerOf(first), verifyRequest(first.ID, "order_first", "pay_shared"))
	require.NoError(t, err)

	_, err = fx.usecase.VerifyPayment(context.Background(), ownerOf(second), verifyRequest(second.ID, "order_second", "pay_shared"))
	assertStatusCode(t, err, constvars.StatusBadRequest)
	assert.ErrorIs(t, err, contracts.ErrPaymentIDTaken)

	stored, err := fx.repo.FindByID(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, stored.PaymentStatus)
	assert.Equal(t, 1, fx.notifier.count())
}

func TestVerifyPayment_OwnerOrAdminOnly(t *testing.T) {
	fx := newPaymentFixture()
	appointment := seedAppointment(fx.repo, "patient-1", 500)
	fx.expectOrder("order_abc", appointment)
	request := verifyRequest(appointment.ID, "order_abc", "pay_xyz")

	stranger := &models.Session{UserID: "patient-2", Role: constvars.RolePatient}
	_, err := fx.usecase.VerifyPayment(context.Background(), stranger, request)
	assertStatusCode(t, err, constvars.StatusForbidden)

	stored, err := fx.repo.FindByID(context.Background(), appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, stored.PaymentStatus)

	admin := &models.Session{UserID: "admin-1", Role: constvars.RoleAdmin}
	result, err := fx.usecase.VerifyPayment(context.Background(), admin, request)
	require.NoError(t, err)
	assert.True(t, result.Verified)
}

func TestVerifyPayment_GatewayFetchFailure(t *testing.T) {
	fx := newPaymentFixture()
	appointment := seedAppointment(fx.repo, "patient-1", 500)
	fx.gateway.On("FetchOrder", mock.Anything, "order_abc").Return(nil, errors.New("SERVER_ERROR")).Once()

	_, err := fx.usecase.VerifyPayment(context.Background(), ownerOf(appointment), verifyRequest(appointment.ID, "order_abc", "pay_xyz"))
	assertStatusCode(t, err, constvars.StatusBadGateway)

	stored, err := fx.repo.FindByID(context.Background(), appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, stored.PaymentStatus)
}

func TestVerifyPayment_CanceledIsRecordedWithoutNotification(t *testing.T) {
	fx := newPaymentFixture()
	appointment := seedAppointment(fx.repo, "patient-1", 500)
	appointment.Status = models.AppointmentCanceled
	fx.repo.Put(appointment)
	fx.expectOrder("order_abc", appointment)

	result, err := fx.usecase.VerifyPayment(context.Background(), ownerOf(appointment), verifyRequest(appointment.ID, "order_abc", "pay_xyz"))
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, string(models.AppointmentCanceled), result.Appointment.Status)
	assert.Equal(t, string(models.PaymentPaid), result.Appointment.PaymentStatus)
	assert.Equal(t, 0, fx.notifier.count())
}

func TestVerifyPayment_NotificationFailureIsSwallowed(t *testing.T) {
	fx := newPaymentFixture()
	fx.notifier.err = errors.New("broker unavailable")
	appointment := seedAppointment(fx.repo, "patient-1", 500)
	fx.expectOrder("order_abc", appointment)

	result, err := fx.usecase.VerifyPayment(context.Background(), ownerOf(appointment), verifyRequest(appointment.ID, "order_abc", "pay_xyz"))
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, 1, fx.notifier.count())
}

func TestVerifyPayment_NotFound(t *testing.T) {
	fx := newPaymentFixture()
	fx.gateway.On("FetchOrder", mock.Anything, "order_abc").Return(&responses.GatewayOrder{ID: "order_abc"}, nil).Once()

	session := &models.Session{UserID: "patient-1", Role: constvars.RolePatient}
	_, err := fx.usecase.VerifyPayment(context.Background(), session, verifyRequest("missing", "order_abc", "pay_xyz"))
	assertStatusCode(t, err, constvars.StatusNotFound)
}

func TestBookAndPay_EndToEnd(t *testing.T) {
	fx := newPaymentFixture()
	doctor := appointmenttest.NewDoctor("Dr. Mehta", 800, 5)
	logger := zap.NewNop()
	appointmentUsecase := appointments.NewAppointmentUsecase(
		fx.repo,
		appointmenttest.NewDoctorDirectory(doctor),
		capacity.NewCapacityLedger(logger),
		nil,
		fx.config,
		logger,
	)
	session := &models.Session{UserID: primitive.NewObjectID().Hex(), Role: constvars.RolePatient}

	booked, err := appointmentUsecase.CreateAppointment(context.Background(), session, &requests.CreateAppointment{
		DoctorID: doctor.ID.Hex(),
		Date:     "2025-04-10",
		Time:     "16:00",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(800), booked.Amount)

	fx.locker.On("TryLock", mock.Anything, mock.Anything, mock.Anything).Return(true, "token-1", nil).Once()
	fx.locker.On("Unlock", mock.Anything, mock.Anything, "token-1").Return(nil).Once()
	fx.gateway.On("CreateOrder", mock.Anything, mock.MatchedBy(func(request *requests.GatewayOrder) bool {
		return request.AmountMinorUnits == 84900
	})).Return(&responses.GatewayOrder{ID: "order_e2e", Amount: 84900, Currency: "INR", Receipt: "receipt_" + booked.ID}, nil).Once()

	order, err := fx.usecase.CreateOrder(context.Background(), session, &requests.CreatePaymentOrder{AppointmentID: booked.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(84900), order.Amount)

	fx.gateway.On("FetchOrder", mock.Anything, order.OrderID).Return(&responses.GatewayOrder{
		ID:       order.OrderID,
		Amount:   84900,
		Currency: "INR",
		Receipt:  "receipt_" + booked.ID,
		Status:   "paid",
	}, nil).Once()

	result, err := fx.usecase.VerifyPayment(context.Background(), session, verifyRequest(booked.ID, order.OrderID, "pay_e2e"))
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, string(models.AppointmentScheduled), result.Appointment.Status)
	assert.Equal(t, string(models.PaymentPaid), result.Appointment.PaymentStatus)
	assert.Equal(t, "pay_e2e", result.Appointment.PaymentID)
	assert.Equal(t, []string{booked.ID}, fx.notifier.notified)

	list, err := appointmentUsecase.FindAll(context.Background(), session)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, string(models.PaymentPaid), list[0].PaymentStatus)
	assert.Equal(t, "Dr. Mehta", list[0].Doctor.Name)
}
