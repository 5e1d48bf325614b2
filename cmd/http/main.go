package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"telemed-service/internal/app/config"
	"telemed-service/internal/app/delivery/http/controllers"
	"telemed-service/internal/app/delivery/http/middlewares"
	"telemed-service/internal/app/delivery/http/routers"
	"telemed-service/internal/app/drivers/database"
	"telemed-service/internal/app/drivers/logger"
	"telemed-service/internal/app/drivers/mailer"
	"telemed-service/internal/app/drivers/messaging"
	"telemed-service/internal/app/drivers/storage"
	"telemed-service/internal/app/services/core/admin"
	"telemed-service/internal/app/services/core/appointments"
	"telemed-service/internal/app/services/core/capacity"
	"telemed-service/internal/app/services/core/doctors"
	"telemed-service/internal/app/services/core/notifications"
	"telemed-service/internal/app/services/core/payments"
	"telemed-service/internal/app/services/core/users"
	"telemed-service/internal/app/services/shared/locker"
	smtpMailer "telemed-service/internal/app/services/shared/mailer"
	"telemed-service/internal/app/services/shared/mailqueue"
	"telemed-service/internal/app/services/shared/payment_gateway"
	"telemed-service/internal/app/services/shared/receipts"
	redisRepo "telemed-service/internal/app/services/shared/redis"
	minioStorage "telemed-service/internal/app/services/shared/storage"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	zapLogger := logger.NewZapLogger(driverConfig, internalConfig)

	location, err := time.LoadLocation(internalConfig.App.Timezone)
	if err != nil {
		zapLogger.Fatal("Error loading location", zap.Error(err))
	}
	time.Local = location

	bootstrap := &config.Bootstrap{
		Router:         chi.NewRouter(),
		MongoDB:        database.NewMongoDB(driverConfig),
		Postgres:       database.NewPostgresDB(driverConfig),
		Redis:          database.NewRedisClient(driverConfig),
		RabbitMQ:       messaging.NewRabbitMQ(driverConfig),
		Minio:          storage.NewMinio(driverConfig, internalConfig.Minio.BucketName),
		Logger:         zapLogger,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
	}

	if err := bootstrapingTheApp(bootstrap); err != nil {
		zapLogger.Fatal("Failed to bootstrap the app", zap.Error(err))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", internalConfig.App.Address, internalConfig.App.Port),
		Handler:           bootstrap.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("Server started", zap.String("address", server.Addr))
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Println("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeoutInSeconds),
	)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	err = bootstrap.Shutdown(shutdownCtx)
	if err != nil {
		log.Printf("Failed to release resources: %v", err)
	}

	log.Println("Server exiting")
}

func bootstrapingTheApp(bootstrap *config.Bootstrap) error {
	internalConfig := bootstrap.InternalConfig
	dbName := bootstrap.DriverConfig.MongoDB.DbName
	log := bootstrap.Logger

	// Shared
	redisRepository := redisRepo.NewRedisRepository(bootstrap.Redis)
	lockService := locker.NewLockService(redisRepository, log)
	mailQueue, err := mailqueue.NewMailQueue(bootstrap.RabbitMQ, log, internalConfig.RabbitMQ.MailerQueue, internalConfig.NotificationWorker.MaxBatch)
	if err != nil {
		return fmt.Errorf("mail queue: %w", err)
	}
	mailSender := smtpMailer.NewSMTPMailSender(mailer.NewSMTPDialer(bootstrap.DriverConfig), internalConfig.Mailer.EmailSender, log)
	receiptService := receipts.NewReceiptService(minioStorage.NewMinioStorage(bootstrap.Minio), internalConfig.Minio.BucketName, log)
	paymentGateway := payment_gateway.NewRazorpayService(
		internalConfig.PaymentGateway.KeyID,
		internalConfig.PaymentGateway.KeySecret,
		time.Duration(internalConfig.App.PaymentGatewayRequestTimeoutInSeconds)*time.Second,
		log,
	)

	// Repositories
	userRepository := users.NewUserMongoRepository(bootstrap.MongoDB, dbName)
	doctorRepository := doctors.NewDoctorMongoRepository(bootstrap.MongoDB, dbName)
	appointmentRepository := appointments.NewAppointmentPostgresRepository(bootstrap.Postgres, log)

	// Usecases
	notificationService := notifications.NewNotificationService(userRepository, mailQueue, log)
	appointmentUsecase := appointments.NewAppointmentUsecase(
		appointmentRepository,
		doctorRepository,
		capacity.NewCapacityLedger(log),
		receiptService,
		internalConfig,
		log,
	)
	paymentUsecase := payments.NewPaymentUsecase(
		appointmentRepository,
		paymentGateway,
		lockService,
		notificationService,
		internalConfig,
		log,
	)
	adminUsecase := admin.NewAdminUsecase(appointmentRepository, userRepository, log)

	// Notification worker
	worker := notifications.NewWorker(log, internalConfig, lockService, mailQueue, mailSender)
	worker.Start(context.Background())
	bootstrap.WorkerStop = worker.Stop

	routers.SetupRoutes(
		bootstrap.Router,
		internalConfig,
		middlewares.NewMiddlewares(log, userRepository, internalConfig),
		controllers.NewAppointmentController(log, appointmentUsecase),
		controllers.NewPaymentController(log, paymentUsecase, internalConfig),
		controllers.NewAdminController(log, adminUsecase),
	)
	return nil
}
