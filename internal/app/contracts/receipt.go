package contracts

import (
	"context"
	"io"
	"telemed-service/internal/app/models"
	"time"
)

type ReceiptService interface {
	Render(appointment *models.Appointment, doctor *models.Doctor, platformFee int64, currency string) ([]byte, error)
	Store(ctx context.Context, objectKey string, pdf []byte) error
	PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}

type Storage interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, size int64, contentType string) error
	GetObjectUrlWithExpiryTime(ctx context.Context, bucketName, objectName string, expiryTime time.Duration) (string, error)
}
