package contracts

import (
	"context"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/dto/responses"
)

type PaymentUsecase interface {
	CreateOrder(ctx context.Context, session *models.Session, request *requests.CreatePaymentOrder) (*responses.PaymentOrder, error)
	VerifyPayment(ctx context.Context, session *models.Session, request *requests.VerifyPayment) (*responses.PaymentVerification, error)
	GetConfig(ctx context.Context) *responses.PaymentConfig
}

type PaymentGatewayService interface {
	CreateOrder(ctx context.Context, request *requests.GatewayOrder) (*responses.GatewayOrder, error)
	FetchOrder(ctx context.Context, orderID string) (*responses.GatewayOrder, error)
}
