package payment_gateway

import (
	"context"
	"errors"
	"fmt"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/dto/responses"
	"time"

	"github.com/razorpay/razorpay-go"
	"go.uber.org/zap"
)

var ErrMalformedOrder = errors.New("gateway order response missing id")

// OrderClient is the Orders resource of the razorpay client.
type OrderClient interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
	Fetch(orderID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type razorpayService struct {
	orders  OrderClient
	timeout time.Duration
	Log     *zap.Logger
}

func NewRazorpayService(keyID, keySecret string, timeout time.Duration, logger *zap.Logger) contracts.PaymentGatewayService {
	client := razorpay.NewClient(keyID, keySecret)
	return newRazorpayService(client.Order, timeout, logger)
}

func newRazorpayService(orders OrderClient, timeout time.Duration, logger *zap.Logger) *razorpayService {
	return &razorpayService{
		orders:  orders,
		timeout: timeout,
		Log:     logger,
	}
}

type orderResult struct {
	body map[string]interface{}
	err  error
}

// CreateOrder mints a gateway order for the requested amount and receipt.
func (s *razorpayService) CreateOrder(ctx context.Context, request *requests.GatewayOrder) (*responses.GatewayOrder, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("razorpayService.CreateOrder called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAmountKey, request.AmountMinorUnits),
	)

	data := map[string]interface{}{
		"amount":   request.AmountMinorUnits,
		"currency": request.Currency,
		"receipt":  request.Receipt,
	}
	if len(request.Notes) > 0 {
		data["notes"] = request.Notes
	}

	body, err := s.call(ctx, "razorpayService.CreateOrder", func() (map[string]interface{}, error) {
		return s.orders.Create(data, nil)
	})
	if err != nil {
		return nil, err
	}

	order, err := parseOrder(body, request.Currency, request.Receipt)
	if err != nil {
		return nil, err
	}
	if order.Amount == 0 {
		order.Amount = request.AmountMinorUnits
	}
	if order.Amount != request.AmountMinorUnits {
		return nil, fmt.Errorf("gateway order amount %d does not match requested %d", order.Amount, request.AmountMinorUnits)
	}
	return order, nil
}

// FetchOrder reads an order back from the gateway, so a payment proof can be
// checked against the amount and receipt the order was created with.
func (s *razorpayService) FetchOrder(ctx context.Context, orderID string) (*responses.GatewayOrder, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("razorpayService.FetchOrder called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOrderIDKey, orderID),
	)

	body, err := s.call(ctx, "razorpayService.FetchOrder", func() (map[string]interface{}, error) {
		return s.orders.Fetch(orderID, nil, nil)
	})
	if err != nil {
		return nil, err
	}

	order, err := parseOrder(body, "", "")
	if err != nil {
		return nil, err
	}
	if order.ID != orderID {
		return nil, fmt.Errorf("gateway returned order %s for %s", order.ID, orderID)
	}
	return order, nil
}

// call runs an SDK request, which takes no context, in its own goroutine and
// stops waiting at the deadline.
func (s *razorpayService) call(ctx context.Context, operation string, request func() (map[string]interface{}, error)) (map[string]interface{}, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resultCh := make(chan orderResult, 1)
	go func() {
		body, err := request()
		resultCh <- orderResult{body: body, err: err}
	}()

	var result orderResult
	select {
	case result = <-resultCh:
	case <-ctx.Done():
		s.Log.Error(operation+" gateway did not answer in time",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(ctx.Err()),
		)
		return nil, ctx.Err()
	}

	if result.err != nil {
		s.Log.Error(operation+" error from gateway",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(result.err),
		)
		return nil, result.err
	}
	return result.body, nil
}

func parseOrder(body map[string]interface{}, currency, receipt string) (*responses.GatewayOrder, error) {
	orderID, _ := body["id"].(string)
	if orderID == "" {
		return nil, ErrMalformedOrder
	}

	order := &responses.GatewayOrder{
		ID:       orderID,
		Currency: currency,
		Receipt:  receipt,
	}

	switch amount := body["amount"].(type) {
	case float64:
		order.Amount = int64(amount)
	case int64:
		order.Amount = amount
	case int:
		order.Amount = int64(amount)
	}
	if value, ok := body["currency"].(string); ok && value != "" {
		order.Currency = value
	}
	if value, ok := body["receipt"].(string); ok && value != "" {
		order.Receipt = value
	}
	if status, ok := body["status"].(string); ok {
		order.Status = status
	}
	return order, nil
}
