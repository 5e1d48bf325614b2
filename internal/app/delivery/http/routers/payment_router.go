package routers

import (
	"telemed-service/internal/app/delivery/http/controllers"
	"telemed-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachPaymentRoutes(router chi.Router, middlewares *middlewares.Middlewares, paymentController *controllers.PaymentController) {
	router.Use(middlewares.Authenticate)

	router.Get("/config", paymentController.GetConfig)
	router.With(middlewares.PaymentLimiter.Limit).Post("/create-order", paymentController.CreateOrder)
	router.With(middlewares.PaymentLimiter.Limit).Post("/verify", paymentController.VerifyPayment)
}
