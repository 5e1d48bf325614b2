package routers

import (
	"fmt"
	"telemed-service/internal/app/delivery/http/controllers"
	"telemed-service/internal/app/delivery/http/middlewares"
	"telemed-service/internal/pkg/constvars"

	"github.com/go-chi/chi/v5"
)

func attachAppointmentRoutes(router chi.Router, middlewares *middlewares.Middlewares, appointmentController *controllers.AppointmentController) {
	router.Use(middlewares.Authenticate)

	router.Get("/", appointmentController.FindAll)
	router.Post("/", appointmentController.CreateAppointment)

	byID := fmt.Sprintf("/{%s}", constvars.URLParamAppointmentID)
	router.Put(byID+"/cancel", appointmentController.CancelAppointment)
	router.With(middlewares.RequireRole(constvars.RoleDoctor)).Put(byID+"/complete", appointmentController.CompleteAppointment)
	router.Get(byID+"/receipt", appointmentController.GetReceipt)
}
