package requests

type CreateAppointment struct {
	DoctorID string `json:"doctorId" validate:"required"`
	Date     string `json:"date" validate:"required,date_only"`
	Time     string `json:"time" validate:"required,time_of_day"`
}
