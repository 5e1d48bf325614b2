package responses

type AdminStats struct {
	TotalUsers        int64 `json:"totalUsers"`
	TotalDoctors      int64 `json:"totalDoctors"`
	TotalAppointments int64 `json:"totalAppointments"`
	Revenue           int64 `json:"revenue"`
}
