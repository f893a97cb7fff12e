package api

import (
	"time"

	"github.com/hackgods/clinic-admin/internal/clinic"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message   string    `json:"message"`
	Admin     string    `json:"admin"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type DoctorRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Specialization string `json:"specialization"`
}

type CreateDoctorResponse struct {
	Message        string `json:"message"`
	ID             string `json:"id"`
	Specialization string `json:"specialization"`
}

type UpdateDoctorResponse struct {
	Message        string `json:"message"`
	Specialization string `json:"specialization"`
}

type AppointmentListResponse struct {
	Appointments []clinic.Appointment `json:"appointments"`
}

type CreateAppointmentResponse struct {
	Message     string             `json:"message"`
	Appointment clinic.Appointment `json:"appointment"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
