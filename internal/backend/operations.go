package backend

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/hackgods/clinic-admin/internal/clinic"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResult struct {
	Message   string    `json:"message"`
	Admin     string    `json:"admin"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type AddDoctorResponse struct {
	Message        string `json:"message"`
	ID             string `json:"id"`
	Specialization string `json:"specialization"`
}

type UpdateDoctorResponse struct {
	Message        string `json:"message"`
	Specialization string `json:"specialization"`
}

type AppointmentList struct {
	Appointments []clinic.Appointment `json:"appointments"`
}

type AddAppointmentResponse struct {
	Message     string             `json:"message"`
	Appointment clinic.Appointment `json:"appointment"`
}

// Login exchanges credentials for a session token. A 401 or 403 becomes an
// AuthenticationError.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var res LoginResult
	err := c.do(ctx, "login", http.MethodPost, "/login", LoginRequest{Username: username, Password: password}, &res)
	if err != nil {
		var sErr *clinic.ExternalServiceError
		if errors.As(err, &sErr) && (sErr.StatusCode == http.StatusUnauthorized || sErr.StatusCode == http.StatusForbidden) {
			return LoginResult{}, &clinic.AuthenticationError{Message: sErr.Message}
		}
		return LoginResult{}, err
	}
	if res.Token == "" {
		return LoginResult{}, &clinic.ExternalServiceError{Op: "login", StatusCode: http.StatusOK, Message: "no session token in response"}
	}
	if res.Admin == "" {
		res.Admin = username
	}
	return res, nil
}

func (c *Client) ListDoctors(ctx context.Context) ([]clinic.Doctor, error) {
	var out []clinic.Doctor
	if err := c.do(ctx, "list doctors", http.MethodGet, "/doctors", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddDoctor returns the stored doctor: the submitted fields plus the id and
// specialization the backend reports back.
func (c *Client) AddDoctor(ctx context.Context, in clinic.DoctorInput) (clinic.Doctor, error) {
	var res AddDoctorResponse
	if err := c.do(ctx, "add doctor", http.MethodPost, "/doctors", in, &res); err != nil {
		return clinic.Doctor{}, err
	}
	if res.ID == "" {
		return clinic.Doctor{}, &clinic.ExternalServiceError{Op: "add doctor", StatusCode: http.StatusOK, Message: "no id in response"}
	}

	d := clinic.Doctor{
		ID:             res.ID,
		Name:           in.Name,
		Email:          in.Email,
		Specialization: in.Specialization,
	}
	if res.Specialization != "" {
		d.Specialization = res.Specialization
	}
	return d, nil
}

func (c *Client) UpdateDoctor(ctx context.Context, id string, upd clinic.DoctorUpdate) (clinic.Doctor, error) {
	var res UpdateDoctorResponse
	if err := c.do(ctx, "update doctor", http.MethodPut, doctorPath(id), upd, &res); err != nil {
		return clinic.Doctor{}, err
	}

	d := clinic.Doctor{
		ID:             id,
		Name:           upd.Name,
		Email:          upd.Email,
		Specialization: upd.Specialization,
	}
	if res.Specialization != "" {
		d.Specialization = res.Specialization
	}
	return d, nil
}

func (c *Client) DeleteDoctor(ctx context.Context, id string) error {
	return c.do(ctx, "delete doctor", http.MethodDelete, doctorPath(id), nil, &MessageResponse{})
}

func (c *Client) ListAppointments(ctx context.Context) ([]clinic.Appointment, error) {
	var res AppointmentList
	if err := c.do(ctx, "list appointments", http.MethodGet, "/appointments", nil, &res); err != nil {
		return nil, err
	}
	return res.Appointments, nil
}

func (c *Client) AddAppointment(ctx context.Context, a clinic.NewAppointment) (clinic.Appointment, error) {
	var res AddAppointmentResponse
	if err := c.do(ctx, "add appointment", http.MethodPost, "/appointments", a, &res); err != nil {
		return clinic.Appointment{}, err
	}
	if res.Appointment.ID == "" {
		return clinic.Appointment{}, &clinic.ExternalServiceError{Op: "add appointment", StatusCode: http.StatusOK, Message: "no appointment in response"}
	}
	return res.Appointment, nil
}

func (c *Client) DeleteAppointment(ctx context.Context, id string) error {
	return c.do(ctx, "delete appointment", http.MethodDelete, appointmentPath(id), nil, &MessageResponse{})
}
