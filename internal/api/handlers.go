package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-admin/internal/appointment"
	"github.com/hackgods/clinic-admin/internal/auth"
	"github.com/hackgods/clinic-admin/internal/catalog"
	"github.com/hackgods/clinic-admin/internal/clinic"
	"github.com/hackgods/clinic-admin/internal/store"
)

type handler struct {
	store     store.Store
	catalog   *catalog.Store
	log       zerolog.Logger
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return false
	}
	return true
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decode(w, r, &req) {
		return
	}

	admin, err := h.store.GetAdmin(r.Context(), req.Username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.internal(w, r, err)
		return
	}
	if err != nil || !auth.CheckPassword(admin.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password")
		return
	}

	token, exp, err := auth.MakeToken(admin.Username, h.jwtSecret, h.tokenTTL, h.now())
	if err != nil {
		h.internal(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Message:   "Login successful",
		Admin:     admin.Username,
		Token:     token,
		ExpiresAt: exp.UTC(),
	})
}

func (h *handler) listDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.store.ListDoctors(r.Context())
	if err != nil {
		h.internal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doctors)
}

// validDoctor normalizes the request and resolves the specialization to a
// catalog label.
func (h *handler) validDoctor(req *DoctorRequest, passwordRequired bool) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	switch {
	case req.Name == "":
		return errors.New("name is required")
	case req.Email == "":
		return errors.New("email is required")
	case passwordRequired && req.Password == "":
		return errors.New("password is required")
	case req.Specialization == "":
		return errors.New("specialization is required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return fmt.Errorf("%q is not a valid email address", req.Email)
	}
	label, ok := h.catalog.Canonical(req.Specialization)
	if !ok {
		return fmt.Errorf("unknown specialization %q", req.Specialization)
	}
	req.Specialization = label
	return nil
}

func (h *handler) createDoctor(w http.ResponseWriter, r *http.Request) {
	var req DoctorRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.validDoctor(&req, true); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_doctor", err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.internal(w, r, err)
		return
	}

	d, err := h.store.CreateDoctor(r.Context(), clinic.Doctor{
		Name:           req.Name,
		Email:          req.Email,
		Specialization: req.Specialization,
	}, hash)
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateDoctorResponse{
		Message:        "Doctor added successfully",
		ID:             d.ID,
		Specialization: d.Specialization,
	})
}

func (h *handler) updateDoctor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req DoctorRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.validDoctor(&req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_doctor", err.Error())
		return
	}

	hash := ""
	if req.Password != "" {
		var err error
		if hash, err = auth.HashPassword(req.Password); err != nil {
			h.internal(w, r, err)
			return
		}
	}

	err := h.store.UpdateDoctor(r.Context(), clinic.Doctor{
		ID:             id,
		Name:           req.Name,
		Email:          req.Email,
		Specialization: req.Specialization,
	}, hash)
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, UpdateDoctorResponse{
		Message:        "Doctor updated successfully",
		Specialization: req.Specialization,
	})
}

func (h *handler) deleteDoctor(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteDoctor(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Doctor deleted successfully"})
}

func (h *handler) listAppointments(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListAppointments(r.Context())
	if err != nil {
		h.internal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AppointmentListResponse{Appointments: items})
}

func (h *handler) createAppointment(w http.ResponseWriter, r *http.Request) {
	var na clinic.NewAppointment
	if !decode(w, r, &na) {
		return
	}
	if err := h.validAppointment(r, &na); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment", err.Error())
		return
	}

	a, err := h.store.CreateAppointment(r.Context(), na)
	if err != nil {
		h.internal(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateAppointmentResponse{
		Message:     "Appointment booked successfully",
		Appointment: a,
	})
}

func (h *handler) validAppointment(r *http.Request, na *clinic.NewAppointment) error {
	na.PatientName = strings.TrimSpace(na.PatientName)
	switch {
	case na.PatientName == "":
		return errors.New("patient_name is required")
	case na.Age <= 0:
		return errors.New("age must be a positive whole number")
	case na.Diagnosis == "":
		return errors.New("diagnosis is required")
	case na.Doctor == "":
		return errors.New("doctor is required")
	}
	if _, err := time.Parse(time.DateOnly, na.Date); err != nil {
		return fmt.Errorf("date %q is not YYYY-MM-DD", na.Date)
	}
	clock, err := appointment.ParseClock(na.Time, "")
	if err != nil {
		return fmt.Errorf("time: %w", err)
	}
	na.Time = clock
	if na.CreatedAt.IsZero() {
		na.CreatedAt = h.now().UTC()
	}

	doctors, err := h.store.ListDoctors(r.Context())
	if err != nil {
		return err
	}
	for _, d := range doctors {
		if d.Name == na.Doctor {
			return nil
		}
	}
	return fmt.Errorf("no doctor named %q", na.Doctor)
}

func (h *handler) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteAppointment(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Appointment deleted successfully"})
}

func (h *handler) storeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, store.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "duplicate_email", err.Error())
	case errors.Is(err, store.ErrDuplicateName):
		writeError(w, http.StatusConflict, "duplicate_name", err.Error())
	default:
		h.internal(w, r, err)
	}
}

func (h *handler) internal(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error().Err(err).Str("request_id", GetRequestID(r.Context())).Str("path", r.URL.Path).Msg("request failed")
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
