package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-admin/internal/auth"
	"github.com/hackgods/clinic-admin/internal/clinic"
	"github.com/hackgods/clinic-admin/internal/store"
)

const testSecret = "test-secret"

func newTestRouter(t *testing.T, limiter *RateLimiter) (http.Handler, *store.MemoryStore) {
	t.Helper()

	st := store.NewMemoryStore()
	hash, err := auth.HashPassword("pw")
	require.NoError(t, err)
	require.NoError(t, st.PutAdmin(context.Background(), store.Admin{Username: "admin", PasswordHash: hash}))

	return NewRouter(RouterConfig{
		Store:        st,
		Log:          zerolog.Nop(),
		JWTSecret:    testSecret,
		TokenTTL:     time.Hour,
		LoginLimiter: limiter,
		Env:          "test",
	}), st
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func adminToken(t *testing.T) string {
	t.Helper()
	tok, _, err := auth.MakeToken("admin", testSecret, time.Hour, time.Now())
	require.NoError(t, err)
	return tok
}

func TestLogin(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	rec := call(t, h, http.MethodPost, "/login", "", LoginRequest{Username: "admin", Password: "pw"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "admin", resp.Admin)
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	claims, err := auth.ParseToken(resp.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)

	rec = call(t, h, http.MethodPost, "/login", "", LoginRequest{Username: "admin", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = call(t, h, http.MethodPost, "/login", "", LoginRequest{Username: "ghost", Password: "pw"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_RateLimited(t *testing.T) {
	h, _ := newTestRouter(t, NewRateLimiter(0.001, 2))

	for i := 0; i < 2; i++ {
		rec := call(t, h, http.MethodPost, "/login", "", LoginRequest{Username: "admin", Password: "wrong"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := call(t, h, http.MethodPost, "/login", "", LoginRequest{Username: "admin", Password: "pw"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	assert.Equal(t, http.StatusUnauthorized, call(t, h, http.MethodGet, "/doctors", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, call(t, h, http.MethodGet, "/doctors", "garbage", nil).Code)

	other, _, err := auth.MakeToken("admin", "other-secret", time.Hour, time.Now())
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(t, h, http.MethodGet, "/appointments", other, nil).Code)

	assert.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/doctors", adminToken(t), nil).Code)
}

func TestDoctorEndpoints(t *testing.T) {
	h, st := newTestRouter(t, nil)
	tok := adminToken(t)

	rec := call(t, h, http.MethodPost, "/doctors", tok, DoctorRequest{
		Name: " Dr. Lee ", Email: "lee@clinic.test", Password: "pw", Specialization: "Cardiologist",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created CreateDoctorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Cardiology", created.Specialization)

	// missing password, bad email, unknown label
	for _, req := range []DoctorRequest{
		{Name: "A", Email: "a@clinic.test", Specialization: "ENT"},
		{Name: "A", Email: "nope", Password: "pw", Specialization: "ENT"},
		{Name: "A", Email: "a@clinic.test", Password: "pw", Specialization: "Astrology"},
	} {
		rec = call(t, h, http.MethodPost, "/doctors", tok, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%+v", req)
	}

	rec = call(t, h, http.MethodPost, "/doctors", tok, DoctorRequest{
		Name: "Dr. Twin", Email: "LEE@clinic.test", Password: "pw", Specialization: "ENT",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(t, h, http.MethodPost, "/doctors", tok, DoctorRequest{
		Name: "Dr. Lee", Email: "twin@clinic.test", Password: "pw", Specialization: "ENT",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, "duplicate_name", errResp.Error)

	rec = call(t, h, http.MethodPut, "/doctors/"+created.ID, tok, DoctorRequest{
		Name: "Dr. Leigh", Email: "lee@clinic.test", Specialization: "Neurology",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	doctors, err := st.ListDoctors(context.Background())
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, "Dr. Leigh", doctors[0].Name)
	assert.Equal(t, "Neurology", doctors[0].Specialization)

	rec = call(t, h, http.MethodGet, "/doctors", tok, nil)
	var listed []clinic.Doctor
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listed))
	assert.Equal(t, doctors, listed)

	assert.Equal(t, http.StatusOK, call(t, h, http.MethodDelete, "/doctors/"+created.ID, tok, nil).Code)
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodDelete, "/doctors/"+created.ID, tok, nil).Code)
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodPut, "/doctors/missing", tok, DoctorRequest{
		Name: "X", Email: "x@clinic.test", Specialization: "ENT",
	}).Code)
}

func TestAppointmentEndpoints(t *testing.T) {
	h, st := newTestRouter(t, nil)
	tok := adminToken(t)

	_, err := st.CreateDoctor(context.Background(), clinic.Doctor{Name: "Dr. Lee", Email: "lee@clinic.test", Specialization: "Cardiology"}, "h")
	require.NoError(t, err)

	valid := clinic.NewAppointment{
		PatientName: "Ann", Age: 40, Diagnosis: "Cardiology", Doctor: "Dr. Lee",
		Date: "2024-05-02", Time: "14:30",
	}

	rec := call(t, h, http.MethodPost, "/appointments", tok, valid)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created CreateAppointmentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "APT-10001", created.Appointment.ID)
	assert.Equal(t, clinic.StatusBooked, created.Appointment.Status)
	assert.False(t, created.Appointment.CreatedAt.IsZero())

	bad := []func(a *clinic.NewAppointment){
		func(a *clinic.NewAppointment) { a.PatientName = " " },
		func(a *clinic.NewAppointment) { a.Age = 0 },
		func(a *clinic.NewAppointment) { a.Doctor = "Dr. Nobody" },
		func(a *clinic.NewAppointment) { a.Date = "02/05/2024" },
		func(a *clinic.NewAppointment) { a.Time = "25:00" },
	}
	for i, mutate := range bad {
		a := valid
		mutate(&a)
		assert.Equal(t, http.StatusBadRequest, call(t, h, http.MethodPost, "/appointments", tok, a).Code, "case %d", i)
	}

	rec = call(t, h, http.MethodGet, "/appointments", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list AppointmentListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list.Appointments, 1)
	assert.Equal(t, "Ann", list.Appointments[0].PatientName)

	assert.Equal(t, http.StatusOK, call(t, h, http.MethodDelete, "/appointments/APT-10001", tok, nil).Code)
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodDelete, "/appointments/APT-10001", tok, nil).Code)
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	rec := call(t, h, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, h, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ReadinessResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "disabled", resp.Dependencies["postgres"])
}

func TestRequestIDEchoed(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}
