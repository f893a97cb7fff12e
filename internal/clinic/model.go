package clinic

import "time"

// StatusBooked is what the backend assigns to a new appointment.
const StatusBooked = "booked"

type Doctor struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Specialization string `json:"specialization,omitempty"`
}

// DoctorInput is what an administrator submits to create a doctor.
// Password is write-only and never read back.
type DoctorInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Specialization string `json:"specialization"`
}

// DoctorUpdate replaces name, email and specialization. An empty Password
// leaves the stored credential unchanged.
type DoctorUpdate struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Specialization string `json:"specialization"`
	Password       string `json:"password,omitempty"`
}

// Appointment references its doctor by name only. The reference is not
// re-joined after creation and may dangle once the doctor is deleted.
type Appointment struct {
	ID          string    `json:"appointment_id"`
	PatientName string    `json:"patient_name"`
	Age         int       `json:"age"`
	Diagnosis   string    `json:"diagnosis"`
	Doctor      string    `json:"doctor"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Time        string    `json:"time"` // visit time, HH:MM (24h)
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewAppointment is the client-assembled record sent to the backend.
type NewAppointment struct {
	PatientName string    `json:"patient_name"`
	Age         int       `json:"age"`
	Diagnosis   string    `json:"diagnosis"`
	Doctor      string    `json:"doctor"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	CreatedAt   time.Time `json:"created_at"`
}
