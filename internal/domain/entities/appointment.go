package entities

import (
	"strings"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

// AppointmentTypes lists the appointment types the scheduling form offers
var AppointmentTypes = []string{
	"consultation",
	"follow-up",
	"check-up",
	"emergency",
	"surgery",
	"therapy",
	"screening",
	"vaccination",
}

// Appointment represents a scheduled appointment
type Appointment struct {
	ID          string            `json:"id"`
	PatientID   string            `json:"patientId"`
	PatientName string            `json:"patientName"`
	DoctorID    string            `json:"doctorId"`
	DoctorName  string            `json:"doctorName"`
	Department  string            `json:"department"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	Status      AppointmentStatus `json:"status"`
	Notes       string            `json:"notes,omitempty"`
}

// EntityID implements Entity
func (a Appointment) EntityID() string { return a.ID }

// NewAppointmentRequest is the payload for scheduling an appointment
type NewAppointmentRequest struct {
	PatientID         string `json:"patient_id"`
	DoctorID          string `json:"doctor_id"`
	ScheduledDate     string `json:"scheduled_date"`
	ScheduledTime     string `json:"scheduled_time"`
	ScheduledDateTime string `json:"scheduled_datetime,omitempty"`
	Type              string `json:"type"`
	Reason            string `json:"reason"`
	Department        string `json:"department,omitempty"`
}

// Validate checks the fields the scheduling form requires
func (r NewAppointmentRequest) Validate() error {
	fields := map[string]string{}
	if r.PatientID == "" {
		fields["patient_id"] = "Patient is required"
	}
	if r.DoctorID == "" {
		fields["doctor_id"] = "Doctor is required"
	}
	if r.ScheduledDate == "" {
		fields["scheduled_date"] = "Date is required"
	}
	if r.ScheduledTime == "" {
		fields["scheduled_time"] = "Time is required"
	}
	switch {
	case r.Type == "":
		fields["type"] = "Appointment type is required"
	case !knownAppointmentType(r.Type):
		fields["type"] = "Appointment type is not recognised"
	}
	if strings.TrimSpace(r.Reason) == "" {
		fields["reason"] = "Reason is required"
	}
	return fieldErrors(fields)
}

// WithDateTime fills ScheduledDateTime from the date and time fields
func (r NewAppointmentRequest) WithDateTime() NewAppointmentRequest {
	if r.ScheduledDate != "" && r.ScheduledTime != "" {
		r.ScheduledDateTime = r.ScheduledDate + "T" + r.ScheduledTime + ":00"
	}
	return r
}

func knownAppointmentType(t string) bool {
	for _, known := range AppointmentTypes {
		if t == known {
			return true
		}
	}
	return false
}
