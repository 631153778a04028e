package entities

import (
	"strings"

	apperrors "github.com/zatekoja/mediflow-admin/pkg/errors"
)

// Patient is a patient record as listed on the dashboard
type Patient struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Age             int    `json:"age"`
	Gender          string `json:"gender"`
	Contact         string `json:"contact"`
	Diagnosis       string `json:"diagnosis"`
	LastVisit       string `json:"lastVisit"`
	NextAppointment string `json:"nextAppointment,omitempty"`
}

// EntityID implements Entity
func (p Patient) EntityID() string { return p.ID }

// NewPatientRequest is the payload for registering a patient
type NewPatientRequest struct {
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Gender    string `json:"gender"`
	Contact   string `json:"contact,omitempty"`
	Diagnosis string `json:"diagnosis,omitempty"`
}

// Validate checks the fields the registration form requires
func (r NewPatientRequest) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(r.Name) == "" {
		fields["name"] = "Name is required"
	}
	if r.Age < 0 || r.Age > 150 {
		fields["age"] = "Age must be between 0 and 150"
	}
	if strings.TrimSpace(r.Gender) == "" {
		fields["gender"] = "Gender is required"
	}
	return fieldErrors(fields)
}

// fieldErrors turns collected field messages into a validation error, nil when empty.
func fieldErrors(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return apperrors.NewFieldValidationError(firstMessage(fields), fields)
}

// firstMessage picks a stable message so the toast text does not depend on map order.
func firstMessage(fields map[string]string) string {
	var key string
	for k := range fields {
		if key == "" || k < key {
			key = k
		}
	}
	return fields[key]
}
