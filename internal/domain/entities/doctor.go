package entities

import (
	"regexp"
	"strings"
)

// Doctor is a roster entry
type Doctor struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Specialty  string `json:"specialty"`
	Experience string `json:"experience"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Schedule   string `json:"schedule"`
	IsActive   bool   `json:"isActive"`
}

// EntityID implements Entity
func (d Doctor) EntityID() string { return d.ID }

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// NewDoctorRequest is the payload for adding a doctor to the roster
type NewDoctorRequest struct {
	Name       string `json:"name"`
	Specialty  string `json:"specialty"`
	Experience string `json:"experience"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Schedule   string `json:"schedule"`
	IsActive   bool   `json:"isActive"`
}

// Validate checks the fields the roster form requires
func (r NewDoctorRequest) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(r.Name) == "" {
		fields["name"] = "Name is required"
	}
	if r.Specialty == "" {
		fields["specialty"] = "Specialty is required"
	}
	switch email := strings.TrimSpace(r.Email); {
	case email == "":
		fields["email"] = "Email is required"
	case !emailPattern.MatchString(email):
		fields["email"] = "Email is invalid"
	}
	if strings.TrimSpace(r.Phone) == "" {
		fields["phone"] = "Phone is required"
	}
	if strings.TrimSpace(r.Experience) == "" {
		fields["experience"] = "Experience is required"
	}
	if strings.TrimSpace(r.Schedule) == "" {
		fields["schedule"] = "Schedule is required"
	}
	return fieldErrors(fields)
}
