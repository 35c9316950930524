package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/gastroclinic/clinic/internal/platform/db"
	"github.com/gastroclinic/clinic/internal/platform/schema"
)

// User is a staff account. The password hash never leaves the server.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var userFields = []string{
	"id", "username", "full_name", "email", "role", "is_active", "created_at", "updated_at",
}

// UserColumns lists the public user columns qualified with alias.
func UserColumns(alias string) string { return db.Qualify(alias, userFields...) }

// ScanTargets returns destinations matching UserColumns.
func (u *User) ScanTargets() []any {
	return []any{&u.ID, &u.Username, &u.FullName, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt}
}

type UserInput struct {
	Username *string `json:"username" db:"username" validate:"required,min=3,max=100"`
	Password *string `json:"password" db:"password" validate:"required,min=8"`
	FullName *string `json:"fullName" db:"full_name" validate:"required,min=1,max=255"`
	Email    *string `json:"email" db:"email" validate:"required,email"`
	Role     *string `json:"role" db:"role" validate:"required,oneof=doctor receptionist"`
	IsActive *bool   `json:"isActive" db:"is_active" validate:"omitnil,notnull"`
}

type LoginInput struct {
	Username *string `json:"username" validate:"required,min=1"`
	Password *string `json:"password" validate:"required,min=1"`
}

// Patient is a person under the clinic's care. Patients are never removed;
// deleting one clears IsActive.
type Patient struct {
	ID                uuid.UUID   `json:"id"`
	FirstName         string      `json:"firstName"`
	LastName          string      `json:"lastName"`
	DateOfBirth       schema.Date `json:"dateOfBirth"`
	Gender            *string     `json:"gender"`
	Phone             string      `json:"phone"`
	Email             *string     `json:"email"`
	Address           *string     `json:"address"`
	EmergencyContact  *string     `json:"emergencyContact"`
	EmergencyPhone    *string     `json:"emergencyPhone"`
	InsuranceProvider *string     `json:"insuranceProvider"`
	InsuranceNumber   *string     `json:"insuranceNumber"`
	MedicalHistory    []string    `json:"medicalHistory"`
	Allergies         []string    `json:"allergies"`
	Medications       []string    `json:"medications"`
	Notes             *string     `json:"notes"`
	IsActive          bool        `json:"isActive"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

var patientFields = []string{
	"id", "first_name", "last_name", "date_of_birth", "gender", "phone", "email", "address",
	"emergency_contact", "emergency_phone", "insurance_provider", "insurance_number",
	"medical_history", "allergies", "medications", "notes", "is_active", "created_at", "updated_at",
}

// PatientColumns lists the patient columns qualified with alias.
func PatientColumns(alias string) string { return db.Qualify(alias, patientFields...) }

// ScanTargets returns destinations matching PatientColumns.
func (p *Patient) ScanTargets() []any {
	return []any{
		&p.ID, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Gender, &p.Phone, &p.Email, &p.Address,
		&p.EmergencyContact, &p.EmergencyPhone, &p.InsuranceProvider, &p.InsuranceNumber,
		&p.MedicalHistory, &p.Allergies, &p.Medications, &p.Notes, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	}
}

// PatientInput is the insertable shape of a Patient.
type PatientInput struct {
	FirstName         *string      `json:"firstName" db:"first_name" validate:"required,min=1,max=100"`
	LastName          *string      `json:"lastName" db:"last_name" validate:"required,min=1,max=100"`
	DateOfBirth       *schema.Date `json:"dateOfBirth" db:"date_of_birth" validate:"required"`
	Gender            *string      `json:"gender" db:"gender" validate:"omitempty,max=20"`
	Phone             *string      `json:"phone" db:"phone" validate:"required,min=1,max=50"`
	Email             *string      `json:"email" db:"email" validate:"omitempty,email"`
	Address           *string      `json:"address" db:"address"`
	EmergencyContact  *string      `json:"emergencyContact" db:"emergency_contact"`
	EmergencyPhone    *string      `json:"emergencyPhone" db:"emergency_phone" validate:"omitempty,max=50"`
	InsuranceProvider *string      `json:"insuranceProvider" db:"insurance_provider"`
	InsuranceNumber   *string      `json:"insuranceNumber" db:"insurance_number" validate:"omitempty,max=100"`
	MedicalHistory    *[]string    `json:"medicalHistory" db:"medical_history"`
	Allergies         *[]string    `json:"allergies" db:"allergies"`
	Medications       *[]string    `json:"medications" db:"medications"`
	Notes             *string      `json:"notes" db:"notes"`
	IsActive          *bool        `json:"isActive" db:"is_active" validate:"omitnil,notnull"`
}

// Array columns accepted on create but left untouched by updates.
var patientImmutableOnUpdate = []string{"medical_history", "allergies", "medications"}
