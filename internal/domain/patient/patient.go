package patient

import (
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
)

// Gender of a patient
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// IsValid returns true for a known gender code
func (g Gender) IsValid() bool {
	return g == GenderMale || g == GenderFemale
}

// Patient is the master record for a person receiving care.
// Phone numbers are unique across the registry; the application
// service enforces this before saving.
type Patient struct {
	shared.BaseAggregateRoot
	RecordNumber string     `gorm:"type:varchar(30);not null;uniqueIndex"`
	FirstName    string     `gorm:"type:varchar(100);not null"`
	LastName     string     `gorm:"type:varchar(100);not null"`
	Gender       Gender     `gorm:"type:varchar(1)"`
	BirthDate    *time.Time `gorm:"type:date"`
	Phone        string     `gorm:"type:varchar(30);index"`
	Address      string     `gorm:"type:varchar(255)"`
	CenterID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	Active       bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Patient) TableName() string {
	return "patients"
}

// NewPatient registers a new patient at a center
func NewPatient(recordNumber, firstName, lastName string, gender Gender, centerID uuid.UUID) (*Patient, error) {
	if recordNumber == "" {
		return nil, shared.NewDomainError("INVALID_RECORD_NUMBER", "Record number cannot be empty")
	}
	if firstName == "" || lastName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Patient first and last name are required")
	}
	if gender != "" && !gender.IsValid() {
		return nil, shared.NewDomainError("INVALID_GENDER", "Unknown gender code")
	}
	if centerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CENTER", "Center ID cannot be empty")
	}

	return &Patient{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RecordNumber:      recordNumber,
		FirstName:         firstName,
		LastName:          lastName,
		Gender:            gender,
		CenterID:          centerID,
		Active:            true,
	}, nil
}

// FullName returns "FirstName LastName"
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// UpdateContact updates phone and address
func (p *Patient) UpdateContact(phone, address string) {
	p.Phone = phone
	p.Address = address
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Deactivate archives the patient record
func (p *Patient) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}
