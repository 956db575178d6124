package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/hospital-staff-api/internal/models"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// DoctorFilter narrows List. Zero fields are ignored; FirstName and LastName
// match case-insensitively and either one is enough.
type DoctorFilter struct {
	Status         string
	Role           string
	Specialization string
	City           string
	FirstName      string
	LastName       string
}

type DoctorStore interface {
	Create(ctx context.Context, d *models.Doctor) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error)
	FindByEmail(ctx context.Context, email string) (*models.Doctor, error)
	List(ctx context.Context, f DoctorFilter, skip, limit int64) ([]models.Doctor, error)
	Update(ctx context.Context, id primitive.ObjectID, u models.DoctorUpdate) (*models.Doctor, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// SetResetToken stores the hash of a reset token and its expiry.
	SetResetToken(ctx context.Context, id primitive.ObjectID, hash string, expires time.Time) error
	// CheckResetToken returns ErrNotFound unless a doctor holds the unexpired
	// token hash.
	CheckResetToken(ctx context.Context, hash string, now time.Time) error
	// ConsumeResetToken atomically replaces the password of the doctor holding
	// an unexpired token hash and clears the reset fields. ErrNotFound when no
	// such doctor exists.
	ConsumeResetToken(ctx context.Context, hash string, now time.Time, passwordHash string) error
}

type NurseStore interface {
	Create(ctx context.Context, n *models.Nurse) error
	FindByEmail(ctx context.Context, email string) (*models.Nurse, error)
}

type AppointmentStore interface {
	ListByDoctor(ctx context.Context, doctorID primitive.ObjectID) ([]models.Appointment, error)
	// Upcoming returns confirmed appointments from the given instant on, with
	// patient and nurse identities resolved.
	Upcoming(ctx context.Context, doctorID primitive.ObjectID, from time.Time) ([]models.AppointmentDetail, error)
	// Participants returns the distinct patients and nurses across all the
	// doctor's appointments.
	Participants(ctx context.Context, doctorID primitive.ObjectID) (patients, nurses []models.Person, err error)
}
