package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleDoctor  = "doctor"
	RoleNurse   = "nurse"
	RolePatient = "patient"
)

// Doctor account statuses
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusCancelled = "cancelled"
)

func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusCancelled
}

func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleDoctor || r == RoleNurse || r == RolePatient
}

// Doctor is stored in the "doctors" collection. Admin accounts live here too.
type Doctor struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FirstName            string             `bson:"firstName" json:"firstName"`
	LastName             string             `bson:"lastName" json:"lastName"`
	Email                string             `bson:"email" json:"email"`
	Password             string             `bson:"password" json:"-"`
	Role                 string             `bson:"role" json:"role"`
	Status               string             `bson:"status" json:"status"`
	Adresse              string             `bson:"adresse,omitempty" json:"adresse,omitempty"`
	City                 string             `bson:"city,omitempty" json:"city,omitempty"`
	Phone                string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Specialization       string             `bson:"specialization,omitempty" json:"specialization,omitempty"`
	Avatar               string             `bson:"avatar" json:"avatar"`
	Schedule             []ScheduleSlot     `bson:"schedule" json:"schedule"`
	Token                string             `bson:"token,omitempty" json:"-"`
	ResetPasswordToken   string             `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpires *time.Time         `bson:"resetPasswordExpires,omitempty" json:"-"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Nurse is stored in the "nurses" collection.
type Nurse struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Role      string             `bson:"role" json:"role"`
	Token     string             `bson:"token,omitempty" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Person is the identity subset joined into dashboard results.
type Person struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
}

// DoctorUpdate lists the fields PATCH /doctors/:id may change. Nil means
// unchanged.
type DoctorUpdate struct {
	FirstName      *string
	LastName       *string
	Email          *string
	Password       *string // already hashed
	Role           *string
	Status         *string
	Adresse        *string
	City           *string
	Phone          *string
	Specialization *string
	Avatar         *string
	Schedule       *[]ScheduleSlot
}

func (u DoctorUpdate) Empty() bool {
	return u == DoctorUpdate{}
}
