package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Appointment statuses
const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCancelled = "cancelled"
	AppointmentCompleted = "completed"
)

// Appointment is read from the "appointments" collection; this service never
// writes it.
type Appointment struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	DoctorID        primitive.ObjectID `bson:"doctorId" json:"doctorId"`
	PatientID       primitive.ObjectID `bson:"patientId" json:"patientId"`
	NurseID         primitive.ObjectID `bson:"nurseId,omitempty" json:"nurseId,omitempty"`
	AppointmentDate time.Time          `bson:"appointmentDate" json:"appointmentDate"`
	Status          string             `bson:"status" json:"status"`
}

// AppointmentDetail is an appointment with patient and nurse identities
// resolved.
type AppointmentDetail struct {
	ID              primitive.ObjectID `bson:"_id" json:"_id"`
	DoctorID        primitive.ObjectID `bson:"doctorId" json:"doctorId"`
	AppointmentDate time.Time          `bson:"appointmentDate" json:"appointmentDate"`
	Status          string             `bson:"status" json:"status"`
	Patient         *Person            `bson:"patient,omitempty" json:"patientId"`
	Nurse           *Person            `bson:"nurse,omitempty" json:"nurseId"`
}

// Dashboard is the aggregate returned by GET /doctors/dashboard.
type Dashboard struct {
	UpcomingAppointments []AppointmentDetail `json:"upcomingAppointments"`
	Patients             []Person            `json:"patients"`
	Nurses               []Person            `json:"nurses"`
	Schedule             []ScheduleSlot      `json:"schedule"`
}
