package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/hospital-staff-api/internal/apperror"
	"github.com/harentsoaR/hospital-staff-api/internal/authz"
	"github.com/harentsoaR/hospital-staff-api/internal/models"
	"github.com/harentsoaR/hospital-staff-api/internal/response"
)

type UpdateScheduleRequest struct {
	Schedule models.RawSchedule `json:"schedule"`
}

// GetSchedule lists the appointments of a doctor. Admins, nurses and the
// doctor themself may read it.
func (h *Handler) GetSchedule(c *gin.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := doctorID(c)
	if err != nil {
		return err
	}
	if !authz.CanModify(p.Role, p.ID, id.Hex()) && p.Role != models.RoleNurse {
		return apperror.Forbidden("You are not authorized to view this schedule")
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	appointments, err := h.Appointments.ListByDoctor(ctx, id)
	if err != nil {
		return apperror.Internal("Failed to fetch the schedule", err)
	}
	if appointments == nil {
		appointments = []models.Appointment{}
	}
	response.Success(c, http.StatusOK, gin.H{"appointments": appointments})
	return nil
}

// UpdateSchedule replaces the stored weekly availability of a doctor.
func (h *Handler) UpdateSchedule(c *gin.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := doctorID(c)
	if err != nil {
		return err
	}
	if !authz.CanModify(p.Role, p.ID, id.Hex()) {
		return apperror.Forbidden("You are not authorized to update this doctor's data")
	}

	var req UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return apperror.Validation("Invalid schedule format").Wrap(err)
	}
	if len(req.Schedule) == 0 {
		return apperror.Validation("schedule is required")
	}
	schedule, err := models.ParseSchedule(req.Schedule)
	if err != nil {
		return apperror.Validation("Invalid schedule format").Wrap(err)
	}

	return h.applyUpdate(c, id, models.DoctorUpdate{Schedule: &schedule})
}

// Dashboard aggregates the caller's upcoming confirmed appointments, the
// people they work with and their stored schedule.
func (h *Handler) Dashboard(c *gin.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return apperror.NotFound("Doctor not found")
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	doc, err := h.Doctors.FindByID(ctx, id)
	if err != nil {
		return notFound(err, "Doctor not found")
	}
	upcoming, err := h.Appointments.Upcoming(ctx, id, h.clock())
	if err != nil {
		return apperror.Internal("Failed to build the dashboard", err)
	}
	patients, nurses, err := h.Appointments.Participants(ctx, id)
	if err != nil {
		return apperror.Internal("Failed to build the dashboard", err)
	}

	dash := models.Dashboard{
		UpcomingAppointments: nonNil(upcoming),
		Patients:             nonNil(patients),
		Nurses:               nonNil(nurses),
		Schedule:             nonNil(doc.Schedule),
	}
	response.Success(c, http.StatusOK, dash)
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
