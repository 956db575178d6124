package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/hospital-staff-api/internal/apperror"
	"github.com/harentsoaR/hospital-staff-api/internal/authz"
	"github.com/harentsoaR/hospital-staff-api/internal/models"
	"github.com/harentsoaR/hospital-staff-api/internal/response"
	"github.com/harentsoaR/hospital-staff-api/internal/store"
)

const (
	defaultListLimit   = 5
	defaultSearchLimit = maxPageSize
)

type UpdateDoctorRequest struct {
	FirstName      *string            `json:"firstName"`
	LastName       *string            `json:"lastName"`
	Email          *string            `json:"email" binding:"omitempty,email"`
	Password       *string            `json:"password" binding:"omitempty,min=6,max=72"`
	Role           *string            `json:"role"`
	Status         *string            `json:"status"`
	Adresse        *string            `json:"adresse"`
	City           *string            `json:"city"`
	Phone          *string            `json:"phone"`
	Specialization *string            `json:"specialization"`
	Avatar         *string            `json:"avatar"`
	Schedule       models.RawSchedule `json:"schedule"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved cancelled"`
}

// visibleFilter restricts non-admins to approved doctor accounts.
func visibleFilter(p authz.Principal, f store.DoctorFilter) store.DoctorFilter {
	if !p.IsAdmin() {
		f.Status = models.StatusApproved
		f.Role = models.RoleDoctor
	}
	return f
}

func (h *Handler) listDoctors(c *gin.Context, f store.DoctorFilter, defaultLimit int64) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	skip, limit, err := pagination(c, defaultLimit)
	if err != nil {
		return err
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	doctors, err := h.Doctors.List(ctx, visibleFilter(p, f), skip, limit)
	if err != nil {
		return apperror.Internal("Failed to fetch doctors", err)
	}
	if doctors == nil {
		doctors = []models.Doctor{}
	}
	response.Success(c, http.StatusOK, gin.H{"doctors": doctors})
	return nil
}

func (h *Handler) ListDoctors(c *gin.Context) error {
	return h.listDoctors(c, store.DoctorFilter{}, defaultListLimit)
}

func (h *Handler) DoctorsBySpecialty(c *gin.Context) error {
	specialty := strings.TrimSpace(c.Query("specialty"))
	if specialty == "" {
		return apperror.Validation("Specialty is required")
	}
	return h.listDoctors(c, store.DoctorFilter{Specialization: specialty}, defaultSearchLimit)
}

func (h *Handler) DoctorsByName(c *gin.Context) error {
	first := strings.TrimSpace(c.Query("firstName"))
	last := strings.TrimSpace(c.Query("lastName"))
	if first == "" && last == "" {
		return apperror.Validation("First name or last name is required")
	}
	return h.listDoctors(c, store.DoctorFilter{FirstName: first, LastName: last}, defaultSearchLimit)
}

func (h *Handler) DoctorsByLocation(c *gin.Context) error {
	city := strings.TrimSpace(c.Query("city"))
	if city == "" {
		return apperror.Validation("City is required")
	}
	return h.listDoctors(c, store.DoctorFilter{City: city}, defaultSearchLimit)
}

func (h *Handler) GetDoctor(c *gin.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := doctorID(c)
	if err != nil {
		return err
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	doc, err := h.Doctors.FindByID(ctx, id)
	if err != nil {
		return notFound(err, "Doctor not found")
	}
	if !authz.CanView(p.Role, p.ID, doc.ID.Hex(), doc.Status) {
		return apperror.NotFound("Doctor not found")
	}
	response.Success(c, http.StatusOK, gin.H{"doctor": doc})
	return nil
}

func (h *Handler) Profile(c *gin.Context) error {
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
	response.Success(c, http.StatusOK, gin.H{"doctor": doc})
	return nil
}

func (h *Handler) UpdateDoctor(c *gin.Context) error {
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

	var req UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return response.BindError(err)
	}

	u := models.DoctorUpdate{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Adresse:        req.Adresse,
		City:           req.City,
		Phone:          req.Phone,
		Specialization: req.Specialization,
		Avatar:         req.Avatar,
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		u.Email = &email
	}
	// Status and role changes from anyone but an admin are dropped.
	if p.IsAdmin() {
		if req.Status != nil && !models.ValidStatus(*req.Status) {
			return apperror.Validation("status must be one of [pending approved cancelled]")
		}
		if req.Role != nil && !models.ValidRole(*req.Role) {
			return apperror.Validation("role must be one of [admin doctor nurse patient]")
		}
		u.Status, u.Role = req.Status, req.Role
	}
	if len(req.Schedule) > 0 {
		schedule, err := models.ParseSchedule(req.Schedule)
		if err != nil {
			return apperror.Validation("Invalid schedule format").Wrap(err)
		}
		u.Schedule = &schedule
	}
	if req.Password != nil {
		hashed, err := h.hashPassword(*req.Password, "Failed to update the doctor")
		if err != nil {
			return err
		}
		u.Password = &hashed
	}
	if u.Empty() {
		return apperror.Validation("No fields to update")
	}

	return h.applyUpdate(c, id, u)
}

func (h *Handler) applyUpdate(c *gin.Context, id primitive.ObjectID, u models.DoctorUpdate) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	doc, err := h.Doctors.Update(ctx, id, u)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		return apperror.NotFound("Doctor not found")
	case errors.Is(err, store.ErrDuplicate):
		return apperror.Conflict("User already exists")
	default:
		return apperror.Internal("Failed to update the doctor", err)
	}
	response.Success(c, http.StatusOK, gin.H{"doctor": doc})
	return nil
}

func (h *Handler) UpdateDoctorStatus(c *gin.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if !p.IsAdmin() {
		return apperror.Forbidden("You are not authorized to perform this action")
	}
	id, err := doctorID(c)
	if err != nil {
		return err
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return response.BindError(err)
	}
	return h.applyUpdate(c, id, models.DoctorUpdate{Status: &req.Status})
}

func (h *Handler) DeleteDoctor(c *gin.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if !p.IsAdmin() {
		return apperror.Forbidden("You are not authorized to perform this action")
	}
	id, err := doctorID(c)
	if err != nil {
		return err
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.Doctors.Delete(ctx, id); err != nil {
		return notFound(err, "Doctor not found")
	}
	c.JSON(http.StatusOK, gin.H{"status": apperror.StatusSuccess, "data": nil})
	return nil
}
