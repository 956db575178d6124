package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/hospital-staff-api/internal/middleware"
	"github.com/harentsoaR/hospital-staff-api/internal/models"
	"github.com/harentsoaR/hospital-staff-api/internal/response"
)

// RouteDeps are the middlewares the route table needs besides the handler.
type RouteDeps struct {
	Responder *response.Responder
	// Auth authenticates the bearer token.
	Auth gin.HandlerFunc
	// Limit throttles the public endpoints. Nil disables throttling.
	Limit gin.HandlerFunc
}

func (h *Handler) RegisterRoutes(r gin.IRouter, d RouteDeps) {
	handle := d.Responder.Handle
	public := []gin.HandlerFunc{}
	if d.Limit != nil {
		public = append(public, d.Limit)
	}
	with := func(fn response.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, public...), handle(fn))
	}

	r.GET("/health", handle(h.Health))

	doctors := r.Group("/doctors")
	{
		doctors.POST("/register", with(h.RegisterDoctor)...)
		doctors.POST("/login", with(h.LoginDoctor)...)
		doctors.POST("/request-reset", with(h.RequestPasswordReset)...)
		doctors.POST("/reset/:token", with(h.ResetPassword)...)
	}

	nurses := r.Group("/nurses")
	{
		nurses.POST("/register", with(h.RegisterNurse)...)
		nurses.POST("/login", with(h.LoginNurse)...)
	}

	admin := middleware.RequireRoles(d.Responder, models.RoleAdmin)

	protected := r.Group("/doctors", d.Auth)
	{
		protected.GET("", handle(h.ListDoctors))
		protected.GET("/by-specialty", handle(h.DoctorsBySpecialty))
		protected.GET("/by-name", handle(h.DoctorsByName))
		protected.GET("/by-location", handle(h.DoctorsByLocation))
		protected.GET("/profile", handle(h.Profile))
		protected.GET("/dashboard", middleware.RequireRoles(d.Responder, models.RoleDoctor, models.RoleAdmin), handle(h.Dashboard))

		protected.GET("/:id", handle(h.GetDoctor))
		protected.PATCH("/:id", handle(h.UpdateDoctor))
		protected.PATCH("/:id/status", admin, handle(h.UpdateDoctorStatus))
		protected.DELETE("/:id", admin, handle(h.DeleteDoctor))
		protected.GET("/:id/schedule", handle(h.GetSchedule))
		protected.PATCH("/:id/schedule", handle(h.UpdateSchedule))
	}
}
