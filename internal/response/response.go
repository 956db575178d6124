package response

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/hospital-staff-api/internal/apperror"
)

// Envelope is the shape of every response body.
type Envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// HandlerFunc is a gin handler that reports failure by returning an error.
type HandlerFunc func(c *gin.Context) error

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return fld.Name
		})
	}
}

// Responder renders every outcome of a request, so handlers never write
// error bodies themselves.
type Responder struct {
	Log logrus.FieldLogger
}

func NewResponder(log logrus.FieldLogger) *Responder {
	return &Responder{Log: log}
}

// Handle adapts a HandlerFunc to gin, sending returned errors to Error.
func (r *Responder) Handle(fn HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := fn(c); err != nil {
			r.Error(c, err)
		}
	}
}

func (r *Responder) Error(c *gin.Context, err error) {
	appErr := apperror.From(err)
	if appErr.Code >= http.StatusInternalServerError {
		r.Log.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).WithError(appErr.Err).Error(appErr.Message)
	}
	c.AbortWithStatusJSON(appErr.Code, Envelope{Status: appErr.StatusText, Message: appErr.Message})
}

// Recovery turns panics into the generic 500 envelope.
func (r *Responder) Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		r.Error(c, apperror.Internal("Internal server error", fmt.Errorf("panic: %v", recovered)))
	})
}

func Success(c *gin.Context, code int, data any) {
	c.JSON(code, Envelope{Status: apperror.StatusSuccess, Data: data})
}

func Message(c *gin.Context, code int, message string) {
	c.JSON(code, Envelope{Status: apperror.StatusSuccess, Message: message})
}

// BindError converts a binding failure into a validation AppError with a
// readable message.
func BindError(err error) *apperror.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperror.Validation(fieldMessage(verrs[0])).Wrap(err)
	}
	return apperror.Validation("Invalid request body").Wrap(err)
}

var messages = map[string]string{
	"required": "%s is required",
	"email":    "%s must be a valid email address",
	"min":      "%s must be at least %s characters long",
	"max":      "%s must be no longer than %s characters",
	"oneof":    "%s must be one of [%s]",
}

func fieldMessage(e validator.FieldError) string {
	msg, ok := messages[e.Tag()]
	if !ok {
		return fmt.Sprintf("%s is invalid", e.Field())
	}
	if strings.Count(msg, "%s") == 2 {
		return fmt.Sprintf(msg, e.Field(), e.Param())
	}
	return fmt.Sprintf(msg, e.Field())
}
