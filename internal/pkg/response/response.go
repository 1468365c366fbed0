package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lidosuite/service-reservation/internal/pkg/domain"
)

// envelope is the standard JSON body for all API responses.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Kind      string                `json:"kind"`
	Message   string                `json:"message"`
	Conflicts []domain.ConflictPair `json:"conflicts,omitempty"`
}

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// Paginated writes a 200 response with pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"meta": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, envelope{
		Success: false,
		Error:   &apiError{Kind: string(domain.KindValidation), Message: msg},
	})
}

// Error maps an application error to its HTTP status. Unknown errors
// become 500 without leaking internals.
func Error(c *gin.Context, err error) {
	appErr, ok := domain.AsError(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, envelope{
			Success: false,
			Error:   &apiError{Kind: "internal", Message: "internal server error"},
		})
		_ = c.Error(err)
		return
	}

	c.JSON(statusFor(appErr.Kind), envelope{
		Success: false,
		Error: &apiError{
			Kind:      string(appErr.Kind),
			Message:   appErr.Message,
			Conflicts: appErr.Conflicts,
		},
	})
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindResourceUnavailable, domain.KindConflict, domain.KindAlreadyConverted, domain.KindInvalidTransition:
		return http.StatusConflict
	case domain.KindCapacityInsufficient:
		return http.StatusUnprocessableEntity
	case domain.KindLocked:
		return http.StatusLocked
	case domain.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
