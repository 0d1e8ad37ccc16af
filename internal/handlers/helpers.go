package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskverse/internal/middleware"
	"taskverse/internal/models"
	"taskverse/internal/services"
)

const maxBodyBytes = 1 << 20

var errPayloadTooLarge = errors.New("payload too large")

func respondSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"result": models.ResultSuccess, "data": data})
}

func respondMessage(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"result": models.ResultSuccess, "message": msg})
}

func respondFail(c *gin.Context, status int, key, msg string) {
	c.JSON(status, gin.H{"result": models.ResultError, key: msg})
}

// respondError maps a service error onto the envelope and HTTP status.
func respondError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidIdentifier):
		log.Printf("[%s][400] %v", op, err)
		respondFail(c, http.StatusBadRequest, "error", "Invalid Id")
	case errors.Is(err, services.ErrInvalidReminderShape):
		log.Printf("[%s][400] %v", op, err)
		respondFail(c, http.StatusBadRequest, "message", "Invalid reminder format")
	case errors.Is(err, services.ErrInvalidPriority):
		log.Printf("[%s][400] %v", op, err)
		respondFail(c, http.StatusBadRequest, "message", "Invalid priority: use Low, Medium or High")
	case errors.Is(err, services.ErrInvalidDueDate):
		log.Printf("[%s][400] %v", op, err)
		respondFail(c, http.StatusBadRequest, "message", "Invalid date: use YYYY-MM-DD or RFC3339")
	case errors.Is(err, errPayloadTooLarge):
		log.Printf("[%s][413] %v", op, err)
		respondFail(c, http.StatusRequestEntityTooLarge, "message", "Payload too large")
	case errors.Is(err, services.ErrMalformedPayload):
		log.Printf("[%s][400] %v", op, err)
		c.JSON(http.StatusBadRequest, gin.H{"result": models.ResultError, "message": "Malformed payload", "error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		log.Printf("[%s][403] %v", op, err)
		respondFail(c, http.StatusForbidden, "error", "Forbidden")
	case errors.Is(err, services.ErrTaskNotFound):
		log.Printf("[%s][404] %v", op, err)
		respondFail(c, http.StatusNotFound, "error", "Task not found")
	case errors.Is(err, services.ErrUserNotFound):
		respondFail(c, http.StatusNotFound, "error", "User not found")
	case errors.Is(err, services.ErrInvalidCredentials):
		log.Printf("[%s][401] %v", op, err)
		respondFail(c, http.StatusUnauthorized, "error", "Invalid email or password")
	case errors.Is(err, services.ErrResetTokenInvalid):
		log.Printf("[%s][400] %v", op, err)
		respondFail(c, http.StatusBadRequest, "error", "Invalid or expired reset code")
	case errors.Is(err, services.ErrEmailTaken):
		respondFail(c, http.StatusConflict, "error", "Email already registered")
	default:
		log.Printf("[%s][err] %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"result": models.ResultError, "message": "Server Error", "error": err.Error()})
	}
}

// readBody reads the request body, refusing anything over maxBodyBytes.
func readBody(c *gin.Context) ([]byte, error) {
	b, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: limit %d bytes", errPayloadTooLarge, tooLarge.Limit)
		}
		return nil, errors.Join(services.ErrMalformedPayload, err)
	}
	return b, nil
}

func callerID(c *gin.Context) string {
	return middleware.UserID(c)
}
