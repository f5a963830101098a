package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/armory-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondServiceError renders an *apierr.Error with its own status and code.
// Anything else, and every 5xx, is reported without internal details.
func RespondServiceError(c *gin.Context, err error) {
	if ae, ok := apierr.As(err); ok && ae.Status > 0 && ae.Status < http.StatusInternalServerError {
		RespondError(c, ae.Status, ae.Code, ae)
		return
	}
	_ = c.Error(err)
	status := apierr.StatusOf(err)
	code := "internal_error"
	if ae, ok := apierr.As(err); ok && ae.Code != "" {
		code = ae.Code
	}
	RespondError(c, status, code, errors.New(http.StatusText(status)))
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
