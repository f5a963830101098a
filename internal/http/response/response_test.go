package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/armory-backend/internal/platform/apierr"
)

func render(t *testing.T, err error) (int, ErrorEnvelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondServiceError(c, err)
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, env
}

func TestRespondServiceErrorClientError(t *testing.T) {
	status, env := render(t, apierr.NotFound("weapon_not_found", "Weapon not found"))
	if status != http.StatusNotFound {
		t.Fatalf("status: want=404 got=%d", status)
	}
	if env.Error.Message != "Weapon not found" || env.Error.Code != "weapon_not_found" {
		t.Fatalf("envelope: got %+v", env)
	}
}

func TestRespondServiceErrorHidesInternals(t *testing.T) {
	status, env := render(t, errors.New("pq: connection refused"))
	if status != http.StatusInternalServerError {
		t.Fatalf("status: want=500 got=%d", status)
	}
	if env.Error.Message != "Internal Server Error" || env.Error.Code != "internal_error" {
		t.Fatalf("envelope: got %+v", env)
	}

	status, env = render(t, apierr.New(http.StatusServiceUnavailable, "retryable", errors.New("serialization failure")))
	if status != http.StatusServiceUnavailable || env.Error.Code != "retryable" {
		t.Fatalf("retryable: got %d %+v", status, env)
	}
	if env.Error.Message != "Service Unavailable" {
		t.Fatalf("retryable message: got %q", env.Error.Message)
	}
}
