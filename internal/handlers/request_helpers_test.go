package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"storeadmin/internal/apperr"
	"storeadmin/internal/memstore"
	"storeadmin/internal/services"
)

func TestRespondServiceErrorStatuses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err  error
		want int
	}{
		{apperr.Validation("orderId", "invalid id"), http.StatusBadRequest},
		{apperr.ErrInvalidStatus, http.StatusBadRequest},
		{apperr.ErrEmailTaken, http.StatusBadRequest},
		{apperr.ErrInvalidCredentials, http.StatusUnauthorized},
		{apperr.NotFound("order"), http.StatusNotFound},
		{apperr.ErrInvalidTransition, http.StatusConflict},
		{apperr.Persistence("find", errors.New("timeout")), http.StatusInternalServerError},
		{apperr.Upstream("delete", errors.New("denied")), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		respondServiceError(c, "TEST", tc.err)

		if w.Code != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, w.Code)
		}
		var body map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("response is not json: %s", w.Body.String())
		}
		if _, ok := body["error"]; !ok {
			t.Fatalf("expected error key in %s", w.Body.String())
		}
	}
}

func TestInternalErrorsDoNotLeakDriverDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondServiceError(c, "TEST", apperr.Persistence("find", errors.New("auth failed for user root")))

	if got := w.Body.String(); got != `{"error":"db error"}` {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestRequestUploadRequiresFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	uploads := services.NewUploadService(memstore.NewObjects("https://cdn.example.com"), time.Hour)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString(`{"filename":"a.jpg"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	RequestUpload(uploads)(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var body struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not json: %v", err)
	}
	if body.Error != "validation failed" || len(body.Details) != 1 || body.Details[0] != "contentType is required" {
		t.Fatalf("unexpected validation body %+v", body)
	}
}
