package observability

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestDebugRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	RecordTransition("not-running", "starting")
	r := NewDebugRouter(func() map[string]any { return map[string]any{"emulators": "starting"} })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("healthz: %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/lifecycle", nil))
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("status body: %v", err)
	}
	if body["emulators"] != "starting" {
		t.Fatalf("status: %#v", body)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), "fbbridge_emulators_transitions_total") {
		t.Fatal("metrics output missing lifecycle transitions")
	}
}
