package log

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]interface{}
		if err := json.Unmarshal(line, &m); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestNew_LevelAndService(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", ServiceName: "svc", Output: &buf})

	l.Info().Msg("dropped")
	l.Warn().Msg("kept")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 || lines[0]["message"] != "kept" || lines[0][FieldService] != "svc" {
		t.Errorf("lines = %v", lines)
	}
}

func TestAudit(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(Config{Output: &buf}))
	ctx = WithStr(ctx, FieldOrderID, "order_1")

	Audit(ctx, "payment.verify").Bool("authentic", true).Msg("checked")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("lines = %v", lines)
	}
	got := lines[0]
	if got[FieldLogType] != LogTypeAudit || got["action"] != "payment.verify" || got[FieldOrderID] != "order_1" || got["authentic"] != true {
		t.Errorf("audit line = %v", got)
	}
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := New(Config{Output: &buf})

	r := gin.New()
	r.Use(GinMiddleware(logger))
	r.GET("/x", func(c *gin.Context) {
		c.Set(FieldUserID, "u1")
		l := Ctx(c.Request.Context())
		l.Info().Msg("inside")
		c.Status(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") != "req-123" {
		t.Errorf("X-Request-ID = %q", w.Header().Get("X-Request-ID"))
	}

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("lines = %v", lines)
	}
	if lines[0][FieldRequestID] != "req-123" {
		t.Errorf("handler log missing request id: %v", lines[0])
	}
	done := lines[1]
	if done[FieldStatus] != float64(http.StatusTeapot) || done[FieldUserID] != "u1" || done[FieldPath] != "/x" {
		t.Errorf("completion line = %v", done)
	}
}
