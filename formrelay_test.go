package formrelay

import (
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-formrelay/pkg/renderers/vanilla"
	"github.com/goliatone/go-formrelay/pkg/server"
)

func TestAssetsFSContainsStylesheet(t *testing.T) {
	data, err := fs.ReadFile(AssetsFS(), vanilla.StylesheetName)
	if err != nil {
		t.Fatalf("expected stylesheet to be readable: %v", err)
	}
	if !strings.Contains(string(data), ".status-message") {
		t.Fatalf("expected stylesheet to style the status region")
	}
}

func TestRenderHTML(t *testing.T) {
	out, err := RenderHTML(context.Background(), DefaultForm(), RenderOptions{Locale: "en"})
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if !strings.Contains(string(out), `id="orcamentoForm"`) {
		t.Fatalf("unexpected page: %s", out)
	}
}

func TestNewHandler(t *testing.T) {
	if _, err := NewHandler(""); err == nil {
		t.Fatal("expected error without endpoint")
	}

	handler, err := NewHandler("https://script.google.com/macros/s/abc/exec", server.WithRateLimit(0, 0))
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
}
