package route

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDynamicHTMLHandler(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>index</h1>"), 0644)
	os.WriteFile(filepath.Join(dir, "history.html"), []byte("<h1>history</h1>"), 0644)

	h := dynamicHTMLHandler(dir)

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/", http.StatusOK, "<h1>index</h1>"},
		{"/history", http.StatusOK, "<h1>history</h1>"},
		{"/missing", http.StatusNotFound, ""},
		{"/../secret", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.URL.Path = tt.path
		rec := httptest.NewRecorder()
		h(rec, req)

		if rec.Code != tt.status {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.status, rec.Code)
		}
		if tt.body != "" && rec.Body.String() != tt.body {
			t.Errorf("%s: unexpected body %q", tt.path, rec.Body.String())
		}
	}
}
