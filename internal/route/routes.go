package route

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"seedcounter/internal/config"
	"seedcounter/internal/handler"
	"seedcounter/internal/logger"
	"seedcounter/internal/middleware"
	"seedcounter/internal/service"
	"seedcounter/internal/service/storage"
	"seedcounter/internal/service/websocket"
)

// dynamicHTMLHandler serves /path as <staticDir>/path.html if the file exists; otherwise 404.
func dynamicHTMLHandler(staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path == "/" {
			path = "/index"
		}
		if strings.Contains(path, "..") {
			http.NotFound(w, r)
			return
		}

		filePath := filepath.Join(staticDir, filepath.Clean(path)+".html")

		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}

		http.ServeFile(w, r, filePath)
	}
}

// SetupRoutes registers API endpoints, result and static file serving,
// and wraps the mux with the CORS middleware.
func SetupRoutes(manager *service.Manager, store *storage.ResultStore, hub *websocket.HubService,
	cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Static files
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDirectory))))
	mux.Handle("/results/", http.StripPrefix("/results/", http.FileServer(http.Dir(cfg.ResultsDirectory))))
	mux.Handle("/thumbnails/", http.StripPrefix("/thumbnails/", http.FileServer(http.Dir(cfg.ThumbnailDirectory))))

	// Processing
	process := handler.ProcessImageHandler(manager, cfg, logger)
	mux.HandleFunc("/api/process-image", process)
	mux.HandleFunc("/api/process-image/", process)

	// History
	mux.HandleFunc("/api/results", handler.GetResultsHandler(store, logger))
	mux.HandleFunc("/api/results/detail", handler.GetResultDetailHandler(store, logger))
	mux.HandleFunc("/api/results/summary", handler.GetSummaryHandler(store, logger))
	mux.HandleFunc("/api/results/delete", handler.DeleteResultHandler(store, logger))

	// Live view and status
	mux.HandleFunc("/api/view", handler.ViewWebsocketHandler(hub, handler.NewUpgrader(cfg.AllowedOrigins), logger))
	mux.HandleFunc("/api/health", handler.HealthHandler(manager, hub, cfg, logger))

	// Automatic HTML handler mapping for example: /history -> static/history.html
	mux.HandleFunc("/", dynamicHTMLHandler(cfg.StaticDirectory))

	return middleware.CORSMiddleware(cfg.AllowedOrigins)(mux)
}
