package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"seedcounter/internal/config"
	"seedcounter/internal/dto"
	"seedcounter/internal/fusion"
	"seedcounter/internal/logger"
	"seedcounter/internal/service"
)

// Processor runs one uploaded tray image through detection and counting.
type Processor interface {
	Process(ctx context.Context, data []byte, name string) (*dto.ProcessResponse, error)
}

// multipartMemory is how much of a multipart body is kept in memory before spilling to disk.
const multipartMemory = 32 << 20

// ProcessImageHandler accepts a multipart upload in field "file" and returns the tray counts.
func ProcessImageHandler(processor Processor, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed", logger)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadSize)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				writeError(w, http.StatusRequestEntityTooLarge, "Upload too large", logger)
				return
			}
			writeError(w, http.StatusBadRequest, "Invalid multipart upload", logger)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "No file uploaded", logger)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Could not read upload", logger)
			return
		}
		if len(data) == 0 {
			writeError(w, http.StatusBadRequest, "Uploaded file is empty", logger)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), cfg.ProcessingTimeout)
		defer cancel()

		resp, err := processor.Process(ctx, data, header.Filename)
		if err != nil {
			status := statusFor(err)
			if status >= http.StatusInternalServerError {
				logger.Error("Error processing %s: %v", header.Filename, err)
			} else {
				logger.Warning("Rejected %s: %v", header.Filename, err)
			}
			writeError(w, status, err.Error(), logger)
			return
		}

		writeJSON(w, http.StatusOK, resp, logger)
	}
}

// statusFor maps processing errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidImage), errors.Is(err, fusion.ErrEmptyInputImage):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrQueueFull), errors.Is(err, service.ErrStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
