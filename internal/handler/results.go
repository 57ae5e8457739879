package handler

import (
	"errors"
	"net/http"
	"strconv"

	"seedcounter/internal/dto"
	"seedcounter/internal/logger"
	"seedcounter/internal/service/storage"
)

// ResultService reads and deletes stored results.
type ResultService interface {
	List(filter *dto.ResultFilter, page, limit int) (*dto.ResultsData, error)
	Detail(id int64) (*dto.ResultDetail, error)
	DetailByFilename(filename string) (*dto.ResultDetail, error)
	Summary() (*dto.Summary, error)
	Delete(id int64) error
}

// maxPageSize caps the limit query parameter.
const maxPageSize = 100

// GetResultsHandler returns a filtered, paginated list of processed trays.
func GetResultsHandler(results ResultService, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := atoiDefault(q.Get("page"), 1)
		limit := min(atoiDefault(q.Get("limit"), 24), maxPageSize)

		filter := &dto.ResultFilter{
			DateAfter:     parseDate(q.Get("dateAfter")),
			DateBefore:    parseDate(q.Get("dateBefore")),
			MinPercentage: parsePercentage(q.Get("minPercentage")),
			MaxPercentage: parsePercentage(q.Get("maxPercentage")),
		}

		data, err := results.List(filter, page, limit)
		if err != nil {
			logger.Error("Error querying results from database: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal Server Error", logger)
			return
		}

		writeJSON(w, http.StatusOK, data, logger)
	}
}

// GetResultDetailHandler returns one result with its detections, looked up by
// id or by the output image filename.
func GetResultDetailHandler(results ResultService, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			detail *dto.ResultDetail
			err    error
			key    string
		)
		if filename := r.URL.Query().Get("filename"); filename != "" {
			key = filename
			detail, err = results.DetailByFilename(filename)
		} else {
			id, ok := parseID(r)
			if !ok {
				writeError(w, http.StatusBadRequest, "Valid id or filename required", logger)
				return
			}
			key = strconv.FormatInt(id, 10)
			detail, err = results.Detail(id)
		}

		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Result not found", logger)
			return
		}
		if err != nil {
			logger.Error("Error loading result %s: %v", key, err)
			writeError(w, http.StatusInternalServerError, "Internal Server Error", logger)
			return
		}

		writeJSON(w, http.StatusOK, detail, logger)
	}
}

// GetSummaryHandler returns aggregate counts over the whole history.
func GetSummaryHandler(results ResultService, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := results.Summary()
		if err != nil {
			logger.Error("Error summarizing results: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal Server Error", logger)
			return
		}
		writeJSON(w, http.StatusOK, summary, logger)
	}
}

// DeleteResultHandler removes a result from disk and database.
func DeleteResultHandler(results ResultService, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodDelete {
			w.Header().Set("Allow", "POST, DELETE")
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed", logger)
			return
		}

		id, ok := parseID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "Valid id required", logger)
			return
		}

		err := results.Delete(id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Result not found", logger)
			return
		}
		if err != nil {
			logger.Error("Failed to delete result %d: %v", id, err)
			writeError(w, http.StatusInternalServerError, "Internal Server Error", logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "deleted", "id": id}, logger)
	}
}
