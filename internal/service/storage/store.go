package storage

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"seedcounter/internal/config"
	"seedcounter/internal/dto"
	"seedcounter/internal/fusion"
	"seedcounter/internal/logger"
	"seedcounter/internal/model"
	"seedcounter/internal/repository"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a result id does not exist.
var ErrNotFound = errors.New("result not found")

// Record is one processed tray ready to be persisted.
type Record struct {
	Image      []byte // annotated JPEG
	Stats      fusion.Stats
	Seedlings  fusion.DetectionSet
	EmptyCells fusion.DetectionSet
	SourceName string
}

// ResultStore keeps annotated images, thumbnails and the result history.
type ResultStore struct {
	resultsDir    string
	thumbnailsDir string
	uploadDir     string
	thumbnailSize int
	logger        *logger.Logger
	resultRepo    repository.ResultRepository
	detectionRepo repository.DetectionRepository
}

// NewResultStore creates the store and its directories.
func NewResultStore(config *config.Config, logger *logger.Logger, resultRepo repository.ResultRepository, detectionRepo repository.DetectionRepository) (*ResultStore, error) {
	s := &ResultStore{
		resultsDir:    config.ResultsDirectory,
		thumbnailsDir: config.ThumbnailDirectory,
		uploadDir:     config.UploadDirectory,
		thumbnailSize: config.ThumbnailSize,
		logger:        logger,
		resultRepo:    resultRepo,
		detectionRepo: detectionRepo,
	}

	for _, dir := range []string{s.resultsDir, s.thumbnailsDir, s.uploadDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("error creating directory %s: %w", dir, err)
		}
	}
	return s, nil
}

// uploadExtensions maps accepted upload extensions to themselves; anything else is stored as .jpg.
var uploadExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".bmp": true, ".webp": true, ".tif": true, ".tiff": true,
}

// SaveUpload writes raw upload bytes as input_<uuid>.<ext> and returns the path.
func (s *ResultStore) SaveUpload(data []byte, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !uploadExtensions[ext] {
		ext = ".jpg"
	}

	path := filepath.Join(s.uploadDir, fmt.Sprintf("input_%s%s", uuid.NewString(), ext))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("error saving upload: %w", err)
	}
	return path, nil
}

// RemoveUpload deletes a temporary upload. Missing files are ignored.
func (s *ResultStore) RemoveUpload(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warning("Could not remove upload %s: %v", path, err)
	}
}

// Save writes the annotated image and its thumbnail, then records the result
// and its detections. Files are removed again if the database write fails.
func (s *ResultStore) Save(rec Record) (*model.Result, error) {
	id := uuid.NewString()
	filename := fmt.Sprintf("result_%s.jpg", id)
	fullpath := filepath.Join(s.resultsDir, filename)

	if err := os.WriteFile(fullpath, rec.Image, 0644); err != nil {
		return nil, fmt.Errorf("error saving image %s: %w", filename, err)
	}

	thumbnail, err := s.writeThumbnail(rec.Image, id)
	if err != nil {
		// the result is still usable without a thumbnail
		s.logger.Warning("Error creating thumbnail for %s: %v", filename, err)
	}

	res := &model.Result{
		Filename:              filename,
		Thumbnail:             thumbnail,
		SourceName:            rec.SourceName,
		SeedlingCount:         rec.Stats.SeedlingCount,
		EmptyCellCount:        rec.Stats.EmptyCellCount,
		TotalCavities:         rec.Stats.TotalCavities,
		GerminationPercentage: rec.Stats.GerminationPercentage,
		CreatedAt:             time.Now().UTC().Truncate(time.Second),
	}

	res.ID, err = s.resultRepo.Insert(res)
	if err != nil {
		s.removeFiles(res)
		return nil, fmt.Errorf("error saving result to database: %w", err)
	}

	detections := make([]model.Detection, 0, len(rec.Seedlings)+len(rec.EmptyCells))
	detections = appendDetections(detections, res.ID, model.KindSeedling, rec.Seedlings)
	detections = appendDetections(detections, res.ID, model.KindEmptyCell, rec.EmptyCells)
	if err := s.detectionRepo.InsertBatch(detections); err != nil {
		if delErr := s.resultRepo.Delete(res.ID); delErr != nil {
			s.logger.Error("Error rolling back result %d: %v", res.ID, delErr)
		}
		s.removeFiles(res)
		return nil, fmt.Errorf("error saving detections to database: %w", err)
	}

	s.logger.Info("Saved result %d as %s", res.ID, filename)
	return res, nil
}

func appendDetections(dst []model.Detection, resultID int64, kind string, set fusion.DetectionSet) []model.Detection {
	for _, d := range set {
		dst = append(dst, model.Detection{
			ResultID:   resultID,
			Kind:       kind,
			Label:      d.Label,
			X1:         d.Box.X1,
			Y1:         d.Box.Y1,
			X2:         d.Box.X2,
			Y2:         d.Box.Y2,
			Confidence: d.Confidence,
		})
	}
	return dst
}

// writeThumbnail stores a downscaled copy that fits in thumbnailSize pixels.
func (s *ResultStore) writeThumbnail(jpeg []byte, id string) (string, error) {
	if s.thumbnailSize <= 0 {
		return "", nil
	}

	img, err := imaging.Decode(bytes.NewReader(jpeg))
	if err != nil {
		return "", err
	}
	thumb := imaging.Fit(img, s.thumbnailSize, s.thumbnailSize, imaging.Lanczos)

	filename := fmt.Sprintf("thumb_%s.jpg", id)
	if err := imaging.Save(thumb, filepath.Join(s.thumbnailsDir, filename), imaging.JPEGQuality(85)); err != nil {
		return "", err
	}
	return filename, nil
}

func (s *ResultStore) removeFiles(res *model.Result) {
	paths := []string{filepath.Join(s.resultsDir, res.Filename)}
	if res.Thumbnail != "" {
		paths = append(paths, filepath.Join(s.thumbnailsDir, res.Thumbnail))
	}
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			s.logger.Warning("Could not remove %s: %v", p, err)
		}
	}
}

// List returns one page of the history. page starts at 1.
func (s *ResultStore) List(filter *dto.ResultFilter, page, limit int) (*dto.ResultsData, error) {
	if filter == nil {
		filter = &dto.ResultFilter{}
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	total, err := s.resultRepo.GetTotalCount(filter)
	if err != nil {
		return nil, err
	}
	results, err := s.resultRepo.GetAll(filter)
	if err != nil {
		return nil, err
	}

	data := &dto.ResultsData{
		Results:     make([]dto.ResultInfo, 0, len(results)),
		Length:      total,
		TotalPages:  (total + limit - 1) / limit,
		CurrentPage: page,
		Limit:       limit,
	}
	for _, r := range results {
		data.Results = append(data.Results, dto.NewResultInfo(r))
	}
	return data, nil
}

// Detail returns one result with its detections.
func (s *ResultStore) Detail(id int64) (*dto.ResultDetail, error) {
	res, err := s.resultRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return s.detail(res)
}

// DetailByFilename looks a result up by its annotated image name, as returned in
// output_image_filename.
func (s *ResultStore) DetailByFilename(filename string) (*dto.ResultDetail, error) {
	res, err := s.resultRepo.GetByFilename(filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	return s.detail(res)
}

func (s *ResultStore) detail(res *model.Result) (*dto.ResultDetail, error) {
	if res == nil {
		return nil, ErrNotFound
	}

	detections, err := s.detectionRepo.GetByResultID(res.ID)
	if err != nil {
		return nil, err
	}
	return &dto.ResultDetail{Result: dto.NewResultInfo(*res), Detections: detections}, nil
}

// Summary aggregates the history.
func (s *ResultStore) Summary() (*dto.Summary, error) {
	return s.resultRepo.GetSummary()
}

// Delete removes a result, its detections and its files.
func (s *ResultStore) Delete(id int64) error {
	res, err := s.resultRepo.GetByID(id)
	if err != nil {
		return err
	}
	if res == nil {
		return ErrNotFound
	}

	if err := s.resultRepo.Delete(id); err != nil {
		return err
	}
	s.removeFiles(res)
	s.logger.Info("Deleted result %d (%s)", id, res.Filename)
	return nil
}
