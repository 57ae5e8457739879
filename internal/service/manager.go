package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"seedcounter/internal/dto"
	"seedcounter/internal/fusion"
	"seedcounter/internal/logger"
	"seedcounter/internal/model"
	"seedcounter/internal/service/counting"
	"seedcounter/internal/service/storage"

	"github.com/mdobak/go-xerrors"
	"gocv.io/x/gocv"
)

// QueueCapacity is the number of images that may wait for a worker.
const QueueCapacity = 100

var (
	// ErrQueueFull is returned when no more images can be queued.
	ErrQueueFull = errors.New("processing queue is full")
	// ErrInvalidImage is returned when the upload cannot be decoded as an image.
	ErrInvalidImage = errors.New("invalid image")
	// ErrStopped is returned for submissions after Stop.
	ErrStopped = errors.New("manager stopped")
)

// Detectors runs both detection models on one image.
type Detectors interface {
	DetectAll(ctx context.Context, img gocv.Mat) (seedlings, emptyCells fusion.DetectionSet, err error)
	Close() error
}

// ResultStore persists uploads and processed trays.
type ResultStore interface {
	SaveUpload(data []byte, originalName string) (string, error)
	RemoveUpload(path string)
	Save(rec storage.Record) (*model.Result, error)
}

// Broadcaster pushes a processed result to live viewers.
type Broadcaster interface {
	Broadcast(message []byte)
}

type processingTask struct {
	ctx   context.Context
	data  []byte
	name  string
	reply chan taskResult
}

type taskResult struct {
	resp *dto.ProcessResponse
	err  error
}

// Manager runs tray images through a fixed pool of workers. Each worker owns one
// Detectors value, so detection models are never shared between goroutines.
type Manager struct {
	detectors []Detectors
	engine    *counting.Engine
	store     ResultStore
	hub       Broadcaster
	logger    *logger.Logger

	processingQueue chan processingTask
	numWorkers      int

	mu      sync.RWMutex // guards stopped against sends on a closed queue
	stopped bool
	wg      sync.WaitGroup
}

// NewManager starts one worker per detector pair.
func NewManager(detectors []Detectors, engine *counting.Engine, store ResultStore, hub Broadcaster, logger *logger.Logger) *Manager {
	manager := &Manager{
		detectors:       detectors,
		engine:          engine,
		store:           store,
		hub:             hub,
		logger:          logger,
		processingQueue: make(chan processingTask, QueueCapacity),
		numWorkers:      len(detectors),
	}

	for i := 0; i < manager.numWorkers; i++ {
		manager.wg.Add(1)
		go manager.processingWorker(i)
	}

	manager.logger.Info("Manager started with %d worker(s)", manager.numWorkers)
	return manager
}

// Process queues one encoded image and waits for its result or for ctx.
func (m *Manager) Process(ctx context.Context, data []byte, name string) (*dto.ProcessResponse, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrInvalidImage)
	}

	task := processingTask{ctx: ctx, data: data, name: name, reply: make(chan taskResult, 1)}

	m.mu.RLock()
	if m.stopped {
		m.mu.RUnlock()
		return nil, ErrStopped
	}
	select {
	case m.processingQueue <- task:
	default:
		m.mu.RUnlock()
		m.logger.Warning("Processing queue full, rejecting %s", name)
		return nil, ErrQueueFull
	}
	m.mu.RUnlock()

	select {
	case r := <-task.reply:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// QueueLength reports how many images are waiting.
func (m *Manager) QueueLength() int {
	return len(m.processingQueue)
}

// Workers reports the size of the pool.
func (m *Manager) Workers() int {
	return m.numWorkers
}

// DetectorsAlive reports whether the first worker's detectors can be reached.
// Every worker is built from the same configuration.
func (m *Manager) DetectorsAlive(ctx context.Context) error {
	if len(m.detectors) == 0 {
		return errors.New("no detectors configured")
	}
	if checker, ok := m.detectors[0].(interface{ Alive(context.Context) error }); ok {
		return checker.Alive(ctx)
	}
	return nil
}

func (m *Manager) processingWorker(workerID int) {
	defer m.wg.Done()

	m.logger.Info("Processing worker %d started", workerID)

	for task := range m.processingQueue {
		if err := task.ctx.Err(); err != nil {
			task.reply <- taskResult{err: err}
			continue
		}

		resp, err := m.processImage(task, workerID)
		if err != nil {
			m.logger.Error("Worker %d failed to process %s: %s", workerID, task.name, xerrors.Sprint(xerrors.New(err)))
		}
		task.reply <- taskResult{resp: resp, err: err}
	}

	m.logger.Info("Processing worker %d stopped", workerID)
}

// processImage stores the upload, decodes it from disk and runs detection,
// fusion, rendering and storage on it.
func (m *Manager) processImage(task processingTask, workerID int) (*dto.ProcessResponse, error) {
	uploadPath, err := m.store.SaveUpload(task.data, task.name)
	if err != nil {
		return nil, err
	}
	defer m.store.RemoveUpload(uploadPath)

	img := gocv.IMRead(uploadPath, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		return nil, fmt.Errorf("%w: could not decode %s", ErrInvalidImage, task.name)
	}

	seedlings, emptyCells, err := m.detectors[workerID].DetectAll(task.ctx, img)
	if err != nil {
		return nil, err
	}

	result, err := m.engine.Process(seedlings, emptyCells, img)
	if err != nil {
		return nil, err
	}
	defer result.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, result.Annotated)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result image: %w", err)
	}
	encoded := make([]byte, buf.Len())
	copy(encoded, buf.GetBytes())
	buf.Close()

	saved, err := m.store.Save(storage.Record{
		Image:      encoded,
		Stats:      result.Stats,
		Seedlings:  result.Seedlings,
		EmptyCells: result.EmptyCells,
		SourceName: task.name,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.ProcessResponse{
		ID:                    saved.ID,
		SeedlingCount:         result.SeedlingCount,
		EmptyCellCount:        result.EmptyCellCount,
		TotalCavities:         result.TotalCavities,
		GerminationPercentage: result.GerminationPercentage,
		OutputImageFilename:   saved.Filename,
		OutputImageURL:        dto.ResultURL(saved.Filename),
	}
	if saved.Thumbnail != "" {
		resp.ThumbnailURL = dto.ThumbnailURL(saved.Thumbnail)
	}

	m.logger.Info("%s: seedlings=%d empty_cells=%d total=%d germination=%.2f%% -> %s",
		task.name, resp.SeedlingCount, resp.EmptyCellCount, resp.TotalCavities, resp.GerminationPercentage, resp.OutputImageFilename)

	if m.hub != nil {
		if msg, err := json.Marshal(resp); err == nil {
			m.hub.Broadcast(msg)
		}
	}
	return resp, nil
}

// Stop closes the queue, waits for the workers to drain it and releases the detectors.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	close(m.processingQueue)
	m.mu.Unlock()

	m.wg.Wait()
	for i, d := range m.detectors {
		if err := d.Close(); err != nil {
			m.logger.Warning("Error closing detectors of worker %d: %v", i, err)
		}
	}
	m.logger.Info("All processing workers stopped")
}
