package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"seedcounter/internal/dto"
	"seedcounter/internal/fusion"
	"seedcounter/internal/model"
)

const resultColumns = `id, filename, thumbnail, source_name, seedling_count, empty_cell_count,
	total_cavities, germination_percentage, created_at`

// ResultRepository implements repository.ResultRepository for SQLite.
type ResultRepository struct {
	db *DB
}

// NewResultRepository creates a new SQLite result repository.
func NewResultRepository(db *DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Insert adds a new result record to the database.
func (r *ResultRepository) Insert(res *model.Result) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO results (filename, thumbnail, source_name, seedling_count, empty_cell_count,
			total_cavities, germination_percentage, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, res.Filename, res.Thumbnail, res.SourceName, res.SeedlingCount, res.EmptyCellCount,
		res.TotalCavities, res.GerminationPercentage, res.CreatedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert result: %w", err)
	}

	return result.LastInsertId()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(s scanner) (*model.Result, error) {
	var res model.Result
	err := s.Scan(&res.ID, &res.Filename, &res.Thumbnail, &res.SourceName, &res.SeedlingCount,
		&res.EmptyCellCount, &res.TotalCavities, &res.GerminationPercentage, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetByID retrieves a result by its ID. It returns nil when no row matches.
func (r *ResultRepository) GetByID(id int64) (*model.Result, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	res, err := scanResult(r.db.Conn().QueryRow(`SELECT `+resultColumns+` FROM results WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return res, nil
}

// GetByFilename retrieves a result by its annotated image filename.
func (r *ResultRepository) GetByFilename(filename string) (*model.Result, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	res, err := scanResult(r.db.Conn().QueryRow(`SELECT `+resultColumns+` FROM results WHERE filename = ?`, filename))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return res, nil
}

// whereClause builds the filter conditions shared by GetAll and GetTotalCount.
func whereClause(filter *dto.ResultFilter) (string, []interface{}) {
	var b strings.Builder
	b.WriteString(" WHERE 1=1")
	args := []interface{}{}

	if filter == nil {
		return b.String(), args
	}

	if !filter.DateAfter.IsZero() {
		b.WriteString(" AND DATE(created_at) >= DATE(?)")
		args = append(args, filter.DateAfter.UTC())
	}

	if !filter.DateBefore.IsZero() {
		b.WriteString(" AND DATE(created_at) <= DATE(?)")
		args = append(args, filter.DateBefore.UTC())
	}

	if filter.MinPercentage != nil {
		b.WriteString(" AND germination_percentage >= ?")
		args = append(args, *filter.MinPercentage)
	}

	if filter.MaxPercentage != nil {
		b.WriteString(" AND germination_percentage <= ?")
		args = append(args, *filter.MaxPercentage)
	}

	return b.String(), args
}

// GetAll retrieves results matching the filter, newest first.
func (r *ResultRepository) GetAll(filter *dto.ResultFilter) ([]model.Result, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := whereClause(filter)
	query := `SELECT ` + resultColumns + ` FROM results` + where + ` ORDER BY created_at DESC, id DESC`

	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)

		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []model.Result
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, *res)
	}

	return results, rows.Err()
}

// GetTotalCount returns the total count of results matching the filter.
func (r *ResultRepository) GetTotalCount(filter *dto.ResultFilter) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := whereClause(filter)

	var count int
	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM results`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}

	return count, nil
}

// GetSummary aggregates counts over every stored result.
func (r *ResultRepository) GetSummary() (*dto.Summary, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var s dto.Summary
	var mean float64
	err := r.db.Conn().QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(seedling_count), 0),
			COALESCE(SUM(empty_cell_count), 0),
			COALESCE(SUM(total_cavities), 0),
			COALESCE(AVG(germination_percentage), 0)
		FROM results
	`).Scan(&s.Results, &s.Seedlings, &s.EmptyCells, &s.TotalCavities, &mean)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize results: %w", err)
	}

	s.MeanGerminationPercentage = fusion.Round2(mean)
	s.OverallGerminationPercentage = fusion.Percentage(s.Seedlings, s.TotalCavities)
	return &s, nil
}

// Delete removes a result by its ID. Its detections go with it.
func (r *ResultRepository) Delete(id int64) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM results WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	return nil
}
