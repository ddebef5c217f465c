// Package memory provides an in-process analysis store for development and
// tests, selected with STORE_BACKEND=memory.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/projectscope/estimation-service/internal/core/domain"
)

type Store struct {
	mu       sync.RWMutex
	analyses map[string]*domain.Analysis
}

func NewStore() *Store {
	return &Store{analyses: make(map[string]*domain.Analysis)}
}

func (s *Store) Create(_ context.Context, analysis *domain.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.analyses[analysis.ID]; exists {
		return fmt.Errorf("analysis already exists: %s", analysis.ID)
	}
	copied := *analysis
	s.analyses[analysis.ID] = &copied
	return nil
}

func (s *Store) GetByID(_ context.Context, id string) (*domain.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	analysis, ok := s.analyses[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrAnalysisNotFound, "get analysis", fmt.Errorf("id %s", id))
	}
	copied := *analysis
	return &copied, nil
}

func (s *Store) UpdateStatus(_ context.Context, id string, status domain.AnalysisStatus, errMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	analysis, ok := s.analyses[id]
	if !ok {
		return domain.WrapError(domain.ErrAnalysisNotFound, "update analysis", fmt.Errorf("id %s", id))
	}
	analysis.Status = status
	analysis.Error = errMessage
	analysis.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) SaveResult(_ context.Context, id string, result map[string]any, overallConfidence float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	analysis, ok := s.analyses[id]
	if !ok {
		return domain.WrapError(domain.ErrAnalysisNotFound, "save analysis result", fmt.Errorf("id %s", id))
	}
	now := time.Now().UTC()
	analysis.Status = domain.StatusCompleted
	analysis.Result = result
	analysis.OverallConfidence = overallConfidence
	analysis.Error = ""
	analysis.UpdatedAt = now
	analysis.CompletedAt = &now
	return nil
}
