package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/projectscope/estimation-service/internal/core/domain"
	"github.com/projectscope/estimation-service/internal/core/ports"
)

// SubmitAnalysisUseCase accepts a project description, persists a pending
// analysis record, and dispatches it to the worker queue.
type SubmitAnalysisUseCase struct {
	repo  ports.AnalysisRepository
	queue ports.MessageQueue
}

func NewSubmitAnalysisUseCase(repo ports.AnalysisRepository, queue ports.MessageQueue) *SubmitAnalysisUseCase {
	return &SubmitAnalysisUseCase{
		repo:  repo,
		queue: queue,
	}
}

func (uc *SubmitAnalysisUseCase) Submit(ctx context.Context, input domain.ProjectInput) (*domain.Analysis, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	analysis := &domain.Analysis{
		ID:        uuid.NewString(),
		Input:     input,
		Status:    domain.StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.repo.Create(ctx, analysis); err != nil {
		return nil, fmt.Errorf("create analysis: %w", err)
	}

	if err := uc.queue.PublishAnalysisSubmitted(ctx, analysis.ID); err != nil {
		// The record stays visible so the failure is diagnosable from the API.
		if stErr := uc.repo.UpdateStatus(ctx, analysis.ID, domain.StatusFailed, "Analysis failed: could not dispatch to worker"); stErr != nil {
			slog.Error("mark_undispatched_analysis_failed", "analysis_id", analysis.ID, "error", stErr.Error())
		}
		return nil, fmt.Errorf("dispatch analysis %s: %w", analysis.ID, err)
	}

	slog.Info("analysis_submitted", "analysis_id", analysis.ID, "description_length", len(input.Description))
	return analysis, nil
}

// GetByID returns the stored analysis record.
func (uc *SubmitAnalysisUseCase) GetByID(ctx context.Context, id string) (*domain.Analysis, error) {
	analysis, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return analysis, nil
}
