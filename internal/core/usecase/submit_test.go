package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/projectscope/estimation-service/internal/core/domain"
)

type submitRepoFake struct {
	created     *domain.Analysis
	createErr   error
	statusCalls []statusCall
}

func (f *submitRepoFake) Create(_ context.Context, analysis *domain.Analysis) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = analysis
	return nil
}

func (f *submitRepoFake) GetByID(context.Context, string) (*domain.Analysis, error) {
	return f.created, nil
}

func (f *submitRepoFake) UpdateStatus(_ context.Context, _ string, status domain.AnalysisStatus, errMessage string) error {
	f.statusCalls = append(f.statusCalls, statusCall{status: status, errMsg: errMessage})
	return nil
}

func (f *submitRepoFake) SaveResult(context.Context, string, map[string]any, float64) error {
	return nil
}

type queueFake struct {
	publishErr error
	published  []string
}

func (f *queueFake) PublishAnalysisSubmitted(_ context.Context, analysisID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, analysisID)
	return nil
}

func (f *queueFake) SubscribeAnalysisSubmitted(context.Context, func(context.Context, string) error) error {
	return nil
}

func TestSubmitCreatesAndDispatches(t *testing.T) {
	repo := &submitRepoFake{}
	queue := &queueFake{}
	uc := NewSubmitAnalysisUseCase(repo, queue)

	analysis, err := uc.Submit(context.Background(), domain.ProjectInput{
		Description: "Build a marketplace for vintage synthesizers",
		Industry:    "e-commerce",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.ID == "" {
		t.Fatal("analysis id not assigned")
	}
	if analysis.Status != domain.StatusProcessing {
		t.Errorf("status = %s, want processing", analysis.Status)
	}
	if repo.created == nil || repo.created.ID != analysis.ID {
		t.Error("analysis not persisted before dispatch")
	}
	if len(queue.published) != 1 || queue.published[0] != analysis.ID {
		t.Errorf("published ids = %v", queue.published)
	}
}

func TestSubmitRejectsShortDescription(t *testing.T) {
	uc := NewSubmitAnalysisUseCase(&submitRepoFake{}, &queueFake{})

	_, err := uc.Submit(context.Background(), domain.ProjectInput{Description: "too short"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestSubmitRejectsOverlongDescription(t *testing.T) {
	uc := NewSubmitAnalysisUseCase(&submitRepoFake{}, &queueFake{})

	_, err := uc.Submit(context.Background(), domain.ProjectInput{
		Description: strings.Repeat("x", domain.MaxDescriptionLength+1),
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestSubmitMarksFailedWhenDispatchFails(t *testing.T) {
	repo := &submitRepoFake{}
	queue := &queueFake{publishErr: errors.New("nats down")}
	uc := NewSubmitAnalysisUseCase(repo, queue)

	_, err := uc.Submit(context.Background(), domain.ProjectInput{
		Description: "Build a marketplace for vintage synthesizers",
	})
	if err == nil {
		t.Fatal("expected dispatch error")
	}
	if len(repo.statusCalls) != 1 || repo.statusCalls[0].status != domain.StatusFailed {
		t.Errorf("status calls = %+v, want single failed transition", repo.statusCalls)
	}
}
