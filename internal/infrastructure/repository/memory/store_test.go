package memory

import (
	"context"
	"testing"

	"github.com/projectscope/estimation-service/internal/core/domain"
)

func TestStoreLifecycle(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	analysis := &domain.Analysis{
		ID:     "an-1",
		Input:  domain.ProjectInput{Description: "Build a marketplace"},
		Status: domain.StatusProcessing,
	}
	if err := store.Create(ctx, analysis); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Create(ctx, analysis); err == nil {
		t.Fatal("duplicate create should fail")
	}

	if err := store.SaveResult(ctx, "an-1", map[string]any{"executive_summary": "ok"}, 0.8); err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}

	got, err := store.GetByID(ctx, "an-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != domain.StatusCompleted {
		t.Errorf("status = %s", got.Status)
	}
	if got.CompletedAt == nil {
		t.Error("completed_at not set")
	}
	if got.Result["executive_summary"] != "ok" {
		t.Errorf("result = %v", got.Result)
	}
}

func TestStoreNotFound(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if _, err := store.GetByID(ctx, "missing"); !domain.IsKind(err, domain.ErrAnalysisNotFound) {
		t.Errorf("GetByID error = %v, want ErrAnalysisNotFound", err)
	}
	if err := store.UpdateStatus(ctx, "missing", domain.StatusFailed, "x"); !domain.IsKind(err, domain.ErrAnalysisNotFound) {
		t.Errorf("UpdateStatus error = %v, want ErrAnalysisNotFound", err)
	}
	if err := store.SaveResult(ctx, "missing", nil, 0); !domain.IsKind(err, domain.ErrAnalysisNotFound) {
		t.Errorf("SaveResult error = %v, want ErrAnalysisNotFound", err)
	}
}

func TestStoreReturnsCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.Create(ctx, &domain.Analysis{ID: "an-1", Status: domain.StatusProcessing}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	got, err := store.GetByID(ctx, "an-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	got.Status = domain.StatusFailed

	again, err := store.GetByID(ctx, "an-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if again.Status != domain.StatusProcessing {
		t.Errorf("stored record mutated through returned copy: %s", again.Status)
	}
}
