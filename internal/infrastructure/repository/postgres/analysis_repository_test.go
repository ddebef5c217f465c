package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/projectscope/estimation-service/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*AnalysisRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &AnalysisRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestCreateInsertsRecord(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectExec("INSERT INTO analyses").
		WithArgs("an-1", "Build a marketplace", sqlmock.AnyArg(), string(domain.StatusProcessing), 0.0, "", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &domain.Analysis{
		ID:        "an-1",
		Input:     domain.ProjectInput{Description: "Build a marketplace"},
		Status:    domain.StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, input, status, result").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrAnalysisNotFound) {
		t.Fatalf("expected ErrAnalysisNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDDecodesStoredRecord(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	completed := now.Add(40 * time.Second)
	rows := sqlmock.NewRows([]string{
		"id", "input", "status", "result", "overall_confidence", "error_message", "created_at", "updated_at", "completed_at",
	}).AddRow(
		"an-1",
		[]byte(`{"description":"Build a marketplace","industry":"e-commerce"}`),
		string(domain.StatusCompleted),
		[]byte(`{"executive_summary":"done","overall_confidence":0.82}`),
		0.82, "", now, completed, completed,
	)
	mock.ExpectQuery("SELECT id, input, status, result").
		WithArgs("an-1").
		WillReturnRows(rows)

	analysis, err := repo.GetByID(context.Background(), "an-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if analysis.Status != domain.StatusCompleted {
		t.Errorf("status = %s", analysis.Status)
	}
	if analysis.Input.Industry != "e-commerce" {
		t.Errorf("input not decoded: %+v", analysis.Input)
	}
	if analysis.Result["executive_summary"] != "done" {
		t.Errorf("result not decoded: %v", analysis.Result)
	}
	if analysis.CompletedAt == nil || !analysis.CompletedAt.Equal(completed) {
		t.Errorf("completed_at = %v", analysis.CompletedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateStatusReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE analyses").
		WithArgs("missing", string(domain.StatusFailed), "Analysis failed: boom", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", domain.StatusFailed, "Analysis failed: boom")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrAnalysisNotFound) {
		t.Fatalf("expected ErrAnalysisNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveResultMarksCompleted(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE analyses").
		WithArgs("an-1", string(domain.StatusCompleted), sqlmock.AnyArg(), 0.82, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveResult(context.Background(), "an-1", map[string]any{"executive_summary": "done"}, 0.82)
	if err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
