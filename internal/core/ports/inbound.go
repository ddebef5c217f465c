package ports

import (
	"context"

	"github.com/projectscope/estimation-service/internal/core/domain"
)

// AnalysisSubmitter is the inbound contract for starting an analysis. Submit
// returns as soon as the record is created and the id is dispatched.
type AnalysisSubmitter interface {
	Submit(ctx context.Context, input domain.ProjectInput) (*domain.Analysis, error)
}

// AnalysisReader is the inbound read model for analysis state and results.
type AnalysisReader interface {
	GetByID(ctx context.Context, id string) (*domain.Analysis, error)
}

// AnalysisProcessor is the inbound contract for running the pipeline on a
// previously submitted analysis.
type AnalysisProcessor interface {
	ProcessByID(ctx context.Context, analysisID string) error
}
