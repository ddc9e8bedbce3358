package ports

import (
	"context"

	"github.com/olusolaa/azfw-policy-drift/internal/core/domain"
)

// Reporter renders finished comparison reports.
type Reporter interface {
	Report(ctx context.Context, reports []*domain.ComparisonReport) error
}

// ReportStore persists a report under name and returns where it was written.
//
//go:generate mockery --name ReportStore --output ./mocks --outpkg mocks --case underscore
type ReportStore interface {
	Type() string
	Save(ctx context.Context, name string, report *domain.ComparisonReport) (string, error)
}
