package ports

import (
	"context"

	"github.com/olusolaa/azfw-policy-drift/internal/core/domain"
)

// ComparisonEngine compares many template pairs.
//
//go:generate mockery --name ComparisonEngine --output ./mocks --outpkg mocks --case underscore
type ComparisonEngine interface {
	Run(ctx context.Context, pairs []domain.TemplatePair) ([]*domain.ComparisonReport, error)
}
