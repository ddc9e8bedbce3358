package ports

import (
	"context"

	"github.com/olusolaa/azfw-policy-drift/internal/core/domain"
)

type MatchedPair struct {
	ID     domain.LogicalID
	Import domain.Resource
	Export domain.Resource
}

type MatchingResult struct {
	Matched    []MatchedPair
	ImportOnly []domain.Resource // Only in the import template
	ExportOnly []domain.Resource // Only in the export template
}

//go:generate mockery --name=Matcher --output=./mocks --outpkg=mocks --case underscore
type Matcher interface {
	Match(ctx context.Context, imported, exported []domain.Resource) (MatchingResult, error)
}
