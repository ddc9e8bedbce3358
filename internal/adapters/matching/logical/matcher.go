package logical

import (
	"context"
	"sort"

	"github.com/olusolaa/azfw-policy-drift/internal/core/domain"
	"github.com/olusolaa/azfw-policy-drift/internal/core/ports"
)

const MatcherTypeLogical = "logical"

// Collision records a resource that was replaced in an Index by a later
// resource with the same logical identifier.
type Collision struct {
	ID       domain.LogicalID
	Replaced domain.Resource
	Kept     domain.Resource
}

// Index maps logical identifiers to resources. When two resources share an
// identifier the later one wins and the earlier one is listed in Collisions.
type Index struct {
	Entries    map[domain.LogicalID]domain.Resource
	Collisions []Collision
}

// IDs returns the indexed identifiers in sorted order.
func (ix Index) IDs() []domain.LogicalID {
	ids := make([]domain.LogicalID, 0, len(ix.Entries))
	for id := range ix.Entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func BuildIndex(resources []domain.Resource) Index {
	ix := Index{Entries: make(map[domain.LogicalID]domain.Resource, len(resources))}
	for _, res := range resources {
		if res == nil {
			continue
		}
		id := res.LogicalID()
		if prev, exists := ix.Entries[id]; exists {
			ix.Collisions = append(ix.Collisions, Collision{ID: id, Replaced: prev, Kept: res})
		}
		ix.Entries[id] = res
	}
	return ix
}

type Matcher struct {
	logger ports.Logger
}

func NewMatcher(logger ports.Logger) *Matcher {
	return &Matcher{logger: logger}
}

func (m *Matcher) Match(
	ctx context.Context,
	imported []domain.Resource,
	exported []domain.Resource,
) (ports.MatchingResult, error) {

	m.logger.Debugf(ctx, "Starting logical matching (%d import, %d export)", len(imported), len(exported))

	importIndex := BuildIndex(imported)
	exportIndex := BuildIndex(exported)
	m.reportCollisions(ctx, "import", importIndex)
	m.reportCollisions(ctx, "export", exportIndex)

	result := ports.MatchingResult{
		Matched:    make([]ports.MatchedPair, 0),
		ImportOnly: make([]domain.Resource, 0),
		ExportOnly: make([]domain.Resource, 0),
	}

	for _, id := range importIndex.IDs() {
		if ctx.Err() != nil {
			return ports.MatchingResult{}, ctx.Err()
		}
		imp := importIndex.Entries[id]
		exp, found := exportIndex.Entries[id]
		if !found {
			result.ImportOnly = append(result.ImportOnly, imp)
			continue
		}
		result.Matched = append(result.Matched, ports.MatchedPair{ID: id, Import: imp, Export: exp})
		m.logger.Debugf(ctx, "Matched '%s' to '%s' as %s", imp.Name(), exp.Name(), id)
	}

	for _, id := range exportIndex.IDs() {
		if _, found := importIndex.Entries[id]; !found {
			result.ExportOnly = append(result.ExportOnly, exportIndex.Entries[id])
		}
	}

	m.logger.Debugf(ctx, "Logical matching finished: %d matched, %d import only, %d export only",
		len(result.Matched), len(result.ImportOnly), len(result.ExportOnly))
	return result, nil
}

func (m *Matcher) reportCollisions(ctx context.Context, side string, ix Index) {
	for _, c := range ix.Collisions {
		m.logger.WithFields(map[string]any{
			"logical_id": c.ID.String(),
			"side":       side,
		}).Warnf(ctx, "Duplicate logical identifier: '%s' replaces '%s'; only the later resource is compared",
			c.Kept.Name(), c.Replaced.Name())
	}
}
