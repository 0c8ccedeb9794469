package core

import (
	"fmt"
	"math"
	"sort"

	"github.com/valter-silva-au/decision-quality/pkg/models"
)

// UnrankedRank is the rank given to method types missing from the catalog.
// It sorts after every ranked type.
const UnrankedRank = math.MaxInt

// MethodCatalog maps method types to labels and strategic-priority ranks.
// A catalog is immutable once built and safe for concurrent use.
type MethodCatalog struct {
	defs   []models.MethodDefinition
	byType map[models.MethodType]models.MethodDefinition
}

// DefaultMethodDefinitions returns the built-in method catalog entries.
func DefaultMethodDefinitions() []models.MethodDefinition {
	return []models.MethodDefinition{
		{Type: models.MethodWorkshop, Label: "Workshop", Rank: 1},
		{Type: models.MethodInterviews, Label: "Interviews", Rank: 2},
		{Type: models.MethodQuestionnaire, Label: "Questionnaire", Rank: 3},
		{Type: models.MethodAIExploration, Label: "AI Exploration", Rank: 4},
	}
}

// DefaultMethodCatalog returns the catalog built from DefaultMethodDefinitions.
func DefaultMethodCatalog() *MethodCatalog {
	c, err := NewMethodCatalog(DefaultMethodDefinitions())
	if err != nil {
		panic(fmt.Sprintf("core: invalid default method catalog: %v", err))
	}
	return c
}

// NewMethodCatalog validates defs and builds a catalog from a copy of them.
// Types must be non-empty and unique; ranks must be positive. Two types may
// share a rank, in which case input order decides between them.
func NewMethodCatalog(defs []models.MethodDefinition) (*MethodCatalog, error) {
	c := &MethodCatalog{
		defs:   make([]models.MethodDefinition, 0, len(defs)),
		byType: make(map[models.MethodType]models.MethodDefinition, len(defs)),
	}
	for i, d := range defs {
		if d.Type == "" {
			return nil, fmt.Errorf("method definition %d: type must not be empty", i)
		}
		if d.Rank <= 0 {
			return nil, fmt.Errorf("method %q: rank must be positive, got %d", d.Type, d.Rank)
		}
		if _, dup := c.byType[d.Type]; dup {
			return nil, fmt.Errorf("method %q: defined more than once", d.Type)
		}
		c.byType[d.Type] = d
		c.defs = append(c.defs, d)
	}
	sort.SliceStable(c.defs, func(i, j int) bool {
		return c.defs[i].Rank < c.defs[j].Rank
	})
	return c, nil
}

// Rank returns the rank for t. Unknown types return UnrankedRank and false.
func (c *MethodCatalog) Rank(t models.MethodType) (int, bool) {
	if c != nil {
		if d, ok := c.byType[t]; ok {
			return d.Rank, true
		}
	}
	return UnrankedRank, false
}

// LabelFor returns the human label for t, echoing the raw identifier when
// the type is not in the catalog.
func (c *MethodCatalog) LabelFor(t models.MethodType) string {
	if c != nil {
		if d, ok := c.byType[t]; ok && d.Label != "" {
			return d.Label
		}
	}
	if t == "" {
		return "Unknown method"
	}
	return string(t)
}

// Definitions returns the catalog entries ordered by rank.
func (c *MethodCatalog) Definitions() []models.MethodDefinition {
	if c == nil {
		return nil
	}
	out := make([]models.MethodDefinition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Len returns the number of catalog entries.
func (c *MethodCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.defs)
}
