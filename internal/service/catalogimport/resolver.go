package catalogimport

import (
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/ignite/software-catalog/internal/datanorm"
	"github.com/ignite/software-catalog/internal/domain"
)

// maxSuggestDistance bounds the edit distance of a "did you mean" hint.
const maxSuggestDistance = 2

// ReferenceIndex maps folded category and target group names to IDs. It is
// built once per batch and never written afterwards, so it is safe to share.
type ReferenceIndex struct {
	categories   map[string]string
	targetGroups map[string]string

	// Display names, for suggestions.
	categoryNames    []string
	targetGroupNames []string
}

// BuildReferenceIndex snapshots the given references. When two names fold to
// the same key the first one listed wins.
func BuildReferenceIndex(categories []domain.Category, targetGroups []domain.TargetGroup) *ReferenceIndex {
	idx := &ReferenceIndex{
		categories:   make(map[string]string, len(categories)),
		targetGroups: make(map[string]string, len(targetGroups)),
	}
	for _, c := range categories {
		key := domain.FoldName(c.Name)
		if _, exists := idx.categories[key]; exists || key == "" {
			continue
		}
		idx.categories[key] = c.ID
		idx.categoryNames = append(idx.categoryNames, c.Name)
	}
	for _, g := range targetGroups {
		key := domain.FoldName(g.Name)
		if _, exists := idx.targetGroups[key]; exists || key == "" {
			continue
		}
		idx.targetGroups[key] = g.ID
		idx.targetGroupNames = append(idx.targetGroupNames, g.Name)
	}
	return idx
}

// CategoryID looks up a single category name.
func (idx *ReferenceIndex) CategoryID(name string) (string, bool) {
	id, ok := idx.categories[domain.FoldName(name)]
	return id, ok
}

// TargetGroupID looks up a single target group name.
func (idx *ReferenceIndex) TargetGroupID(name string) (string, bool) {
	id, ok := idx.targetGroups[domain.FoldName(name)]
	return id, ok
}

// ResolvedRow is a canonical row with its reference names replaced by IDs.
// Unmatched names are dropped from the ID lists and kept aside for warnings.
type ResolvedRow struct {
	datanorm.CatalogRow

	CategoryIDs    []string
	TargetGroupIDs []string

	UnmatchedCategories   []string
	UnmatchedTargetGroups []string
}

// Resolve maps the row's category and target group names through the index.
// Duplicate names yield duplicate IDs; link creation tolerates them.
func (idx *ReferenceIndex) Resolve(row datanorm.CatalogRow) ResolvedRow {
	out := ResolvedRow{
		CatalogRow:     row,
		CategoryIDs:    []string{},
		TargetGroupIDs: []string{},
	}
	for _, name := range row.Categories {
		if id, ok := idx.CategoryID(name); ok {
			out.CategoryIDs = append(out.CategoryIDs, id)
		} else {
			out.UnmatchedCategories = append(out.UnmatchedCategories, name)
		}
	}
	for _, name := range row.TargetGroups {
		if id, ok := idx.TargetGroupID(name); ok {
			out.TargetGroupIDs = append(out.TargetGroupIDs, id)
		} else {
			out.UnmatchedTargetGroups = append(out.UnmatchedTargetGroups, name)
		}
	}
	return out
}

// unmatchedWarnings describes every dropped reference of a row.
func (idx *ReferenceIndex) unmatchedWarnings(rowNum int, r ResolvedRow) []string {
	var out []string
	for _, name := range r.UnmatchedCategories {
		out = append(out, unmatchedWarning(rowNum, "category", name, suggest(name, idx.categoryNames)))
	}
	for _, name := range r.UnmatchedTargetGroups {
		out = append(out, unmatchedWarning(rowNum, "target group", name, suggest(name, idx.targetGroupNames)))
	}
	return out
}

func unmatchedWarning(rowNum int, kind, name, hint string) string {
	msg := fmt.Sprintf("Row %d: unknown %s %q", rowNum, kind, name)
	if hint != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", hint)
	}
	return msg
}

// suggest returns the closest known name, or "" when nothing is close. A name
// whose letters appear in order inside a known name ranks first; otherwise a
// small edit distance is accepted.
func suggest(name string, known []string) string {
	if len(known) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindNormalizedFold(name, known)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best, bestDist := "", maxSuggestDistance+1
	folded := domain.FoldName(name)
	for _, k := range known {
		if d := fuzzy.LevenshteinDistance(folded, domain.FoldName(k)); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}
