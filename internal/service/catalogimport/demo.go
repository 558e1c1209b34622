package catalogimport

import (
	"context"
	"fmt"
	"strings"

	"github.com/ignite/software-catalog/internal/datanorm"
	"github.com/ignite/software-catalog/internal/domain"
	"github.com/ignite/software-catalog/internal/pkg/logger"
)

// DemoDataset is a self-contained catalog: software rows plus the categories
// and target groups they refer to by name.
type DemoDataset struct {
	Software     []datanorm.Row  `json:"software"`
	Categories   []ReferenceSeed `json:"categories"`
	TargetGroups []ReferenceSeed `json:"targetGroups"`
}

// ReferenceSeed describes a category or target group to create if missing.
type ReferenceSeed struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	NameEN        string `json:"nameEn"`
	DescriptionEN string `json:"descriptionEn"`
}

// DemoSummary adds the reference creation counts to a batch summary.
type DemoSummary struct {
	*Summary
	CategoriesCreated   int
	TargetGroupsCreated int
}

// ImportDemo creates the dataset's missing categories and target groups,
// then imports its software rows as a normal batch. References are created
// before the batch starts, so the batch snapshot sees them; datasets the
// batch would reject outright are refused before anything is created.
func (s *Service) ImportDemo(ctx context.Context, ds *DemoDataset, actorID string) (*DemoSummary, error) {
	if ds == nil || len(ds.Software) == 0 {
		return nil, ErrNoData
	}
	if s.opts.MaxRows > 0 && len(ds.Software) > s.opts.MaxRows {
		return nil, fmt.Errorf("%w: %d rows, limit is %d", ErrTooManyRows, len(ds.Software), s.opts.MaxRows)
	}
	ctx = context.WithoutCancel(ctx)

	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	groups, err := s.repo.ListTargetGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("load target groups: %w", err)
	}

	seen := make(map[string]bool, len(cats)+len(groups))
	for _, c := range cats {
		seen["c:"+domain.FoldName(c.Name)] = true
	}
	for _, g := range groups {
		seen["g:"+domain.FoldName(g.Name)] = true
	}

	out := &DemoSummary{}
	for _, seed := range ds.Categories {
		key := "c:" + domain.FoldName(seed.Name)
		if seen[key] || key == "c:" {
			continue
		}
		if _, err := s.repo.CreateCategory(ctx, &domain.Category{
			Name:          strings.TrimSpace(seed.Name),
			Description:   seed.Description,
			NameEN:        seed.NameEN,
			DescriptionEN: seed.DescriptionEN,
		}); err != nil {
			return nil, fmt.Errorf("create category %q: %w", seed.Name, err)
		}
		seen[key] = true
		out.CategoriesCreated++
	}
	for _, seed := range ds.TargetGroups {
		key := "g:" + domain.FoldName(seed.Name)
		if seen[key] || key == "g:" {
			continue
		}
		if _, err := s.repo.CreateTargetGroup(ctx, &domain.TargetGroup{
			Name:          strings.TrimSpace(seed.Name),
			Description:   seed.Description,
			NameEN:        seed.NameEN,
			DescriptionEN: seed.DescriptionEN,
		}); err != nil {
			return nil, fmt.Errorf("create target group %q: %w", seed.Name, err)
		}
		seen[key] = true
		out.TargetGroupsCreated++
	}

	logger.Info("demo dataset references ready",
		"categories_created", out.CategoriesCreated,
		"target_groups_created", out.TargetGroupsCreated,
	)

	sum, err := s.Import(ctx, Batch{Rows: ds.Software, ActorID: actorID, Source: SourceDemo})
	if err != nil {
		return nil, err
	}
	out.Summary = sum
	return out, nil
}
