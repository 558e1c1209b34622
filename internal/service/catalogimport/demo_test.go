package catalogimport

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ignite/software-catalog/internal/datanorm"
)

const demoJSON = `{
	"categories": [
		{"name": "Kollaboration", "description": "Gemeinsam arbeiten"},
		{"name": "office"},
		{"name": "Lernen", "nameEn": "Learning"},
		{"name": " lernen "}
	],
	"targetGroups": [
		{"name": "Lehrkräfte"},
		{"name": "Schüler"}
	],
	"software": [
		{"name": "Nextcloud", "categories": ["Kollaboration", "Office"], "targetGroups": ["Lehrkräfte"]},
		{"name": "Moodle", "categories": ["Lernen"], "targetGroups": ["Schüler", "Lehrkräfte"]},
		{"name": "", "categories": ["Lernen"]}
	]
}`

func TestImportDemo_CreatesMissingReferencesFirst(t *testing.T) {
	repo := newMockRepo().withCategories("Office")
	svc, audit := newTestService(repo, Options{})

	ds, err := DecodeDemo([]byte(demoJSON))
	if err != nil {
		t.Fatalf("DecodeDemo: %v", err)
	}

	sum, err := svc.ImportDemo(context.Background(), ds, "admin@example.org")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sum.CategoriesCreated != 2 {
		t.Errorf("categories created = %d, want 2 (Office exists, lernen repeats)", sum.CategoriesCreated)
	}
	if sum.TargetGroupsCreated != 2 {
		t.Errorf("target groups created = %d, want 2", sum.TargetGroupsCreated)
	}
	if sum.Imported != 2 || sum.Total != 3 {
		t.Errorf("imported/total = %d/%d, want 2/3", sum.Imported, sum.Total)
	}
	if len(sum.Warnings) != 0 {
		t.Errorf("every reference should resolve, got warnings %v", sum.Warnings)
	}

	moodle := repo.entryByName("Moodle")
	if len(repo.tgLinks[moodle.ID]) != 2 {
		t.Errorf("Moodle target group links = %v", repo.tgLinks[moodle.ID])
	}
	nc := repo.entryByName("Nextcloud")
	if !repo.catLinks[nc.ID]["cat-office"] {
		t.Errorf("Nextcloud should link the pre-existing Office category: %v", repo.catLinks[nc.ID])
	}

	if len(audit.records) != 1 {
		t.Fatalf("audit records = %d, want 1", len(audit.records))
	}
}

func TestImportDemo_NoSoftwareIsNoData(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, Options{})

	_, err := svc.ImportDemo(context.Background(), &DemoDataset{
		Categories: []ReferenceSeed{{Name: "Office"}},
	}, "admin@example.org")
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
	if len(repo.categories) != 0 {
		t.Error("no references should be created for an empty dataset")
	}
}

func TestImportDemo_TooManyRowsCreatesNothing(t *testing.T) {
	repo := newMockRepo()
	svc, audit := newTestService(repo, Options{MaxRows: 1})

	_, err := svc.ImportDemo(context.Background(), &DemoDataset{
		Categories:   []ReferenceSeed{{Name: "Office"}},
		TargetGroups: []ReferenceSeed{{Name: "Lehrkräfte"}},
		Software:     []datanorm.Row{{"name": "A"}, {"name": "B"}},
	}, "admin@example.org")
	if !errors.Is(err, ErrTooManyRows) {
		t.Fatalf("err = %v, want ErrTooManyRows", err)
	}
	if len(repo.categories) != 0 || len(repo.targetGroups) != 0 {
		t.Errorf("references created: %d categories, %d target groups", len(repo.categories), len(repo.targetGroups))
	}
	if len(repo.entries) != 0 || len(audit.records) != 0 {
		t.Error("nothing may be written or audited")
	}
}

func TestImportDemo_ReferenceCreationFailure(t *testing.T) {
	repo := newMockRepo()
	repo.createRefErr = errors.New("unique violation")
	svc, audit := newTestService(repo, Options{})

	ds, err := DecodeDemo([]byte(demoJSON))
	if err != nil {
		t.Fatalf("DecodeDemo: %v", err)
	}
	if _, err := svc.ImportDemo(context.Background(), ds, "admin@example.org"); err == nil {
		t.Fatal("expected error")
	}
	if len(repo.entries) != 0 || len(audit.records) != 0 {
		t.Error("batch must not run when references could not be created")
	}
}

func TestDecodeDemo_RejectsArrays(t *testing.T) {
	_, err := DecodeDemo([]byte(`[{"name":"x"}]`))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if strings.Contains(err.Error(), "array") {
		t.Errorf("demo error should not ask for an array: %q", err)
	}
}

func TestDecodeRows_MessageNamesArray(t *testing.T) {
	_, err := DecodeRows([]byte(`{"software":[]}`))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if !strings.Contains(err.Error(), "JSON array of row objects") {
		t.Errorf("err = %q", err)
	}
}
