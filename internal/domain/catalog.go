package domain

import (
	"strings"
	"time"
)

// CatalogEntry is one software product shown in the catalog.
type CatalogEntry struct {
	ID               string   `json:"id" db:"id"`
	Name             string   `json:"name" db:"name"`
	ShortDescription string   `json:"shortDescription" db:"short_description"`
	Description      string   `json:"description" db:"description"`
	URL              string   `json:"url" db:"url"`
	LogoURL          string   `json:"logoUrl" db:"logo_url"`
	Types            []string `json:"types" db:"types"`
	Costs            string   `json:"costs" db:"costs"`
	Available        bool     `json:"available" db:"available"`

	// Secondary-language mirrors.
	NameEN             string `json:"nameEn,omitempty" db:"name_en"`
	ShortDescriptionEN string `json:"shortDescriptionEn,omitempty" db:"short_description_en"`
	DescriptionEN      string `json:"descriptionEn,omitempty" db:"description_en"`
	CostsEN            string `json:"costsEn,omitempty" db:"costs_en"`

	Features     string `json:"features,omitempty" db:"features"`
	Alternatives string `json:"alternatives,omitempty" db:"alternatives"`
	Notes        string `json:"notes,omitempty" db:"notes"`

	// Populated on read from the join tables.
	CategoryIDs    []string `json:"categoryIds"`
	TargetGroupIDs []string `json:"targetGroupIds"`

	CreatedBy string    `json:"createdBy" db:"created_by"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Category groups catalog entries by purpose ("Kollaboration", "Office", ...).
type Category struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Description   string    `json:"description,omitempty" db:"description"`
	NameEN        string    `json:"nameEn,omitempty" db:"name_en"`
	DescriptionEN string    `json:"descriptionEn,omitempty" db:"description_en"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// TargetGroup is an audience a catalog entry is meant for.
type TargetGroup struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Description   string    `json:"description,omitempty" db:"description"`
	NameEN        string    `json:"nameEn,omitempty" db:"name_en"`
	DescriptionEN string    `json:"descriptionEn,omitempty" db:"description_en"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// EntryCategoryLink joins a catalog entry to a category.
type EntryCategoryLink struct {
	EntryID    string `json:"entryId" db:"entry_id"`
	CategoryID string `json:"categoryId" db:"category_id"`
}

// EntryTargetGroupLink joins a catalog entry to a target group.
type EntryTargetGroupLink struct {
	EntryID       string `json:"entryId" db:"entry_id"`
	TargetGroupID string `json:"targetGroupId" db:"target_group_id"`
}

// FoldName is the lookup key used wherever names are compared: trimmed and
// lower-cased.
func FoldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
