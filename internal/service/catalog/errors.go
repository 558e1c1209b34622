package catalog

import "errors"

// Sentinel errors for the catalog service layer.
var (
	ErrNotFound      = errors.New("catalog item not found")
	ErrNameRequired  = errors.New("name is required")
	ErrDuplicateName = errors.New("name already exists")
)
