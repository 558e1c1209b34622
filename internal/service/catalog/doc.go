// Package catalog implements the admin operations on catalog entries,
// categories and target groups outside of bulk import: listing, single
// creates, deletes and the spreadsheet export.
//
// The service layer depends on the Repository interface defined in
// repository.go. It never imports net/http or database/sql directly.
package catalog
