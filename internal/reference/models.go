// Package reference serves the read-only catalog the form looks values up in:
// document types with their subjects, candidate pools for each lookup field
// and the addressing options of each recipient.
package reference

import "demandas/internal/form/models"

// Pool names. They match the base names of the lookup fields.
const (
	PoolRecipients      = "recipient"
	PoolAddressing      = "addressing"
	PoolAuthorities     = "authority"
	PoolCourts          = "court"
	PoolAnalysts        = "analyst"
	PoolMediaTypes      = "media_type"
	PoolIdentifierTypes = "identifier_type"
)

// DocumentType is a catalog document type and the subjects allowed for it.
// Subject-less types have an empty list.
type DocumentType struct {
	Name     string   `json:"name"`
	Subjects []string `json:"subjects"`
}

// Recipient is an organisation documents are addressed to.
type Recipient struct {
	models.SearchableValue
	Addressing []models.SearchableValue `json:"addressing,omitempty"`
}

// Catalog is the full reference data set.
type Catalog struct {
	DocumentTypes   []DocumentType
	Recipients      []Recipient
	Authorities     []models.SearchableValue
	Courts          []models.SearchableValue
	Analysts        []models.SearchableValue
	MediaTypes      []models.SearchableValue
	IdentifierTypes []models.SearchableValue
}

// Bootstrap is everything a form screen needs on first paint.
type Bootstrap struct {
	DocumentTypes []DocumentType                      `json:"document_types"`
	Pools         map[string][]models.SearchableValue `json:"pools"`
}
