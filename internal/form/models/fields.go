package models

// Field names. Lookup fields use them as the base of their combobox key and
// validation uses them in focus hints. Per-record fields are grouped by
// record id and research-row fields by row index.
const (
	FieldDocumentType       = "document_type"
	FieldSubject            = "subject"
	FieldNumber             = "number"
	FieldAnalyst            = "analyst"
	FieldRecipient          = "recipient"
	FieldRecipients         = "recipients"
	FieldAddressing         = "addressing"
	FieldAuthority          = "authority"
	FieldCourt              = "court"
	FieldSigningDate        = "signing_date"
	FieldMediaType          = "media_type"
	FieldMediaIdentifier    = "media_identifier"
	FieldMediaSummary       = "media_summary"
	FieldIdentifierType     = "identifier_type"
	FieldResearchIdentifier = "research_identifier"
)
