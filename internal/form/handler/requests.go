package handler

import (
	"strings"
	"unicode/utf8"

	"demandas/internal/form/combobox"
	"demandas/internal/form/models"
	id "demandas/pkg/domain"
	dErrors "demandas/pkg/domain-errors"
)

const (
	maxValueLength = 2000
	maxQueryLength = 200
)

// OpenRequest is the body of POST /forms.
type OpenRequest struct {
	DemandaID  string `json:"demanda_id"`
	DocumentID string `json:"document_id,omitempty"`

	parsedDemandaID  id.DemandaID
	parsedDocumentID *id.DocumentID
}

// Validate implements httputil.Validatable.
func (r *OpenRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	demandaID, err := id.ParseDemandaID(strings.TrimSpace(r.DemandaID))
	if err != nil {
		return err
	}
	r.parsedDemandaID = demandaID
	if docID := strings.TrimSpace(r.DocumentID); docID != "" {
		parsed, err := id.ParseDocumentID(docID)
		if err != nil {
			return err
		}
		r.parsedDocumentID = &parsed
	}
	return nil
}

// FieldRef names a form field; Group selects a retification record or a
// research row.
type FieldRef struct {
	Field string `json:"field"`
	Group string `json:"group,omitempty"`
}

func (f *FieldRef) key() (combobox.FieldKey, error) {
	f.Field = strings.TrimSpace(f.Field)
	f.Group = strings.TrimSpace(f.Group)
	if f.Field == "" {
		return combobox.FieldKey{}, dErrors.New(dErrors.CodeValidation, "field is required")
	}
	return combobox.GroupKey(f.Field, f.Group), nil
}

// SetFieldRequest is the body of PATCH /forms/{id}/fields.
type SetFieldRequest struct {
	FieldRef
	Value string `json:"value"`

	parsedKey combobox.FieldKey
}

func (r *SetFieldRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if utf8.RuneCountInString(r.Value) > maxValueLength {
		return dErrors.New(dErrors.CodeValidation, "value is too long")
	}
	key, err := r.key()
	if err != nil {
		return err
	}
	r.parsedKey = key
	return nil
}

// AmendedRequest is the body of the amended toggles.
type AmendedRequest struct {
	Amended *bool `json:"amended"`
}

func (r *AmendedRequest) Validate() error {
	if r == nil || r.Amended == nil {
		return dErrors.New(dErrors.CodeValidation, "amended is required")
	}
	return nil
}

// RecordRequest is the body of PATCH /forms/{id}/retifications/{recordID}.
type RecordRequest struct {
	SigningDate *string `json:"signing_date"`
}

func (r *RecordRequest) Validate() error {
	if r == nil || r.SigningDate == nil {
		return dErrors.New(dErrors.CodeValidation, "signing_date is required")
	}
	return nil
}

// SearchRequest is the body of POST /forms/{id}/combobox/search.
type SearchRequest struct {
	FieldRef
	Query string `json:"query"`

	parsedKey combobox.FieldKey
}

func (r *SearchRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if utf8.RuneCountInString(r.Query) > maxQueryLength {
		return dErrors.New(dErrors.CodeValidation, "query is too long")
	}
	key, err := r.key()
	if err != nil {
		return err
	}
	if err := requireLookup(key); err != nil {
		return err
	}
	r.parsedKey = key
	return nil
}

// KeyRequest is the body of POST /forms/{id}/combobox/key.
type KeyRequest struct {
	FieldRef
	Key string `json:"key"`

	parsedKey combobox.FieldKey
}

func (r *KeyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if strings.TrimSpace(r.Key) == "" {
		return dErrors.New(dErrors.CodeValidation, "key is required")
	}
	key, err := r.key()
	if err != nil {
		return err
	}
	if err := requireLookup(key); err != nil {
		return err
	}
	r.parsedKey = key
	return nil
}

// FocusRequest is the body of POST /forms/{id}/combobox/focus.
type FocusRequest struct {
	FieldRef

	parsedKey combobox.FieldKey
}

func (r *FocusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	key, err := r.key()
	if err != nil {
		return err
	}
	if err := requireLookup(key); err != nil {
		return err
	}
	r.parsedKey = key
	return nil
}

// SelectRequest is the body of POST /forms/{id}/combobox/select.
type SelectRequest struct {
	FieldRef
	Index *int `json:"index"`

	parsedKey combobox.FieldKey
}

func (r *SelectRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Index == nil || *r.Index < 0 {
		return dErrors.New(dErrors.CodeValidation, "index must be zero or more")
	}
	key, err := r.key()
	if err != nil {
		return err
	}
	if err := requireLookup(key); err != nil {
		return err
	}
	r.parsedKey = key
	return nil
}

var lookupFields = map[string]bool{
	models.FieldAnalyst:        true,
	models.FieldRecipient:      true,
	models.FieldAddressing:     true,
	models.FieldAuthority:      true,
	models.FieldCourt:          true,
	models.FieldMediaType:      true,
	models.FieldIdentifierType: true,
}

func requireLookup(key combobox.FieldKey) error {
	if !lookupFields[key.Base] {
		return dErrors.New(dErrors.CodeValidation, "not a lookup field: "+key.Base)
	}
	return nil
}
