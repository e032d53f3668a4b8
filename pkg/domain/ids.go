package domain

import (
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "demandas/pkg/domain-errors"
)

// Typed identifiers. Each wraps a UUID so the compiler keeps a DocumentID
// from being passed where a FormID is expected.
type (
	DemandaID  uuid.UUID
	DocumentID uuid.UUID
	FormID     uuid.UUID
	AnalystID  uuid.UUID
)

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	if !utf8.ValidString(s) {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	return u, nil
}

// ParseDemandaID parses an external demanda identifier.
func ParseDemandaID(s string) (DemandaID, error) {
	u, err := parseUUID(s, "demanda id")
	return DemandaID(u), err
}

// ParseDocumentID parses an external document identifier.
func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseUUID(s, "document id")
	return DocumentID(u), err
}

// ParseFormID parses an external form session identifier.
func ParseFormID(s string) (FormID, error) {
	u, err := parseUUID(s, "form id")
	return FormID(u), err
}

// ParseAnalystID parses the analyst identifier carried by access tokens.
func ParseAnalystID(s string) (AnalystID, error) {
	u, err := parseUUID(s, "analyst id")
	return AnalystID(u), err
}

func (id DemandaID) String() string  { return uuid.UUID(id).String() }
func (id DocumentID) String() string { return uuid.UUID(id).String() }
func (id FormID) String() string     { return uuid.UUID(id).String() }
func (id AnalystID) String() string  { return uuid.UUID(id).String() }

func (id DemandaID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id FormID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id AnalystID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

func (id DemandaID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id DocumentID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id FormID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id AnalystID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }

func (id *DemandaID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *DocumentID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *FormID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *AnalystID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }

// NewDocumentID returns a fresh random document id.
func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }

// NewFormID returns a fresh random form session id.
func NewFormID() FormID { return FormID(uuid.New()) }
