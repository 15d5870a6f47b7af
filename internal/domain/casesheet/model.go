package casesheet

import (
	"encoding/json"
	"fmt"
)

// Well-known top-level sections of a case sheet. The document is open-ended:
// screens may introduce new sections without a schema change, these constants
// only name the ones the server derives data from.
const (
	SectionPrimaryAssessment = "primary_assessment"
	SectionHistory           = "history"
	SectionExamination       = "examination"
	SectionTreatment         = "treatment"
	SectionDisposition       = "disposition"
	SectionProcedures        = "procedures"
)

// Document is the full form state of a case sheet: one raw JSON value per
// top-level tab/section, stored in the literal shape the screens read and
// write. It is always replaced wholesale, never mutated field by field.
type Document map[string]json.RawMessage

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for section, raw := range d {
		cp := make(json.RawMessage, len(raw))
		copy(cp, raw)
		out[section] = cp
	}
	return out
}

// Section unmarshals one section into dst. A missing section leaves dst
// untouched and returns false.
func (d Document) Section(name string, dst any) (bool, error) {
	raw, ok := d[name]
	if !ok || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode section %s: %w", name, err)
	}
	return true, nil
}

// SetSection marshals v and stores it under name.
func (d Document) SetSection(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode section %s: %w", name, err)
	}
	d[name] = raw
	return nil
}
