package caserecord

import (
	"encoding/json"

	"casepad/internal/domain/casesheet"
)

type primaryAssessment struct {
	Airway        string `json:"airway"`
	BreathingRate *int   `json:"breathing_rate"`
	SpO2          *int   `json:"spo2"`
	SystolicBP    *int   `json:"systolic_bp"`
	GCS           *int   `json:"gcs"`
	AVPU          string `json:"avpu"`
}

// DerivePriority recomputes the triage priority from the primary assessment
// section of a case document. It is deliberately conservative: anything it
// cannot parse scores as unknown rather than green.
func DerivePriority(doc casesheet.Document) Priority {
	if doc == nil {
		return PriorityUnknown
	}
	raw, ok := doc[casesheet.SectionPrimaryAssessment]
	if !ok || len(raw) == 0 {
		return PriorityUnknown
	}

	var pa primaryAssessment
	if err := json.Unmarshal(raw, &pa); err != nil {
		return PriorityUnknown
	}

	switch {
	case pa.Airway == "compromised",
		pa.AVPU == "P", pa.AVPU == "U",
		pa.GCS != nil && *pa.GCS <= 8,
		pa.SpO2 != nil && *pa.SpO2 < 90,
		pa.SystolicBP != nil && *pa.SystolicBP < 90:
		return PriorityRed
	case pa.AVPU == "V",
		pa.GCS != nil && *pa.GCS < 13,
		pa.SpO2 != nil && *pa.SpO2 < 94,
		pa.BreathingRate != nil && (*pa.BreathingRate > 24 || *pa.BreathingRate < 10):
		return PriorityYellow
	}
	return PriorityGreen
}
