package domain

import (
	"context"
	"encoding/json"
	"math"
	"time"
)

// FlexBool accepts JSON true or the string "true" as true. Everything else is false.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = FlexBool(Truthy(raw))
	return nil
}

// Truthy implements the import boolean coercion: literal true or the string "true".
func Truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case FlexBool:
		return bool(t)
	case string:
		return t == "true"
	}
	return false
}

// ClinicalRow is one raw tabular input record. Timestamps are unparsed strings.
type ClinicalRow struct {
	PatientEncounterID  string   `json:"patientEncounterId"`
	AttendingEmployeeID string   `json:"attendingEmployeeId"`
	ShiftDateTime       string   `json:"shiftDateTime"`
	ECGTime             string   `json:"ecgTime"`
	DoorTime            string   `json:"doorTime"`
	ActivationTime      string   `json:"activationTime"`
	CathStartTime       string   `json:"cathStartTime"`
	IsTrueOMI           FlexBool `json:"isTrueOMI"`
	IsCulpritOcclusion  FlexBool `json:"isCulpritOcclusion"`
	Adjudicator         string   `json:"adjudicator"`
}

type OutcomeAdjudication struct {
	IsTrueOMI          bool       `json:"isTrueOMI"`
	IsCulpritOcclusion bool       `json:"isCulpritOcclusion"`
	Adjudicator        *string    `json:"adjudicator"`
	AdjudicatedAt      *time.Time `json:"adjudicatedAt"`
}

type Activation struct {
	Activated             bool `json:"activated"`
	ActivationAppropriate bool `json:"activationAppropriate"`
}

type TimingDerived struct {
	DoorToActivationMinutes *int64 `json:"doorToActivationMinutes"`
	ECGToActivationMinutes  *int64 `json:"ecgToActivationMinutes"`
}

// ClinicalEvent is an imported clinical encounter with derived timing stored alongside.
type ClinicalEvent struct {
	ID                  string              `json:"id"`
	PatientEncounterID  string              `json:"patientEncounterId"`
	AttendingEmployeeID string              `json:"attendingEmployeeId"`
	ShiftDateTime       time.Time           `json:"shiftDateTime"`
	ECGTime             *time.Time          `json:"ecgTime"`
	DoorTime            *time.Time          `json:"doorTime"`
	ActivationTime      *time.Time          `json:"activationTime"`
	CathStartTime       *time.Time          `json:"cathStartTime"`
	OutcomeAdjudication OutcomeAdjudication `json:"outcomeAdjudication"`
	Activation          Activation          `json:"activation"`
	TimingDerived       TimingDerived       `json:"timingDerived"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}

// StampServerTime sets the import-time fields: createdAt, updatedAt and adjudicatedAt.
func (c *ClinicalEvent) StampServerTime(t time.Time) {
	c.CreatedAt = t
	c.UpdatedAt = t
	c.OutcomeAdjudication.AdjudicatedAt = &t
}

// Derive fills the activation and timing fields from the stored timestamps.
func (c *ClinicalEvent) Derive() {
	c.Activation.Activated = c.ActivationTime != nil
	c.Activation.ActivationAppropriate = c.OutcomeAdjudication.IsTrueOMI && c.Activation.Activated
	c.TimingDerived.DoorToActivationMinutes = DiffMinutes(c.ActivationTime, c.DoorTime)
	c.TimingDerived.ECGToActivationMinutes = DiffMinutes(c.ActivationTime, c.ECGTime)
}

// FalsePositive is an activation without a true OMI.
func (c *ClinicalEvent) FalsePositive() bool {
	return c.Activation.Activated && !c.OutcomeAdjudication.IsTrueOMI
}

// DiffMinutes returns (end - start) in whole minutes, rounding halves up, or nil if either side is missing.
func DiffMinutes(end, start *time.Time) *int64 {
	if end == nil || start == nil {
		return nil
	}
	ms := float64(end.Sub(*start).Milliseconds())
	minutes := int64(math.Floor(ms/60000 + 0.5))
	return &minutes
}

func (c *ClinicalEvent) ToDocument() Document {
	var adjudicator interface{}
	if c.OutcomeAdjudication.Adjudicator != nil {
		adjudicator = *c.OutcomeAdjudication.Adjudicator
	}
	return Document{
		"id":                  c.ID,
		"patientEncounterId":  c.PatientEncounterID,
		"attendingEmployeeId": c.AttendingEmployeeID,
		"shiftDateTime":       c.ShiftDateTime,
		"ecgTime":             optionalTime(c.ECGTime),
		"doorTime":            optionalTime(c.DoorTime),
		"activationTime":      optionalTime(c.ActivationTime),
		"cathStartTime":       optionalTime(c.CathStartTime),
		"outcomeAdjudication": map[string]interface{}{
			"isTrueOMI":          c.OutcomeAdjudication.IsTrueOMI,
			"isCulpritOcclusion": c.OutcomeAdjudication.IsCulpritOcclusion,
			"adjudicator":        adjudicator,
			"adjudicatedAt":      optionalTime(c.OutcomeAdjudication.AdjudicatedAt),
		},
		"activation": map[string]interface{}{
			"activated":             c.Activation.Activated,
			"activationAppropriate": c.Activation.ActivationAppropriate,
		},
		"timingDerived": map[string]interface{}{
			"doorToActivationMinutes": optionalInt(c.TimingDerived.DoorToActivationMinutes),
			"ecgToActivationMinutes":  optionalInt(c.TimingDerived.ECGToActivationMinutes),
		},
		"createdAt": c.CreatedAt,
		"updatedAt": c.UpdatedAt,
	}
}

func optionalTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func optionalInt(n *int64) interface{} {
	if n == nil {
		return nil
	}
	return *n
}

// ClinicalReader lists clinical events in a stable order (createdAt, then id).
type ClinicalReader interface {
	ListClinicalEvents(ctx context.Context) ([]ClinicalEvent, error)
}
