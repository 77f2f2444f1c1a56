package model

import "time"

// SagaPhase is the recorded progress of one saga step.
type SagaPhase string

const (
	SagaIntent             SagaPhase = "INTENT"
	SagaDone               SagaPhase = "DONE"
	SagaFailed             SagaPhase = "FAILED"
	SagaCompensated        SagaPhase = "COMPENSATED"
	SagaCompensationFailed SagaPhase = "COMPENSATION_FAILED"
)

// SagaEntry is one line of the checkout journal.
type SagaEntry struct {
	SagaID     string    `json:"sagaId"`
	Step       string    `json:"step"`
	Phase      SagaPhase `json:"phase"`
	Detail     string    `json:"detail,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}
