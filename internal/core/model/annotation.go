package model

// EvidenceStatus separates "nothing found" from "the reasoner never finished".
type EvidenceStatus string

const (
	EvidenceFound      EvidenceStatus = "found"
	EvidenceAbsent     EvidenceStatus = "absent"
	EvidenceIncomplete EvidenceStatus = "incomplete"
)

// Annotation is the output of one pipeline run.
type Annotation struct {
	Edges    []Edge         `json:"edges"`
	Status   EvidenceStatus `json:"evidence_status"`
	Reasoner PollResult     `json:"reasoner"`
}
