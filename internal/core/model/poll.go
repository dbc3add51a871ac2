package model

type PollStatus string

const (
	StatusDone     PollStatus = "Done"
	StatusError    PollStatus = "Error"
	StatusUnknown  PollStatus = "Unknown"
	StatusTimedOut PollStatus = "TimedOut"
)

// PollResult is the terminal outcome of polling one reasoning job.
type PollResult struct {
	JobID       string     `json:"query_pk"`
	MergedJobID *string    `json:"merged_pk"`
	Status      PollStatus `json:"status"`
	// RawStatus is the status string exactly as the service reported it.
	RawStatus string    `json:"raw_status,omitempty"`
	Message   *string   `json:"message"`
	Result    *Response `json:"-"`
}

// Completed reports whether the service finished and produced a payload.
func (p PollResult) Completed() bool {
	return p.Status == StatusDone && p.Result != nil
}
