package ars

import (
	"context"
	"fmt"
	"time"

	"github.com/agenthands/annotator/internal/core/model"
)

const (
	statusRunning = "Running"
	statusDone    = "Done"
	statusError   = "Error"

	MessageTimedOut = "Timed Out."
)

// Poll re-checks the job every interval until it reaches a terminal status.
// A zero timeout polls for as long as the job keeps running. Anomalous
// statuses and timeouts are reported in the result, never as errors; only a
// failed call returns an error.
//
// Status records are small, so the loop polls them and fetches the merged
// payload once, after the job is done.
func (c *Client) Poll(ctx context.Context, jobID string, timeout time.Duration) (model.PollResult, error) {
	res := model.PollResult{JobID: jobID}
	start := c.now()

	var fields messageFields
	for {
		var err error
		fields, err = c.message(ctx, jobID)
		if err != nil {
			return res, err
		}
		res.RawStatus = fields.Status
		if fields.Status != statusRunning {
			break
		}
		if timeout > 0 && c.now().Sub(start) > timeout {
			res.Status = model.StatusTimedOut
			res.Message = ptr(MessageTimedOut)
			c.log.Warn("ars poll timed out", "pk", jobID, "timeout", timeout.String())
			return res, nil
		}
		if err := c.sleep(ctx, c.interval); err != nil {
			return res, fmt.Errorf("ars poll %s: %w", jobID, err)
		}
	}

	switch fields.Status {
	case statusDone:
		res.Status = model.StatusDone
		if fields.MergedVersion != nil && *fields.MergedVersion != "" {
			res.MergedJobID = fields.MergedVersion
		}
	case statusError:
		res.Status = model.StatusError
		res.Message = ptr("ARS reported an error for this query.")
		c.log.Warn("ars job errored", "pk", jobID)
		return res, nil
	default:
		res.Status = model.StatusUnknown
		res.Message = ptr(fmt.Sprintf("Received an unexpected ARS status %q, so stopped polling.", fields.Status))
		c.log.Warn("ars returned unexpected status", "pk", jobID, "status", fields.Status)
		return res, nil
	}

	if res.MergedJobID == nil {
		c.log.Info("ars job done without merged result", "pk", jobID)
		return res, nil
	}

	payload, err := c.FetchResult(ctx, *res.MergedJobID)
	if err != nil {
		return res, err
	}
	res.Result = payload
	c.log.Info("ars job done", "pk", jobID, "merged_pk", *res.MergedJobID)
	return res, nil
}

func ptr(s string) *string { return &s }
