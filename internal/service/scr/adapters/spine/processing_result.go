package spine

import (
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/hl7"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/exceptions"
)

// Outcome is the terminal (or pending) state of a submission.
type Outcome string

const (
	OutcomePending   Outcome = "accepted-pending"
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeTimedOut  Outcome = "timed-out"
)

// ProcessingResult is the parsed outcome of a submission's poll loop. It is
// created once, when the loop concludes, and never mutated.
type ProcessingResult struct {
	Outcome        Outcome
	FailureReasons []string
}

const (
	acknowledgementTypePath = "//acknowledgement/@typeCode"
	acknowledgementDetails  = "//acknowledgementDetail/code/@displayName"
	detectedIssuesPath      = "//justifyingDetectedIssueEvent/code/@displayName"
)

// ParseProcessingResult interprets a final polling response body. An AA
// acknowledgement is success; anything else is a failure whose reasons are
// surfaced verbatim from the response's structured error fields.
func ParseProcessingResult(body string) (ProcessingResult, error) {
	document, err := hl7.Parse(body)
	if err != nil {
		return ProcessingResult{}, exceptions.PollingFailedError{
			Reasons: []string{"malformed polling response: " + err.Error()},
		}
	}
	typeCode, err := hl7.ValueAt(document, acknowledgementTypePath)
	if err != nil {
		return ProcessingResult{}, exceptions.PollingFailedError{
			Reasons: []string{"polling response carries no acknowledgement"},
		}
	}
	if typeCode == "AA" {
		return ProcessingResult{Outcome: OutcomeSucceeded}, nil
	}

	var reasons []string
	for _, node := range hl7.NodesAt(document, acknowledgementDetails) {
		reasons = append(reasons, node.InnerText())
	}
	for _, node := range hl7.NodesAt(document, detectedIssuesPath) {
		reasons = append(reasons, node.InnerText())
	}
	if len(reasons) == 0 {
		reasons = []string{"spine acknowledgement type " + typeCode}
	}
	return ProcessingResult{Outcome: OutcomeFailed, FailureReasons: reasons}, nil
}
