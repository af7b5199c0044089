package services

import "fmt"

// Step names reported when a cross-entity pipeline fails partway.
const (
	StepClaimSlot   = "claim_slot"
	StepMaterialize = "materialize_tasks"
	StepReleaseSlot = "release_slot"
	StepDiscardTask = "discard_tasks"
	StepLeaveOld    = "leave_previous_apartment"
	StepJoinNew     = "join_apartment"
)

// PipelineError reports a pipeline that failed after one or more steps had
// already committed. Completed steps are not rolled back; callers decide
// whether to retry only the failed step.
type PipelineError struct {
	Completed []string
	Failed    string
	Err       error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline step %s failed after %d completed steps: %v", e.Failed, len(e.Completed), e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
