package deletion

import (
	"time"

	"github.com/advicehub/user-lifecycle/pkg/store"
)

// SourceType tells whose deletion produced a workflow error.
type SourceType string

const (
	SourceAsker      SourceType = "ASKER"
	SourceConsultant SourceType = "CONSULTANT"
	SourceSession    SourceType = "SESSION"
)

// TargetType names the backend an action failed against.
type TargetType string

const (
	TargetDatabase           TargetType = "DATABASE"
	TargetIdentityProvider   TargetType = "IDENTITY_PROVIDER"
	TargetChatBackend        TargetType = "CHAT_BACKEND"
	TargetAppointmentService TargetType = "APPOINTMENT_SERVICE"
	TargetAnonymousRegistry  TargetType = "ANONYMOUS_REGISTRY"
)

// WorkflowError captures one failed deletion step. It is immutable once
// created; the orchestration caller receives the full, literal list and
// decides how to surface it.
type WorkflowError struct {
	Source     SourceType
	Target     TargetType
	Identifier string
	Reason     string
	Timestamp  time.Time
}

// NewWorkflowError creates a workflow error stamped with the current UTC time.
func NewWorkflowError(source SourceType, target TargetType, identifier, reason string) WorkflowError {
	return WorkflowError{
		Source:     source,
		Target:     target,
		Identifier: identifier,
		Reason:     reason,
		Timestamp:  time.Now().UTC(),
	}
}

// AskerWorkflow carries one asker through the deletion action chain.
type AskerWorkflow struct {
	Asker *store.Asker

	errors []WorkflowError
}

// NewAskerWorkflow creates the workflow target for an asker deletion run.
func NewAskerWorkflow(asker *store.Asker) *AskerWorkflow {
	return &AskerWorkflow{Asker: asker}
}

// AppendError records a failed step.
func (w *AskerWorkflow) AppendError(err WorkflowError) {
	w.errors = append(w.errors, err)
}

// Errors returns all recorded step failures in occurrence order.
func (w *AskerWorkflow) Errors() []WorkflowError {
	return w.errors
}

// ConsultantWorkflow carries one consultant through the deletion action chain.
type ConsultantWorkflow struct {
	Consultant *store.Consultant

	errors []WorkflowError
}

// NewConsultantWorkflow creates the workflow target for a consultant deletion run.
func NewConsultantWorkflow(consultant *store.Consultant) *ConsultantWorkflow {
	return &ConsultantWorkflow{Consultant: consultant}
}

// AppendError records a failed step.
func (w *ConsultantWorkflow) AppendError(err WorkflowError) {
	w.errors = append(w.errors, err)
}

// Errors returns all recorded step failures in occurrence order.
func (w *ConsultantWorkflow) Errors() []WorkflowError {
	return w.errors
}

// SessionWorkflow carries one session through the standalone cleanup run.
type SessionWorkflow struct {
	Session *store.Session

	errors []WorkflowError
}

// NewSessionWorkflow creates the workflow target for a single-session deletion.
func NewSessionWorkflow(session *store.Session) *SessionWorkflow {
	return &SessionWorkflow{Session: session}
}

// AppendError records a failed step.
func (w *SessionWorkflow) AppendError(err WorkflowError) {
	w.errors = append(w.errors, err)
}

// Errors returns all recorded step failures in occurrence order.
func (w *SessionWorkflow) Errors() []WorkflowError {
	return w.errors
}
