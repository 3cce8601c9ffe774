package session

import (
	"context"
	"log/slog"

	"github.com/advicehub/user-lifecycle/pkg/deletion"
	"github.com/advicehub/user-lifecycle/pkg/store"
)

// RoomDeleter deletes a chat backend room, treating an already-absent room as
// success.
type RoomDeleter interface {
	DeleteGroupAsTechnicalUser(ctx context.Context, groupID string) error
}

// Cleanup deletes one session as a unit: the chat rooms, the dependent
// database rows and finally the session row itself. Each sub-step is
// failure-isolated; a failed room delete does not stop the database teardown.
type Cleanup struct {
	rooms       RoomDeleter
	monitorings store.MonitoringRepository
	sessionData store.SessionDataRepository
	sessions    store.SessionRepository
}

// NewCleanup creates a session cleanup.
func NewCleanup(rooms RoomDeleter, monitorings store.MonitoringRepository,
	sessionData store.SessionDataRepository, sessions store.SessionRepository) *Cleanup {
	return &Cleanup{
		rooms:       rooms,
		monitorings: monitorings,
		sessionData: sessionData,
		sessions:    sessions,
	}
}

// Run deletes the session and returns the errors of all failed sub-steps,
// attributed to the given source.
func (c *Cleanup) Run(ctx context.Context, s *store.Session, source deletion.SourceType) []deletion.WorkflowError {
	var workflowErrors []deletion.WorkflowError

	workflowErrors = c.deleteRoom(ctx, s.GroupID, source, workflowErrors)
	workflowErrors = c.deleteRoom(ctx, s.FeedbackGroupID, source, workflowErrors)

	if err := c.monitorings.DeleteMonitoringsBySession(ctx, s.ID); err != nil {
		slog.Error("Session cleanup failed to delete monitorings", "session_id", s.ID, "err", err)
		workflowErrors = append(workflowErrors, deletion.NewWorkflowError(
			source, deletion.TargetDatabase, s.ID.String(),
			"unable to delete monitorings of session"))
	}
	if err := c.sessionData.DeleteSessionDataBySession(ctx, s.ID); err != nil {
		slog.Error("Session cleanup failed to delete session data", "session_id", s.ID, "err", err)
		workflowErrors = append(workflowErrors, deletion.NewWorkflowError(
			source, deletion.TargetDatabase, s.ID.String(),
			"unable to delete session data of session"))
	}
	if err := c.sessions.DeleteSession(ctx, s.ID); err != nil {
		slog.Error("Session cleanup failed to delete session", "session_id", s.ID, "err", err)
		workflowErrors = append(workflowErrors, deletion.NewWorkflowError(
			source, deletion.TargetDatabase, s.ID.String(),
			"unable to delete session"))
	}

	return workflowErrors
}

// deleteRoom removes one chat room. A blank id means the room was never
// created and is skipped without a backend call.
func (c *Cleanup) deleteRoom(ctx context.Context, groupID string, source deletion.SourceType,
	workflowErrors []deletion.WorkflowError) []deletion.WorkflowError {
	if groupID == "" {
		return workflowErrors
	}
	if err := c.rooms.DeleteGroupAsTechnicalUser(ctx, groupID); err != nil {
		slog.Error("Session cleanup failed to delete chat group", "group_id", groupID, "err", err)
		return append(workflowErrors, deletion.NewWorkflowError(
			source, deletion.TargetChatBackend, groupID,
			"deletion of chat group failed"))
	}
	return workflowErrors
}

// Action adapts Cleanup to the deletion action contract for the standalone
// single-session entry point.
type Action struct {
	cleanup *Cleanup
}

// NewAction creates the session cleanup action.
func NewAction(cleanup *Cleanup) *Action {
	return &Action{cleanup: cleanup}
}

func (a *Action) Execute(ctx context.Context, target *deletion.SessionWorkflow) {
	for _, err := range a.cleanup.Run(ctx, target.Session, deletion.SourceSession) {
		target.AppendError(err)
	}
}
