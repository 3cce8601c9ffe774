// Package asker contains the per-backend delete actions for asker accounts.
// Every action follows the same rule: backend failures become workflow errors
// on the target, never returned errors, so the whole chain always runs.
package asker

import (
	"context"
	"errors"
	"log/slog"

	"github.com/advicehub/user-lifecycle/pkg/anonymous"
	"github.com/advicehub/user-lifecycle/pkg/appointment"
	"github.com/advicehub/user-lifecycle/pkg/deletion"
	"github.com/advicehub/user-lifecycle/pkg/deletion/session"
	"github.com/advicehub/user-lifecycle/pkg/identity"
	"github.com/advicehub/user-lifecycle/pkg/store"
)

// ChatAccountDeleter removes a chat backend account.
type ChatAccountDeleter interface {
	DeleteUserAccount(ctx context.Context, userID string) error
}

// IdentityAction deletes the asker's identity provider record.
type IdentityAction struct {
	identity identity.Client
}

// NewIdentityAction creates the identity provider delete action.
func NewIdentityAction(client identity.Client) *IdentityAction {
	return &IdentityAction{identity: client}
}

func (a *IdentityAction) Execute(ctx context.Context, target *deletion.AskerWorkflow) {
	err := a.identity.DeleteUser(ctx, target.Asker.ID.String())
	if errors.Is(err, identity.ErrNotFound) {
		// Already gone, likely from a prior partial run. Not an error.
		slog.Debug("Identity record of asker already absent", "asker_id", target.Asker.ID)
		return
	}
	if err != nil {
		slog.Error("Delete workflow failed on identity provider", "asker_id", target.Asker.ID, "err", err)
		target.AppendError(deletion.NewWorkflowError(
			deletion.SourceAsker, deletion.TargetIdentityProvider,
			target.Asker.ID.String(), "unable to delete identity record"))
	}
}

// RoomsAndSessionsAction tears down every session of the asker, rooms first.
type RoomsAndSessionsAction struct {
	sessions store.SessionRepository
	cleanup  *session.Cleanup
}

// NewRoomsAndSessionsAction creates the sessions teardown action.
func NewRoomsAndSessionsAction(sessions store.SessionRepository, cleanup *session.Cleanup) *RoomsAndSessionsAction {
	return &RoomsAndSessionsAction{sessions: sessions, cleanup: cleanup}
}

func (a *RoomsAndSessionsAction) Execute(ctx context.Context, target *deletion.AskerWorkflow) {
	sessions, err := a.sessions.FindSessionsByAsker(ctx, target.Asker.ID)
	if err != nil {
		slog.Error("Delete workflow failed to load sessions", "asker_id", target.Asker.ID, "err", err)
		target.AppendError(deletion.NewWorkflowError(
			deletion.SourceAsker, deletion.TargetDatabase,
			target.Asker.ID.String(), "unable to load sessions of asker"))
		return
	}
	for i := range sessions {
		for _, workflowErr := range a.cleanup.Run(ctx, &sessions[i], deletion.SourceAsker) {
			target.AppendError(workflowErr)
		}
	}
}

// AgencyRelationAction deletes the asker's agency relation rows.
type AgencyRelationAction struct {
	askerAgencies store.AskerAgencyRepository
}

// NewAgencyRelationAction creates the agency relation delete action.
func NewAgencyRelationAction(askerAgencies store.AskerAgencyRepository) *AgencyRelationAction {
	return &AgencyRelationAction{askerAgencies: askerAgencies}
}

func (a *AgencyRelationAction) Execute(ctx context.Context, target *deletion.AskerWorkflow) {
	if err := a.askerAgencies.DeleteAskerAgenciesByAsker(ctx, target.Asker.ID); err != nil {
		slog.Error("Delete workflow failed on asker agency relations", "asker_id", target.Asker.ID, "err", err)
		target.AppendError(deletion.NewWorkflowError(
			deletion.SourceAsker, deletion.TargetDatabase,
			target.Asker.ID.String(), "unable to delete asker agency relations"))
	}
}

// ChatAccountAction deletes the asker's chat backend account. Askers created
// before their first chat contact have no chat identity; those are skipped
// without a backend call.
type ChatAccountAction struct {
	chat ChatAccountDeleter
}

// NewChatAccountAction creates the chat account delete action.
func NewChatAccountAction(chat ChatAccountDeleter) *ChatAccountAction {
	return &ChatAccountAction{chat: chat}
}

func (a *ChatAccountAction) Execute(ctx context.Context, target *deletion.AskerWorkflow) {
	if target.Asker.ChatUserID == "" {
		return
	}
	if err := a.chat.DeleteUserAccount(ctx, target.Asker.ChatUserID); err != nil {
		slog.Error("Delete workflow failed on chat account", "asker_id", target.Asker.ID, "err", err)
		target.AppendError(deletion.NewWorkflowError(
			deletion.SourceAsker, deletion.TargetChatBackend,
			target.Asker.ChatUserID, "unable to delete chat account"))
	}
}

// AnonymousRegistryAction releases the asker's reserved anonymous display name
// back to the registry pool.
type AnonymousRegistryAction struct {
	registry anonymous.Registry
}

// NewAnonymousRegistryAction creates the registry release action.
func NewAnonymousRegistryAction(registry anonymous.Registry) *AnonymousRegistryAction {
	return &AnonymousRegistryAction{registry: registry}
}

func (a *AnonymousRegistryAction) Execute(ctx context.Context, target *deletion.AskerWorkflow) {
	if err := a.registry.Release(ctx, target.Asker.Username); err != nil {
		slog.Error("Delete workflow failed on anonymous registry", "asker_id", target.Asker.ID, "err", err)
		target.AppendError(deletion.NewWorkflowError(
			deletion.SourceAsker, deletion.TargetAnonymousRegistry,
			target.Asker.Username, "unable to release anonymous username"))
	}
}

// AppointmentAction deletes the asker's externally scheduled appointments.
type AppointmentAction struct {
	appointments appointment.Client
}

// NewAppointmentAction creates the appointment service delete action.
func NewAppointmentAction(appointments appointment.Client) *AppointmentAction {
	return &AppointmentAction{appointments: appointments}
}

func (a *AppointmentAction) Execute(ctx context.Context, target *deletion.AskerWorkflow) {
	if err := a.appointments.DeleteAsker(ctx, target.Asker.ID.String()); err != nil {
		slog.Error("Delete workflow failed on appointment service", "asker_id", target.Asker.ID, "err", err)
		target.AppendError(deletion.NewWorkflowError(
			deletion.SourceAsker, deletion.TargetAppointmentService,
			target.Asker.ID.String(), "unable to delete appointments"))
	}
}

// DatabaseAction deletes the asker row itself. Registered last so that a
// partially failed run keeps the account visible for a retry.
type DatabaseAction struct {
	askers store.AskerRepository
}

// NewDatabaseAction creates the database row delete action.
func NewDatabaseAction(askers store.AskerRepository) *DatabaseAction {
	return &DatabaseAction{askers: askers}
}

func (a *DatabaseAction) Execute(ctx context.Context, target *deletion.AskerWorkflow) {
	if err := a.askers.DeleteAsker(ctx, target.Asker.ID); err != nil {
		slog.Error("Delete workflow failed on asker row", "asker_id", target.Asker.ID, "err", err)
		target.AppendError(deletion.NewWorkflowError(
			deletion.SourceAsker, deletion.TargetDatabase,
			target.Asker.ID.String(), "unable to delete asker"))
	}
}
