// Package consultant contains the per-backend delete actions for consultant
// accounts.
package consultant

import (
	"context"
	"errors"
	"log/slog"

	"github.com/advicehub/user-lifecycle/pkg/appointment"
	"github.com/advicehub/user-lifecycle/pkg/deletion"
	"github.com/advicehub/user-lifecycle/pkg/identity"
	"github.com/advicehub/user-lifecycle/pkg/store"
)

// ChatBackend covers the chat operations consultant deletion needs.
type ChatBackend interface {
	DeleteGroupAsTechnicalUser(ctx context.Context, groupID string) error
	DeleteUserAccount(ctx context.Context, userID string) error
}

// IdentityAction deletes the consultant's identity provider record.
type IdentityAction struct {
	identity identity.Client
}

// NewIdentityAction creates the identity provider delete action.
func NewIdentityAction(client identity.Client) *IdentityAction {
	return &IdentityAction{identity: client}
}

func (a *IdentityAction) Execute(ctx context.Context, target *deletion.ConsultantWorkflow) {
	err := a.identity.DeleteUser(ctx, target.Consultant.ID.String())
	if errors.Is(err, identity.ErrNotFound) {
		slog.Debug("Identity record of consultant already absent", "consultant_id", target.Consultant.ID)
		return
	}
	if err != nil {
		slog.Error("Delete workflow failed on identity provider", "consultant_id", target.Consultant.ID, "err", err)
		target.AppendError(deletion.NewWorkflowError(
			deletion.SourceConsultant, deletion.TargetIdentityProvider,
			target.Consultant.ID.String(), "unable to delete identity record"))
	}
}

// AgencyRelationAction deletes the consultant's agency relation rows.
type AgencyRelationAction struct {
	consultantAgencies store.ConsultantAgencyRepository
}

// NewAgencyRelationAction creates the agency relation delete action.
func NewAgencyRelationAction(consultantAgencies store.ConsultantAgencyRepository) *AgencyRelationAction {
	return &AgencyRelationAction{consultantAgencies: consultantAgencies}
}

func (a *AgencyRelationAction) Execute(ctx context.Context, target *deletion.ConsultantWorkflow) {
	if err := a.consultantAgencies.DeleteConsultantAgenciesByConsultant(ctx, target.Consultant.ID); err != nil {
		slog.Error("Delete workflow failed on consultant agency relations", "consultant_id", target.Consultant.ID, "err", err)
		target.AppendError(deletion.NewWorkflowError(
			deletion.SourceConsultant, deletion.TargetDatabase,
			target.Consultant.ID.String(), "unable to delete consultant agency relations"))
	}
}

// GroupChatAction deletes the chats owned by the consultant: the chat backend
// rooms one by one, then the database rows in one go. A failed room delete
// produces its own error entry but does not keep the rows alive.
type GroupChatAction struct {
	groupChats store.GroupChatRepository
	chat       ChatBackend
}

// NewGroupChatAction creates the owned-chats delete action.
func NewGroupChatAction(groupChats store.GroupChatRepository, chat ChatBackend) *GroupChatAction {
	return &GroupChatAction{groupChats: groupChats, chat: chat}
}

func (a *GroupChatAction) Execute(ctx context.Context, target *deletion.ConsultantWorkflow) {
	chats, err := a.groupChats.FindGroupChatsByOwner(ctx, target.Consultant.ID)
	if err != nil {
		slog.Error("Delete workflow failed to load owned chats", "consultant_id", target.Consultant.ID, "err", err)
		target.AppendError(deletion.NewWorkflowError(
			deletion.SourceConsultant, deletion.TargetDatabase,
			target.Consultant.ID.String(), "unable to load chats of consultant"))
		return
	}
	if len(chats) == 0 {
		return
	}

	for _, groupChat := range chats {
		if groupChat.GroupID == "" {
			continue
		}
		if err := a.chat.DeleteGroupAsTechnicalUser(ctx, groupChat.GroupID); err != nil {
			slog.Error("Delete workflow failed to delete chat group", "group_id", groupChat.GroupID, "err", err)
			target.AppendError(deletion.NewWorkflowError(
				deletion.SourceConsultant, deletion.TargetChatBackend,
				groupChat.GroupID, "deletion of chat group failed"))
		}
	}

	if err := a.groupChats.DeleteGroupChatsByOwner(ctx, target.Consultant.ID); err != nil {
		slog.Error("Delete workflow failed on chat rows", "consultant_id", target.Consultant.ID, "err", err)
		target.AppendError(deletion.NewWorkflowError(
			deletion.SourceConsultant, deletion.TargetDatabase,
			target.Consultant.ID.String(), "unable to delete chats of consultant"))
	}
}

// ChatAccountAction deletes the consultant's chat backend account when one
// exists.
type ChatAccountAction struct {
	chat ChatBackend
}

// NewChatAccountAction creates the chat account delete action.
func NewChatAccountAction(chat ChatBackend) *ChatAccountAction {
	return &ChatAccountAction{chat: chat}
}

func (a *ChatAccountAction) Execute(ctx context.Context, target *deletion.ConsultantWorkflow) {
	if target.Consultant.ChatUserID == "" {
		return
	}
	if err := a.chat.DeleteUserAccount(ctx, target.Consultant.ChatUserID); err != nil {
		slog.Error("Delete workflow failed on chat account", "consultant_id", target.Consultant.ID, "err", err)
		target.AppendError(deletion.NewWorkflowError(
			deletion.SourceConsultant, deletion.TargetChatBackend,
			target.Consultant.ChatUserID, "unable to delete chat account"))
	}
}

// AppointmentAction deletes the consultant's appointment service data.
type AppointmentAction struct {
	appointments appointment.Client
}

// NewAppointmentAction creates the appointment service delete action.
func NewAppointmentAction(appointments appointment.Client) *AppointmentAction {
	return &AppointmentAction{appointments: appointments}
}

func (a *AppointmentAction) Execute(ctx context.Context, target *deletion.ConsultantWorkflow) {
	if err := a.appointments.DeleteConsultant(ctx, target.Consultant.ID.String()); err != nil {
		slog.Error("Delete workflow failed on appointment service", "consultant_id", target.Consultant.ID, "err", err)
		target.AppendError(deletion.NewWorkflowError(
			deletion.SourceConsultant, deletion.TargetAppointmentService,
			target.Consultant.ID.String(), "unable to delete appointments"))
	}
}

// DatabaseAction deletes the consultant row itself, registered last.
type DatabaseAction struct {
	consultants store.ConsultantRepository
}

// NewDatabaseAction creates the database row delete action.
func NewDatabaseAction(consultants store.ConsultantRepository) *DatabaseAction {
	return &DatabaseAction{consultants: consultants}
}

func (a *DatabaseAction) Execute(ctx context.Context, target *deletion.ConsultantWorkflow) {
	if err := a.consultants.DeleteConsultant(ctx, target.Consultant.ID); err != nil {
		slog.Error("Delete workflow failed on consultant row", "consultant_id", target.Consultant.ID, "err", err)
		target.AppendError(deletion.NewWorkflowError(
			deletion.SourceConsultant, deletion.TargetDatabase,
			target.Consultant.ID.String(), "unable to delete consultant"))
	}
}
