// Package workflow wires the per-backend delete actions into the account
// deletion orchestrator.
package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/advicehub/user-lifecycle/pkg/anonymous"
	"github.com/advicehub/user-lifecycle/pkg/appointment"
	"github.com/advicehub/user-lifecycle/pkg/chat"
	"github.com/advicehub/user-lifecycle/pkg/deletion"
	askeraction "github.com/advicehub/user-lifecycle/pkg/deletion/asker"
	consultantaction "github.com/advicehub/user-lifecycle/pkg/deletion/consultant"
	sessionaction "github.com/advicehub/user-lifecycle/pkg/deletion/session"
	"github.com/advicehub/user-lifecycle/pkg/identity"
	"github.com/advicehub/user-lifecycle/pkg/store"
)

// Dependencies bundles the collaborators of the deletion orchestrator.
type Dependencies struct {
	Askers             store.AskerRepository
	AskerAgencies      store.AskerAgencyRepository
	Consultants        store.ConsultantRepository
	ConsultantAgencies store.ConsultantAgencyRepository
	Sessions           store.SessionRepository
	Monitorings        store.MonitoringRepository
	SessionData        store.SessionDataRepository
	GroupChats         store.GroupChatRepository
	Identity           identity.Client
	Chat               *chat.Facade
	Appointments       appointment.Client
	AnonymousNames     anonymous.Registry
	// Reporter is optional; when set, a sweep with errors mails a report.
	Reporter *ErrorReporter
}

// Service runs the full, statically-known action chain for one account kind
// against one workflow target, sequentially and with no early exit. Each
// backend commit is independent; consistency comes from error aggregation,
// not rollback.
type Service struct {
	askers      store.AskerRepository
	consultants store.ConsultantRepository
	reporter    *ErrorReporter

	askerActions      *deletion.Container[*deletion.AskerWorkflow]
	consultantActions *deletion.Container[*deletion.ConsultantWorkflow]
	sessionActions    *deletion.Container[*deletion.SessionWorkflow]
}

// NewService creates the deletion orchestrator. The action order clears soft
// local state before destructive remote calls; correctness does not depend on
// it since every action is failure-isolated.
func NewService(deps Dependencies) *Service {
	cleanup := sessionaction.NewCleanup(deps.Chat, deps.Monitorings, deps.SessionData, deps.Sessions)

	askerActions := deletion.NewContainer[*deletion.AskerWorkflow](
		askeraction.NewIdentityAction(deps.Identity),
		askeraction.NewRoomsAndSessionsAction(deps.Sessions, cleanup),
		askeraction.NewAgencyRelationAction(deps.AskerAgencies),
		askeraction.NewChatAccountAction(deps.Chat),
		askeraction.NewAnonymousRegistryAction(deps.AnonymousNames),
		askeraction.NewAppointmentAction(deps.Appointments),
		askeraction.NewDatabaseAction(deps.Askers),
	)

	consultantActions := deletion.NewContainer[*deletion.ConsultantWorkflow](
		consultantaction.NewIdentityAction(deps.Identity),
		consultantaction.NewAgencyRelationAction(deps.ConsultantAgencies),
		consultantaction.NewGroupChatAction(deps.GroupChats, deps.Chat),
		consultantaction.NewChatAccountAction(deps.Chat),
		consultantaction.NewAppointmentAction(deps.Appointments),
		consultantaction.NewDatabaseAction(deps.Consultants),
	)

	sessionActions := deletion.NewContainer[*deletion.SessionWorkflow](
		sessionaction.NewAction(cleanup),
	)

	return &Service{
		askers:            deps.Askers,
		consultants:       deps.Consultants,
		reporter:          deps.Reporter,
		askerActions:      askerActions,
		consultantActions: consultantActions,
		sessionActions:    sessionActions,
	}
}

// DeleteAsker runs the asker action chain and returns every step failure.
// An empty list means the account is gone from all backends.
func (s *Service) DeleteAsker(ctx context.Context, asker *store.Asker) []deletion.WorkflowError {
	target := deletion.NewAskerWorkflow(asker)
	s.askerActions.ExecuteAll(ctx, target)
	return target.Errors()
}

// DeleteConsultant runs the consultant action chain and returns every step
// failure.
func (s *Service) DeleteConsultant(ctx context.Context, consultant *store.Consultant) []deletion.WorkflowError {
	target := deletion.NewConsultantWorkflow(consultant)
	s.consultantActions.ExecuteAll(ctx, target)
	return target.Errors()
}

// DeleteSession is the standalone single-session entry point, reusing the
// same cleanup the asker chain uses.
func (s *Service) DeleteSession(ctx context.Context, session *store.Session) []deletion.WorkflowError {
	target := deletion.NewSessionWorkflow(session)
	s.sessionActions.ExecuteAll(ctx, target)
	return target.Errors()
}

// DeleteFlaggedAccounts deletes every asker and consultant whose delete date
// is set. Per-account errors never stop the sweep; the aggregated list is
// mailed to operations when a reporter is configured.
func (s *Service) DeleteFlaggedAccounts(ctx context.Context) error {
	var workflowErrors []deletion.WorkflowError

	askers, err := s.askers.FindAskersFlaggedForDeletion(ctx)
	if err != nil {
		return fmt.Errorf("failed to find askers flagged for deletion: %w", err)
	}
	for i := range askers {
		workflowErrors = append(workflowErrors, s.DeleteAsker(ctx, &askers[i])...)
	}

	consultants, err := s.consultants.FindConsultantsFlaggedForDeletion(ctx)
	if err != nil {
		return fmt.Errorf("failed to find consultants flagged for deletion: %w", err)
	}
	for i := range consultants {
		workflowErrors = append(workflowErrors, s.DeleteConsultant(ctx, &consultants[i])...)
	}

	slog.Info("Deletion sweep finished",
		"askers", len(askers),
		"consultants", len(consultants),
		"errors", len(workflowErrors))

	if len(workflowErrors) > 0 && s.reporter != nil {
		s.reporter.Report(workflowErrors)
	}
	return nil
}
