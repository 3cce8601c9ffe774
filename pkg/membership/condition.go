// Package membership adds and removes a consultant's chat room memberships
// across a batch of sessions.
package membership

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/exp/slices"

	"github.com/advicehub/user-lifecycle/pkg/identity"
	"github.com/advicehub/user-lifecycle/pkg/store"
)

// MainConsultantRole grants access to feedback rooms of sessions the
// consultant does not own.
const MainConsultantRole = "main-consultant"

// ConditionProvider decides per room whether a consultant membership change
// is applicable. Main room and feedback room are decided independently.
type ConditionProvider struct {
	identity identity.Client
}

// NewConditionProvider creates a condition provider resolving roles through
// the given identity client.
func NewConditionProvider(identity identity.Client) *ConditionProvider {
	return &ConditionProvider{identity: identity}
}

// CanAddToGroup reports whether the consultant may be added to the session's
// main room: unassigned new enquiries and running team sessions are eligible,
// everything else is owned by its assigned consultant.
func (p *ConditionProvider) CanAddToGroup(session *store.Session) bool {
	if isEnquiry(session) {
		return true
	}
	return session.TeamSession && session.Status == store.SessionInProgress
}

// CanAddToFeedbackGroup reports whether the consultant may be added to the
// session's feedback room. Sessions without a feedback room are never
// eligible; for assigned sessions the consultant needs the main consultant
// role.
func (p *ConditionProvider) CanAddToFeedbackGroup(ctx context.Context, session *store.Session,
	consultant *store.Consultant) (bool, error) {
	if session.FeedbackGroupID == "" {
		return false, nil
	}
	if isEnquiry(session) {
		return true, nil
	}
	roles, err := p.identity.GetUserRoles(ctx, consultant.ID.String())
	if err != nil {
		return false, fmt.Errorf("failed to resolve roles of consultant %s: %w", consultant.ID, err)
	}
	return slices.Contains(roles, MainConsultantRole), nil
}

func isEnquiry(session *store.Session) bool {
	return session.Status == store.SessionNew && session.ConsultantID == nil
}

// sessionType labels the session kind for log output only; eligibility never
// branches on it.
func sessionType(session *store.Session) string {
	switch {
	case session.Status == store.SessionNew:
		return "enquiry"
	case session.TeamSession:
		return "team-session"
	default:
		return "standard-session"
	}
}

func logMembershipChange(action string, session *store.Session, consultant *store.Consultant, groupID string) {
	slog.Info("Consultant chat membership changed",
		"action", action,
		"session_type", sessionType(session),
		"session_id", session.ID,
		"consultant_id", consultant.ID,
		"group_id", groupID)
}
