package membership

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/advicehub/user-lifecycle/pkg/chat"
	"github.com/advicehub/user-lifecycle/pkg/store"
)

// ChatRooms is the chat backend surface the saga mutates rooms through.
type ChatRooms interface {
	AddTechnicalUserToGroup(ctx context.Context, groupID string) error
	LeaveGroupAsTechnicalUser(ctx context.Context, groupID string) error
	GroupMembers(ctx context.Context, groupID string) ([]chat.GroupMember, error)
	AddUserToGroup(ctx context.Context, userID, groupID string) error
	RemoveUserFromGroup(ctx context.Context, userID, groupID string) error
}

// OperationError is the terminal failure of a batch add: it names the room
// whose membership change failed and carries any errors of the best-effort
// rollback that followed.
type OperationError struct {
	GroupID        string
	Reason         error
	RollbackErrors []error
}

func (e *OperationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "membership change on group %s failed: %v", e.GroupID, e.Reason)
	if len(e.RollbackErrors) > 0 {
		fmt.Fprintf(&b, " (%d rollback steps failed)", len(e.RollbackErrors))
	}
	return b.String()
}

func (e *OperationError) Unwrap() error { return e.Reason }

// Service runs consultant membership changes over an ordered batch of
// sessions. Adding is all-or-nothing: a failed change rolls the whole batch
// back so a consultant is never left half-provisioned. Removing is
// best-effort per room.
type Service struct {
	rooms      ChatRooms
	conditions *ConditionProvider
}

// NewService creates a membership service.
func NewService(rooms ChatRooms, conditions *ConditionProvider) *Service {
	return &Service{rooms: rooms, conditions: conditions}
}

// AddConsultantToSessions adds the consultant to the main and feedback rooms
// of every eligible session, in order. On the first failed membership change
// the remaining sessions are skipped and the consultant is removed again from
// every session of the original batch; the returned *OperationError names the
// failing room and any rollback failures.
func (s *Service) AddConsultantToSessions(ctx context.Context, consultant *store.Consultant,
	sessions []store.Session) error {
	for i := range sessions {
		groupID, err := s.addToSession(ctx, consultant, &sessions[i])
		if err == nil {
			continue
		}
		slog.Error("Batch membership add failed, rolling back",
			"consultant_id", consultant.ID, "group_id", groupID, "err", err)
		return &OperationError{
			GroupID:        groupID,
			Reason:         err,
			RollbackErrors: s.rollback(ctx, consultant, sessions),
		}
	}
	return nil
}

// RemoveConsultantFromSessions removes the consultant from the main and
// feedback rooms of every session. Rooms are handled independently; failures
// are collected and returned, never compensated.
func (s *Service) RemoveConsultantFromSessions(ctx context.Context, consultant *store.Consultant,
	sessions []store.Session) []error {
	var removeErrors []error
	for i := range sessions {
		removeErrors = append(removeErrors, s.removeFromSession(ctx, consultant, &sessions[i])...)
	}
	return removeErrors
}

// addToSession applies the applicable membership changes of one session and
// returns the room id a failure occurred in.
func (s *Service) addToSession(ctx context.Context, consultant *store.Consultant,
	session *store.Session) (string, error) {
	if session.GroupID != "" && s.conditions.CanAddToGroup(session) {
		if err := s.addToGroup(ctx, consultant.ChatUserID, session.GroupID); err != nil {
			return session.GroupID, err
		}
		logMembershipChange("add", session, consultant, session.GroupID)
	}

	eligible, err := s.conditions.CanAddToFeedbackGroup(ctx, session, consultant)
	if err != nil {
		return session.FeedbackGroupID, err
	}
	if eligible {
		if err := s.addToGroup(ctx, consultant.ChatUserID, session.FeedbackGroupID); err != nil {
			return session.FeedbackGroupID, err
		}
		logMembershipChange("add", session, consultant, session.FeedbackGroupID)
	}
	return "", nil
}

// addToGroup adds the user inside a technical-user bracket. A user already on
// the member list is not added twice.
func (s *Service) addToGroup(ctx context.Context, userID, groupID string) error {
	if err := s.rooms.AddTechnicalUserToGroup(ctx, groupID); err != nil {
		return err
	}
	defer s.closeBracket(ctx, groupID)

	members, err := s.rooms.GroupMembers(ctx, groupID)
	if err != nil {
		return err
	}
	if isMember(members, userID) {
		return nil
	}
	return s.rooms.AddUserToGroup(ctx, userID, groupID)
}

// rollback removes the consultant from every session of the original batch,
// including ones the add never reached; removing a non-member is a no-op, so
// re-attempting all of them trades a few redundant calls for not having to
// track which rooms were already mutated.
func (s *Service) rollback(ctx context.Context, consultant *store.Consultant,
	sessions []store.Session) []error {
	var rollbackErrors []error
	for i := range sessions {
		rollbackErrors = append(rollbackErrors, s.removeFromSession(ctx, consultant, &sessions[i])...)
	}
	return rollbackErrors
}

// removeFromSession removes the consultant from the session's rooms where
// currently a member. Each room is handled independently.
func (s *Service) removeFromSession(ctx context.Context, consultant *store.Consultant,
	session *store.Session) []error {
	var removeErrors []error
	for _, groupID := range []string{session.GroupID, session.FeedbackGroupID} {
		if groupID == "" {
			continue
		}
		if err := s.removeFromGroup(ctx, consultant.ChatUserID, groupID); err != nil {
			removeErrors = append(removeErrors, fmt.Errorf("group %s: %w", groupID, err))
			continue
		}
		logMembershipChange("remove", session, consultant, groupID)
	}
	return removeErrors
}

// removeFromGroup removes the user inside a technical-user bracket. A user
// not on the member list is left alone.
func (s *Service) removeFromGroup(ctx context.Context, userID, groupID string) error {
	if err := s.rooms.AddTechnicalUserToGroup(ctx, groupID); err != nil {
		return err
	}
	defer s.closeBracket(ctx, groupID)

	members, err := s.rooms.GroupMembers(ctx, groupID)
	if err != nil {
		return err
	}
	if !isMember(members, userID) {
		return nil
	}
	return s.rooms.RemoveUserFromGroup(ctx, userID, groupID)
}

// closeBracket revokes the technical user's membership again. Close failures
// are logged only; the mutation inside the bracket already happened.
func (s *Service) closeBracket(ctx context.Context, groupID string) {
	if err := s.rooms.LeaveGroupAsTechnicalUser(ctx, groupID); err != nil {
		slog.Warn("Failed to close technical user bracket", "group_id", groupID, "err", err)
	}
}

func isMember(members []chat.GroupMember, userID string) bool {
	for _, member := range members {
		if member.UserID == userID {
			return true
		}
	}
	return false
}
