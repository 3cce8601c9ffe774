package assignment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advicehub/user-lifecycle/pkg/chat"
	"github.com/advicehub/user-lifecycle/pkg/membership"
	"github.com/advicehub/user-lifecycle/pkg/notification"
	"github.com/advicehub/user-lifecycle/pkg/store"
)

type fakeRooms struct {
	members map[string][]chat.GroupMember
}

func newFakeRooms() *fakeRooms {
	return &fakeRooms{members: make(map[string][]chat.GroupMember)}
}

func (f *fakeRooms) AddTechnicalUserToGroup(context.Context, string) error   { return nil }
func (f *fakeRooms) LeaveGroupAsTechnicalUser(context.Context, string) error { return nil }

func (f *fakeRooms) GroupMembers(_ context.Context, groupID string) ([]chat.GroupMember, error) {
	return f.members[groupID], nil
}

func (f *fakeRooms) AddUserToGroup(_ context.Context, userID, groupID string) error {
	f.members[groupID] = append(f.members[groupID], chat.GroupMember{UserID: userID})
	return nil
}

func (f *fakeRooms) RemoveUserFromGroup(_ context.Context, userID, groupID string) error {
	kept := f.members[groupID][:0]
	for _, member := range f.members[groupID] {
		if member.UserID != userID {
			kept = append(kept, member)
		}
	}
	f.members[groupID] = kept
	return nil
}

type fakeRoles struct{}

func (fakeRoles) DeleteUser(context.Context, string) error     { return nil }
func (fakeRoles) DeactivateUser(context.Context, string) error { return nil }
func (fakeRoles) GetUserRoles(context.Context, string) ([]string, error) {
	return []string{membership.MainConsultantRole}, nil
}

func setup(t *testing.T) (*Service, *store.InMemRepository, *fakeRooms, *notification.MockNotifier) {
	t.Helper()
	repo := store.NewInMemRepository()
	rooms := newFakeRooms()
	memberships := membership.NewService(rooms, membership.NewConditionProvider(fakeRoles{}))

	notifier := &notification.MockNotifier{}
	notifications := notification.NewManager()
	notifications.RegisterNotifier(notification.EmailSystem, notifier)
	err := notifications.RegisterNotice(notification.AssignmentReportNotice, notification.EmailSystem,
		notification.NoticeTemplate{Subject: "report", Text: "{{.FailureCount}}"})
	require.NoError(t, err)

	svc := NewService(repo, repo, memberships, notifications, "ops@example.com", 2)
	return svc, repo, rooms, notifier
}

func isMember(members []chat.GroupMember, userID string) bool {
	for _, member := range members {
		if member.UserID == userID {
			return true
		}
	}
	return false
}

func TestAssignToAgency_TeamAgencyProvisionsTeamSessionRooms(t *testing.T) {
	svc, repo, rooms, _ := setup(t)
	agencyID := uuid.New()
	repo.AddSession(store.Session{
		ID: uuid.New(), AgencyID: agencyID, GroupID: "team-1",
		Status: store.SessionInProgress, TeamSession: true,
	})
	repo.AddSession(store.Session{
		ID: uuid.New(), AgencyID: agencyID, GroupID: "standard-1",
		Status: store.SessionInProgress,
	})
	consultant := &store.Consultant{ID: uuid.New(), ChatUserID: "chat-user"}

	err := svc.AssignToAgency(context.Background(), consultant, Agency{ID: agencyID, TeamAgency: true})

	require.NoError(t, err)
	assert.Equal(t, 1, repo.Counts()["consultant_agencies"])
	assert.True(t, isMember(rooms.members["team-1"], "chat-user"))
	// standard sessions are not team sessions of the agency
	assert.False(t, isMember(rooms.members["standard-1"], "chat-user"))
}

func TestAssignToAgency_StandardAgencySkipsRooms(t *testing.T) {
	svc, repo, rooms, _ := setup(t)
	agencyID := uuid.New()
	repo.AddSession(store.Session{
		ID: uuid.New(), AgencyID: agencyID, GroupID: "team-1",
		Status: store.SessionInProgress, TeamSession: true,
	})
	consultant := &store.Consultant{ID: uuid.New(), ChatUserID: "chat-user"}

	err := svc.AssignToAgency(context.Background(), consultant, Agency{ID: agencyID})

	require.NoError(t, err)
	assert.Equal(t, 1, repo.Counts()["consultant_agencies"])
	assert.Empty(t, rooms.members["team-1"])
}

func TestAssignToAgenciesAsync_ReportsOutcome(t *testing.T) {
	svc, repo, rooms, notifier := setup(t)
	agencyID := uuid.New()
	repo.AddSession(store.Session{
		ID: uuid.New(), AgencyID: agencyID, GroupID: "team-1",
		Status: store.SessionInProgress, TeamSession: true,
	})
	consultant := &store.Consultant{ID: uuid.New(), Username: "consultant", ChatUserID: "chat-user"}

	svc.AssignToAgenciesAsync(consultant, []Agency{{ID: agencyID, TeamAgency: true}})
	svc.Stop()

	assert.True(t, isMember(rooms.members["team-1"], "chat-user"))
	require.Len(t, notifier.SentNotices, 1)
	assert.Equal(t, notification.AssignmentReportNotice, notifier.Types[0])
	assert.Equal(t, "0", notifier.SentNotices[0].Data["FailureCount"])
}

func TestRemoveFromTeamSessions(t *testing.T) {
	svc, repo, rooms, _ := setup(t)
	agencyID := uuid.New()
	repo.AddSession(store.Session{
		ID: uuid.New(), AgencyID: agencyID, GroupID: "team-1",
		Status: store.SessionInProgress, TeamSession: true,
	})
	rooms.members["team-1"] = []chat.GroupMember{{UserID: "chat-user"}}
	consultant := &store.Consultant{ID: uuid.New(), ChatUserID: "chat-user"}

	removeErrors := svc.RemoveFromTeamSessions(context.Background(), consultant, agencyID)

	assert.Empty(t, removeErrors)
	assert.False(t, isMember(rooms.members["team-1"], "chat-user"))
}
