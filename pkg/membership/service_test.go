package membership

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advicehub/user-lifecycle/pkg/chat"
	"github.com/advicehub/user-lifecycle/pkg/store"
)

// fakeChatRooms keeps room membership in memory and records every call so
// tests can assert on the exact sequence of backend mutations.
type fakeChatRooms struct {
	members map[string][]chat.GroupMember

	failAddUser map[string]error
	failBracket map[string]error
	failLeave   map[string]error

	addCalls     []string
	removeCalls  []string
	bracketOpens []string
}

func newFakeChatRooms() *fakeChatRooms {
	return &fakeChatRooms{
		members:     make(map[string][]chat.GroupMember),
		failAddUser: make(map[string]error),
		failBracket: make(map[string]error),
		failLeave:   make(map[string]error),
	}
}

func (f *fakeChatRooms) AddTechnicalUserToGroup(_ context.Context, groupID string) error {
	f.bracketOpens = append(f.bracketOpens, groupID)
	return f.failBracket[groupID]
}

func (f *fakeChatRooms) LeaveGroupAsTechnicalUser(_ context.Context, groupID string) error {
	return f.failLeave[groupID]
}

func (f *fakeChatRooms) GroupMembers(_ context.Context, groupID string) ([]chat.GroupMember, error) {
	return f.members[groupID], nil
}

func (f *fakeChatRooms) AddUserToGroup(_ context.Context, userID, groupID string) error {
	f.addCalls = append(f.addCalls, userID+"@"+groupID)
	if err := f.failAddUser[groupID]; err != nil {
		return err
	}
	f.members[groupID] = append(f.members[groupID], chat.GroupMember{UserID: userID})
	return nil
}

func (f *fakeChatRooms) RemoveUserFromGroup(_ context.Context, userID, groupID string) error {
	f.removeCalls = append(f.removeCalls, userID+"@"+groupID)
	kept := f.members[groupID][:0]
	for _, member := range f.members[groupID] {
		if member.UserID != userID {
			kept = append(kept, member)
		}
	}
	f.members[groupID] = kept
	return nil
}

func (f *fakeChatRooms) isMemberOf(userID, groupID string) bool {
	return isMember(f.members[groupID], userID)
}

func enquirySession(groupID, feedbackGroupID string) store.Session {
	return store.Session{
		ID:              uuid.New(),
		GroupID:         groupID,
		FeedbackGroupID: feedbackGroupID,
		Status:          store.SessionNew,
	}
}

func testConsultant() *store.Consultant {
	return &store.Consultant{ID: uuid.New(), Username: "consultant", ChatUserID: "chat-user"}
}

func newTestService(rooms ChatRooms) *Service {
	return NewService(rooms, NewConditionProvider(&fakeIdentity{}))
}

func TestAddConsultantToSessions_AddsToEligibleRooms(t *testing.T) {
	rooms := newFakeChatRooms()
	svc := newTestService(rooms)
	consultant := testConsultant()
	sessions := []store.Session{
		enquirySession("main-1", "feedback-1"),
		enquirySession("main-2", ""),
	}

	err := svc.AddConsultantToSessions(context.Background(), consultant, sessions)

	require.NoError(t, err)
	assert.True(t, rooms.isMemberOf("chat-user", "main-1"))
	assert.True(t, rooms.isMemberOf("chat-user", "feedback-1"))
	assert.True(t, rooms.isMemberOf("chat-user", "main-2"))
}

func TestAddConsultantToSessions_SkipsBlankMainGroup(t *testing.T) {
	rooms := newFakeChatRooms()
	svc := newTestService(rooms)
	consultant := testConsultant()
	sessions := []store.Session{enquirySession("", "feedback-1")}

	err := svc.AddConsultantToSessions(context.Background(), consultant, sessions)

	require.NoError(t, err)
	assert.True(t, rooms.isMemberOf("chat-user", "feedback-1"))
	// no technical-user bracket on the missing main room
	assert.Equal(t, []string{"feedback-1"}, rooms.bracketOpens)
}

func TestAddConsultantToSessions_RollsBackWholeBatchOnFailure(t *testing.T) {
	rooms := newFakeChatRooms()
	rooms.failAddUser["main-3"] = errors.New("backend rejected invite")
	svc := newTestService(rooms)
	consultant := testConsultant()
	sessions := []store.Session{
		enquirySession("main-1", ""),
		enquirySession("main-2", ""),
		enquirySession("main-3", ""),
	}

	err := svc.AddConsultantToSessions(context.Background(), consultant, sessions)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "main-3", opErr.GroupID)
	assert.Empty(t, opErr.RollbackErrors)

	// zero net memberships after rollback
	assert.False(t, rooms.isMemberOf("chat-user", "main-1"))
	assert.False(t, rooms.isMemberOf("chat-user", "main-2"))
	assert.False(t, rooms.isMemberOf("chat-user", "main-3"))
}

func TestAddConsultantToSessions_BracketOpenFailureRollsBack(t *testing.T) {
	rooms := newFakeChatRooms()
	rooms.failBracket["main-2"] = errors.New("room not found")
	svc := newTestService(rooms)
	consultant := testConsultant()
	sessions := []store.Session{
		enquirySession("main-1", ""),
		enquirySession("main-2", ""),
	}

	err := svc.AddConsultantToSessions(context.Background(), consultant, sessions)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "main-2", opErr.GroupID)
	assert.False(t, rooms.isMemberOf("chat-user", "main-1"))
}

func TestAddConsultantToSessions_ExistingMemberNotAddedTwice(t *testing.T) {
	rooms := newFakeChatRooms()
	rooms.members["main-1"] = []chat.GroupMember{{UserID: "chat-user"}}
	svc := newTestService(rooms)

	err := svc.AddConsultantToSessions(context.Background(), testConsultant(),
		[]store.Session{enquirySession("main-1", "")})

	require.NoError(t, err)
	assert.Empty(t, rooms.addCalls)
}

func TestAddConsultantToSessions_SkipsIneligibleSession(t *testing.T) {
	rooms := newFakeChatRooms()
	svc := newTestService(rooms)
	owner := uuid.New()
	sessions := []store.Session{{
		ID:           uuid.New(),
		GroupID:      "main-1",
		Status:       store.SessionInProgress,
		ConsultantID: &owner,
	}}

	err := svc.AddConsultantToSessions(context.Background(), testConsultant(), sessions)

	require.NoError(t, err)
	assert.Empty(t, rooms.bracketOpens)
}

func TestAddConsultantToSessions_BracketCloseFailureDoesNotFailBatch(t *testing.T) {
	rooms := newFakeChatRooms()
	rooms.failLeave["main-1"] = errors.New("leave rejected")
	svc := newTestService(rooms)

	err := svc.AddConsultantToSessions(context.Background(), testConsultant(),
		[]store.Session{enquirySession("main-1", "")})

	require.NoError(t, err)
	assert.True(t, rooms.isMemberOf("chat-user", "main-1"))
}

func TestRemoveConsultantFromSessions_RemovesWherePresent(t *testing.T) {
	rooms := newFakeChatRooms()
	rooms.members["main-1"] = []chat.GroupMember{{UserID: "chat-user"}}
	rooms.members["feedback-1"] = []chat.GroupMember{{UserID: "chat-user"}}
	svc := newTestService(rooms)

	removeErrors := svc.RemoveConsultantFromSessions(context.Background(), testConsultant(),
		[]store.Session{enquirySession("main-1", "feedback-1")})

	assert.Empty(t, removeErrors)
	assert.False(t, rooms.isMemberOf("chat-user", "main-1"))
	assert.False(t, rooms.isMemberOf("chat-user", "feedback-1"))
}

func TestRemoveConsultantFromSessions_NonMemberIsNoOp(t *testing.T) {
	rooms := newFakeChatRooms()
	svc := newTestService(rooms)

	removeErrors := svc.RemoveConsultantFromSessions(context.Background(), testConsultant(),
		[]store.Session{enquirySession("main-1", "")})

	assert.Empty(t, removeErrors)
	assert.Empty(t, rooms.removeCalls)
}

func TestRemoveConsultantFromSessions_FailuresAreIndependent(t *testing.T) {
	rooms := newFakeChatRooms()
	rooms.failBracket["main-1"] = errors.New("room gone")
	rooms.members["main-2"] = []chat.GroupMember{{UserID: "chat-user"}}
	svc := newTestService(rooms)
	sessions := []store.Session{
		enquirySession("main-1", ""),
		enquirySession("main-2", ""),
	}

	removeErrors := svc.RemoveConsultantFromSessions(context.Background(), testConsultant(), sessions)

	assert.Len(t, removeErrors, 1)
	assert.False(t, rooms.isMemberOf("chat-user", "main-2"))
}
