package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advicehub/user-lifecycle/pkg/anonymous"
	"github.com/advicehub/user-lifecycle/pkg/chat"
	"github.com/advicehub/user-lifecycle/pkg/deletion"
	"github.com/advicehub/user-lifecycle/pkg/identity"
	"github.com/advicehub/user-lifecycle/pkg/notification"
	"github.com/advicehub/user-lifecycle/pkg/store"
)

type fakeIdentityClient struct {
	deleteErr    error
	deletedUsers []string
}

func (f *fakeIdentityClient) DeleteUser(_ context.Context, userID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedUsers = append(f.deletedUsers, userID)
	return nil
}

func (f *fakeIdentityClient) DeactivateUser(context.Context, string) error { return nil }

func (f *fakeIdentityClient) GetUserRoles(context.Context, string) ([]string, error) {
	return nil, nil
}

type fakeChatClient struct {
	deleteGroupErr map[string]error

	deletedGroups []string
	deletedUsers  []string
}

func (f *fakeChatClient) GroupMembers(context.Context, string) ([]chat.GroupMember, error) {
	return nil, nil
}

func (f *fakeChatClient) AddUserToGroup(context.Context, string, string) error      { return nil }
func (f *fakeChatClient) RemoveUserFromGroup(context.Context, string, string) error { return nil }
func (f *fakeChatClient) LeaveGroup(context.Context, string) error                  { return nil }

func (f *fakeChatClient) DeleteGroup(_ context.Context, groupID string) error {
	if err := f.deleteGroupErr[groupID]; err != nil {
		return err
	}
	f.deletedGroups = append(f.deletedGroups, groupID)
	return nil
}

func (f *fakeChatClient) DeleteUser(_ context.Context, userID string) error {
	f.deletedUsers = append(f.deletedUsers, userID)
	return nil
}

type fakeAppointmentClient struct {
	askerErr          error
	deletedAskers     []string
	deletedConsultant []string
}

func (f *fakeAppointmentClient) DeleteAsker(_ context.Context, userID string) error {
	if f.askerErr != nil {
		return f.askerErr
	}
	f.deletedAskers = append(f.deletedAskers, userID)
	return nil
}

func (f *fakeAppointmentClient) DeleteConsultant(_ context.Context, userID string) error {
	f.deletedConsultant = append(f.deletedConsultant, userID)
	return nil
}

type fixture struct {
	repo         *store.InMemRepository
	identity     *fakeIdentityClient
	chat         *fakeChatClient
	appointments *fakeAppointmentClient
	registry     *anonymous.InMemRegistry
	notifier     *notification.MockNotifier
	service      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:         store.NewInMemRepository(),
		identity:     &fakeIdentityClient{},
		chat:         &fakeChatClient{deleteGroupErr: make(map[string]error)},
		appointments: &fakeAppointmentClient{},
		registry:     anonymous.NewInMemRegistry("Visitor"),
		notifier:     &notification.MockNotifier{},
	}

	notifications := notification.NewManager()
	notifications.RegisterNotifier(notification.EmailSystem, f.notifier)
	err := notifications.RegisterNotice(notification.WorkflowErrorNotice, notification.EmailSystem,
		notification.NoticeTemplate{Subject: "errors", Text: "{{.ErrorList}}"})
	require.NoError(t, err)

	f.service = NewService(Dependencies{
		Askers:             f.repo,
		AskerAgencies:      f.repo,
		Consultants:        f.repo,
		ConsultantAgencies: f.repo,
		Sessions:           f.repo,
		Monitorings:        f.repo,
		SessionData:        f.repo,
		GroupChats:         f.repo,
		Identity:           f.identity,
		Chat:               chat.NewFacade(f.chat, "technical-user"),
		Appointments:       f.appointments,
		AnonymousNames:     f.registry,
		Reporter:           NewErrorReporter(notifications, "ops@example.com"),
	})
	return f
}

func (f *fixture) seedAsker(t *testing.T, flagged bool) store.Asker {
	t.Helper()
	asker := store.Asker{ID: uuid.New(), Username: "Visitor7", ChatUserID: "rc-asker"}
	if flagged {
		now := time.Now().UTC()
		asker.DeleteDate = &now
	}
	f.repo.AddAsker(asker)
	return asker
}

func TestDeleteAsker_TearsDownAllBackends(t *testing.T) {
	f := newFixture(t)
	asker := f.seedAsker(t, false)
	f.repo.AddAskerAgency(store.AskerAgency{ID: uuid.New(), AskerID: asker.ID, AgencyID: uuid.New()})

	sessions := []store.Session{
		{ID: uuid.New(), AskerID: asker.ID, GroupID: "main-1", FeedbackGroupID: "feedback-1"},
		{ID: uuid.New(), AskerID: asker.ID, GroupID: "main-2", FeedbackGroupID: "feedback-2"},
		{ID: uuid.New(), AskerID: asker.ID, GroupID: "main-3"},
	}
	for _, s := range sessions {
		f.repo.AddSession(s)
		f.repo.AddMonitoring(store.Monitoring{ID: uuid.New(), SessionID: s.ID})
		f.repo.AddSessionData(store.SessionData{ID: uuid.New(), SessionID: s.ID})
	}

	workflowErrors := f.service.DeleteAsker(context.Background(), &asker)

	assert.Empty(t, workflowErrors)
	// five rooms: three mains plus two feedback rooms, the blank one skipped
	assert.Len(t, f.chat.deletedGroups, 5)
	assert.Equal(t, []string{"rc-asker"}, f.chat.deletedUsers)
	assert.Equal(t, []string{asker.ID.String()}, f.identity.deletedUsers)
	assert.Equal(t, []string{asker.ID.String()}, f.appointments.deletedAskers)

	counts := f.repo.Counts()
	assert.Zero(t, counts["askers"])
	assert.Zero(t, counts["asker_agencies"])
	assert.Zero(t, counts["sessions"])
	assert.Zero(t, counts["monitorings"])
	assert.Zero(t, counts["session_data"])
}

func TestDeleteAsker_IdentityAlreadyGoneIsSuccess(t *testing.T) {
	f := newFixture(t)
	f.identity.deleteErr = identity.ErrNotFound
	asker := f.seedAsker(t, false)

	workflowErrors := f.service.DeleteAsker(context.Background(), &asker)

	assert.Empty(t, workflowErrors)
	assert.Zero(t, f.repo.Counts()["askers"])
}

func TestDeleteAsker_BackendFailuresAreAggregatedNotFatal(t *testing.T) {
	f := newFixture(t)
	f.identity.deleteErr = errors.New("identity provider down")
	f.appointments.askerErr = errors.New("appointment service down")
	asker := f.seedAsker(t, false)
	f.repo.AddSession(store.Session{ID: uuid.New(), AskerID: asker.ID, GroupID: "main-1"})

	workflowErrors := f.service.DeleteAsker(context.Background(), &asker)

	require.Len(t, workflowErrors, 2)
	targets := []deletion.TargetType{workflowErrors[0].Target, workflowErrors[1].Target}
	assert.Contains(t, targets, deletion.TargetIdentityProvider)
	assert.Contains(t, targets, deletion.TargetAppointmentService)
	for _, workflowError := range workflowErrors {
		assert.Equal(t, deletion.SourceAsker, workflowError.Source)
	}

	// the chain ran to the end regardless
	counts := f.repo.Counts()
	assert.Zero(t, counts["askers"])
	assert.Zero(t, counts["sessions"])
}

func TestDeleteAsker_RoomDeleteFailureStillClearsDatabase(t *testing.T) {
	f := newFixture(t)
	f.chat.deleteGroupErr["main-1"] = errors.New("chat backend down")
	asker := f.seedAsker(t, false)
	f.repo.AddSession(store.Session{ID: uuid.New(), AskerID: asker.ID, GroupID: "main-1"})

	workflowErrors := f.service.DeleteAsker(context.Background(), &asker)

	require.Len(t, workflowErrors, 1)
	assert.Equal(t, deletion.TargetChatBackend, workflowErrors[0].Target)
	assert.Equal(t, "main-1", workflowErrors[0].Identifier)
	assert.Zero(t, f.repo.Counts()["sessions"])
}

func TestDeleteConsultant_TearsDownAllBackends(t *testing.T) {
	f := newFixture(t)
	consultant := store.Consultant{ID: uuid.New(), Username: "consultant", ChatUserID: "rc-consultant"}
	f.repo.AddConsultant(consultant)
	f.repo.AddConsultantAgency(store.ConsultantAgency{
		ID: uuid.New(), ConsultantID: consultant.ID, AgencyID: uuid.New(),
	})
	f.repo.AddGroupChat(store.GroupChat{ID: uuid.New(), GroupID: "owned-1", OwnerID: consultant.ID})

	workflowErrors := f.service.DeleteConsultant(context.Background(), &consultant)

	assert.Empty(t, workflowErrors)
	assert.Equal(t, []string{"owned-1"}, f.chat.deletedGroups)
	assert.Equal(t, []string{"rc-consultant"}, f.chat.deletedUsers)
	assert.Equal(t, []string{consultant.ID.String()}, f.appointments.deletedConsultant)

	counts := f.repo.Counts()
	assert.Zero(t, counts["consultants"])
	assert.Zero(t, counts["consultant_agencies"])
	assert.Zero(t, counts["group_chats"])
}

func TestDeleteSession_StandaloneEntryPoint(t *testing.T) {
	f := newFixture(t)
	session := store.Session{ID: uuid.New(), GroupID: "main-1", FeedbackGroupID: "feedback-1"}
	f.repo.AddSession(session)
	f.repo.AddMonitoring(store.Monitoring{ID: uuid.New(), SessionID: session.ID})

	workflowErrors := f.service.DeleteSession(context.Background(), &session)

	assert.Empty(t, workflowErrors)
	assert.ElementsMatch(t, []string{"main-1", "feedback-1"}, f.chat.deletedGroups)
	counts := f.repo.Counts()
	assert.Zero(t, counts["sessions"])
	assert.Zero(t, counts["monitorings"])
}

func TestDeleteFlaggedAccounts_SweepsOnlyFlagged(t *testing.T) {
	f := newFixture(t)
	flaggedAsker := f.seedAsker(t, true)
	activeAsker := f.seedAsker(t, false)

	now := time.Now().UTC()
	flaggedConsultant := store.Consultant{ID: uuid.New(), ChatUserID: "rc-c1", DeleteDate: &now}
	activeConsultant := store.Consultant{ID: uuid.New(), ChatUserID: "rc-c2"}
	f.repo.AddConsultant(flaggedConsultant)
	f.repo.AddConsultant(activeConsultant)

	err := f.service.DeleteFlaggedAccounts(context.Background())

	require.NoError(t, err)
	assert.NotContains(t, f.identity.deletedUsers, activeAsker.ID.String())
	assert.Contains(t, f.identity.deletedUsers, flaggedAsker.ID.String())
	assert.Contains(t, f.identity.deletedUsers, flaggedConsultant.ID.String())

	counts := f.repo.Counts()
	assert.Equal(t, 1, counts["askers"])
	assert.Equal(t, 1, counts["consultants"])
	// clean sweep sends no report
	assert.Empty(t, f.notifier.SentNotices)
}

func TestDeleteFlaggedAccounts_MailsErrorReport(t *testing.T) {
	f := newFixture(t)
	f.identity.deleteErr = errors.New("identity provider down")
	f.seedAsker(t, true)

	err := f.service.DeleteFlaggedAccounts(context.Background())

	require.NoError(t, err)
	require.Len(t, f.notifier.SentNotices, 1)
	assert.Equal(t, notification.WorkflowErrorNotice, f.notifier.Types[0])
	assert.Equal(t, "ops@example.com", f.notifier.SentNotices[0].To)
	assert.Equal(t, "1", f.notifier.SentNotices[0].Data["ErrorCount"])
}
