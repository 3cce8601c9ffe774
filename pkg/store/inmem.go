package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemRepository is an in-memory implementation of all store repositories,
// useful for tests and local development without a database.
type InMemRepository struct {
	mu sync.RWMutex

	askers           map[uuid.UUID]Asker
	askerAgencies    map[uuid.UUID]AskerAgency
	consultants      map[uuid.UUID]Consultant
	consultantAgency map[uuid.UUID]ConsultantAgency
	sessions         map[uuid.UUID]Session
	monitorings      map[uuid.UUID]Monitoring
	sessionData      map[uuid.UUID]SessionData
	groupChats       map[uuid.UUID]GroupChat
}

// NewInMemRepository creates an empty in-memory repository.
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{
		askers:           make(map[uuid.UUID]Asker),
		askerAgencies:    make(map[uuid.UUID]AskerAgency),
		consultants:      make(map[uuid.UUID]Consultant),
		consultantAgency: make(map[uuid.UUID]ConsultantAgency),
		sessions:         make(map[uuid.UUID]Session),
		monitorings:      make(map[uuid.UUID]Monitoring),
		sessionData:      make(map[uuid.UUID]SessionData),
		groupChats:       make(map[uuid.UUID]GroupChat),
	}
}

// AddAsker seeds an asker.
func (r *InMemRepository) AddAsker(a Asker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.askers[a.ID] = a
}

// AddConsultant seeds a consultant.
func (r *InMemRepository) AddConsultant(c Consultant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consultants[c.ID] = c
}

// AddAskerAgency seeds an asker-agency relation.
func (r *InMemRepository) AddAskerAgency(rel AskerAgency) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.askerAgencies[rel.ID] = rel
}

// AddConsultantAgency seeds a consultant-agency relation.
func (r *InMemRepository) AddConsultantAgency(rel ConsultantAgency) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consultantAgency[rel.ID] = rel
}

// AddSession seeds a session.
func (r *InMemRepository) AddSession(s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// AddMonitoring seeds a monitoring entry.
func (r *InMemRepository) AddMonitoring(m Monitoring) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.monitorings[m.ID] = m
}

// AddSessionData seeds a session data record.
func (r *InMemRepository) AddSessionData(d SessionData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessionData[d.ID] = d
}

// AddGroupChat seeds a consultant-owned chat.
func (r *InMemRepository) AddGroupChat(c GroupChat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groupChats[c.ID] = c
}

func (r *InMemRepository) GetAsker(_ context.Context, id uuid.UUID) (Asker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.askers[id]
	if !ok {
		return Asker{}, ErrNotFound
	}
	return a, nil
}

func (r *InMemRepository) FindAskersFlaggedForDeletion(_ context.Context) ([]Asker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var flagged []Asker
	for _, a := range r.askers {
		if a.DeleteDate != nil {
			flagged = append(flagged, a)
		}
	}
	return flagged, nil
}

func (r *InMemRepository) DeleteAsker(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.askers, id)
	return nil
}

func (r *InMemRepository) DeleteAskerAgenciesByAsker(_ context.Context, askerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, rel := range r.askerAgencies {
		if rel.AskerID == askerID {
			delete(r.askerAgencies, id)
		}
	}
	return nil
}

func (r *InMemRepository) GetConsultant(_ context.Context, id uuid.UUID) (Consultant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.consultants[id]
	if !ok {
		return Consultant{}, ErrNotFound
	}
	return c, nil
}

func (r *InMemRepository) FindConsultantsFlaggedForDeletion(_ context.Context) ([]Consultant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var flagged []Consultant
	for _, c := range r.consultants {
		if c.DeleteDate != nil {
			flagged = append(flagged, c)
		}
	}
	return flagged, nil
}

func (r *InMemRepository) DeleteConsultant(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.consultants, id)
	return nil
}

func (r *InMemRepository) CreateConsultantAgency(_ context.Context, relation ConsultantAgency) (ConsultantAgency, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if relation.ID == uuid.Nil {
		relation.ID = uuid.New()
	}
	r.consultantAgency[relation.ID] = relation
	return relation, nil
}

func (r *InMemRepository) DeleteConsultantAgenciesByConsultant(_ context.Context, consultantID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, rel := range r.consultantAgency {
		if rel.ConsultantID == consultantID {
			delete(r.consultantAgency, id)
		}
	}
	return nil
}

func (r *InMemRepository) GetSession(_ context.Context, id uuid.UUID) (Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (r *InMemRepository) FindSessionsByAsker(_ context.Context, askerID uuid.UUID) ([]Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sessions []Session
	for _, s := range r.sessions {
		if s.AskerID == askerID {
			sessions = append(sessions, s)
		}
	}
	return sessions, nil
}

func (r *InMemRepository) FindTeamSessionsByAgency(_ context.Context, agencyID uuid.UUID) ([]Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sessions []Session
	for _, s := range r.sessions {
		if s.AgencyID == agencyID && s.TeamSession {
			sessions = append(sessions, s)
		}
	}
	return sessions, nil
}

func (r *InMemRepository) DeleteSession(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *InMemRepository) DeleteMonitoringsBySession(_ context.Context, sessionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.monitorings {
		if m.SessionID == sessionID {
			delete(r.monitorings, id)
		}
	}
	return nil
}

func (r *InMemRepository) DeleteSessionDataBySession(_ context.Context, sessionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, d := range r.sessionData {
		if d.SessionID == sessionID {
			delete(r.sessionData, id)
		}
	}
	return nil
}

func (r *InMemRepository) FindGroupChatsByOwner(_ context.Context, ownerID uuid.UUID) ([]GroupChat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var chats []GroupChat
	for _, c := range r.groupChats {
		if c.OwnerID == ownerID {
			chats = append(chats, c)
		}
	}
	return chats, nil
}

func (r *InMemRepository) DeleteGroupChatsByOwner(_ context.Context, ownerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.groupChats {
		if c.OwnerID == ownerID {
			delete(r.groupChats, id)
		}
	}
	return nil
}

// Counts returns row counts per table, used by tests to assert teardown.
func (r *InMemRepository) Counts() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return map[string]int{
		"askers":              len(r.askers),
		"asker_agencies":      len(r.askerAgencies),
		"consultants":         len(r.consultants),
		"consultant_agencies": len(r.consultantAgency),
		"sessions":            len(r.sessions),
		"monitorings":         len(r.monitorings),
		"session_data":        len(r.sessionData),
		"group_chats":         len(r.groupChats),
	}
}
