package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned by finder methods when no row matches.
var ErrNotFound = errors.New("store: not found")

// AskerRepository defines persistence operations for askers.
type AskerRepository interface {
	GetAsker(ctx context.Context, id uuid.UUID) (Asker, error)
	FindAskersFlaggedForDeletion(ctx context.Context) ([]Asker, error)
	DeleteAsker(ctx context.Context, id uuid.UUID) error
}

// AskerAgencyRepository defines persistence operations for asker-agency relations.
type AskerAgencyRepository interface {
	DeleteAskerAgenciesByAsker(ctx context.Context, askerID uuid.UUID) error
}

// ConsultantRepository defines persistence operations for consultants.
type ConsultantRepository interface {
	GetConsultant(ctx context.Context, id uuid.UUID) (Consultant, error)
	FindConsultantsFlaggedForDeletion(ctx context.Context) ([]Consultant, error)
	DeleteConsultant(ctx context.Context, id uuid.UUID) error
}

// ConsultantAgencyRepository defines persistence operations for
// consultant-agency relations.
type ConsultantAgencyRepository interface {
	CreateConsultantAgency(ctx context.Context, relation ConsultantAgency) (ConsultantAgency, error)
	DeleteConsultantAgenciesByConsultant(ctx context.Context, consultantID uuid.UUID) error
}

// SessionRepository defines persistence operations for sessions.
type SessionRepository interface {
	GetSession(ctx context.Context, id uuid.UUID) (Session, error)
	FindSessionsByAsker(ctx context.Context, askerID uuid.UUID) ([]Session, error)
	FindTeamSessionsByAgency(ctx context.Context, agencyID uuid.UUID) ([]Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
}

// MonitoringRepository defines persistence operations for monitoring entries.
type MonitoringRepository interface {
	DeleteMonitoringsBySession(ctx context.Context, sessionID uuid.UUID) error
}

// SessionDataRepository defines persistence operations for session data records.
type SessionDataRepository interface {
	DeleteSessionDataBySession(ctx context.Context, sessionID uuid.UUID) error
}

// GroupChatRepository defines persistence operations for consultant-owned chats.
type GroupChatRepository interface {
	FindGroupChatsByOwner(ctx context.Context, ownerID uuid.UUID) ([]GroupChat, error)
	DeleteGroupChatsByOwner(ctx context.Context, ownerID uuid.UUID) error
}
