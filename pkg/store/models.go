package store

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle status of a counseling session.
type SessionStatus int

const (
	SessionInitial SessionStatus = iota
	SessionNew
	SessionInProgress
	SessionDone
	SessionInArchive
)

func (s SessionStatus) String() string {
	switch s {
	case SessionInitial:
		return "initial"
	case SessionNew:
		return "new"
	case SessionInProgress:
		return "in_progress"
	case SessionDone:
		return "done"
	case SessionInArchive:
		return "in_archive"
	}
	return "unknown"
}

// Asker is an advice-seeking end user account.
type Asker struct {
	ID         uuid.UUID
	Username   string
	Email      string
	ChatUserID string
	// DeleteDate marks the account for the deletion sweep; nil means active.
	DeleteDate *time.Time
	CreatedAt  time.Time
}

// Consultant is a staff account answering asker requests.
type Consultant struct {
	ID             uuid.UUID
	Username       string
	Email          string
	ChatUserID     string
	TeamConsultant bool
	DeleteDate     *time.Time
	CreatedAt      time.Time
}

// ConsultantAgency links a consultant to an agency.
type ConsultantAgency struct {
	ID           uuid.UUID
	ConsultantID uuid.UUID
	AgencyID     uuid.UUID
	CreatedAt    time.Time
}

// AskerAgency links an asker to an agency.
type AskerAgency struct {
	ID        uuid.UUID
	AskerID   uuid.UUID
	AgencyID  uuid.UUID
	CreatedAt time.Time
}

// Session is a chat room instance pairing an asker and optionally a consultant.
// GroupID and FeedbackGroupID reference rooms in the chat backend; either may be
// empty when the room was never created.
type Session struct {
	ID              uuid.UUID
	AskerID         uuid.UUID
	AgencyID        uuid.UUID
	ConsultantID    *uuid.UUID
	GroupID         string
	FeedbackGroupID string
	Status          SessionStatus
	TeamSession     bool
	CreatedAt       time.Time
}

// Monitoring is a session-scoped monitoring entry.
type Monitoring struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Key       string
	Value     string
}

// SessionData is a session-scoped key/value record.
type SessionData struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Key       string
	Value     string
}

// GroupChat is a chat room owned by a consultant outside of any session.
type GroupChat struct {
	ID        uuid.UUID
	GroupID   string
	OwnerID   uuid.UUID
	Topic     string
	CreatedAt time.Time
}
