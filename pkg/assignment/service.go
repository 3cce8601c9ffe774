// Package assignment links consultants to agencies and keeps their chat room
// access in step with the agency's team sessions.
package assignment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/google/uuid"

	"github.com/advicehub/user-lifecycle/pkg/membership"
	"github.com/advicehub/user-lifecycle/pkg/notification"
	"github.com/advicehub/user-lifecycle/pkg/store"
)

// Agency describes one agency a consultant is assigned to. TeamAgency
// controls whether the assignment also provisions the agency's team session
// rooms.
type Agency struct {
	ID         uuid.UUID
	TeamAgency bool
}

// Service assigns consultants to agencies. Single assignments run
// synchronously in the caller's context; bulk assignment after consultant
// creation runs on a worker pool and reports its outcome by log and mail,
// since the triggering caller has already returned.
type Service struct {
	consultantAgencies store.ConsultantAgencyRepository
	sessions           store.SessionRepository
	memberships        *membership.Service
	notifications      *notification.Manager
	recipient          string
	pool               pond.Pool
}

// NewService creates an assignment service with its own bulk worker pool.
func NewService(consultantAgencies store.ConsultantAgencyRepository, sessions store.SessionRepository,
	memberships *membership.Service, notifications *notification.Manager, recipient string,
	workers int) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{
		consultantAgencies: consultantAgencies,
		sessions:           sessions,
		memberships:        memberships,
		notifications:      notifications,
		recipient:          recipient,
		pool:               pond.NewPool(workers),
	}
}

// AssignToAgency creates the consultant-agency relation and, for a team
// agency, adds the consultant to the rooms of the agency's team sessions.
// The room provisioning is all-or-nothing; on failure the relation row stays
// and the caller may retry the assignment.
func (s *Service) AssignToAgency(ctx context.Context, consultant *store.Consultant, agency Agency) error {
	_, err := s.consultantAgencies.CreateConsultantAgency(ctx, store.ConsultantAgency{
		ID:           uuid.New(),
		ConsultantID: consultant.ID,
		AgencyID:     agency.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to create consultant agency relation: %w", err)
	}
	if !agency.TeamAgency {
		return nil
	}

	sessions, err := s.sessions.FindTeamSessionsByAgency(ctx, agency.ID)
	if err != nil {
		return fmt.Errorf("failed to find team sessions of agency %s: %w", agency.ID, err)
	}
	if err := s.memberships.AddConsultantToSessions(ctx, consultant, sessions); err != nil {
		return fmt.Errorf("failed to provision team session rooms of agency %s: %w", agency.ID, err)
	}
	return nil
}

// AssignToAgenciesAsync runs AssignToAgency for every agency on the worker
// pool and returns immediately. The worker logs the outcome and mails a
// report when configured; agencies are processed independently, one failure
// does not skip the rest.
func (s *Service) AssignToAgenciesAsync(consultant *store.Consultant, agencies []Agency) {
	s.pool.Submit(func() {
		ctx := context.Background()
		var failures []string
		for _, agency := range agencies {
			if err := s.AssignToAgency(ctx, consultant, agency); err != nil {
				slog.Error("Bulk agency assignment step failed",
					"consultant_id", consultant.ID, "agency_id", agency.ID, "err", err)
				failures = append(failures, fmt.Sprintf("agency %s: %v", agency.ID, err))
			}
		}
		slog.Info("Bulk agency assignment finished",
			"consultant_id", consultant.ID,
			"agencies", len(agencies),
			"failures", len(failures))
		s.report(consultant, len(agencies), failures)
	})
}

// RemoveFromTeamSessions removes the consultant from the rooms of the
// agency's team sessions, used when an agency changes from team to standard.
// Removal is best-effort; every per-room failure is logged and returned.
func (s *Service) RemoveFromTeamSessions(ctx context.Context, consultant *store.Consultant,
	agencyID uuid.UUID) []error {
	sessions, err := s.sessions.FindTeamSessionsByAgency(ctx, agencyID)
	if err != nil {
		return []error{fmt.Errorf("failed to find team sessions of agency %s: %w", agencyID, err)}
	}
	removeErrors := s.memberships.RemoveConsultantFromSessions(ctx, consultant, sessions)
	for _, removeErr := range removeErrors {
		slog.Error("Failed to remove consultant from team session room",
			"consultant_id", consultant.ID, "agency_id", agencyID, "err", removeErr)
	}
	return removeErrors
}

// Stop drains the worker pool, waiting for queued bulk runs to finish.
func (s *Service) Stop() {
	s.pool.StopAndWait()
}

func (s *Service) report(consultant *store.Consultant, total int, failures []string) {
	if s.notifications == nil || s.recipient == "" {
		return
	}
	failureList := ""
	for _, failure := range failures {
		failureList += failure + "\n"
	}
	data := notification.Data{
		To: s.recipient,
		Data: map[string]string{
			"Consultant":   consultant.Username,
			"AgencyCount":  fmt.Sprintf("%d", total),
			"FailureCount": fmt.Sprintf("%d", len(failures)),
			"FailureList":  failureList,
			"Date":         time.Now().UTC().Format("2006-01-02"),
		},
	}
	if err := s.notifications.Send(notification.AssignmentReportNotice, notification.EmailSystem, data); err != nil {
		slog.Error("Failed to send the agency assignment report", "err", err)
	}
}
