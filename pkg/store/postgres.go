package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements all store repositories backed by a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a PostgreSQL-backed repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const askerColumns = "id, username, email, chat_user_id, delete_date, created_at"

func scanAsker(row pgx.Row) (Asker, error) {
	var a Asker
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.ChatUserID, &a.DeleteDate, &a.CreatedAt)
	return a, err
}

func (r *PostgresRepository) GetAsker(ctx context.Context, id uuid.UUID) (Asker, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+askerColumns+" FROM askers WHERE id = $1", id)
	a, err := scanAsker(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Asker{}, ErrNotFound
	}
	if err != nil {
		return Asker{}, fmt.Errorf("failed to get asker: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) FindAskersFlaggedForDeletion(ctx context.Context) ([]Asker, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+askerColumns+" FROM askers WHERE delete_date IS NOT NULL")
	if err != nil {
		return nil, fmt.Errorf("failed to find flagged askers: %w", err)
	}
	defer rows.Close()

	var askers []Asker
	for rows.Next() {
		a, err := scanAsker(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asker: %w", err)
		}
		askers = append(askers, a)
	}
	return askers, rows.Err()
}

func (r *PostgresRepository) DeleteAsker(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM askers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete asker: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteAskerAgenciesByAsker(ctx context.Context, askerID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM asker_agencies WHERE asker_id = $1", askerID)
	if err != nil {
		return fmt.Errorf("failed to delete asker agencies: %w", err)
	}
	return nil
}

const consultantColumns = "id, username, email, chat_user_id, team_consultant, delete_date, created_at"

func scanConsultant(row pgx.Row) (Consultant, error) {
	var c Consultant
	err := row.Scan(&c.ID, &c.Username, &c.Email, &c.ChatUserID, &c.TeamConsultant,
		&c.DeleteDate, &c.CreatedAt)
	return c, err
}

func (r *PostgresRepository) GetConsultant(ctx context.Context, id uuid.UUID) (Consultant, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+consultantColumns+" FROM consultants WHERE id = $1", id)
	c, err := scanConsultant(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Consultant{}, ErrNotFound
	}
	if err != nil {
		return Consultant{}, fmt.Errorf("failed to get consultant: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) FindConsultantsFlaggedForDeletion(ctx context.Context) ([]Consultant, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+consultantColumns+" FROM consultants WHERE delete_date IS NOT NULL")
	if err != nil {
		return nil, fmt.Errorf("failed to find flagged consultants: %w", err)
	}
	defer rows.Close()

	var consultants []Consultant
	for rows.Next() {
		c, err := scanConsultant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan consultant: %w", err)
		}
		consultants = append(consultants, c)
	}
	return consultants, rows.Err()
}

func (r *PostgresRepository) DeleteConsultant(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM consultants WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete consultant: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CreateConsultantAgency(ctx context.Context, relation ConsultantAgency) (ConsultantAgency, error) {
	if relation.ID == uuid.Nil {
		relation.ID = uuid.New()
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO consultant_agencies (id, consultant_id, agency_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, consultant_id, agency_id, created_at`,
		relation.ID, relation.ConsultantID, relation.AgencyID)
	var created ConsultantAgency
	err := row.Scan(&created.ID, &created.ConsultantID, &created.AgencyID, &created.CreatedAt)
	if err != nil {
		return ConsultantAgency{}, fmt.Errorf("failed to create consultant agency: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) DeleteConsultantAgenciesByConsultant(ctx context.Context, consultantID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		"DELETE FROM consultant_agencies WHERE consultant_id = $1", consultantID)
	if err != nil {
		return fmt.Errorf("failed to delete consultant agencies: %w", err)
	}
	return nil
}

const sessionColumns = "id, asker_id, agency_id, consultant_id, group_id, feedback_group_id, status, team_session, created_at"

func scanSession(row pgx.Row) (Session, error) {
	var (
		s            Session
		consultantID uuid.NullUUID
	)
	err := row.Scan(&s.ID, &s.AskerID, &s.AgencyID, &consultantID, &s.GroupID,
		&s.FeedbackGroupID, &s.Status, &s.TeamSession, &s.CreatedAt)
	if consultantID.Valid {
		id := consultantID.UUID
		s.ConsultantID = &id
	}
	return s, err
}

func (r *PostgresRepository) GetSession(ctx context.Context, id uuid.UUID) (Session, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE id = $1", id)
	s, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) FindSessionsByAsker(ctx context.Context, askerID uuid.UUID) ([]Session, error) {
	return r.findSessions(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE asker_id = $1", askerID)
}

func (r *PostgresRepository) FindTeamSessionsByAgency(ctx context.Context, agencyID uuid.UUID) ([]Session, error) {
	return r.findSessions(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE agency_id = $1 AND team_session", agencyID)
}

func (r *PostgresRepository) findSessions(ctx context.Context, query string, arg any) ([]Session, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to find sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *PostgresRepository) DeleteSession(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM sessions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteMonitoringsBySession(ctx context.Context, sessionID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM monitorings WHERE session_id = $1", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete monitorings: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteSessionDataBySession(ctx context.Context, sessionID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM session_data WHERE session_id = $1", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session data: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindGroupChatsByOwner(ctx context.Context, ownerID uuid.UUID) ([]GroupChat, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT id, group_id, owner_id, topic, created_at FROM group_chats WHERE owner_id = $1",
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find group chats: %w", err)
	}
	defer rows.Close()

	var chats []GroupChat
	for rows.Next() {
		var c GroupChat
		if err := rows.Scan(&c.ID, &c.GroupID, &c.OwnerID, &c.Topic, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group chat: %w", err)
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

func (r *PostgresRepository) DeleteGroupChatsByOwner(ctx context.Context, ownerID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM group_chats WHERE owner_id = $1", ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete group chats: %w", err)
	}
	return nil
}
