package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Mrinal-Agrawal21/veera-app/internal/domain/model"
	"github.com/Mrinal-Agrawal21/veera-app/internal/domain/port"
	"github.com/Mrinal-Agrawal21/veera-app/internal/domain/valueobject"
	pgpkg "github.com/Mrinal-Agrawal21/veera-app/pkg/postgres"
)

// Compile-time interface check.
var _ port.IncidentRepository = (*IncidentRepository)(nil)

const incidentColumns = `
	id, user_id, username, latitude, longitude,
	hour, crime_density, poi_count, night, isolated,
	risk_score, risk_level, created_at`

// IncidentRepository implements port.IncidentRepository using PostgreSQL.
// Incidents are only ever inserted.
type IncidentRepository struct {
	db pgpkg.Querier
}

// NewIncidentRepository creates a new PostgreSQL-backed incident repository.
// db is usually a *pgxpool.Pool.
func NewIncidentRepository(db pgpkg.Querier) *IncidentRepository {
	return &IncidentRepository{db: db}
}

// Append inserts the incident and returns it as stored.
func (r *IncidentRepository) Append(ctx context.Context, incident *model.Incident) (*model.Incident, error) {
	query := `
		INSERT INTO incidents (` + incidentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		incident.ID(),
		incident.UserID(),
		incident.Username(),
		incident.Latitude(),
		incident.Longitude(),
		incident.Hour(),
		incident.CrimeDensity(),
		incident.PoiCount(),
		incident.Night(),
		incident.Isolated(),
		incident.RiskScore(),
		incident.RiskLevel().String(),
		incident.CreatedAt(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to insert incident: %w", port.ErrStorage, err)
	}

	return incident, nil
}

// ListAll returns every incident, oldest first.
func (r *IncidentRepository) ListAll(ctx context.Context) ([]*model.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents ORDER BY created_at ASC, id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query incidents: %w", port.ErrStorage, err)
	}
	return collectIncidents(rows)
}

// ListByUser returns the incidents of userID, oldest first.
func (r *IncidentRepository) ListByUser(ctx context.Context, userID string) ([]*model.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE user_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query incidents for user: %w", port.ErrStorage, err)
	}
	return collectIncidents(rows)
}

// ListUsers returns one summary per non-empty user ID taken from that
// user's most recent incident.
func (r *IncidentRepository) ListUsers(ctx context.Context) ([]model.UserSummary, error) {
	query := `
		SELECT DISTINCT ON (user_id) user_id, username, latitude, longitude, risk_score
		FROM incidents
		WHERE user_id <> ''
		ORDER BY user_id, created_at DESC, id DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query users: %w", port.ErrStorage, err)
	}
	defer rows.Close()

	users := make([]model.UserSummary, 0)
	for rows.Next() {
		var u model.UserSummary
		if err := rows.Scan(&u.UserID, &u.Username, &u.Latitude, &u.Longitude, &u.RiskScore); err != nil {
			return nil, fmt.Errorf("%w: failed to scan user row: %w", port.ErrStorage, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate users: %w", port.ErrStorage, err)
	}

	return users, nil
}

func collectIncidents(rows pgx.Rows) ([]*model.Incident, error) {
	defer rows.Close()

	incidents := make([]*model.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate incidents: %w", port.ErrStorage, err)
	}

	return incidents, nil
}

func scanIncident(row pgx.Row) (*model.Incident, error) {
	var (
		id           uuid.UUID
		userID       string
		username     string
		latitude     float64
		longitude    float64
		hour         int
		crimeDensity float64
		poiCount     int
		night        bool
		isolated     bool
		riskScore    int
		riskLevelStr string
		createdAt    time.Time
	)

	err := row.Scan(
		&id, &userID, &username, &latitude, &longitude,
		&hour, &crimeDensity, &poiCount, &night, &isolated,
		&riskScore, &riskLevelStr, &createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to scan incident row: %w", port.ErrStorage, err)
	}

	riskLevel, err := valueobject.RiskLevelFromString(riskLevelStr)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse risk level: %w", port.ErrStorage, err)
	}

	return model.Reconstruct(
		id, userID, username,
		latitude, longitude,
		hour, crimeDensity, poiCount,
		night, isolated,
		riskScore, riskLevel, createdAt.UTC(),
	), nil
}
