package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mrinal-Agrawal21/veera-app/internal/domain/model"
	"github.com/Mrinal-Agrawal21/veera-app/internal/domain/port"
	"github.com/Mrinal-Agrawal21/veera-app/internal/domain/valueobject"
)

type failingQuerier struct {
	err      error
	lastSQL  string
	lastArgs []any
}

func (f *failingQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.lastSQL, f.lastArgs = sql, args
	return nil, f.err
}

func (f *failingQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.lastSQL, f.lastArgs = sql, args
	return nil
}

func (f *failingQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.lastSQL, f.lastArgs = sql, args
	return pgconn.CommandTag{}, f.err
}

func TestNewIncidentRepository(t *testing.T) {
	t.Run("creates repository with nil querier", func(t *testing.T) {
		repo := NewIncidentRepository(nil)
		assert.NotNil(t, repo)
		assert.Nil(t, repo.db)
	})
}

func TestIncidentRepository_Append(t *testing.T) {
	t.Run("binds every incident column", func(t *testing.T) {
		db := &failingQuerier{}
		repo := NewIncidentRepository(db)
		incident := model.NewIncident(model.IncidentParams{
			UserID:    "u1",
			Username:  "asha",
			Hour:      23,
			RiskScore: 87,
			RiskLevel: valueobject.RiskLevelHigh,
			Night:     true,
		})

		stored, err := repo.Append(context.Background(), incident)

		require.NoError(t, err)
		assert.Same(t, incident, stored)
		assert.Contains(t, db.lastSQL, "INSERT INTO incidents")
		require.Len(t, db.lastArgs, 13)
		assert.Equal(t, incident.ID(), db.lastArgs[0])
		assert.Equal(t, "u1", db.lastArgs[1])
		assert.Equal(t, 87, db.lastArgs[10])
		assert.Equal(t, "HIGH", db.lastArgs[11])
	})

	t.Run("wraps database errors as storage errors", func(t *testing.T) {
		repo := NewIncidentRepository(&failingQuerier{err: errors.New("connection reset")})

		_, err := repo.Append(context.Background(), model.NewIncident(model.IncidentParams{}))

		require.Error(t, err)
		assert.ErrorIs(t, err, port.ErrStorage)
		assert.Contains(t, err.Error(), "connection reset")
	})
}

func TestIncidentRepository_QueryErrors(t *testing.T) {
	db := &failingQuerier{err: errors.New("too many connections")}
	repo := NewIncidentRepository(db)
	ctx := context.Background()

	_, err := repo.ListAll(ctx)
	assert.ErrorIs(t, err, port.ErrStorage)
	assert.Contains(t, db.lastSQL, "ORDER BY created_at ASC")

	_, err = repo.ListByUser(ctx, "u1")
	assert.ErrorIs(t, err, port.ErrStorage)
	assert.Equal(t, []any{"u1"}, db.lastArgs)

	_, err = repo.ListUsers(ctx)
	assert.ErrorIs(t, err, port.ErrStorage)
	assert.Contains(t, db.lastSQL, "DISTINCT ON (user_id)")
}
