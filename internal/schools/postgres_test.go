package schools

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func setupPingMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestPostgresSourceByDivision(t *testing.T) {
	t.Parallel()

	db, mock := setupMockDB(t)
	query := `SELECT row_to_json(s) FROM "school_data_general" AS s WHERE s.division_group = ANY($1) ORDER BY s.school_name`

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"row_to_json"}).
			AddRow([]byte(`{"school_name": "Boston College", "school_state": "MA", "division_group": "Power 4 D1", "avg_sat": 1460}`)).
			AddRow([]byte(`{"school_name": "Syracuse University", "school_state": "NY", "division_group": "Power 4 D1", "avg_sat": null}`)))

	src := NewPostgresSource(db, "", nil)
	list, err := src.Schools(context.Background(), DivisionPower4D1)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "Boston College", list[0].Name)
	require.NotNil(t, list[0].AvgSAT)
	assert.InDelta(t, 1460.0, *list[0].AvgSAT, 0.001)
	assert.Nil(t, list[1].AvgSAT)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSourceAllDivisions(t *testing.T) {
	t.Parallel()

	db, mock := setupMockDB(t)
	query := `SELECT row_to_json(s) FROM "colleges" AS s ORDER BY s.school_name`

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WillReturnRows(sqlmock.NewRows([]string{"row_to_json"}))

	list, err := NewPostgresSource(db, "colleges", nil).Schools(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSourceQueryError(t *testing.T) {
	t.Parallel()

	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT row_to_json").WillReturnError(errors.New("connection reset"))

	_, err := NewPostgresSource(db, "", nil).Schools(context.Background(), DivisionNonD1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestPostgresSourcePingRetries(t *testing.T) {
	t.Parallel()

	db, mock := setupPingMockDB(t)
	mock.ExpectPing().WillReturnError(errors.New("starting up"))
	mock.ExpectPing()

	src := NewPostgresSource(db, "", nil)
	require.NoError(t, src.Ping(context.Background(), 3, time.Millisecond))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSourcePingGivesUp(t *testing.T) {
	t.Parallel()

	db, mock := setupPingMockDB(t)
	mock.ExpectPing().WillReturnError(errors.New("down"))
	mock.ExpectPing().WillReturnError(errors.New("down"))

	err := NewPostgresSource(db, "", nil).Ping(context.Background(), 2, time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping postgres")
}
