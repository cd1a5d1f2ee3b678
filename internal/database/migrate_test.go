package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations_Ordered(t *testing.T) {
	migrations, err := LoadMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 4)

	for i, m := range migrations {
		assert.Equal(t, uint(i+1), m.Version)
		assert.NotEmpty(t, m.SQL)
	}
	assert.Equal(t, "create_users_events", migrations[0].Name)
	assert.Contains(t, migrations[1].SQL, "CREATE TABLE user_content_reads")
	assert.Contains(t, migrations[2].SQL, "CREATE TABLE clinical_events")
}

func TestSplitStatements(t *testing.T) {
	body := `-- header comment
CREATE TABLE a (
    id NUMBER
);

-- index
CREATE INDEX ia ON a (id);
  ;
`
	stmts := SplitStatements(body)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (\n    id NUMBER\n)", stmts[0])
	assert.Equal(t, "CREATE INDEX ia ON a (id)", stmts[1])
}

func TestSplitStatements_EmbeddedFiles(t *testing.T) {
	migrations, err := LoadMigrations()
	require.NoError(t, err)
	for _, m := range migrations {
		for _, stmt := range SplitStatements(m.SQL) {
			assert.NotContains(t, stmt, ";", "migration %d", m.Version)
		}
	}
}

func TestRunMigrations_SkipsApplied(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "sqlmock")

	migrations := []Migration{
		{Version: 1, Name: "first", SQL: "CREATE TABLE a (x NUMBER);"},
		{Version: 2, Name: "second", SQL: "CREATE TABLE b (y NUMBER);\nCREATE INDEX ib ON b (y);"},
	}

	mock.ExpectExec("CREATE TABLE schema_migrations").
		WillReturnError(errors.New("ORA-00955: name is already used by an existing object"))
	mock.ExpectQuery("SELECT version FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"VERSION"}).AddRow(int64(1)))
	mock.ExpectExec(`CREATE TABLE b \(y NUMBER\)`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX ib ON b \(y\)`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs(int64(2), "second", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := RunMigrations(context.Background(), db, migrations)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_StopsOnFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "sqlmock")

	mock.ExpectExec("CREATE TABLE schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT version FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"VERSION"}))
	mock.ExpectExec("CREATE TABLE a").WillReturnError(errors.New("ORA-01031: insufficient privileges"))

	applied, err := RunMigrations(context.Background(), db, []Migration{{Version: 1, Name: "first", SQL: "CREATE TABLE a (x NUMBER);"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1_first")
	assert.Equal(t, 0, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}
