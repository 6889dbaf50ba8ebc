package storage_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/weather-trip-planner/internal/forecast"
	"github.com/neexbeast/weather-trip-planner/internal/planner"
	"github.com/neexbeast/weather-trip-planner/internal/storage"
)

// ---- mock Querier ----

type mockQuerier struct {
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
	queryFn    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	execFn     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return m.queryRowFn(ctx, sql, args...)
}
func (m *mockQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return m.queryFn(ctx, sql, args...)
}
func (m *mockQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return m.execFn(ctx, sql, args...)
}

// ---- mock pgx.Row ----

type fakeRow struct {
	scanFn func(dest ...any) error
}

func (f *fakeRow) Scan(dest ...any) error { return f.scanFn(dest...) }

// ---- mock pgx.Rows ----

type fakeRows struct {
	rows    [][]byte
	idx     int
	rowErr  error
	scanErr error
	closed  bool
}

func (f *fakeRows) Next() bool                                   { f.idx++; return f.idx <= len(f.rows) }
func (f *fakeRows) Err() error                                   { return f.rowErr }
func (f *fakeRows) Close()                                       { f.closed = true }
func (f *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (f *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (f *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (f *fakeRows) RawValues() [][]byte                          { return nil }
func (f *fakeRows) Conn() *pgx.Conn                              { return nil }

func (f *fakeRows) Scan(dest ...any) error {
	if f.scanErr != nil {
		return f.scanErr
	}
	*dest[0].(*[]byte) = f.rows[f.idx-1]
	return nil
}

// ---- mock MigrationPool ----

type mockMigrationPool struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockMigrationPool) Begin(ctx context.Context) (pgx.Tx, error) {
	return m.beginFn(ctx)
}

// mockTx is a minimal pgx.Tx implementation for testing migrations.
type mockTx struct {
	execFn     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
}

func (t *mockTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.execFn(ctx, sql, args...)
}
func (t *mockTx) Commit(ctx context.Context) error   { return t.commitFn(ctx) }
func (t *mockTx) Rollback(ctx context.Context) error { return t.rollbackFn(ctx) }

// The remaining pgx.Tx methods are unused by migrations.
func (t *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (t *mockTx) CopyFrom(_ context.Context, _ pgx.Identifier, _ []string, _ pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *mockTx) SendBatch(_ context.Context, _ *pgx.Batch) pgx.BatchResults { return nil }
func (t *mockTx) LargeObjects() pgx.LargeObjects                             { return pgx.LargeObjects{} }
func (t *mockTx) Prepare(_ context.Context, _, _ string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *mockTx) Conn() *pgx.Conn { return nil }

// migrationTx records migration bodies and reports versions in applied as
// already claimed.
func migrationTx(applied map[string]bool, bodies *[]string) *mockTx {
	return &mockTx{
		execFn: func(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			switch {
			case strings.Contains(sql, "CREATE TABLE IF NOT EXISTS schema_migrations"):
				return pgconn.NewCommandTag("CREATE TABLE"), nil
			case strings.Contains(sql, "INSERT INTO schema_migrations"):
				if applied[args[0].(string)] {
					return pgconn.NewCommandTag("INSERT 0 0"), nil
				}
				return pgconn.NewCommandTag("INSERT 0 1"), nil
			}
			*bodies = append(*bodies, sql)
			return pgconn.CommandTag{}, nil
		},
		commitFn:   func(_ context.Context) error { return nil },
		rollbackFn: func(_ context.Context) error { return nil },
	}
}

// ---- helpers ----

func sampleReport() *planner.Report {
	start := forecast.Date(2026, time.October, 16)
	return &planner.Report{
		ID:        uuid.MustParse("4f6b9c1e-3c2a-4d8e-9b71-0a2d5e6f7a81"),
		CreatedAt: time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC),
		Nights:    2,
		MaxPrice:  250,
		Cities: []planner.CityResult{{
			Query:      "Ocean City, MD",
			City:       "Ocean City",
			Region:     "Maryland",
			RegionAbbr: "MD",
			LocationID: "4362438",
			Score:      180,
			Trips: []planner.Trip{{
				Window:   forecast.Window{Start: start, End: start.AddDate(0, 0, 2)},
				HotelURL: "https://hotels.test/search",
			}},
		}},
	}
}

func marshalReport(t *testing.T, r *planner.Report) []byte {
	t.Helper()
	b, err := json.Marshal(r)
	require.NoError(t, err)
	return b
}

func writeSQLFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// ---- SaveReport ----

func TestSaveReport_Success(t *testing.T) {
	report := sampleReport()
	var gotArgs []any
	q := &mockQuerier{
		execFn: func(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			assert.Contains(t, sql, "INSERT INTO trip_reports")
			gotArgs = args
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}

	repo := storage.NewRepositoryWithQuerier(q)
	require.NoError(t, repo.SaveReport(context.Background(), report))

	require.Len(t, gotArgs, 5)
	assert.Equal(t, report.ID.String(), gotArgs[0])
	assert.Equal(t, 2, gotArgs[1])
	assert.Equal(t, 250, gotArgs[2])

	var stored planner.Report
	require.NoError(t, json.Unmarshal(gotArgs[3].([]byte), &stored))
	assert.Equal(t, "Ocean City", stored.Cities[0].City)
}

func TestSaveReport_DBError(t *testing.T) {
	q := &mockQuerier{
		execFn: func(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, fmt.Errorf("connection reset")
		},
	}

	repo := storage.NewRepositoryWithQuerier(q)
	err := repo.SaveReport(context.Background(), sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inserting report")
}

// ---- GetReport ----

func TestGetReport_Found(t *testing.T) {
	report := sampleReport()
	dataJSON := marshalReport(t, report)

	q := &mockQuerier{
		queryRowFn: func(_ context.Context, _ string, args ...any) pgx.Row {
			assert.Equal(t, report.ID.String(), args[0])
			return &fakeRow{scanFn: func(dest ...any) error {
				*dest[0].(*[]byte) = dataJSON
				return nil
			}}
		},
	}

	repo := storage.NewRepositoryWithQuerier(q)
	got, err := repo.GetReport(context.Background(), report.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, report.ID, got.ID)
	require.Len(t, got.Cities, 1)
	assert.True(t, got.Cities[0].Trips[0].Window.Start.Equal(forecast.Date(2026, time.October, 16)))
}

func TestGetReport_NotFound(t *testing.T) {
	q := &mockQuerier{
		queryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
			return &fakeRow{scanFn: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}

	repo := storage.NewRepositoryWithQuerier(q)
	got, err := repo.GetReport(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetReport_DBError(t *testing.T) {
	q := &mockQuerier{
		queryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
			return &fakeRow{scanFn: func(dest ...any) error { return fmt.Errorf("connection reset") }}
		},
	}

	repo := storage.NewRepositoryWithQuerier(q)
	_, err := repo.GetReport(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "querying report")
}

func TestGetReport_BadJSON(t *testing.T) {
	q := &mockQuerier{
		queryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
			return &fakeRow{scanFn: func(dest ...any) error {
				*dest[0].(*[]byte) = []byte("not-json")
				return nil
			}}
		},
	}

	repo := storage.NewRepositoryWithQuerier(q)
	_, err := repo.GetReport(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshaling")
}

// ---- ListReports ----

func TestListReports_ByCity(t *testing.T) {
	rows := &fakeRows{rows: [][]byte{marshalReport(t, sampleReport())}}
	var gotSQL string
	var gotArgs []any
	q := &mockQuerier{
		queryFn: func(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
			gotSQL = sql
			gotArgs = args
			return rows, nil
		},
	}

	repo := storage.NewRepositoryWithQuerier(q)
	got, err := repo.ListReports(context.Background(), "Ocean City", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ocean City", got[0].Cities[0].City)

	assert.Contains(t, gotSQL, "@>")
	require.Len(t, gotArgs, 2)
	assert.JSONEq(t, `{"cities":[{"city":"Ocean City"}]}`, gotArgs[0].(string))
	assert.Equal(t, 5, gotArgs[1])
	assert.True(t, rows.closed)
}

func TestListReports_AllClampsLimit(t *testing.T) {
	var gotArgs []any
	q := &mockQuerier{
		queryFn: func(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
			assert.NotContains(t, sql, "@>")
			gotArgs = args
			return &fakeRows{}, nil
		},
	}

	repo := storage.NewRepositoryWithQuerier(q)
	got, err := repo.ListReports(context.Background(), "", 1000)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, []any{100}, gotArgs)

	_, err = repo.ListReports(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Equal(t, []any{20}, gotArgs)
}

func TestListReports_QueryError(t *testing.T) {
	q := &mockQuerier{
		queryFn: func(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
			return nil, fmt.Errorf("db down")
		},
	}

	repo := storage.NewRepositoryWithQuerier(q)
	_, err := repo.ListReports(context.Background(), "Ocean City", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "querying reports")
}

func TestListReports_ScanError(t *testing.T) {
	rows := &fakeRows{rows: [][]byte{nil}, scanErr: fmt.Errorf("bad column")}
	q := &mockQuerier{
		queryFn: func(_ context.Context, _ string, _ ...any) (pgx.Rows, error) { return rows, nil },
	}

	repo := storage.NewRepositoryWithQuerier(q)
	_, err := repo.ListReports(context.Background(), "", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scanning")
}

func TestListReports_RowsErr(t *testing.T) {
	rows := &fakeRows{rowErr: fmt.Errorf("rows iteration error")}
	q := &mockQuerier{
		queryFn: func(_ context.Context, _ string, _ ...any) (pgx.Rows, error) { return rows, nil },
	}

	repo := storage.NewRepositoryWithQuerier(q)
	_, err := repo.ListReports(context.Background(), "", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iterating")
}

func TestListReports_BadJSON(t *testing.T) {
	rows := &fakeRows{rows: [][]byte{[]byte("not-json")}}
	q := &mockQuerier{
		queryFn: func(_ context.Context, _ string, _ ...any) (pgx.Rows, error) { return rows, nil },
	}

	repo := storage.NewRepositoryWithQuerier(q)
	_, err := repo.ListReports(context.Background(), "", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshaling")
}

// ---- NewRepository ----

func TestNewRepository_NotNil(t *testing.T) {
	repo := storage.NewRepository(nil)
	assert.NotNil(t, repo)
}

// ---- RunMigrations tests ----

func TestRunMigrations_MissingDir(t *testing.T) {
	_, err := storage.RunMigrations(context.Background(), nil, "/nonexistent/dir")
	require.Error(t, err)
}

func TestRunMigrations_EmptyDir(t *testing.T) {
	applied, err := storage.RunMigrations(context.Background(), nil, t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestRunMigrations_Success(t *testing.T) {
	dir := t.TempDir()
	writeSQLFile(t, dir, "001_test.sql", "SELECT 1;")

	var bodies []string
	tx := migrationTx(nil, &bodies)
	pool := &mockMigrationPool{
		beginFn: func(_ context.Context) (pgx.Tx, error) { return tx, nil },
	}

	applied, err := storage.RunMigrations(context.Background(), pool, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_test.sql"}, applied)
	assert.Equal(t, []string{"SELECT 1;"}, bodies)
}

func TestRunMigrations_SkipsAppliedVersions(t *testing.T) {
	dir := t.TempDir()
	writeSQLFile(t, dir, "001_a.sql", "SELECT 1;")
	writeSQLFile(t, dir, "002_b.sql", "SELECT 2;")

	var bodies []string
	tx := migrationTx(map[string]bool{"001_a.sql": true}, &bodies)
	pool := &mockMigrationPool{
		beginFn: func(_ context.Context) (pgx.Tx, error) { return tx, nil },
	}

	applied, err := storage.RunMigrations(context.Background(), pool, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"002_b.sql"}, applied)
	assert.Equal(t, []string{"SELECT 2;"}, bodies)
}

func TestRunMigrations_BeginError(t *testing.T) {
	dir := t.TempDir()
	writeSQLFile(t, dir, "001_test.sql", "SELECT 1;")

	pool := &mockMigrationPool{
		beginFn: func(_ context.Context) (pgx.Tx, error) { return nil, fmt.Errorf("cannot begin") },
	}

	_, err := storage.RunMigrations(context.Background(), pool, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema_migrations")
}

func TestRunMigrations_ExecErrorRollsBack(t *testing.T) {
	dir := t.TempDir()
	writeSQLFile(t, dir, "001_test.sql", "INVALID SQL;")

	rolledBack := false
	var bodies []string
	tx := migrationTx(nil, &bodies)
	inner := tx.execFn
	tx.execFn = func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
		if sql == "INVALID SQL;" {
			return pgconn.CommandTag{}, fmt.Errorf("syntax error")
		}
		return inner(ctx, sql, args...)
	}
	tx.rollbackFn = func(_ context.Context) error {
		rolledBack = true
		return nil
	}
	pool := &mockMigrationPool{
		beginFn: func(_ context.Context) (pgx.Tx, error) { return tx, nil },
	}

	_, err := storage.RunMigrations(context.Background(), pool, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executing migration 001_test.sql")
	assert.True(t, rolledBack)
}

func TestRunMigrations_CommitError(t *testing.T) {
	dir := t.TempDir()
	writeSQLFile(t, dir, "001_test.sql", "SELECT 1;")

	var bodies []string
	tx := migrationTx(nil, &bodies)
	tx.commitFn = func(_ context.Context) error { return fmt.Errorf("commit failed") }
	pool := &mockMigrationPool{
		beginFn: func(_ context.Context) (pgx.Tx, error) { return tx, nil },
	}

	_, err := storage.RunMigrations(context.Background(), pool, dir)
	require.Error(t, err)
}

func TestRunMigrations_SortsFilesLexicographically(t *testing.T) {
	dir := t.TempDir()
	writeSQLFile(t, dir, "003_c.sql", "SELECT 3;")
	writeSQLFile(t, dir, "001_a.sql", "SELECT 1;")
	writeSQLFile(t, dir, "002_b.sql", "SELECT 2;")
	writeSQLFile(t, dir, "README.md", "not a migration")

	var bodies []string
	tx := migrationTx(nil, &bodies)
	pool := &mockMigrationPool{
		beginFn: func(_ context.Context) (pgx.Tx, error) { return tx, nil },
	}

	applied, err := storage.RunMigrations(context.Background(), pool, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "002_b.sql", "003_c.sql"}, applied)
	assert.Equal(t, []string{"SELECT 1;", "SELECT 2;", "SELECT 3;"}, bodies)
}

func TestRunMigrations_RepositoryMigrations(t *testing.T) {
	var bodies []string
	tx := migrationTx(nil, &bodies)
	pool := &mockMigrationPool{
		beginFn: func(_ context.Context) (pgx.Tx, error) { return tx, nil },
	}

	applied, err := storage.RunMigrations(context.Background(), pool, filepath.Join("..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, applied)
	assert.Contains(t, bodies[0], "CREATE TABLE IF NOT EXISTS trip_reports")
}

// ---- Connect tests ----

func TestConnect_BadURL(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := storage.Connect(ctx, "postgres://invalid-host-xyz:5432/db?sslmode=disable")
	require.Error(t, err)
}

func TestConnect_UnparseableURL(t *testing.T) {
	_, err := storage.Connect(context.Background(), "://nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing database url")
}
