package database

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"testing/fstest"

	"socialfeed/internal/config"
	"socialfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestDialector(t *testing.T) {
	d, err := Dialector(&config.Config{DBDriver: DriverPostgres, DBHost: "db", DBPort: "5432"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = Dialector(&config.Config{DBDriver: DriverSQLite, DBSQLitePath: ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	_, err = Dialector(&config.Config{DBDriver: "mysql"})
	assert.Error(t, err)
}

func TestConnect_SQLite(t *testing.T) {
	cfg := &config.Config{DBDriver: DriverSQLite, DBSQLitePath: ":memory:", DBSchemaMode: SchemaModeHybrid, Env: "test"}
	db, err := Connect(cfg)
	require.NoError(t, err)
	defer func() { _ = Close(db) }()

	require.NoError(t, Ping(context.Background(), db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)

	require.NoError(t, ApplySchema(context.Background(), db, cfg))
	for _, table := range []string{"users", "posts", "likes_dislikes", "comments"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		runSQL  bool
		runAuto bool
		wantErr bool
	}{
		{"hybrid dev postgres", config.Config{DBDriver: DriverPostgres, DBSchemaMode: "hybrid", Env: "development"}, true, true, false},
		{"hybrid prod postgres", config.Config{DBDriver: DriverPostgres, DBSchemaMode: "hybrid", Env: "production"}, true, false, false},
		{"default mode", config.Config{DBDriver: DriverPostgres, Env: "development"}, true, true, false},
		{"sql only", config.Config{DBDriver: DriverPostgres, DBSchemaMode: "sql", Env: "production"}, true, false, false},
		{"auto refused in prod", config.Config{DBDriver: DriverPostgres, DBSchemaMode: "auto", Env: "production"}, false, false, true},
		{"auto allowed in prod", config.Config{DBDriver: DriverPostgres, DBSchemaMode: "auto", Env: "production", DBAutoMigrateAllowDestructive: true}, false, true, false},
		{"sqlite hybrid", config.Config{DBDriver: DriverSQLite, DBSchemaMode: "hybrid", Env: "production"}, false, true, false},
		{"sqlite sql", config.Config{DBDriver: DriverSQLite, DBSchemaMode: "sql"}, false, false, true},
		{"unknown", config.Config{DBDriver: DriverPostgres, DBSchemaMode: "yolo"}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.runSQL, runSQL)
			assert.Equal(t, tt.runAuto, runAuto)
		})
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)
	assert.Equal(t, 1, all[0].Version)
	assert.Equal(t, "init", all[0].Name)
	assert.Equal(t, "000001_init", all[0].String())

	up := all[0].UpScript
	for _, table := range []string{"users", "posts", "likes_dislikes", "comments"} {
		assert.Contains(t, up, "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, up, "PRIMARY KEY (user_id, post_id)")
	assert.Contains(t, all[0].DownScript, "DROP TABLE IF EXISTS likes_dislikes")

	assert.NotNil(t, GetMigrationByVersion(1))
	assert.Nil(t, GetMigrationByVersion(999))
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"m/000002_second.up.sql":   {Data: []byte("CREATE TABLE b (id INTEGER)")},
		"m/000002_second.down.sql": {Data: []byte("DROP TABLE b")},
		"m/000001_first.up.sql":    {Data: []byte("CREATE TABLE a (id INTEGER)")},
		"m/000001_first.down.sql":  {Data: []byte("DROP TABLE a")},
		"m/README.md":              {Data: []byte("ignored")},
		"m/bad.up.sql":             {Data: []byte("ignored")},
	}

	got, err := LoadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Version)
	assert.Equal(t, "second", got[1].Name)

	delete(fsys, "m/000002_second.down.sql")
	_, err = LoadMigrations(fsys, "m")
	assert.Error(t, err)
}

func TestRunMigrations_SQLite(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	registered := []Migration{
		{Version: 1, Name: "first", UpScript: "CREATE TABLE a (id INTEGER)", DownScript: "DROP TABLE a"},
		{Version: 2, Name: "second", UpScript: "CREATE TABLE b (id INTEGER)", DownScript: "DROP TABLE b"},
	}

	require.NoError(t, runMigrations(ctx, db, registered))
	assert.True(t, db.Migrator().HasTable("a"))
	assert.True(t, db.Migrator().HasTable("b"))

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, applied)

	// Idempotent.
	require.NoError(t, runMigrations(ctx, db, registered))

	require.NoError(t, rollbackMigration(ctx, db, registered, 2))
	assert.False(t, db.Migrator().HasTable("b"))
	applied, err = NewMigrationStore(db).GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, applied)

	assert.Error(t, rollbackMigration(ctx, db, registered, 2))
	assert.Error(t, rollbackMigration(ctx, db, registered, 42))
}

func TestRunMigrations_FailedScriptIsNotRecorded(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	err := runMigrations(ctx, db, []Migration{{Version: 1, Name: "broken", UpScript: "CREATE TABLE"}})
	require.Error(t, err)

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}}
	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, registered))

	err := validateAppliedVersions([]int{1, 7, 5}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000005, 000007")
}

func TestGetAppliedMigrations_MissingTable(t *testing.T) {
	db := openSQLite(t)
	applied, err := NewMigrationStore(db).GetAppliedMigrations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestGetSchemaStatus(t *testing.T) {
	db := openSQLite(t)

	status, err := GetSchemaStatus(context.Background(), db, &config.Config{DBDriver: DriverSQLite, Env: "test"})
	require.NoError(t, err)
	assert.False(t, status.WillRunSQL)
	assert.True(t, status.WillRunAutoMigrate)
	assert.Equal(t, SchemaModeHybrid, status.Mode)

	// The log table is portable, so pending SQL migrations can be listed
	// without touching the postgres-only scripts.
	status, err = GetSchemaStatus(context.Background(), db, &config.Config{DBDriver: DriverPostgres, DBSchemaMode: "sql", Env: "test"})
	require.NoError(t, err)
	assert.True(t, status.WillRunSQL)
	assert.Len(t, status.PendingMigrations, len(GetMigrations()))
}

func TestApplySchema_ReactionPrimaryKey(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, ApplySchema(context.Background(), db, &config.Config{DBDriver: DriverSQLite, Env: "test"}))

	user := models.User{Username: "alice", Email: "alice@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	post := models.Post{UserID: user.ID, Postname: "t", Content: "b"}
	require.NoError(t, db.Create(&post).Error)

	require.NoError(t, db.Create(&models.Reaction{UserID: user.ID, PostID: post.ID, Action: models.ReactionLike}).Error)
	err := db.Create(&models.Reaction{UserID: user.ID, PostID: post.ID, Action: models.ReactionDislike}).Error
	require.Error(t, err)
	assert.True(t, strings.Contains(strings.ToLower(err.Error()), "unique"))
}

func TestCustomGormLogger_LogMode(t *testing.T) {
	var buf strings.Builder
	l := NewGormLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	silent := l.LogMode(logger.Silent)
	silent.Error(context.Background(), "should not appear %d", 1)
	assert.Empty(t, buf.String())

	l.Warn(context.Background(), "slow %s", "thing")
	assert.Contains(t, buf.String(), "slow thing")
	assert.Equal(t, logger.Warn, l.Config.LogLevel)
}
