package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// collectionRow is one stored collection.
type collectionRow struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Payload   []byte    `gorm:"column:payload;type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (collectionRow) TableName() string { return "collections" }

type postgresService struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

// NewPostgres connects to dsn through the pgx driver, applies the embedded
// migrations and returns the Service.
func NewPostgres(ctx context.Context, dsn string) (Service, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DB_STRING environment variable not set")
	}

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := RunMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	return &postgresService{db: gormDB, sqlDB: sqlDB}, nil
}

func (s *postgresService) Load(ctx context.Context, key string) ([]byte, error) {
	var row collectionRow
	err := s.db.WithContext(ctx).First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, wrapPgError(err))
	}
	return row.Payload, nil
}

func (s *postgresService) Save(ctx context.Context, key string, payload []byte) error {
	row := collectionRow{Key: key, Payload: payload, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save %s: %w", key, wrapPgError(err))
	}
	return nil
}

func (s *postgresService) Clear(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&collectionRow{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("clear %s: %w", key, wrapPgError(err))
	}
	return nil
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (s *postgresService) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := map[string]string{"driver": DriverPostgres}

	if err := s.sqlDB.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := s.sqlDB.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()

	if dbStats.OpenConnections > 8 {
		stats["message"] = "The database is experiencing heavy load."
	}
	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}

	return stats
}

func (s *postgresService) Close() error {
	return s.sqlDB.Close()
}

// wrapPgError adds the SQLSTATE code to postgres errors.
func wrapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("postgres %s: %w", pgErr.Code, err)
	}
	return err
}
