package repository

import (
	"CommentWall/internal/models"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
	"go.uber.org/zap"
	"os"
	"path/filepath"
	"time"
)

type Repository struct {
	db  *dbpg.DB
	log *zap.Logger
}

const (
	createQuery = `INSERT INTO comments (content,user_name,profile_image,created_at) VALUES ($1,$2,$3,$4)
		RETURNING id,content,user_name,profile_image,created_at`
	getQuery  = `SELECT id,content,user_name,profile_image,created_at FROM comments WHERE id = $1`
	listQuery = `SELECT id,content,user_name,profile_image,created_at FROM comments ORDER BY created_at DESC, id DESC LIMIT $1`
	pingQuery = `SELECT 1`
)

var ErrNotFound = errors.New("comment not found")

var (
	retryStrategy = retry.Strategy{
		Attempts: 5,
		Delay:    time.Millisecond,
		Backoff:  2,
	}
)

func NewRepository(masterDSN string, slaveDSNs []string, log *zap.Logger) (*Repository, error) {
	opts := dbpg.Options{
		MaxOpenConns: 10,
		MaxIdleConns: 5,
	}
	db, err := dbpg.New(masterDSN, slaveDSNs, &opts)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("Starting database migrations")

	if err := runMigrations(masterDSN); err != nil {
		log.Error("Failed to run migrations", zap.Error(err))
		return nil, fmt.Errorf("failed to run migration: %w", err)
	}
	log.Info("Successfully migrated database")

	return &Repository{db: db, log: log.Named("repository")}, nil
}

func (r *Repository) Create(ctx context.Context, c models.Comment) (*models.Comment, error) {
	var profileImage sql.NullString
	if c.ProfileImage != nil {
		profileImage = sql.NullString{String: *c.ProfileImage, Valid: true}
	}

	row, err := r.db.QueryRowWithRetry(ctx, retryStrategy, createQuery, c.Content, c.UserName, profileImage, c.CreatedAt)
	if err != nil {
		r.log.Error("Failed to create comment in DB", zap.Error(err))
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	created, err := scanComment(row)
	if err != nil {
		r.log.Error("Failed to scan created comment", zap.Error(err))
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return created, nil
}

// Get returns one comment by id, or ErrNotFound.
func (r *Repository) Get(ctx context.Context, id int64) (*models.Comment, error) {
	row, err := r.db.QueryRowWithRetry(ctx, retryStrategy, getQuery, id)
	if err != nil {
		r.log.Error("Failed to get comment", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	comment, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		r.log.Error("Failed to scan comment", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return comment, nil
}

func (r *Repository) List(ctx context.Context, limit int) ([]*models.Comment, error) {
	rows, err := r.db.QueryWithRetry(ctx, retryStrategy, listQuery, limit)
	if err != nil {
		r.log.Error("Failed to list comments", zap.Int("limit", limit), zap.Error(err))
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0, limit)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			r.log.Error("Failed to scan comment", zap.Error(err))
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		r.log.Error("Failed to iterate comments", zap.Error(err))
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	row, err := r.db.QueryRowWithRetry(ctx, retryStrategy, pingQuery)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	var one int
	if err := row.Scan(&one); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanComment(s scanner) (*models.Comment, error) {
	var (
		c            models.Comment
		profileImage sql.NullString
	)
	if err := s.Scan(&c.ID, &c.Content, &c.UserName, &profileImage, &c.CreatedAt); err != nil {
		return nil, err
	}
	if profileImage.Valid {
		c.ProfileImage = &profileImage.String
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

func runMigrations(connStr string) error {
	migratePath := os.Getenv("MIGRATE_PATH")
	if migratePath == "" {
		migratePath = "./migrations"
	}
	absPath, err := filepath.Abs(migratePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	absPath = filepath.ToSlash(absPath)
	migrateUrl := fmt.Sprintf("file://%s", absPath)
	m, err := migrate.New(migrateUrl, connStr)
	if err != nil {
		return fmt.Errorf("start migrations error %v", err)
	}
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("migration up error: %v", err)
	}
	return nil
}
