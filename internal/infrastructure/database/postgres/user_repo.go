package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/devilmonastery/jobfinder/internal/domain/entities"
	"github.com/devilmonastery/jobfinder/internal/domain/repositories"
	"github.com/devilmonastery/jobfinder/internal/pkg/idgen"
	"github.com/devilmonastery/jobfinder/internal/pkg/metrics"
)

// UserRepository implements the UserRepository interface for PostgreSQL
type UserRepository struct {
	db  *sqlx.DB
	log *slog.Logger
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) repositories.UserRepository {
	return &UserRepository{
		db:  db,
		log: slog.Default().With(slog.String("repo", "user")),
	}
}

// userRow represents a user as stored in the database
type userRow struct {
	ID           string         `db:"id"`
	Email        string         `db:"email"`
	PasswordHash sql.NullString `db:"password_hash"`
	Role         string         `db:"role"`
	Disabled     bool           `db:"disabled"` // database stores 'disabled', not 'is_active'
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    sql.NullTime   `db:"last_seen"` // database column is 'last_seen'
}

const userColumns = `id, email, password_hash, role, disabled, created_at, updated_at, last_seen`

// toEntity converts a userRow to a domain entity
func (r *userRow) toEntity() *entities.User {
	user := &entities.User{
		ID:        r.ID,
		Email:     r.Email,
		Role:      entities.Role(r.Role),
		IsActive:  !r.Disabled,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.PasswordHash.Valid {
		user.PasswordHash = &r.PasswordHash.String
	}
	if r.LastLogin.Valid {
		user.LastLogin = &r.LastLogin.Time
	}
	return user
}

// userRowFromEntity converts a domain entity to a userRow
func userRowFromEntity(user *entities.User) *userRow {
	row := &userRow{
		ID:        user.ID,
		Email:     strings.ToLower(strings.TrimSpace(user.Email)),
		Role:      string(user.Role),
		Disabled:  !user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	if user.PasswordHash != nil {
		row.PasswordHash = sql.NullString{String: *user.PasswordHash, Valid: true}
	}
	if user.LastLogin != nil {
		row.LastLogin = sql.NullTime{Time: *user.LastLogin, Valid: true}
	}
	return row
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("user", "create", time.Since(start), 1, err)
	}()

	if user.ID == "" {
		user.ID = idgen.GenerateID()
	}
	if user.Role == "" {
		user.Role = entities.RoleUser
	}

	r.log.Debug("creating user",
		slog.String("id", user.ID),
		slog.String("role", string(user.Role)))

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	// Password must already be hashed by the caller
	row := userRowFromEntity(user)

	query := `INSERT INTO users (
			id, email, password_hash, role, disabled, created_at, updated_at, last_seen
		) VALUES (
			:id, :email, :password_hash, :role, :disabled, :created_at, :updated_at, :last_seen
		)`

	_, err = r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		if isUniqueViolation(err) {
			err = repositories.ErrDuplicateEmail
			return err
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	start := time.Now()
	var err error
	var rowCount int64
	defer func() {
		metrics.RecordDBOperation("user", "get_by_id", time.Since(start), rowCount, err)
	}()

	var row userRow
	err = r.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = repositories.ErrUserNotFound
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if row.Disabled {
		err = repositories.ErrUserInactive
		return nil, err
	}

	rowCount = 1
	return row.toEntity(), nil
}

// GetByEmail retrieves a user by their email address (case-insensitive)
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	start := time.Now()
	var err error
	var rowCount int64
	defer func() {
		metrics.RecordDBOperation("user", "get_by_email", time.Since(start), rowCount, err)
	}()

	var row userRow
	err = r.db.GetContext(ctx, &row,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`,
		strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = repositories.ErrUserNotFound
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	if row.Disabled {
		err = repositories.ErrUserInactive
		return nil, err
	}

	rowCount = 1
	return row.toEntity(), nil
}

// Update an existing user
func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	start := time.Now()
	var err error
	var rowsAffected int64
	defer func() {
		metrics.RecordDBOperation("user", "update", time.Since(start), rowsAffected, err)
	}()

	r.log.Debug("updating user", slog.String("id", user.ID))

	user.UpdatedAt = time.Now()
	row := userRowFromEntity(user)

	query := `
		UPDATE users SET 
			email = :email,
			password_hash = :password_hash,
			role = :role,
			disabled = :disabled,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		if isUniqueViolation(err) {
			err = repositories.ErrDuplicateEmail
			return err
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		err = repositories.ErrUserNotFound
		return err
	}

	return nil
}

// List users with pagination and optional filtering
func (r *UserRepository) List(ctx context.Context, opts repositories.ListUsersOptions) ([]*entities.User, int64, error) {
	start := time.Now()
	var err error
	var rowCount int64
	defer func() {
		metrics.RecordDBOperation("user", "list", time.Since(start), rowCount, err)
	}()

	var conditions []string
	var args []interface{}
	paramIndex := 1 // PostgreSQL uses $1, $2, etc.

	if opts.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", paramIndex))
		args = append(args, string(*opts.Role))
		paramIndex++
	}

	if opts.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("disabled = $%d", paramIndex))
		args = append(args, !*opts.IsActive)
		paramIndex++
	}

	if opts.Search != "" {
		conditions = append(conditions, fmt.Sprintf("email ILIKE $%d", paramIndex))
		args = append(args, "%"+opts.Search+"%")
		paramIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	err = r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM users "+whereClause, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	query := fmt.Sprintf("SELECT %s FROM users %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		userColumns, whereClause, paramIndex, paramIndex+1)
	args = append(args, limit, opts.Offset)

	var rows []userRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*entities.User, len(rows))
	for i := range rows {
		users[i] = rows[i].toEntity()
	}
	rowCount = int64(len(users))
	return users, total, nil
}

// UpdateLastLogin updates the user's last login timestamp
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID string, loginTime time.Time) error {
	start := time.Now()
	var err error
	var rowsAffected int64
	defer func() {
		metrics.RecordDBOperation("user", "update_last_login", time.Since(start), rowsAffected, err)
	}()

	result, err := r.db.ExecContext(ctx, `UPDATE users SET last_seen = $1 WHERE id = $2`, loginTime, userID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	rowsAffected, _ = result.RowsAffected()
	return nil
}

// ExistsByEmail checks if a user exists by email
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("user", "exists_by_email", time.Since(start), -1, err)
	}()

	var exists bool
	err = r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`,
		strings.TrimSpace(email))
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}
