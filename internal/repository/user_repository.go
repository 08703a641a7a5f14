package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jrosariodev/cultural-center-api/internal/model"
	"github.com/jrosariodev/cultural-center-api/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id,name,email,password_hash,phone,age,location,is_admin,deleted,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Age,
		&u.Location, &u.IsAdmin, &u.Deleted, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// Create inserts a user and returns its ID. Emails are normalized to
// lowercase so the unique index also covers case variants.
func (r *UserRepo) Create(ctx context.Context, name, email, password, phone string, age int, location string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, phone, age, location) VALUES (?,?,?,?,?,?)",
		name, email, hash, phone, age, location)
	if err != nil {
		// 1062 = MySQL duplicate entry, here only possible on the email index
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, storeErr("insert user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a non-deleted user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? AND deleted=0 LIMIT 1", email))
}

// GetByID fetches a non-deleted user by id. Soft-deleted accounts are
// indistinguishable from missing ones.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? AND deleted=0 LIMIT 1", id))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns a page of non-deleted users, newest first, plus the
// total count for pagination headers.
func (r *UserRepo) List(ctx context.Context, offset, limit int) ([]model.User, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE deleted=0").Scan(&total); err != nil {
		return nil, 0, storeErr("count users", err)
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userCols+" FROM users WHERE deleted=0 ORDER BY created_at DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, 0, storeErr("list users", err)
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Age,
			&u.Location, &u.IsAdmin, &u.Deleted, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// UpdateProfile changes the fields a user may edit about themselves.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, name, phone string, age int, location string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, phone=?, age=?, location=?, updated_at=NOW() WHERE id=? AND deleted=0",
		name, phone, age, location, id)
	if err != nil {
		return storeErr("update profile", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetAdmin flips the admin flag. Admin-only.
func (r *UserRepo) SetAdmin(ctx context.Context, id uint64, isAdmin bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_admin=?, updated_at=NOW() WHERE id=? AND deleted=0", isAdmin, id)
	if err != nil {
		return storeErr("set admin", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SoftDelete marks the user deleted. Rows are never physically removed
// so reservation history and the audit log keep their references.
func (r *UserRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET deleted=1, updated_at=NOW() WHERE id=? AND deleted=0", id)
	if err != nil {
		return storeErr("soft delete user", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
