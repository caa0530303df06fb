package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tawaslapp/tawasl/core/user"
)

type userRow struct {
	ID                  int         `db:"id"`
	Username            string      `db:"username"`
	Email               string      `db:"email"`
	PasswordHash        []byte      `db:"password_hash"`
	Verified            bool        `db:"verified"`
	IsAdmin             bool        `db:"is_admin"`
	VerificationCode    null.String `db:"verification_code"`
	VerificationExpires null.Time   `db:"verification_expires"`
	CreatedAt           time.Time   `db:"created_at"`
	UpdatedAt           time.Time   `db:"updated_at"`
}

func (r userRow) user() user.User {
	return user.User{
		ID:                  r.ID,
		Username:            r.Username,
		Email:               r.Email,
		PasswordHash:        r.PasswordHash,
		Verified:            r.Verified,
		IsAdmin:             r.IsAdmin,
		VerificationCode:    r.VerificationCode.String,
		VerificationExpires: r.VerificationExpires.Time,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func newUserRow(usr user.User) userRow {
	return userRow{
		ID:                  usr.ID,
		Username:            usr.Username,
		Email:               usr.Email,
		PasswordHash:        usr.PasswordHash,
		Verified:            usr.Verified,
		IsAdmin:             usr.IsAdmin,
		VerificationCode:    null.NewString(usr.VerificationCode, usr.VerificationCode != ""),
		VerificationExpires: null.NewTime(usr.VerificationExpires.UTC(), !usr.VerificationExpires.IsZero()),
		CreatedAt:           usr.CreatedAt.UTC(),
		UpdatedAt:           usr.UpdatedAt.UTC(),
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	excludedIDs := make([]int, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		excludedIDs = append(excludedIDs, usr.ID)
	}
	if len(excludedIDs) == 0 {
		excludedIDs = append(excludedIDs, 0) // sqlx.In rejects empty lists
	}

	check := func(column, value string) (bool, error) {
		query, args, err := sqlx.In(
			"SELECT EXISTS (SELECT 1 FROM users WHERE "+column+" = ? AND id NOT IN (?))", value, excludedIDs)
		if err != nil {
			return false, err
		}
		var exists bool
		err = repo.db.GetContext(ctx, &exists, repo.db.Rebind(query), args...)
		return exists, err
	}

	exists, err := check("username", username)
	if err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}
	if exists {
		return user.ErrUsernameExists
	}

	exists, err = check("email", email)
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := newUserRow(usr)
	query := `
		INSERT INTO users (username, email, password_hash, verified, is_admin, verification_code, verification_expires, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		row.Username, row.Email, row.PasswordHash, row.Verified, row.IsAdmin,
		row.VerificationCode, row.VerificationExpires, row.CreatedAt, row.UpdatedAt,
	).Scan(&row.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return row.user(), nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var row userRow
	var err error

	switch {
	case filter.ID != 0:
		err = repo.db.GetContext(ctx, &row, "SELECT * FROM users WHERE id = $1", filter.ID)
	case filter.Email != "":
		err = repo.db.GetContext(ctx, &row, "SELECT * FROM users WHERE email = $1", filter.Email)
	case filter.UsernameOrEmail != "":
		err = repo.db.GetContext(ctx, &row,
			"SELECT * FROM users WHERE username = $1 OR email = $1", filter.UsernameOrEmail)
	default:
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user")
	}
	return row.user(), nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT * FROM users ORDER BY id"); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.user())
	}
	return users, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := newUserRow(usr)
	query := `
		UPDATE users
		SET username = $2, email = $3, password_hash = $4, verified = $5, is_admin = $6,
			verification_code = $7, verification_expires = $8, updated_at = $9
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query,
		row.ID, row.Username, row.Email, row.PasswordHash, row.Verified, row.IsAdmin,
		row.VerificationCode, row.VerificationExpires, row.UpdatedAt,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return row.user(), nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM users WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "deleting users")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
