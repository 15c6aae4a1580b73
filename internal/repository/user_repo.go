package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"user-api/internal/domain"
)

// ErrDuplicateEmail indica que el correo ya existe en la base de datos.
// La restricción UNIQUE de la tabla es la garantía definitiva de unicidad;
// cualquier chequeo previo es solo una optimización.
var ErrDuplicateEmail = errors.New("duplicate email")

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	// Create persiste el usuario asignando id y timestamps, y devuelve el
	// registro persistido. Devuelve ErrDuplicateEmail si el correo ya existe.
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.Created = now
	user.Modified = now
	user.LastLogin = now

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.User{}, err
	}
	defer tx.Rollback(ctx)

	const insertUser = `
		INSERT INTO users (id, name, email, password_hash, token, created, modified, last_login, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.Exec(ctx, insertUser,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Token,
		user.Created,
		user.Modified,
		user.LastLogin,
		user.IsActive,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, ErrDuplicateEmail
		}
		return domain.User{}, err
	}

	const insertPhone = `
		INSERT INTO phones (user_id, number, citycode, contrycode)
		VALUES ($1, $2, $3, $4)
	`
	for _, phone := range user.Phones {
		if _, err := tx.Exec(ctx, insertPhone, user.ID, phone.Number, phone.CityCode, phone.CountryCode); err != nil {
			return domain.User{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `
		SELECT id, name, email, password_hash, token, created, modified, last_login, is_active
		FROM users
		WHERE email = $1
	`
	return r.getOne(ctx, query, email)
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `
		SELECT id, name, email, password_hash, token, created, modified, last_login, is_active
		FROM users
		WHERE id = $1
	`
	return r.getOne(ctx, query, id)
}

func (r *PgUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PgUserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	const query = `
		UPDATE users
		SET name = $2, token = $3, modified = $4, last_login = $5, is_active = $6
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Token,
		user.Modified,
		user.LastLogin,
		user.IsActive,
	)
	if err != nil {
		return domain.User{}, err
	}
	if tag.RowsAffected() == 0 {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (r *PgUserRepository) getOne(ctx context.Context, query string, arg any) (domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Token,
		&u.Created,
		&u.Modified,
		&u.LastLogin,
		&u.IsActive,
	)
	if err != nil {
		return domain.User{}, err
	}

	phones, err := r.phonesByUser(ctx, u.ID)
	if err != nil {
		return domain.User{}, err
	}
	u.Phones = phones
	return u, nil
}

func (r *PgUserRepository) phonesByUser(ctx context.Context, userID string) ([]domain.Phone, error) {
	const query = `
		SELECT number, citycode, contrycode
		FROM phones
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	phones := []domain.Phone{}
	for rows.Next() {
		var p domain.Phone
		if err := rows.Scan(&p.Number, &p.CityCode, &p.CountryCode); err != nil {
			return nil, err
		}
		phones = append(phones, p)
	}
	return phones, rows.Err()
}

// isUniqueViolation detecta el código 23505 (unique_violation) de Postgres.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
