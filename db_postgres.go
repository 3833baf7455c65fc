package main

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

type PostgresDB struct {
	db  *sql.DB
	dsn string
}

func NewPostgresDB(dsn string) (*PostgresDB, error) {
	d, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	p := &PostgresDB{db: d, dsn: dsn}
	if err := p.Init(); err != nil {
		d.Close()
		return nil, err
	}
	return p, nil
}

func (p *PostgresDB) Init() error {
	// rely on migrations to create tables; just verify connectivity
	return p.db.Ping()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

func (p *PostgresDB) CreateUser(name, email, passwordHash string) (*User, error) {
	u := &User{Name: name, Email: email, Password: passwordHash}
	err := p.db.QueryRow(
		`INSERT INTO users(name,email,password) VALUES($1,$2,$3) RETURNING id, is_admin, created_at`,
		name, email, passwordHash,
	).Scan(&u.ID, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return u, nil
}

func (p *PostgresDB) scanUser(row *sql.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.IsAdmin, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (p *PostgresDB) GetUserByEmail(email string) (*User, error) {
	return p.scanUser(p.db.QueryRow(`SELECT id,name,email,password,is_admin,created_at FROM users WHERE email = $1`, email))
}

func (p *PostgresDB) GetUserByID(id int64) (*User, error) {
	return p.scanUser(p.db.QueryRow(`SELECT id,name,email,password,is_admin,created_at FROM users WHERE id = $1`, id))
}

func (p *PostgresDB) ListUsers() ([]*User, error) {
	rows, err := p.db.Query(`SELECT id,name,email,password,is_admin,created_at FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []*User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

// BootstrapAdmin inserts the well-known admin record; a no-op when the
// email is already present.
func (p *PostgresDB) BootstrapAdmin(name, email, passwordHash string) error {
	_, err := p.db.Exec(
		`INSERT INTO users(name,email,password,is_admin) VALUES($1,$2,$3,true) ON CONFLICT (email) DO NOTHING`,
		name, email, passwordHash,
	)
	return err
}

func (p *PostgresDB) AddFavorite(userID, movieID int64, title string, poster *string, rating *float64, year *string) error {
	_, err := p.db.Exec(
		`INSERT INTO favorites(user_id,movie_id,movie_title,movie_poster,movie_rating,movie_year) VALUES($1,$2,$3,$4,$5,$6)`,
		userID, movieID, title, poster, rating, year,
	)
	if err != nil && isUniqueViolation(err) {
		return ErrAlreadyFavorited
	}
	return err
}

func (p *PostgresDB) RemoveFavorite(userID, movieID int64) error {
	_, err := p.db.Exec(`DELETE FROM favorites WHERE user_id = $1 AND movie_id = $2`, userID, movieID)
	return err
}

func (p *PostgresDB) ListFavorites(userID int64) ([]*Favorite, error) {
	rows, err := p.db.Query(`SELECT id,user_id,movie_id,movie_title,movie_poster,movie_rating,movie_year,created_at
		FROM favorites WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var favs []*Favorite
	for rows.Next() {
		var f Favorite
		var poster, year sql.NullString
		var rating sql.NullFloat64
		if err := rows.Scan(&f.ID, &f.UserID, &f.MovieID, &f.MovieTitle, &poster, &rating, &year, &f.CreatedAt); err != nil {
			return nil, err
		}
		if poster.Valid {
			f.MoviePoster = &poster.String
		}
		if rating.Valid {
			f.MovieRating = &rating.Float64
		}
		if year.Valid {
			f.MovieYear = &year.String
		}
		favs = append(favs, &f)
	}
	return favs, rows.Err()
}

func (p *PostgresDB) IsFavorited(userID, movieID int64) (bool, error) {
	var id int64
	err := p.db.QueryRow(`SELECT id FROM favorites WHERE user_id = $1 AND movie_id = $2`, userID, movieID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *PostgresDB) close() error { return p.db.Close() }
func (p *PostgresDB) ping() bool   { return p.db.Ping() == nil }
