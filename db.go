package main

import (
	"database/sql"
	"strings"
	"sync"
	"time"
)

// DB interface for database operations
type DB interface {
	Init() error
	// User operations
	CreateUser(name, email, passwordHash string) (*User, error)
	GetUserByEmail(email string) (*User, error)
	GetUserByID(id int64) (*User, error)
	ListUsers() ([]*User, error)
	BootstrapAdmin(name, email, passwordHash string) error
	// Favorite operations
	AddFavorite(userID, movieID int64, title string, poster *string, rating *float64, year *string) error
	RemoveFavorite(userID, movieID int64) error
	ListFavorites(userID int64) ([]*Favorite, error)
	IsFavorited(userID, movieID int64) (bool, error)
}

// Memory DB
type MemDB struct {
	mu        sync.Mutex
	users     []*User
	favorites map[int64][]*Favorite
	userSeq   int64
	favSeq    int64
}

func NewMemoryDB() *MemDB {
	return &MemDB{favorites: map[int64][]*Favorite{}, userSeq: 1, favSeq: 1}
}

func (m *MemDB) Init() error { return nil }

func (m *MemDB) CreateUser(name, email, passwordHash string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return nil, ErrDuplicateEmail
		}
	}
	u := &User{ID: m.userSeq, Name: name, Email: email, Password: passwordHash, CreatedAt: time.Now()}
	m.userSeq++
	m.users = append(m.users, u)
	return u, nil
}

func (m *MemDB) GetUserByEmail(email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *MemDB) GetUserByID(id int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *MemDB) ListUsers() ([]*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// newest first
	out := make([]*User, 0, len(m.users))
	for i := len(m.users) - 1; i >= 0; i-- {
		out = append(out, m.users[i])
	}
	return out, nil
}

func (m *MemDB) BootstrapAdmin(name, email, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return nil
		}
	}
	u := &User{ID: m.userSeq, Name: name, Email: email, Password: passwordHash, IsAdmin: true, CreatedAt: time.Now()}
	m.userSeq++
	m.users = append(m.users, u)
	return nil
}

func (m *MemDB) AddFavorite(userID, movieID int64, title string, poster *string, rating *float64, year *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.favorites[userID] {
		if f.MovieID == movieID {
			return ErrAlreadyFavorited
		}
	}
	f := &Favorite{
		ID:          m.favSeq,
		UserID:      userID,
		MovieID:     movieID,
		MovieTitle:  title,
		MoviePoster: poster,
		MovieRating: rating,
		MovieYear:   year,
		CreatedAt:   time.Now(),
	}
	m.favSeq++
	m.favorites[userID] = append(m.favorites[userID], f)
	return nil
}

func (m *MemDB) RemoveFavorite(userID, movieID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	favs := m.favorites[userID]
	for i, f := range favs {
		if f.MovieID == movieID {
			m.favorites[userID] = append(favs[:i], favs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *MemDB) ListFavorites(userID int64) ([]*Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	favs := m.favorites[userID]
	// newest first
	out := make([]*Favorite, 0, len(favs))
	for i := len(favs) - 1; i >= 0; i-- {
		out = append(out, favs[i])
	}
	return out, nil
}

func (m *MemDB) IsFavorited(userID, movieID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.favorites[userID] {
		if f.MovieID == movieID {
			return true, nil
		}
	}
	return false, nil
}

// SQLite DB
type SQLiteDB struct {
	db   *sql.DB
	path string
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Single connection keeps the foreign_keys pragma in effect and avoids
	// write-lock contention.
	d.SetMaxOpenConns(1)
	if _, err := d.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		d.Close()
		return nil, err
	}
	s := &SQLiteDB{db: d, path: path}
	if err := s.Init(); err != nil {
		d.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteDB) Init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			is_admin INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT (datetime('now')));`,
		`CREATE TABLE IF NOT EXISTS favorites (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			movie_id INTEGER NOT NULL,
			movie_title TEXT,
			movie_poster TEXT,
			movie_rating REAL,
			movie_year TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			UNIQUE(user_id, movie_id));`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

const sqliteTimeLayout = "2006-01-02 15:04:05"

func (s *SQLiteDB) CreateUser(name, email, passwordHash string) (*User, error) {
	res, err := s.db.Exec(`INSERT INTO users(name,email,password) VALUES(?,?,?)`, name, email, passwordHash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	id, _ := res.LastInsertId()
	return &User{ID: id, Name: name, Email: email, Password: passwordHash, CreatedAt: time.Now().UTC()}, nil
}

func (s *SQLiteDB) scanUser(row *sql.Row) (*User, error) {
	var u User
	var isAdmin int
	var created string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &isAdmin, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	u.IsAdmin = isAdmin != 0
	u.CreatedAt, _ = time.Parse(sqliteTimeLayout, created)
	return &u, nil
}

func (s *SQLiteDB) GetUserByEmail(email string) (*User, error) {
	return s.scanUser(s.db.QueryRow(`SELECT id,name,email,password,is_admin,created_at FROM users WHERE email = ?`, email))
}

func (s *SQLiteDB) GetUserByID(id int64) (*User, error) {
	return s.scanUser(s.db.QueryRow(`SELECT id,name,email,password,is_admin,created_at FROM users WHERE id = ?`, id))
}

func (s *SQLiteDB) ListUsers() ([]*User, error) {
	rows, err := s.db.Query(`SELECT id,name,email,password,is_admin,created_at FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []*User
	for rows.Next() {
		var u User
		var isAdmin int
		var created string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &isAdmin, &created); err != nil {
			return nil, err
		}
		u.IsAdmin = isAdmin != 0
		u.CreatedAt, _ = time.Parse(sqliteTimeLayout, created)
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (s *SQLiteDB) BootstrapAdmin(name, email, passwordHash string) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO users(name,email,password,is_admin) VALUES(?,?,?,1)`, name, email, passwordHash)
	return err
}

func (s *SQLiteDB) AddFavorite(userID, movieID int64, title string, poster *string, rating *float64, year *string) error {
	_, err := s.db.Exec(`INSERT INTO favorites(user_id,movie_id,movie_title,movie_poster,movie_rating,movie_year) VALUES(?,?,?,?,?,?)`,
		userID, movieID, title, poster, rating, year)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrAlreadyFavorited
	}
	return err
}

func (s *SQLiteDB) RemoveFavorite(userID, movieID int64) error {
	_, err := s.db.Exec(`DELETE FROM favorites WHERE user_id = ? AND movie_id = ?`, userID, movieID)
	return err
}

func (s *SQLiteDB) ListFavorites(userID int64) ([]*Favorite, error) {
	rows, err := s.db.Query(`SELECT id,user_id,movie_id,movie_title,movie_poster,movie_rating,movie_year,created_at
		FROM favorites WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var favs []*Favorite
	for rows.Next() {
		var f Favorite
		var poster, year sql.NullString
		var rating sql.NullFloat64
		var created string
		if err := rows.Scan(&f.ID, &f.UserID, &f.MovieID, &f.MovieTitle, &poster, &rating, &year, &created); err != nil {
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
		f.CreatedAt, _ = time.Parse(sqliteTimeLayout, created)
		favs = append(favs, &f)
	}
	return favs, rows.Err()
}

func (s *SQLiteDB) IsFavorited(userID, movieID int64) (bool, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM favorites WHERE user_id = ? AND movie_id = ?`, userID, movieID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// lifecycle helpers
func (m *MemDB) close() error { return nil }
func (m *MemDB) ping() bool   { return true }

func (s *SQLiteDB) close() error { return s.db.Close() }
func (s *SQLiteDB) ping() bool   { return s.db.Ping() == nil }
