// Package database stores accounts and generated worksheets in SQLite.
package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"golang.org/x/crypto/bcrypt"

	"marith/internal/models"
	"marith/internal/task"
	"marith/internal/worksheet"
)

var (
	ErrUserExists = errors.New("user already exists")
	ErrNotFound   = errors.New("not found")
)

// timeLayout has a fixed width so that created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps the database handle.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (creating if needed) the database at path and its tables.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer at a time for SQLite
	db.SetMaxOpenConns(1)

	s := &Store{db: db, log: logger}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			login TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS worksheets (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			config TEXT NOT NULL,
			tasks TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create worksheets table: %w", err)
	}
	return nil
}

// CreateUser stores a new account with a bcrypt password hash.
func (s *Store) CreateUser(login, password string) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM users WHERE login = ?", login).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to check user: %w", err)
	}
	if count > 0 {
		return 0, fmt.Errorf("%w: %s", ErrUserExists, login)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	result, err := s.db.Exec("INSERT INTO users (login, password) VALUES (?, ?)", login, string(hashedPassword))
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get user id: %w", err)
	}

	s.log.Info("user created", "id", id, "login", login)
	return int(id), nil
}

// GetUser returns ErrNotFound when login is unknown.
func (s *Store) GetUser(login string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRow("SELECT id, login, password FROM users WHERE login = ?", login).
		Scan(&user.ID, &user.Login, &user.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// CheckPasswordHash compares a password with its bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// SaveWorksheet stores ws for userID.
func (s *Store) SaveWorksheet(ws *worksheet.Worksheet, userID int) error {
	cfg, err := json.Marshal(ws.Config)
	if err != nil {
		return fmt.Errorf("failed to encode worksheet config: %w", err)
	}
	tasks, err := json.Marshal(ws.Tasks)
	if err != nil {
		return fmt.Errorf("failed to encode worksheet tasks: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT INTO worksheets (id, user_id, config, tasks, created_at) VALUES (?, ?, ?, ?, ?)",
		ws.ID, userID, string(cfg), string(tasks), ws.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save worksheet: %w", err)
	}

	s.log.Debug("worksheet saved", "id", ws.ID, "user_id", userID, "tasks", len(ws.Tasks))
	return nil
}

// GetWorksheet returns ErrNotFound when the worksheet does not exist or
// belongs to another user.
func (s *Store) GetWorksheet(id string, userID int) (*worksheet.Worksheet, error) {
	row := s.db.QueryRow(
		"SELECT id, config, tasks, created_at FROM worksheets WHERE id = ? AND user_id = ?",
		id, userID,
	)
	ws, err := scanWorksheet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get worksheet: %w", err)
	}
	return ws, nil
}

// ListWorksheets returns the user's worksheets, newest first.
func (s *Store) ListWorksheets(userID int) ([]worksheet.Worksheet, error) {
	rows, err := s.db.Query(
		"SELECT id, config, tasks, created_at FROM worksheets WHERE user_id = ? ORDER BY created_at DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list worksheets: %w", err)
	}
	defer rows.Close()

	worksheets := []worksheet.Worksheet{}
	for rows.Next() {
		ws, err := scanWorksheet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read worksheet: %w", err)
		}
		worksheets = append(worksheets, *ws)
	}
	return worksheets, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWorksheet(sc scanner) (*worksheet.Worksheet, error) {
	var (
		ws                  worksheet.Worksheet
		cfg, tasks, created string
	)
	if err := sc.Scan(&ws.ID, &cfg, &tasks, &created); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(cfg), &ws.Config); err != nil {
		return nil, fmt.Errorf("bad worksheet config: %w", err)
	}
	ws.Tasks = []task.ArithmeticTask{}
	if err := json.Unmarshal([]byte(tasks), &ws.Tasks); err != nil {
		return nil, fmt.Errorf("bad worksheet tasks: %w", err)
	}

	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return nil, fmt.Errorf("bad worksheet time: %w", err)
	}
	ws.CreatedAt = t
	return &ws, nil
}
