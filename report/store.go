package report

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// ErrReportNotFound indicates the requested report doesn't exist
var ErrReportNotFound = errors.New("report not found")

// Store keeps reports in a sqlite database. The row holds the CBOR encoded
// report next to the columns used for queries.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// Open opens or creates the store at dbPath. ":memory:" gives a private
// in-memory store.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// An in-memory database lives as long as its connection.
	db.SetMaxOpenConns(1)

	_, err = db.Exec("PRAGMA busy_timeout = 5000")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		price INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		data BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save persists a report and returns its id.
func (s *Store) Save(r Report) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := MarshalReport(r)
	if err != nil {
		return 0, fmt.Errorf("encoding report: %w", err)
	}

	res, err := s.db.Exec(
		"INSERT INTO reports (name, price, created_at, data) VALUES (?, ?, ?, ?)",
		r.Name, r.Price, r.CreatedAt.Unix(), data,
	)
	if err != nil {
		return 0, fmt.Errorf("saving report: %w", err)
	}

	return res.LastInsertId()
}

// Get retrieves a report by id.
func (s *Store) Get(id int64) (Report, error) {
	var data []byte
	err := s.db.QueryRow("SELECT data FROM reports WHERE id = ?", id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Report{}, ErrReportNotFound
		}
		return Report{}, fmt.Errorf("querying report: %w", err)
	}

	r, err := UnmarshalReport(data)
	if err != nil {
		return Report{}, err
	}
	r.ID = id

	return r, nil
}

// List returns the reports of a program in insertion order. An empty name
// lists every report.
func (s *Store) List(name string) ([]Report, error) {
	query := "SELECT id, data FROM reports ORDER BY id"
	args := []any{}
	if name != "" {
		query = "SELECT id, data FROM reports WHERE name = ? ORDER BY id"
		args = append(args, name)
	}

	return s.query(query, args...)
}

// Best returns the cheapest successful report of a program.
func (s *Store) Best(name string) (Report, error) {
	reports, err := s.query(
		"SELECT id, data FROM reports WHERE name = ? ORDER BY price, id",
		name,
	)
	if err != nil {
		return Report{}, err
	}

	for _, r := range reports {
		if r.OK() {
			return r, nil
		}
	}

	return Report{}, ErrReportNotFound
}

func (s *Store) query(query string, args ...any) ([]Report, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var (
			id   int64
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}

		r, err := UnmarshalReport(data)
		if err != nil {
			return nil, err
		}
		r.ID = id

		reports = append(reports, r)
	}

	return reports, rows.Err()
}
