package store

import (
	"database/sql"
)

type PgMessageStore struct {
	conn *sql.DB
}

func NewPgMessageStore(dsn string) (*PgMessageStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PgMessageStore{conn: db}, nil
}

func (s *PgMessageStore) Ping() error {
	return s.conn.Ping()
}

func (s *PgMessageStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
