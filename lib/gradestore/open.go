package gradestore

import (
	"gradewatch/lib/configutil/sqldb"
	"gradewatch/lib/gradestore/db"
	"io"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open picks the sql backend when a database is configured and the file
// backend otherwise. The returned closer releases the database.
func Open(dir string, database sqldb.Struct) (Store, io.Closer, error) {
	if database.IsZero() {
		store, err := NewFileStore(dir)
		if err != nil {
			return nil, nil, err
		}
		return store, nopCloser{}, nil
	}

	sqlite, err := database.OpenDB(db.Schema)
	if err != nil {
		return nil, nil, err
	}
	return NewSQLStore(sqlite), sqlite, nil
}
