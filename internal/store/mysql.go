package store

import (
	"context"
	"database/sql"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MySQLStore persists documents in a single `documents` table keyed by
// (collection, doc_key). The key column is VARBINARY so the database
// compares keys bytewise, giving Scan the same ordering as Go string
// comparison and the in-memory backend.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore returns a MySQLStore bound to the given database.
func NewMySQLStore(db *sql.DB) *MySQLStore { return &MySQLStore{db: db} }

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (errno 1062) from violating the primary key.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// Get implements Store.
func (s *MySQLStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	const q = `SELECT body FROM documents WHERE collection = ? AND doc_key = ?`
	var body []byte
	err := s.db.QueryRowContext(ctx, q, collection, key).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get document")
	}
	return body, nil
}

// Set implements Store.
func (s *MySQLStore) Set(ctx context.Context, collection, key string, doc []byte) error {
	const q = `INSERT INTO documents (collection, doc_key, body) VALUES (?, ?, ?)
	           ON DUPLICATE KEY UPDATE body = VALUES(body)`
	_, err := s.db.ExecContext(ctx, q, collection, key, doc)
	return errors.Wrap(err, "set document")
}

// Create implements Store. The primary key on (collection, doc_key)
// makes the insert the atomic claim: the losing writer of a race gets
// ErrKeyExists.
func (s *MySQLStore) Create(ctx context.Context, collection, key string, doc []byte) error {
	const q = `INSERT INTO documents (collection, doc_key, body) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, collection, key, doc)
	if isDuplicateKey(err) {
		return ErrKeyExists
	}
	return errors.Wrap(err, "create document")
}

// Exists implements Store.
func (s *MySQLStore) Exists(ctx context.Context, collection, key string) (bool, error) {
	const q = `SELECT 1 FROM documents WHERE collection = ? AND doc_key = ? LIMIT 1`
	var one int
	err := s.db.QueryRowContext(ctx, q, collection, key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "check document")
	}
	return true, nil
}

// Delete implements Store.
func (s *MySQLStore) Delete(ctx context.Context, collection, key string) error {
	const q = `DELETE FROM documents WHERE collection = ? AND doc_key = ?`
	_, err := s.db.ExecContext(ctx, q, collection, key)
	return errors.Wrap(err, "delete document")
}

// Add implements Store. Keys are random UUIDs; the insert is retried
// on the (practically unreachable) collision.
func (s *MySQLStore) Add(ctx context.Context, collection string, doc []byte) (string, error) {
	for {
		key := uuid.NewString()
		err := s.Create(ctx, collection, key, doc)
		if errors.Is(err, ErrKeyExists) {
			continue
		}
		if err != nil {
			return "", err
		}
		return key, nil
	}
}

// Scan implements Store.
func (s *MySQLStore) Scan(ctx context.Context, collection, start, stop string) ([]KeyedDoc, error) {
	const q = `SELECT doc_key, body FROM documents
	           WHERE collection = ? AND doc_key >= ? AND doc_key < ?
	           ORDER BY doc_key`
	rows, err := s.db.QueryContext(ctx, q, collection, start, stop)
	if err != nil {
		return nil, errors.Wrap(err, "scan documents")
	}
	defer rows.Close()
	var out []KeyedDoc
	for rows.Next() {
		var kd KeyedDoc
		if err := rows.Scan(&kd.Key, &kd.Doc); err != nil {
			return nil, errors.Wrap(err, "scan row")
		}
		out = append(out, kd)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "scan documents")
	}
	return out, nil
}

// Apply implements Store. All ops run inside one transaction; a
// duplicate key hit by an OpCreate rolls the whole batch back.
func (s *MySQLStore) Apply(ctx context.Context, ops []Op) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin batch")
	}
	for _, op := range ops {
		switch op.Kind {
		case OpDelete:
			_, err = tx.ExecContext(ctx,
				`DELETE FROM documents WHERE collection = ? AND doc_key = ?`,
				op.Collection, op.Key)
		case OpCreate:
			_, err = tx.ExecContext(ctx,
				`INSERT INTO documents (collection, doc_key, body) VALUES (?, ?, ?)`,
				op.Collection, op.Key, op.Doc)
			if isDuplicateKey(err) {
				_ = tx.Rollback()
				return ErrKeyExists
			}
		default:
			_, err = tx.ExecContext(ctx,
				`INSERT INTO documents (collection, doc_key, body) VALUES (?, ?, ?)
				 ON DUPLICATE KEY UPDATE body = VALUES(body)`,
				op.Collection, op.Key, op.Doc)
		}
		if err != nil {
			_ = tx.Rollback()
			return errors.Wrap(err, "apply batch")
		}
	}
	return errors.Wrap(tx.Commit(), "commit batch")
}
