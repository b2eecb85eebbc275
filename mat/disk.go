package mat

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	tableMatrix = "m"
	tableShape  = "shape"
)

// DiskStore keeps named matrices in an sqlite database.
// Only nonzero entries are stored.
type DiskStore struct {
	Path string

	db *sql.DB
}

func NewDiskStore(dbPath string) (*DiskStore, error) {
	s := &DiskStore{Path: dbPath}
	var err error
	s.db, err = newDB(s.Path)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return s, nil
}

func (s *DiskStore) Close() error {
	return s.db.Close()
}

// Save stores a under name, replacing any matrix previously saved under it.
func (s *DiskStore) Save(ctx context.Context, name string, a mat.Matrix) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err := save(ctx, tx, name, a); err != nil {
		tx.Rollback()
		return errors.Wrap(err, name)
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func save(ctx context.Context, tx *sql.Tx, name string, a mat.Matrix) error {
	if err := deleteName(ctx, tx, name); err != nil {
		return errors.Wrap(err, "")
	}

	rows, cols := a.Dims()
	sqlStr := fmt.Sprintf(`INSERT INTO %s (name, nrows, ncols) VALUES (?, ?, ?)`, tableShape)
	if _, err := tx.ExecContext(ctx, sqlStr, name, rows, cols); err != nil {
		return errors.Wrap(err, "")
	}

	sqlStr = fmt.Sprintf(`INSERT INTO %s (name, i, j, v) VALUES (?, ?, ?, ?)`, tableMatrix)
	stmt, err := tx.PrepareContext(ctx, sqlStr)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer stmt.Close()
	for i := range rows {
		for j := range cols {
			v := a.At(i, j)
			if v == 0 {
				continue
			}
			if _, err := stmt.ExecContext(ctx, name, i, j, v); err != nil {
				return errors.Wrap(err, fmt.Sprintf("%s %d %d", sqlStr, i, j))
			}
		}
	}
	return nil
}

// Load returns the matrix saved under name, or sql.ErrNoRows.
func (s *DiskStore) Load(ctx context.Context, name string) (*mat.Dense, error) {
	var rows, cols int
	sqlStr := fmt.Sprintf(`SELECT nrows, ncols FROM %s WHERE name=?`, tableShape)
	if err := s.db.QueryRowContext(ctx, sqlStr, name).Scan(&rows, &cols); err != nil {
		return nil, errors.Wrap(err, name)
	}
	a := mat.NewDense(rows, cols, nil)

	sqlStr = fmt.Sprintf(`SELECT i, j, v FROM %s WHERE name=? ORDER BY i, j`, tableMatrix)
	rs, err := s.db.QueryContext(ctx, sqlStr, name)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rs.Close()
	for rs.Next() {
		var i, j int
		var v float64
		if err := rs.Scan(&i, &j, &v); err != nil {
			return nil, errors.Wrap(err, "")
		}
		a.Set(i, j, v)
	}
	if err := rs.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return a, nil
}

// NumNonZero returns the number of stored entries of name.
func (s *DiskStore) NumNonZero(ctx context.Context, name string) (int, error) {
	sqlStr := fmt.Sprintf("SELECT count(1) FROM %s WHERE name=?", tableMatrix)
	var n int
	if err := s.db.QueryRowContext(ctx, sqlStr, name).Scan(&n); err != nil {
		return -1, errors.Wrap(err, "")
	}
	return n, nil
}

// Names returns the saved matrix names in order.
func (s *DiskStore) Names(ctx context.Context) ([]string, error) {
	sqlStr := fmt.Sprintf(`SELECT name FROM %s ORDER BY name`, tableShape)
	rs, err := s.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rs.Close()
	names := make([]string, 0)
	for rs.Next() {
		var name string
		if err := rs.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "")
		}
		names = append(names, name)
	}
	if err := rs.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return names, nil
}

func deleteName(ctx context.Context, tx *sql.Tx, name string) error {
	for _, table := range []string{tableMatrix, tableShape} {
		sqlStr := fmt.Sprintf(`DELETE FROM %s WHERE name=?`, table)
		if _, err := tx.ExecContext(ctx, sqlStr, name); err != nil {
			return errors.Wrap(err, "")
		}
	}
	return nil
}

func newDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	if err := prepareDB(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "")
	}

	return db, nil
}

func prepareDB(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (name TEXT, nrows INTEGER, ncols INTEGER, PRIMARY KEY (name)) STRICT`, tableShape),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (name TEXT, i INTEGER, j INTEGER, v REAL, PRIMARY KEY (name, i, j)) STRICT`, tableMatrix),
	}
	for _, sqlStr := range stmts {
		if _, err := db.ExecContext(ctx, sqlStr); err != nil {
			return errors.Wrap(err, sqlStr)
		}
	}
	return nil
}
