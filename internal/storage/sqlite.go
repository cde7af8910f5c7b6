package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aulaplan/internal/planning"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS curricula (
			id TEXT PRIMARY KEY,
			filename TEXT,
			sha256 TEXT UNIQUE,
			pdf BLOB,
			analysis JSON,
			created_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			curriculum_id TEXT REFERENCES curricula(id),
			doc_type TEXT,
			title TEXT,
			language TEXT,
			context JSON,
			markdown TEXT,
			created_at INTEGER,
			updated_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS revisions (
			id TEXT PRIMARY KEY,
			document_id TEXT REFERENCES documents(id) ON DELETE CASCADE,
			seq INTEGER,
			source TEXT,
			markdown TEXT,
			created_at INTEGER,
			UNIQUE (document_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_revisions_doc ON revisions(document_id, seq);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func millis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// --- CurriculumStore ---

func (s *SQLiteStore) SaveCurriculum(ctx context.Context, filename string, pdf []byte) (*Curriculum, bool, error) {
	sum := sha256.Sum256(pdf)
	hash := hex.EncodeToString(sum[:])

	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM curricula WHERE sha256 = ?`, hash).Scan(&id)
	switch {
	case err == nil:
		c, err := s.GetCurriculum(ctx, id)
		return c, false, err
	case !errors.Is(err, sql.ErrNoRows):
		return nil, false, err
	}

	c := &Curriculum{
		ID:        uuid.NewString(),
		Filename:  filename,
		SHA256:    hash,
		PDF:       pdf,
		CreatedAt: s.now().UTC(),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO curricula (id, filename, sha256, pdf, analysis, created_at)
		VALUES (?, ?, ?, ?, NULL, ?)
	`, c.ID, c.Filename, c.SHA256, c.PDF, millis(c.CreatedAt))
	if err != nil {
		return nil, false, err
	}
	c.CreatedAt = fromMillis(millis(c.CreatedAt))
	return c, true, nil
}

func (s *SQLiteStore) SetAnalysis(ctx context.Context, id string, a planning.CurriculumAnalysis) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE curricula SET analysis = ? WHERE id = ?`, string(raw), id)
	if err != nil {
		return err
	}
	return requireRow(res, "curriculum", id)
}

func (s *SQLiteStore) GetCurriculum(ctx context.Context, id string) (*Curriculum, error) {
	var (
		c        Curriculum
		analysis sql.NullString
		created  int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, filename, sha256, pdf, analysis, created_at FROM curricula WHERE id = ?
	`, id).Scan(&c.ID, &c.Filename, &c.SHA256, &c.PDF, &analysis, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("curriculum %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	c.CreatedAt = fromMillis(created)
	if analysis.Valid && analysis.String != "" {
		var a planning.CurriculumAnalysis
		if err := json.Unmarshal([]byte(analysis.String), &a); err != nil {
			return nil, fmt.Errorf("decode analysis of curriculum %s: %w", id, err)
		}
		c.Analysis = &a
	}
	return &c, nil
}

// --- DocumentStore ---

func (s *SQLiteStore) CreateDocument(ctx context.Context, doc *Document, source RevisionSource) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := fromMillis(millis(s.now()))
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	tc, err := json.Marshal(doc.Context)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, curriculum_id, doc_type, title, language, context, markdown, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, nullable(doc.CurriculumID), string(doc.DocType), doc.Title, doc.Language, string(tc), doc.Markdown,
		millis(doc.CreatedAt), millis(doc.UpdatedAt))
	if err != nil {
		return err
	}
	if _, err := insertRevision(ctx, tx, doc.ID, 1, source, doc.Markdown, now); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, curriculum_id, doc_type, title, language, context, markdown, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return doc, err
}

func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, curriculum_id, doc_type, title, language, context, markdown, created_at, updated_at
		FROM documents ORDER BY updated_at DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveMarkdown(ctx context.Context, id, markdown string, source RevisionSource) (*Revision, error) {
	now := fromMillis(millis(s.now()))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE documents SET markdown = ?, updated_at = ? WHERE id = ?`, markdown, millis(now), id)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res, "document", id); err != nil {
		return nil, err
	}

	var last int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM revisions WHERE document_id = ?`, id).Scan(&last); err != nil {
		return nil, err
	}
	rev, err := insertRevision(ctx, tx, id, last+1, source, markdown, now)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return rev, nil
}

// ListRevisions returns the history without markdown bodies, oldest first.
func (s *SQLiteStore) ListRevisions(ctx context.Context, documentID string) ([]Revision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, seq, source, created_at FROM revisions
		WHERE document_id = ? ORDER BY seq
	`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Revision
	for rows.Next() {
		var (
			r       Revision
			source  string
			created int64
		)
		if err := rows.Scan(&r.ID, &r.DocumentID, &r.Seq, &source, &created); err != nil {
			return nil, err
		}
		r.Source = RevisionSource(source)
		r.CreatedAt = fromMillis(created)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetRevision(ctx context.Context, documentID string, seq int) (*Revision, error) {
	var (
		r       Revision
		source  string
		created int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, seq, source, markdown, created_at FROM revisions
		WHERE document_id = ? AND seq = ?
	`, documentID, seq).Scan(&r.ID, &r.DocumentID, &r.Seq, &source, &r.Markdown, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("revision %d of document %s: %w", seq, documentID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	r.Source = RevisionSource(source)
	r.CreatedAt = fromMillis(created)
	return &r, nil
}

// --- helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var (
		doc              Document
		curriculumID     sql.NullString
		docType, tc      string
		created, updated int64
	)
	if err := row.Scan(&doc.ID, &curriculumID, &docType, &doc.Title, &doc.Language, &tc, &doc.Markdown, &created, &updated); err != nil {
		return nil, err
	}
	doc.CurriculumID = curriculumID.String
	doc.DocType = planning.DocType(docType)
	if tc != "" {
		if err := json.Unmarshal([]byte(tc), &doc.Context); err != nil {
			return nil, fmt.Errorf("decode context of document %s: %w", doc.ID, err)
		}
	}
	doc.CreatedAt = fromMillis(created)
	doc.UpdatedAt = fromMillis(updated)
	return &doc, nil
}

func insertRevision(ctx context.Context, tx *sql.Tx, documentID string, seq int, source RevisionSource, markdown string, at time.Time) (*Revision, error) {
	r := &Revision{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		Seq:        seq,
		Source:     source,
		Markdown:   markdown,
		CreatedAt:  at,
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO revisions (id, document_id, seq, source, markdown, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.DocumentID, r.Seq, string(r.Source), r.Markdown, millis(at))
	if err != nil {
		return nil, err
	}
	return r, nil
}

func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
