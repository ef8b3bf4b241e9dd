// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library keeps imported templates and a log of generated
// documents in a SQLite database. Documents themselves are never stored;
// only their id, name and size are recorded.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/sowgen/internal/export"
	"github.com/pdiddy/sowgen/internal/schema"
	"github.com/pdiddy/sowgen/pkg/types"
)

const (
	dbFile     = "sowgen.db"
	defaultDir = ".sowgen"
)

// ErrNotFound is returned when a template id is not in the library.
var ErrNotFound = errors.New("template not found")

// Entry is a stored template with its catalogue metadata.
type Entry struct {
	export.Template `yaml:",inline"`
	Fields          int       `json:"fields" yaml:"fields"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at"`
}

// ExportRecord describes one generated document.
type ExportRecord struct {
	ID         string             `json:"id" yaml:"id"`
	TemplateID string             `json:"template_id" yaml:"template_id"`
	Format     types.OutputFormat `json:"format" yaml:"format"`
	Filename   string             `json:"filename" yaml:"filename"`
	Size       int64              `json:"size" yaml:"size"`
	CreatedAt  time.Time          `json:"created_at" yaml:"created_at"`
}

// Store manages the library database.
type Store struct {
	db  *sql.DB
	dir string
	now func() time.Time
}

// NewStore opens or creates the library database at cfg.Dir/sowgen.db and
// creates the schema if it does not exist.
func NewStore(cfg types.LibraryConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = defaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating library directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: dir, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Dir returns the directory holding the database.
func (s *Store) Dir() string { return s.dir }

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS templates (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			transcript TEXT NOT NULL,
			source BLOB,
			schema_yaml TEXT NOT NULL,
			fields INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS exports (
			id TEXT PRIMARY KEY,
			template_id TEXT NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
			format TEXT NOT NULL,
			filename TEXT NOT NULL,
			size INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exports_template_id ON exports(template_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Add stores tpl, replacing any template with the same id. The schema is
// rebuilt from the transcript and stored alongside it.
func (s *Store) Add(ctx context.Context, tpl export.Template) (Entry, error) {
	if tpl.ID == "" {
		return Entry{}, errors.New("template id is empty")
	}
	sch := tpl.Schema()
	data, err := yaml.Marshal(sch)
	if err != nil {
		return Entry{}, fmt.Errorf("marshaling schema: %w", err)
	}

	entry := Entry{
		Template:  tpl,
		Fields:    len(schema.Flatten(sch)),
		CreatedAt: s.now().UTC().Truncate(time.Second),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO templates (id, title, transcript, source, schema_yaml, fields, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, transcript=excluded.transcript, source=excluded.source,
			schema_yaml=excluded.schema_yaml, fields=excluded.fields, created_at=excluded.created_at`,
		tpl.ID, tpl.Title, tpl.Transcript, tpl.Source, string(data), entry.Fields,
		entry.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("storing template %s: %w", tpl.ID, err)
	}
	return entry, nil
}

// Get returns the template with the given id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	var (
		e       Entry
		source  []byte
		created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, transcript, source, fields, created_at FROM templates WHERE id = ?`, id,
	).Scan(&e.ID, &e.Title, &e.Transcript, &source, &e.Fields, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("reading template %s: %w", id, err)
	}
	e.Source = source
	e.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return e, nil
}

// Schema returns the stored schema of a template.
func (s *Store) Schema(ctx context.Context, id string) (types.Schema, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT schema_yaml FROM templates WHERE id = ?`, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Schema{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return types.Schema{}, fmt.Errorf("reading schema %s: %w", id, err)
	}
	var sch types.Schema
	if err := yaml.Unmarshal([]byte(data), &sch); err != nil {
		return types.Schema{}, fmt.Errorf("parsing schema %s: %w", id, err)
	}
	return sch, nil
}

// List returns every template ordered by id. Transcripts and sources are
// not loaded.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, fields, created_at FROM templates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			created string
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Fields, &created); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes a template and its export records.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting template %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// RecordExport logs a generated document against its template.
func (s *Store) RecordExport(ctx context.Context, templateID string, doc types.GeneratedDocument) (ExportRecord, error) {
	rec := ExportRecord{
		ID:         doc.ID,
		TemplateID: templateID,
		Format:     doc.Format,
		Filename:   doc.Filename,
		Size:       int64(len(doc.Data)),
		CreatedAt:  s.now().UTC().Truncate(time.Second),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exports (id, template_id, format, filename, size, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.TemplateID, string(rec.Format), rec.Filename, rec.Size,
		rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return ExportRecord{}, fmt.Errorf("recording export %s: %w", doc.Filename, err)
	}
	return rec, nil
}

// Exports returns the export log for a template, oldest first. An empty
// templateID returns the log for every template.
func (s *Store) Exports(ctx context.Context, templateID string) ([]ExportRecord, error) {
	query := `SELECT id, template_id, format, filename, size, created_at FROM exports`
	var args []any
	if templateID != "" {
		query += ` WHERE template_id = ?`
		args = append(args, templateID)
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing exports: %w", err)
	}
	defer rows.Close()

	var recs []ExportRecord
	for rows.Next() {
		var (
			r       ExportRecord
			format  string
			created string
		)
		if err := rows.Scan(&r.ID, &r.TemplateID, &format, &r.Filename, &r.Size, &created); err != nil {
			return nil, fmt.Errorf("scanning export: %w", err)
		}
		r.Format = types.OutputFormat(format)
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		recs = append(recs, r)
	}
	return recs, rows.Err()
}
