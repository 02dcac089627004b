// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the paper library in SQLite: papers, annotations,
// done entries, and embedding records. It is the single owner of the schema;
// search components consume it through narrow interfaces.
package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paperstack/pkg/types"
)

const defaultDBName = "paperstack.db"

// Store manages the library SQLite database.
type Store struct {
	db      *sql.DB
	dataDir string
}

// NewStore opens or creates the library database at dataDir/dbName and
// creates the schema if it does not exist. Foreign keys are enforced so
// annotations, done entries, and embeddings cascade with their paper.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".paperstack")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbName := cfg.DBName
	if dbName == "" {
		dbName = defaultDBName
	}

	dbPath := filepath.Join(dataDir, dbName)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dataDir: dataDir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DataDir returns the base directory holding the database and PDF blobs.
func (s *Store) DataDir() string {
	return s.dataDir
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			url TEXT NOT NULL,
			title TEXT NOT NULL,
			authors TEXT,
			abstract TEXT,
			doi TEXT,
			arxiv_id TEXT,
			bibtex TEXT,
			tags TEXT,
			description TEXT,
			status TEXT NOT NULL DEFAULT 'reading',
			pdf_path TEXT,
			added_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_doi ON papers(doi)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_arxiv_id ON papers(arxiv_id)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_status ON papers(status)`,
		`CREATE TABLE IF NOT EXISTS annotations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			paper_id INTEGER NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
			page INTEGER NOT NULL,
			type TEXT NOT NULL,
			content TEXT,
			selection_text TEXT,
			position TEXT,
			color TEXT NOT NULL DEFAULT '#ffeb3b',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_annotations_paper_id ON annotations(paper_id)`,
		`CREATE TABLE IF NOT EXISTS done_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			paper_id INTEGER NOT NULL UNIQUE REFERENCES papers(id) ON DELETE CASCADE,
			concepts TEXT,
			compressed_summary TEXT,
			key_contributions TEXT,
			completed_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS embeddings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			paper_id INTEGER NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
			content_type TEXT NOT NULL,
			vector BLOB NOT NULL,
			source_text TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_embeddings_paper_id ON embeddings(paper_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// --- papers ---

// AddPaper inserts a new paper in reading status and returns it with its
// assigned ID and timestamps set.
func (s *Store) AddPaper(ctx context.Context, p *types.Paper) (*types.Paper, error) {
	now := time.Now().UTC()
	if p.Status == "" {
		p.Status = types.StatusReading
	}
	p.AddedAt = now
	p.UpdatedAt = now

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO papers (url, title, authors, abstract, doi, arxiv_id, bibtex, tags, description, status, pdf_path, added_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.URL, p.Title, p.Authors, p.Abstract, p.DOI, p.ArxivID, p.BibTeX,
		marshalList(p.Tags), p.Description, string(p.Status), p.PDFPath,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting paper: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading paper id: %w", err)
	}
	return p, nil
}

// GetPaper returns the paper with the given ID, or nil when absent.
func (s *Store) GetPaper(ctx context.Context, id int64) (*types.Paper, error) {
	return s.getPaperWhere(ctx, "id = ?", id)
}

// GetPaperByURL returns the paper added from url, or nil when absent.
func (s *Store) GetPaperByURL(ctx context.Context, url string) (*types.Paper, error) {
	return s.getPaperWhere(ctx, "url = ?", url)
}

// GetPaperByArxivID returns the paper with the given arXiv ID, or nil when absent.
func (s *Store) GetPaperByArxivID(ctx context.Context, arxivID string) (*types.Paper, error) {
	return s.getPaperWhere(ctx, "arxiv_id = ?", arxivID)
}

// GetPaperByDOI returns the paper with the given DOI, or nil when absent.
func (s *Store) GetPaperByDOI(ctx context.Context, doi string) (*types.Paper, error) {
	return s.getPaperWhere(ctx, "doi = ?", doi)
}

const paperColumns = `id, url, title, authors, abstract, doi, arxiv_id, bibtex, tags, description, status, pdf_path, added_at, updated_at`

func (s *Store) getPaperWhere(ctx context.Context, where string, arg any) (*types.Paper, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+paperColumns+` FROM papers WHERE `+where+` LIMIT 1`, arg)
	p, err := scanPaper(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying paper: %w", err)
	}
	return p, nil
}

// ListPapers returns papers ordered by recency, optionally filtered by status.
// An empty status returns everything.
func (s *Store) ListPapers(ctx context.Context, status types.PaperStatus) ([]types.Paper, error) {
	query := `SELECT ` + paperColumns + ` FROM papers`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY added_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	var papers []types.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		papers = append(papers, *p)
	}
	return papers, rows.Err()
}

// ListReading returns papers in reading status.
func (s *Store) ListReading(ctx context.Context) ([]types.Paper, error) {
	return s.ListPapers(ctx, types.StatusReading)
}

// ListDone returns completed papers.
func (s *Store) ListDone(ctx context.Context) ([]types.Paper, error) {
	return s.ListPapers(ctx, types.StatusDone)
}

// UpdatePaper applies the non-nil fields of upd to the paper and returns
// the updated record. Returns nil when the paper does not exist.
func (s *Store) UpdatePaper(ctx context.Context, id int64, upd types.PaperUpdate) (*types.Paper, error) {
	set := "updated_at = ?"
	args := []any{time.Now().UTC().Format(time.RFC3339)}

	appendField := func(col string, v any) {
		set += ", " + col + " = ?"
		args = append(args, v)
	}

	if upd.Title != nil {
		appendField("title", *upd.Title)
	}
	if upd.Authors != nil {
		appendField("authors", *upd.Authors)
	}
	if upd.Abstract != nil {
		appendField("abstract", *upd.Abstract)
	}
	if upd.DOI != nil {
		appendField("doi", *upd.DOI)
	}
	if upd.ArxivID != nil {
		appendField("arxiv_id", *upd.ArxivID)
	}
	if upd.BibTeX != nil {
		appendField("bibtex", *upd.BibTeX)
	}
	if upd.Tags != nil {
		appendField("tags", marshalList(*upd.Tags))
	}
	if upd.Description != nil {
		appendField("description", *upd.Description)
	}
	if upd.Status != nil {
		appendField("status", string(*upd.Status))
	}
	if upd.PDFPath != nil {
		appendField("pdf_path", *upd.PDFPath)
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx, `UPDATE papers SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("updating paper: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.GetPaper(ctx, id)
}

// DeletePaper removes a paper. Annotations, done entries, and embeddings
// cascade. Returns false when the paper does not exist.
func (s *Store) DeletePaper(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM papers WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting paper: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- done entries ---

// MarkDone sets the paper's status to done and creates or replaces its done
// entry. Returns nil when the paper does not exist.
func (s *Store) MarkDone(ctx context.Context, paperID int64, concepts []string, summary, contributions string) (*types.DoneEntry, error) {
	paper, err := s.GetPaper(ctx, paperID)
	if err != nil {
		return nil, err
	}
	if paper == nil {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE papers SET status = ?, updated_at = ? WHERE id = ?`,
		string(types.StatusDone), now.Format(time.RFC3339), paperID,
	); err != nil {
		return nil, fmt.Errorf("updating paper status: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO done_entries (paper_id, concepts, compressed_summary, key_contributions, completed_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(paper_id) DO UPDATE SET
			concepts=excluded.concepts,
			compressed_summary=excluded.compressed_summary,
			key_contributions=excluded.key_contributions,
			completed_at=excluded.completed_at`,
		paperID, marshalList(concepts), summary, contributions, now.Format(time.RFC3339),
	); err != nil {
		return nil, fmt.Errorf("upserting done entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetDoneEntry(ctx, paperID)
}

// GetDoneEntry returns the done entry for a paper, or nil when absent.
// Malformed stored concepts read as an empty list, not an error.
func (s *Store) GetDoneEntry(ctx context.Context, paperID int64) (*types.DoneEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, paper_id, concepts, compressed_summary, key_contributions, completed_at
		 FROM done_entries WHERE paper_id = ?`, paperID)

	var e types.DoneEntry
	var concepts, summary, contributions sql.NullString
	var completedAt string
	err := row.Scan(&e.ID, &e.PaperID, &concepts, &summary, &contributions, &completedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying done entry: %w", err)
	}

	e.Concepts = unmarshalList(concepts.String)
	e.CompressedSummary = summary.String
	e.KeyContributions = contributions.String
	if t, parseErr := time.Parse(time.RFC3339, completedAt); parseErr == nil {
		e.CompletedAt = t
	}
	return &e, nil
}

// --- annotations ---

// AddAnnotation attaches an annotation to a paper.
func (s *Store) AddAnnotation(ctx context.Context, a *types.Annotation) (*types.Annotation, error) {
	if a.Color == "" {
		a.Color = "#ffeb3b"
	}
	a.CreatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO annotations (paper_id, page, type, content, selection_text, position, color, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.PaperID, a.Page, string(a.Type), a.Content, a.SelectionText, a.Position,
		a.Color, a.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting annotation: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetAnnotations returns a paper's annotations ordered by page then creation time.
func (s *Store) GetAnnotations(ctx context.Context, paperID int64) ([]types.Annotation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, paper_id, page, type, content, selection_text, position, color, created_at
		 FROM annotations WHERE paper_id = ? ORDER BY page, created_at`, paperID)
	if err != nil {
		return nil, fmt.Errorf("listing annotations: %w", err)
	}
	defer rows.Close()

	var annotations []types.Annotation
	for rows.Next() {
		var a types.Annotation
		var annType, createdAt string
		var content, selection, position sql.NullString
		if err := rows.Scan(&a.ID, &a.PaperID, &a.Page, &annType, &content, &selection, &position, &a.Color, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning annotation: %w", err)
		}
		a.Type = types.AnnotationType(annType)
		a.Content = content.String
		a.SelectionText = selection.String
		a.Position = position.String
		if t, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
			a.CreatedAt = t
		}
		annotations = append(annotations, a)
	}
	return annotations, rows.Err()
}

// DeleteAnnotation removes one annotation. Returns false when absent.
func (s *Store) DeleteAnnotation(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM annotations WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting annotation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- embeddings ---

// AddEmbedding stores an embedding record for a paper.
func (s *Store) AddEmbedding(ctx context.Context, rec *types.EmbeddingRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO embeddings (paper_id, content_type, vector, source_text) VALUES (?, ?, ?, ?)`,
		rec.PaperID, string(rec.ContentType), encodeVector(rec.Vector), rec.SourceText,
	)
	if err != nil {
		return fmt.Errorf("inserting embedding: %w", err)
	}
	return nil
}

// GetEmbeddings returns embedding records for one paper, or the whole
// corpus when paperID is 0. Records are ordered by paper ID ascending so
// downstream ranking has a stable scan order.
func (s *Store) GetEmbeddings(ctx context.Context, paperID int64) ([]types.EmbeddingRecord, error) {
	query := `SELECT id, paper_id, content_type, vector, source_text FROM embeddings`
	var args []any
	if paperID != 0 {
		query += ` WHERE paper_id = ?`
		args = append(args, paperID)
	}
	query += ` ORDER BY paper_id, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing embeddings: %w", err)
	}
	defer rows.Close()

	var records []types.EmbeddingRecord
	for rows.Next() {
		var rec types.EmbeddingRecord
		var contentType string
		var blob []byte
		var sourceText sql.NullString
		if err := rows.Scan(&rec.ID, &rec.PaperID, &contentType, &blob, &sourceText); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		rec.ContentType = types.ContentType(contentType)
		rec.Vector = decodeVector(blob)
		rec.SourceText = sourceText.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteEmbeddings removes all embedding records for a paper.
func (s *Store) DeleteEmbeddings(ctx context.Context, paperID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM embeddings WHERE paper_id = ?`, paperID); err != nil {
		return fmt.Errorf("deleting embeddings: %w", err)
	}
	return nil
}

// --- scanning helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaper(row rowScanner) (*types.Paper, error) {
	var p types.Paper
	var authors, abstract, doi, arxivID, bibtex, tags, description, pdfPath sql.NullString
	var status, addedAt, updatedAt string

	err := row.Scan(&p.ID, &p.URL, &p.Title, &authors, &abstract, &doi, &arxivID,
		&bibtex, &tags, &description, &status, &pdfPath, &addedAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	p.Authors = authors.String
	p.Abstract = abstract.String
	p.DOI = doi.String
	p.ArxivID = arxivID.String
	p.BibTeX = bibtex.String
	p.Tags = unmarshalList(tags.String)
	p.Description = description.String
	p.Status = types.PaperStatus(status)
	p.PDFPath = pdfPath.String
	if t, parseErr := time.Parse(time.RFC3339, addedAt); parseErr == nil {
		p.AddedAt = t
	}
	if t, parseErr := time.Parse(time.RFC3339, updatedAt); parseErr == nil {
		p.UpdatedAt = t
	}
	return &p, nil
}

// marshalList serializes a string list as JSON for storage. Empty lists
// store as NULL-equivalent empty strings.
func marshalList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	data, _ := json.Marshal(items)
	return string(data)
}

// unmarshalList parses a stored JSON list. Corrupt or empty data reads as
// nil rather than erroring.
func unmarshalList(data string) []string {
	if data == "" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil
	}
	return items
}

// encodeVector packs a float32 vector as little-endian bytes for BLOB storage.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeVector unpacks a BLOB back into a float32 vector. Trailing bytes
// that do not form a full float are ignored.
func decodeVector(buf []byte) []float32 {
	n := len(buf) / 4
	vec := make([]float32, n)
	for i := 0; i < n; i++ {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}
