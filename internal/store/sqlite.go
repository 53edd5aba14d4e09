package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pkarels/appealsmith/internal/model"
	"github.com/pkarels/appealsmith/internal/textindex"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	doc_type   TEXT NOT NULL,
	owner_key  TEXT NOT NULL DEFAULT '',
	tags       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS chunks (
	id          TEXT PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	idx         INTEGER NOT NULL,
	text        TEXT NOT NULL,
	start_off   INTEGER NOT NULL,
	end_off     INTEGER NOT NULL,
	vector      TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id, idx);
CREATE INDEX IF NOT EXISTS idx_documents_type ON documents(doc_type);
`

// SQLiteStore persists documents and chunks in a local sqlite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// PutDocument upserts a document record.
func (s *SQLiteStore) PutDocument(ctx context.Context, doc model.Document) error {
	doc.Metadata.Normalize()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, name, doc_type, owner_key, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			doc_type = excluded.doc_type,
			owner_key = excluded.owner_key,
			tags = excluded.tags`,
		doc.ID, doc.Name, doc.Metadata.DocType, doc.Metadata.OwnerKey,
		strings.Join(doc.Metadata.Tags, ","), doc.Metadata.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", doc.ID, err)
	}
	return nil
}

// PutChunks replaces the chunks of a document in a single transaction.
func (s *SQLiteStore) PutChunks(ctx context.Context, documentID string, chunks []model.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("delete old chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, idx, text, start_off, end_off, vector)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		vector, err := json.Marshal(chunk.Vector)
		if err != nil {
			return fmt.Errorf("marshal vector: %w", err)
		}
		id := chunk.ID
		if id == "" {
			id = fmt.Sprintf("%s#%d", documentID, chunk.Index)
		}
		if _, err := stmt.ExecContext(ctx, id, documentID, chunk.Index,
			chunk.Text, chunk.Start, chunk.End, string(vector)); err != nil {
			return fmt.Errorf("insert chunk %d: %w", chunk.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListCandidates returns a snapshot of chunks matching the equality filters,
// joined with their document metadata, in stable order.
func (s *SQLiteStore) ListCandidates(ctx context.Context, filters textindex.Filters) ([]textindex.Candidate, error) {
	query := `
		SELECT c.document_id, c.idx, c.text, c.start_off, c.end_off, c.vector,
		       d.doc_type, d.owner_key, d.tags, d.created_at
		FROM chunks c
		JOIN documents d ON d.id = c.document_id`
	var conds []string
	var args []any
	if filters.DocType != "" {
		conds = append(conds, "d.doc_type = ?")
		args = append(args, filters.DocType)
	}
	if filters.OwnerKey != "" {
		conds = append(conds, "(d.owner_key = ? OR d.owner_key = '')")
		args = append(args, filters.OwnerKey)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY c.document_id, c.idx"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []textindex.Candidate
	for rows.Next() {
		var (
			chunk     model.Chunk
			vectorRaw string
			tagsRaw   string
			meta      model.Metadata
			createdAt time.Time
		)
		if err := rows.Scan(&chunk.DocumentID, &chunk.Index, &chunk.Text,
			&chunk.Start, &chunk.End, &vectorRaw,
			&meta.DocType, &meta.OwnerKey, &tagsRaw, &createdAt); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		if err := json.Unmarshal([]byte(vectorRaw), &chunk.Vector); err != nil {
			return nil, fmt.Errorf("unmarshal vector: %w", err)
		}
		meta.CreatedAt = createdAt
		if tagsRaw != "" {
			meta.Tags = strings.Split(tagsRaw, ",")
		}
		candidates = append(candidates, textindex.Candidate{Chunk: chunk, Metadata: meta})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return candidates, nil
}

// DeleteDocument removes a document; chunks cascade.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, documentID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", documentID); err != nil {
		return fmt.Errorf("delete document %s: %w", documentID, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
