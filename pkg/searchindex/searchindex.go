// Package searchindex is a SQLite-backed ranked text index over
// containers and assets, adapted from the teacher's vector index
// (pkg/embeddings/sqlite) with per-field weighted term scoring standing
// in for cosine similarity. Search failures never block the reducer
// pipeline — callers treat Index as a best-effort side channel, never a
// dependency of TryReduce.
package searchindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/syre-project/engine/pkg/state"

	_ "modernc.org/sqlite"
)

// DocKind distinguishes a container document from an asset document.
type DocKind string

const (
	DocContainer DocKind = "container"
	DocAsset     DocKind = "asset"
)

// Document is one indexable unit: a container or an asset, flattened to
// the text fields search scores against.
type Document struct {
	ID          state.ResourceId
	Kind        DocKind
	ProjectPath string
	Name        string
	// DomainKind is the resource's own free-text "kind" field
	// (ContainerProperties.Kind / AssetProperties.Kind) — not DocKind.
	DomainKind  string
	Description string
	Tags        []string
	Metadata    map[string]any
	// AssetPath is set only for DocAsset, relative to the owning
	// container's folder.
	AssetPath string
}

// Hit is one ranked search result.
type Hit struct {
	ID    state.ResourceId
	Kind  DocKind
	Score float64
}

// Per-field weights, fixed per the query contract: name, kind and asset
// path 3, tags and metadata 2, description 1.
const (
	weightName        = 3.0
	weightDomainKind  = 3.0
	weightDescription = 1.0
	weightTags        = 2.0
	weightMetadata    = 2.0
	weightAssetPath   = 3.0
)

// Index is a SQLite-backed document store with ranked substring search.
type Index struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite index at path.
func Open(path string) (*Index, error) {
	if path == "" {
		return nil, errors.New("search index path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create search index directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	idx := &Index{db: db}
	if err := idx.EnsureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return idx, nil
}

// EnsureSchema creates the documents table and its indices if needed.
func (x *Index) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS documents (
			id           INTEGER PRIMARY KEY,
			resource_id  TEXT NOT NULL UNIQUE,
			kind         TEXT NOT NULL,
			project_path TEXT NOT NULL,
			name         TEXT NOT NULL DEFAULT '',
			domain_kind  TEXT NOT NULL DEFAULT '',
			description  TEXT NOT NULL DEFAULT '',
			tags         TEXT NOT NULL DEFAULT '',
			metadata     TEXT NOT NULL DEFAULT '',
			asset_path   TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_project_path ON documents(project_path);`,
	}
	for _, stmt := range stmts {
		if _, err := x.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close releases database resources.
func (x *Index) Close() error {
	return x.db.Close()
}

// Upsert inserts or replaces the document for doc.ID.
func (x *Index) Upsert(ctx context.Context, doc Document) error {
	_, err := x.db.ExecContext(ctx, `
		INSERT INTO documents (resource_id, kind, project_path, name, domain_kind, description, tags, metadata, asset_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(resource_id) DO UPDATE SET
			kind = excluded.kind,
			project_path = excluded.project_path,
			name = excluded.name,
			domain_kind = excluded.domain_kind,
			description = excluded.description,
			tags = excluded.tags,
			metadata = excluded.metadata,
			asset_path = excluded.asset_path
	`, doc.ID.String(), string(doc.Kind), doc.ProjectPath, doc.Name, doc.DomainKind, doc.Description,
		strings.Join(doc.Tags, " "), metadataText(doc.Metadata), doc.AssetPath)
	return err
}

// Delete removes the document for id, if any.
func (x *Index) Delete(ctx context.Context, id state.ResourceId) error {
	_, err := x.db.ExecContext(ctx, `DELETE FROM documents WHERE resource_id = ?`, id.String())
	return err
}

// DeleteProject removes every document belonging to projectPath, used
// when a project is removed from the app manifest.
func (x *Index) DeleteProject(ctx context.Context, projectPath string) error {
	_, err := x.db.ExecContext(ctx, `DELETE FROM documents WHERE project_path = ?`, projectPath)
	return err
}

// Search returns the top k documents scored against query, highest
// score first. A document with zero score across every field is
// excluded rather than returned at the bottom of the list.
func (x *Index) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search query is empty")
	}
	q := strings.ToLower(query)

	rows, err := x.db.QueryContext(ctx, `
		SELECT resource_id, kind, name, domain_kind, description, tags, metadata, asset_path
		FROM documents
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var resourceID, kind, name, domainKind, description, tags, metadata, assetPath string
		if err := rows.Scan(&resourceID, &kind, &name, &domainKind, &description, &tags, &metadata, &assetPath); err != nil {
			return nil, err
		}
		score := fieldScore(q, name, weightName) +
			fieldScore(q, domainKind, weightDomainKind) +
			fieldScore(q, description, weightDescription) +
			fieldScore(q, tags, weightTags) +
			fieldScore(q, metadata, weightMetadata) +
			fieldScore(q, assetPath, weightAssetPath)
		if score <= 0 {
			continue
		}
		var id state.ResourceId
		if err := id.UnmarshalText([]byte(resourceID)); err != nil {
			return nil, fmt.Errorf("parse stored resource id: %w", err)
		}
		hits = append(hits, Hit{ID: id, Kind: DocKind(kind), Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// fieldScore counts case-insensitive occurrences of q in field, scaled
// by weight. This is the index's fixed normalization: the same query
// against the same field always produces the same score, independent of
// the field's length or the corpus as a whole.
func fieldScore(q, field string, weight float64) float64 {
	if field == "" {
		return 0
	}
	count := strings.Count(strings.ToLower(field), q)
	return weight * float64(count)
}

// metadataText flattens a metadata map into a searchable string of its
// keys and values, in sorted key order so scoring is deterministic.
func metadataText(meta map[string]any) string {
	if len(meta) == 0 {
		return ""
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		parts = append(parts, k, fmt.Sprint(meta[k]))
	}
	return strings.Join(parts, " ")
}
