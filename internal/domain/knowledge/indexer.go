package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/naviai/naviai/pkg/uuid"
)

// frontMatter is the YAML metadata block at the top of a knowledge document.
type frontMatter struct {
	Title    string `yaml:"title"`
	Keywords string `yaml:"keywords"`
}

// Indexer ingests markdown documents from a directory into the chunk store
// and keeps the FTS5 index in sync.
type Indexer struct {
	db  *sql.DB
	dir string
}

// NewIndexer creates an Indexer over the given knowledge base directory.
func NewIndexer(db *sql.DB, dir string) *Indexer {
	return &Indexer{db: db, dir: dir}
}

// IndexDir reads all markdown files from the knowledge base directory and
// indexes them. Files already indexed (tracked by source_file name) are
// skipped, so this is safe to call on every startup and on every watcher
// event.
func (ix *Indexer) IndexDir(ctx context.Context) error {
	entries, err := os.ReadDir(ix.dir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("knowledge: base directory not found: %s", ix.dir)
			return nil
		}
		return fmt.Errorf("knowledge: read dir %q: %w", ix.dir, err)
	}

	var mdFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			mdFiles = append(mdFiles, e.Name())
		}
	}
	sort.Strings(mdFiles)
	if len(mdFiles) == 0 {
		log.Printf("knowledge: no markdown files found in %s", ix.dir)
		return nil
	}

	indexed, err := ix.indexedFiles(ctx)
	if err != nil {
		return err
	}

	newChunks := 0
	for _, name := range mdFiles {
		if indexed[name] {
			continue
		}

		n, err := ix.indexFile(ctx, name)
		if err != nil {
			// A malformed document must not block the rest of the corpus
			log.Printf("knowledge: failed to index %s: %v", name, err)
			continue
		}
		newChunks += n
	}

	if newChunks == 0 {
		return nil
	}
	log.Printf("knowledge: indexed %d new chunks", newChunks)

	return ix.rebuildFTS(ctx)
}

// indexedFiles returns the set of source files already present in the store.
func (ix *Indexer) indexedFiles(ctx context.Context) (map[string]bool, error) {
	rows, err := ix.db.QueryContext(ctx, "SELECT DISTINCT source_file FROM knowledge_chunks")
	if err != nil {
		return nil, fmt.Errorf("knowledge: query indexed files: %w", err)
	}
	defer rows.Close()

	indexed := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("knowledge: scan indexed file: %w", err)
		}
		indexed[name] = true
	}
	return indexed, rows.Err()
}

// indexFile chunks one document and inserts its rows in a single transaction.
// Returns the number of chunks created.
func (ix *Indexer) indexFile(ctx context.Context, name string) (int, error) {
	raw, err := os.ReadFile(filepath.Join(ix.dir, name))
	if err != nil {
		return 0, fmt.Errorf("read file: %w", err)
	}

	meta, body, err := splitFrontMatter(string(raw))
	if err != nil {
		return 0, fmt.Errorf("parse front matter: %w", err)
	}
	if meta.Title == "" {
		meta.Title = name
	}

	chunks := Chunk(body, DefaultChunkSize, DefaultChunkOverlap)
	if len(chunks) == 0 {
		return 0, nil
	}

	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for i, content := range chunks {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO knowledge_chunks (id, source_file, title, content, chunk_index, keywords, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, uuid.NewV7().String(), name, meta.Title, content, i, meta.Keywords, now); err != nil {
			return 0, fmt.Errorf("insert chunk %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(chunks), nil
}

// rebuildFTS rebuilds the FTS5 index from the knowledge_chunks table.
// Full delete-and-reinsert: reindexing is infrequent and the corpus is
// modest, so incremental sync is not worth the trigger machinery.
func (ix *Indexer) rebuildFTS(ctx context.Context) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("knowledge: begin fts rebuild: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM knowledge_chunks_fts"); err != nil {
		return fmt.Errorf("knowledge: clear fts index: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO knowledge_chunks_fts (chunk_id, title, content, keywords)
		SELECT id, title, content, COALESCE(keywords, '') FROM knowledge_chunks
	`); err != nil {
		return fmt.Errorf("knowledge: fill fts index: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("knowledge: commit fts rebuild: %w", err)
	}
	log.Printf("knowledge: FTS index rebuilt")
	return nil
}

// splitFrontMatter separates a leading YAML front-matter block (delimited by
// "---" lines) from the document body. Documents without front matter are
// returned whole with empty metadata.
func splitFrontMatter(doc string) (frontMatter, string, error) {
	var meta frontMatter

	rest, found := strings.CutPrefix(doc, "---\n")
	if !found {
		return meta, doc, nil
	}

	metaBlock, body, found := strings.Cut(rest, "\n---")
	if !found {
		return meta, doc, nil
	}
	// The closing delimiter line may be followed by a newline
	body = strings.TrimPrefix(body, "\n")

	if err := yaml.Unmarshal([]byte(metaBlock), &meta); err != nil {
		return frontMatter{}, "", err
	}
	return meta, body, nil
}
