package knowledge_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/naviai/naviai/internal/domain/knowledge"
	"github.com/naviai/naviai/internal/infra/sqlite"
)

const sampleDoc = `---
title: Como usar o WhatsApp
keywords: whatsapp,mensagem,celular
---
O WhatsApp e um aplicativo de mensagens.

Passo 1: Abra o aplicativo no seu celular.
Passo 2: Toque na conversa desejada.
`

func TestIndexDir_CreatesChunks(t *testing.T) {
	t.Parallel()

	db, dir := newIndexFixture(t, map[string]string{"whatsapp.md": sampleDoc})
	ix := knowledge.NewIndexer(db, dir)

	if err := ix.IndexDir(context.Background()); err != nil {
		t.Fatalf("IndexDir() error = %v; want nil", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM knowledge_chunks").Scan(&count); err != nil {
		t.Fatalf("count chunks: %v", err)
	}
	if count == 0 {
		t.Fatal("IndexDir() created no chunks")
	}

	var title, keywords string
	row := db.QueryRow("SELECT title, keywords FROM knowledge_chunks WHERE source_file = 'whatsapp.md' AND chunk_index = 0")
	if err := row.Scan(&title, &keywords); err != nil {
		t.Fatalf("chunk row not found: %v", err)
	}
	if title != "Como usar o WhatsApp" {
		t.Errorf("title = %q; want front-matter title", title)
	}
	if keywords != "whatsapp,mensagem,celular" {
		t.Errorf("keywords = %q; want front-matter keywords", keywords)
	}
}

// TestIndexDir_Idempotent verifies that indexing twice produces no duplicates.
func TestIndexDir_Idempotent(t *testing.T) {
	t.Parallel()

	db, dir := newIndexFixture(t, map[string]string{"whatsapp.md": sampleDoc})
	ix := knowledge.NewIndexer(db, dir)

	if err := ix.IndexDir(context.Background()); err != nil {
		t.Fatalf("first IndexDir() error = %v", err)
	}
	var first int
	if err := db.QueryRow("SELECT COUNT(*) FROM knowledge_chunks").Scan(&first); err != nil {
		t.Fatalf("count chunks: %v", err)
	}

	if err := ix.IndexDir(context.Background()); err != nil {
		t.Fatalf("second IndexDir() error = %v", err)
	}
	var second int
	if err := db.QueryRow("SELECT COUNT(*) FROM knowledge_chunks").Scan(&second); err != nil {
		t.Fatalf("count chunks: %v", err)
	}

	if first != second {
		t.Errorf("chunk count after reindex = %d; want %d (idempotent)", second, first)
	}
}

func TestIndexDir_MissingDirIsNotAnError(t *testing.T) {
	t.Parallel()

	db := newMigratedDB(t)
	ix := knowledge.NewIndexer(db, filepath.Join(t.TempDir(), "does-not-exist"))

	if err := ix.IndexDir(context.Background()); err != nil {
		t.Errorf("IndexDir() on missing dir error = %v; want nil (degrades)", err)
	}
}

func TestIndexDir_NoFrontMatter_UsesFilenameAsTitle(t *testing.T) {
	t.Parallel()

	db, dir := newIndexFixture(t, map[string]string{"plain.md": "Just body text with no metadata header."})
	ix := knowledge.NewIndexer(db, dir)

	if err := ix.IndexDir(context.Background()); err != nil {
		t.Fatalf("IndexDir() error = %v", err)
	}

	var title string
	row := db.QueryRow("SELECT title FROM knowledge_chunks WHERE source_file = 'plain.md'")
	if err := row.Scan(&title); err != nil {
		t.Fatalf("chunk row not found: %v", err)
	}
	if title != "plain.md" {
		t.Errorf("title = %q; want filename fallback %q", title, "plain.md")
	}
}

func TestIndexDir_RebuildsFTS(t *testing.T) {
	t.Parallel()

	db, dir := newIndexFixture(t, map[string]string{"whatsapp.md": sampleDoc})
	ix := knowledge.NewIndexer(db, dir)

	if err := ix.IndexDir(context.Background()); err != nil {
		t.Fatalf("IndexDir() error = %v", err)
	}

	var chunks, ftsRows int
	if err := db.QueryRow("SELECT COUNT(*) FROM knowledge_chunks").Scan(&chunks); err != nil {
		t.Fatalf("count chunks: %v", err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM knowledge_chunks_fts").Scan(&ftsRows); err != nil {
		t.Fatalf("count fts rows: %v", err)
	}
	if chunks != ftsRows {
		t.Errorf("fts rows = %d; want %d (mirror of knowledge_chunks)", ftsRows, chunks)
	}
}

func TestIndexDir_LongDocument_OrderedChunkIndexes(t *testing.T) {
	t.Parallel()

	var body strings.Builder
	for i := 0; i < 50; i++ {
		body.WriteString("Uma frase sobre como pagar contas pelo celular com seguranca. ")
	}
	doc := "---\ntitle: Pagamentos\nkeywords: banco,pagamento\n---\n" + body.String()

	db, dir := newIndexFixture(t, map[string]string{"pagamentos.md": doc})
	ix := knowledge.NewIndexer(db, dir)

	if err := ix.IndexDir(context.Background()); err != nil {
		t.Fatalf("IndexDir() error = %v", err)
	}

	rows, err := db.Query("SELECT chunk_index FROM knowledge_chunks WHERE source_file = 'pagamentos.md' ORDER BY chunk_index")
	if err != nil {
		t.Fatalf("query chunk indexes: %v", err)
	}
	defer rows.Close()

	want := 0
	for rows.Next() {
		var got int
		if err := rows.Scan(&got); err != nil {
			t.Fatalf("scan: %v", err)
		}
		if got != want {
			t.Fatalf("chunk_index = %d; want %d (dense, ordered)", got, want)
		}
		want++
	}
	if want < 2 {
		t.Errorf("long document produced %d chunks; want >= 2", want)
	}
}

// --- helpers ---

func newMigratedDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sqlite.NewDB(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("sqlite.NewDB error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp error = %v", err)
	}
	return db
}

func newIndexFixture(t *testing.T, files map[string]string) (*sql.DB, string) {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write fixture %s: %v", name, err)
		}
	}
	return newMigratedDB(t), dir
}
