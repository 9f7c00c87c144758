package knowledge

import (
	"context"
	"log"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/naviai/naviai/internal/infra/eventbus"
)

// TopicKnowledgeChanged is published when a markdown file appears in or
// changes inside the knowledge base directory.
const TopicKnowledgeChanged = "knowledge.changed"

// ChangedEventPayload identifies the file that triggered a reindex.
type ChangedEventPayload struct {
	Path string
	Op   string
}

// Watcher bridges fsnotify events on the knowledge base directory to the
// event bus. The indexer side subscribes to TopicKnowledgeChanged and re-runs
// IndexDir; per-file idempotence makes redundant triggers harmless.
type Watcher struct {
	dir string
	bus eventbus.EventBus
}

// NewWatcher creates a Watcher over dir publishing to bus.
func NewWatcher(dir string, bus eventbus.EventBus) *Watcher {
	return &Watcher{dir: dir, bus: bus}
}

// Run watches the directory until ctx is cancelled. Returns immediately
// (logging, not failing) when the directory cannot be watched — a missing
// knowledge dir degrades retrieval, it must not take the server down.
func (w *Watcher) Run(ctx context.Context) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("knowledge: watcher init failed: %v", err)
		return
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		log.Printf("knowledge: cannot watch %s: %v", w.dir, err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".md") {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			w.bus.Publish(TopicKnowledgeChanged, ChangedEventPayload{
				Path: event.Name,
				Op:   event.Op.String(),
			})
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			log.Printf("knowledge: watcher error: %v", err)
		}
	}
}

// RunReindexer consumes TopicKnowledgeChanged events and re-runs indexing
// until ctx is cancelled. Intended to run in its own goroutine.
func RunReindexer(ctx context.Context, bus eventbus.EventBus, ix *Indexer) {
	events := bus.Subscribe(TopicKnowledgeChanged)
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if payload, ok := evt.Payload.(ChangedEventPayload); ok {
				log.Printf("knowledge: change detected (%s %s), reindexing", payload.Op, payload.Path)
			}
			if err := ix.IndexDir(ctx); err != nil {
				log.Printf("knowledge: reindex failed: %v", err)
			}
		}
	}
}
