// Package index holds the in-memory similarity index over documentation
// chunks and serves cosine nearest-neighbor retrieval.
//
// The index is process-wide state with lazy initialization: it is built on
// the first retrieval request and replaced atomically as a whole, so
// readers never observe a partially-built generation. Concurrent requests
// that race on an empty index attach to the same in-flight build instead
// of starting duplicate crawl and embedding work.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/navassist/docbot/internal/llm"
)

// Index states reported by State.
const (
	StateEmpty    = "empty"
	StateBuilding = "building"
	StateReady    = "ready"
)

// Chunk is one embedded slice of a documentation page.
// Chunks are created during an index build and immutable afterwards.
type Chunk struct {
	SourceURL string
	Title     string
	Text      string
	Embedding []float32
	Score     float32 // set on retrieval results only
}

// Document is a crawled page handed to the index builder.
type Document struct {
	URL   string
	Title string
	Text  string
}

// Loader produces the document set an index generation is built from.
type Loader interface {
	Load(ctx context.Context) ([]Document, error)
}

// Splitter cuts document text into embeddable windows.
type Splitter interface {
	Split(text string) []string
}

// generation is one immutable build of the index.
type generation struct {
	chunks  []Chunk
	dim     int
	builtAt time.Time
}

// Index is the lazily-built in-memory similarity index.
// It is safe for concurrent use by multiple goroutines.
type Index struct {
	loader   Loader
	splitter Splitter
	embedder llm.Embedder
	logger   *slog.Logger

	group    singleflight.Group
	mu       sync.RWMutex
	gen      *generation
	building bool
}

// New creates an Index. Nothing is fetched or embedded until the first
// Search (or an explicit Build).
func New(loader Loader, splitter Splitter, embedder llm.Embedder, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{
		loader:   loader,
		splitter: splitter,
		embedder: embedder,
		logger:   logger,
	}
}

// Search embeds the query, scores every stored chunk by cosine similarity,
// and returns at most k chunks sorted by descending score, dropping any
// scored at or below minScore. An empty result means no sufficiently
// relevant material exists; callers must treat that as a distinct case,
// not an error.
func (ix *Index) Search(ctx context.Context, query string, k int, minScore float32) ([]Chunk, error) {
	gen, err := ix.ensure(ctx)
	if err != nil {
		return nil, err
	}
	if len(gen.chunks) == 0 {
		return nil, nil
	}

	vectors, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding query: got %d vectors for 1 input", len(vectors))
	}
	queryVec := vectors[0]
	if len(queryVec) != gen.dim {
		return nil, fmt.Errorf("%w: query %d vs index %d", ErrDimensionMismatch, len(queryVec), gen.dim)
	}

	scored := make([]Chunk, len(gen.chunks))
	for i, c := range gen.chunks {
		score, err := Cosine(queryVec, c.Embedding)
		if err != nil {
			return nil, fmt.Errorf("scoring chunk %s: %w", c.SourceURL, err)
		}
		c.Score = score
		scored[i] = c
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if k > len(scored) {
		k = len(scored)
	}
	var results []Chunk
	for _, c := range scored[:k] {
		if c.Score <= minScore {
			break
		}
		results = append(results, c)
	}
	return results, nil
}

// Build forces an index build, replacing the current generation.
// Concurrent callers share a single build.
func (ix *Index) Build(ctx context.Context) error {
	_, err, _ := ix.group.Do("build", func() (any, error) {
		return nil, ix.build(ctx)
	})
	return err
}

// ensure returns the current generation, building one first if absent.
func (ix *Index) ensure(ctx context.Context) (*generation, error) {
	ix.mu.RLock()
	gen := ix.gen
	ix.mu.RUnlock()
	if gen != nil {
		return gen, nil
	}

	_, err, _ := ix.group.Do("build", func() (any, error) {
		// Re-check under the flight: a build that completed while we
		// were queued already produced a generation.
		ix.mu.RLock()
		existing := ix.gen
		ix.mu.RUnlock()
		if existing != nil {
			return nil, nil
		}
		return nil, ix.build(ctx)
	})
	if err != nil {
		return nil, err
	}

	ix.mu.RLock()
	gen = ix.gen
	ix.mu.RUnlock()
	if gen == nil {
		return nil, fmt.Errorf("index build produced no generation")
	}
	return gen, nil
}

// build crawls, chunks, embeds, and swaps in a new generation. No partial
// state is published: on any error the previous generation (if any) stays.
func (ix *Index) build(ctx context.Context) error {
	ix.setBuilding(true)
	defer ix.setBuilding(false)

	start := time.Now()
	docs, err := ix.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading documents: %w", err)
	}

	var (
		texts []string
		metas []Chunk
	)
	for _, doc := range docs {
		for _, part := range ix.splitter.Split(doc.Text) {
			texts = append(texts, part)
			metas = append(metas, Chunk{SourceURL: doc.URL, Title: doc.Title, Text: part})
		}
	}

	gen := &generation{builtAt: time.Now()}
	if len(texts) > 0 {
		vectors, err := ix.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding chunks: %w", err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("embedding chunks: got %d vectors for %d inputs", len(vectors), len(texts))
		}

		gen.dim = len(vectors[0])
		gen.chunks = metas
		for i := range gen.chunks {
			if len(vectors[i]) != gen.dim {
				return fmt.Errorf("%w: chunk %d has %d, expected %d", ErrDimensionMismatch, i, len(vectors[i]), gen.dim)
			}
			gen.chunks[i].Embedding = vectors[i]
		}
	}

	ix.mu.Lock()
	ix.gen = gen
	ix.mu.Unlock()

	ix.logger.Info("index built",
		"documents", len(docs),
		"chunks", len(gen.chunks),
		"dimension", gen.dim,
		"duration", time.Since(start))
	return nil
}

func (ix *Index) setBuilding(b bool) {
	ix.mu.Lock()
	ix.building = b
	ix.mu.Unlock()
}

// State reports the index lifecycle phase for readiness probes.
func (ix *Index) State() string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	switch {
	case ix.building:
		return StateBuilding
	case ix.gen != nil:
		return StateReady
	default:
		return StateEmpty
	}
}

// Stats returns the stored chunk count and embedding dimension of the
// current generation, or zeros when no generation exists.
func (ix *Index) Stats() (chunks, dimension int) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.gen == nil {
		return 0, 0
	}
	return len(ix.gen.chunks), ix.gen.dim
}
