package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// Source supplies the corpus index and its paged-in detail. Every method
// failure is a *FetchError scoped to the requested key.
type Source interface {
	Index(ctx context.Context) (*Index, error)
	Chapter(ctx context.Context, slug string, chapter int) (ChapterDetail, error)
	Work(ctx context.Context, id int) (WorkDetail, error)
	Passage(ctx context.Context, id string) (string, error)
}

// StaticSource reads the gzip-compressed JSON tree written by the builder:
//
//	index.json.gz
//	bible/{book-slug}/{ch}.json.gz
//	manuscripts/{id}.json.gz
//	passages.json.gz              (optional, passage id → text)
type StaticSource struct {
	dir string
	log *slog.Logger

	inline *Cache[string, string]

	idxMu sync.Mutex
	idx   *Index
	works *workResolver

	mu       sync.Mutex
	passages map[string]string // nil until passages.json.gz has been read
}

// NewStaticSource returns a source rooted at dir (normally data/static).
func NewStaticSource(dir string, logger *slog.Logger) *StaticSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &StaticSource{dir: dir, log: logger, inline: NewCache[string, string]()}
}

// Index reads index.json.gz once; later calls return the same index. A
// failed read is retried on the next call.
func (s *StaticSource) Index(ctx context.Context) (*Index, error) {
	idx, _, err := s.loadIndex(ctx)
	return idx, err
}

func (s *StaticSource) loadIndex(ctx context.Context) (*Index, *workResolver, error) {
	s.idxMu.Lock()
	defer s.idxMu.Unlock()
	if s.idx != nil {
		return s.idx, s.works, nil
	}
	var p indexPayload
	if err := s.readGzJSON(ctx, filepath.Join(s.dir, "index.json.gz"), &p); err != nil {
		return nil, nil, fetchErr("index", "", err)
	}
	idx, err := p.toIndex(s.log)
	if err != nil {
		return nil, nil, fetchErr("index", "", err)
	}
	s.idx, s.works = idx, newWorkResolver(idx)
	return s.idx, s.works, nil
}

// Chapter reads a chapter file. Its works list is resolved against the index,
// which is loaded first if needed.
func (s *StaticSource) Chapter(ctx context.Context, slug string, chapter int) (ChapterDetail, error) {
	key := ChapterKey{Slug: slug, Chapter: chapter}
	_, works, err := s.loadIndex(ctx)
	if err != nil {
		return ChapterDetail{}, &FetchError{Kind: "chapter", Key: key.String(), Err: err}
	}
	var p chapterPayload
	path := filepath.Join(s.dir, "bible", slug, fmt.Sprintf("%d.json.gz", chapter))
	if err := s.readGzJSON(ctx, path, &p); err != nil {
		return ChapterDetail{}, fetchErr("chapter", key.String(), err)
	}
	return p.toDetail(key, works, s.log, func(id, text string) { s.inline.Set(id, text) }), nil
}

func (s *StaticSource) Work(ctx context.Context, id int) (WorkDetail, error) {
	var p workPayload
	path := filepath.Join(s.dir, "manuscripts", fmt.Sprintf("%d.json.gz", id))
	if err := s.readGzJSON(ctx, path, &p); err != nil {
		return WorkDetail{}, fetchErr("work", fmt.Sprint(id), err)
	}
	p.ID = id
	return p.toDetail(s.log), nil
}

// Passage resolves a passage id. Passages carried inline by a chapter file
// are available once that chapter has been loaded.
func (s *StaticSource) Passage(ctx context.Context, id string) (string, error) {
	if text, ok := s.inline.Get(id); ok {
		return text, nil
	}
	store, err := s.passageStore(ctx)
	if err != nil {
		return "", fetchErr("passage", id, err)
	}
	text, ok := store[id]
	if !ok {
		return "", fetchErr("passage", id, ErrNotFound)
	}
	return text, nil
}

// passageStore loads passages.json.gz on first use. A missing file is an
// empty store; any other failure is retried on the next call.
func (s *StaticSource) passageStore(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.passages != nil {
		return s.passages, nil
	}
	store := make(map[string]string)
	err := s.readGzJSON(ctx, filepath.Join(s.dir, "passages.json.gz"), &store)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	s.passages = store
	return store, nil
}

func (s *StaticSource) readGzJSON(ctx context.Context, path string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return err
	}
	defer f.Close()
	gr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("decompressing %s: %w", path, err)
	}
	defer gr.Close()
	if err := json.NewDecoder(gr).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
