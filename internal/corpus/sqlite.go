package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/bitflora/patristics-explorer/internal/bible"

	_ "modernc.org/sqlite"
)

// MaxPassageChars caps a passage sliced out of a manuscript file.
const MaxPassageChars = 8000

var multiBlankRe = regexp.MustCompile(`\n{3,}`)

// SQLiteSource reads the parser's patristics.db directly, slicing passage
// text out of the manuscript .txt files the offsets point into.
//
// Per-category counts need a manuscripts.category column. Databases without
// it yield count-only chapters.
type SQLiteSource struct {
	db             *sql.DB
	manuscriptsDir string
	log            *slog.Logger

	texts *Cache[string, []rune]
}

// OpenSQLite opens the database at dbPath read-only.
func OpenSQLite(dbPath, manuscriptsDir string, logger *slog.Logger) (*SQLiteSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("database not found at %s: %w", dbPath, err)
	}
	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// The DB is written in WAL mode, so concurrent readers are safe.
	db.SetMaxOpenConns(runtime.NumCPU())
	return &SQLiteSource{
		db:             db,
		manuscriptsDir: manuscriptsDir,
		log:            logger,
		texts:          NewCache[string, []rune](),
	}, nil
}

// Close closes the database.
func (s *SQLiteSource) Close() error { return s.db.Close() }

func (s *SQLiteSource) hasColumn(ctx context.Context, table, column string) (bool, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, typ        string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return false, err
		}
		if strings.EqualFold(name, column) {
			return true, nil
		}
	}
	return false, rows.Err()
}

// ── Index ─────────────────────────────────────────────────────────────────────

func (s *SQLiteSource) Index(ctx context.Context) (*Index, error) {
	idx, err := s.loadIndex(ctx)
	if err != nil {
		return nil, fetchErr("index", "", err)
	}
	return idx, nil
}

func (s *SQLiteSource) loadIndex(ctx context.Context) (*Index, error) {
	hasCategory, err := s.hasColumn(ctx, "manuscripts", "category")
	if err != nil {
		return nil, fmt.Errorf("inspecting manuscripts: %w", err)
	}
	hasLink, err := s.hasColumn(ctx, "manuscripts", "link")
	if err != nil {
		return nil, fmt.Errorf("inspecting manuscripts: %w", err)
	}

	chapters, err := s.chapterCounts(ctx, hasCategory)
	if err != nil {
		return nil, err
	}

	var books []Book
	for _, bk := range bible.Books() {
		byCh := chapters[bk.Slug]
		if len(byCh) == 0 {
			continue
		}
		chs := make([]Chapter, 0, len(byCh))
		for _, ch := range byCh {
			chs = append(chs, ch)
		}
		b, err := NewBook(bk.Slug, bk.Name, bk.Order, chs)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}

	works, err := s.works(ctx, hasCategory, hasLink)
	if err != nil {
		return nil, err
	}
	s.log.Debug("loaded index from database",
		"books", len(books), "works", len(works), "categorized", hasCategory)
	return NewIndex(books, works)
}

// chapterCounts returns per-chapter counts keyed by book slug and chapter.
func (s *SQLiteSource) chapterCounts(ctx context.Context, byCategory bool) (map[string]map[int]Chapter, error) {
	out := make(map[string]map[int]Chapter)
	put := func(slug string, ch Chapter) {
		if out[slug] == nil {
			out[slug] = make(map[int]Chapter)
		}
		out[slug][ch.Number()] = ch
	}

	if !byCategory {
		rows, err := s.db.QueryContext(ctx, `
			SELECT book_slug, chapter, COUNT(*) AS n
			FROM verse_refs
			GROUP BY book_slug, chapter
		`)
		if err != nil {
			return nil, fmt.Errorf("querying chapter counts: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var slug string
			var ch, n int
			if err := rows.Scan(&slug, &ch, &n); err != nil {
				return nil, fmt.Errorf("scanning chapter count: %w", err)
			}
			put(slug, CountOnlyChapter{Num: ch, Count: n})
		}
		return out, rows.Err()
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT vr.book_slug, vr.chapter,
		       COALESCE(NULLIF(TRIM(m.category), ''), ?) AS cat,
		       COUNT(*) AS n
		FROM verse_refs vr
		JOIN manuscripts m ON m.id = vr.manuscript_id
		GROUP BY vr.book_slug, vr.chapter, cat
	`, OtherCategory)
	if err != nil {
		return nil, fmt.Errorf("querying chapter category counts: %w", err)
	}
	defer rows.Close()
	counts := make(map[ChapterKey]map[string]int)
	for rows.Next() {
		var k ChapterKey
		var cat string
		var n int
		if err := rows.Scan(&k.Slug, &k.Chapter, &cat, &n); err != nil {
			return nil, fmt.Errorf("scanning chapter category count: %w", err)
		}
		if counts[k] == nil {
			counts[k] = make(map[string]int)
		}
		counts[k][cat] += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for k, c := range counts {
		put(k.Slug, NewCategorizedChapter(k.Chapter, c))
	}
	return out, nil
}

func (s *SQLiteSource) works(ctx context.Context, hasCategory, hasLink bool) ([]Work, error) {
	catCol, linkCol := "NULL", "NULL"
	if hasCategory {
		catCol = "m.category"
	}
	if hasLink {
		linkCol = "m.link"
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT m.id, m.author, m.title, m.year, m.filename, %s, %s,
		       COUNT(vr.id) AS ref_count
		FROM manuscripts m
		LEFT JOIN verse_refs vr ON vr.manuscript_id = m.id
		GROUP BY m.id
		ORDER BY m.author, m.title
	`, catCol, linkCol))
	if err != nil {
		return nil, fmt.Errorf("querying works: %w", err)
	}
	defer rows.Close()

	var works []Work
	for rows.Next() {
		var (
			id             int64
			author, title  sql.NullString
			year           sql.NullInt64
			filename       string
			category, link sql.NullString
			refCount       int
		)
		if err := rows.Scan(&id, &author, &title, &year, &filename, &category, &link, &refCount); err != nil {
			return nil, fmt.Errorf("scanning work: %w", err)
		}
		works = append(works, Work{
			ID:       int(id),
			Author:   nullStringOr(author, "Unknown"),
			Title:    nullStringOr(title, filename),
			Year:     nullInt64Ptr(year),
			Category: nullStringOr(category, OtherCategory),
			RefCount: &refCount,
			Link:     nullStringOr(link, ""),
		})
	}
	return works, rows.Err()
}

// ── Detail ────────────────────────────────────────────────────────────────────

func (s *SQLiteSource) Chapter(ctx context.Context, slug string, chapter int) (ChapterDetail, error) {
	key := ChapterKey{Slug: slug, Chapter: chapter}
	if _, ok := bible.BySlug(slug); !ok {
		return ChapterDetail{}, fetchErr("chapter", key.String(), ErrNotFound)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT vr.id, vr.verse_start, vr.verse_end, vr.manuscript_id
		FROM verse_refs vr
		JOIN manuscripts m ON m.id = vr.manuscript_id
		WHERE vr.book_slug = ? AND vr.chapter = ?
		ORDER BY vr.verse_start NULLS LAST, m.author, m.title, vr.id
	`, slug, chapter)
	if err != nil {
		return ChapterDetail{}, fetchErr("chapter", key.String(), err)
	}
	defer rows.Close()

	d := ChapterDetail{Book: slug, Chapter: chapter}
	for rows.Next() {
		var refID, mID int64
		var verseStart, verseEnd sql.NullInt64
		if err := rows.Scan(&refID, &verseStart, &verseEnd, &mID); err != nil {
			return ChapterDetail{}, fetchErr("chapter", key.String(), err)
		}
		d.Citations = append(d.Citations, Citation{
			WorkID:    int(mID),
			Verse:     verseLabel(verseStart, verseEnd),
			PassageID: strconv.FormatInt(refID, 10),
		})
	}
	if err := rows.Err(); err != nil {
		return ChapterDetail{}, fetchErr("chapter", key.String(), err)
	}
	return d, nil
}

func (s *SQLiteSource) Work(ctx context.Context, id int) (WorkDetail, error) {
	key := strconv.Itoa(id)
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM manuscripts WHERE id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return WorkDetail{}, fetchErr("work", key, ErrNotFound)
	}
	if err != nil {
		return WorkDetail{}, fetchErr("work", key, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT vr.book_slug, vr.chapter, vr.verse_start, vr.verse_end
		FROM verse_refs vr
		WHERE vr.manuscript_id = ?
		ORDER BY vr.book_slug, vr.chapter, vr.verse_start NULLS LAST
	`, id)
	if err != nil {
		return WorkDetail{}, fetchErr("work", key, err)
	}
	defer rows.Close()

	d := WorkDetail{WorkID: id}
	for rows.Next() {
		var r WorkRef
		var verseStart, verseEnd sql.NullInt64
		if err := rows.Scan(&r.BookSlug, &r.Chapter, &verseStart, &verseEnd); err != nil {
			return WorkDetail{}, fetchErr("work", key, err)
		}
		r.Verse = verseLabel(verseStart, verseEnd)
		d.Refs = append(d.Refs, r)
	}
	if err := rows.Err(); err != nil {
		return WorkDetail{}, fetchErr("work", key, err)
	}
	return d, nil
}

// Passage resolves a verse_refs id to the passage text it points at.
func (s *SQLiteSource) Passage(ctx context.Context, id string) (string, error) {
	var start, end int
	var filename string
	err := s.db.QueryRowContext(ctx, `
		SELECT vr.passage_start_offset, vr.passage_end_offset, m.filename
		FROM verse_refs vr
		JOIN manuscripts m ON m.id = vr.manuscript_id
		WHERE vr.id = ?
	`, id).Scan(&start, &end, &filename)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fetchErr("passage", id, ErrNotFound)
	}
	if err != nil {
		return "", fetchErr("passage", id, err)
	}

	runes, err := s.texts.GetOrLoad(ctx, filename, func(context.Context) ([]rune, error) {
		data, err := os.ReadFile(filepath.Join(s.manuscriptsDir, filename))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("source file %s: %w", filename, ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		return []rune(string(data)), nil
	})
	if err != nil {
		return "", fetchErr("passage", id, err)
	}
	return slicePassage(runes, start, end), nil
}

// slicePassage returns the excerpt a verse_refs row points at. The parser
// stored code point offsets, so the manuscript is indexed as runes; offsets
// past either end are clamped rather than rejected.
func slicePassage(runes []rune, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	if start > end {
		start = end
	}
	snippet := strings.TrimSpace(string(runes[start:end]))
	snippet = multiBlankRe.ReplaceAllString(snippet, "\n\n")
	if sr := []rune(snippet); len(sr) > MaxPassageChars {
		snippet = string(sr[:MaxPassageChars])
	}
	return snippet
}

// verseLabel turns a row's verse columns into the locator Citation.Verse
// carries: "7", "13-17", or nil when the row cites the whole chapter.
func verseLabel(start, end sql.NullInt64) *string {
	if !start.Valid {
		return nil
	}
	var s string
	if !end.Valid || end.Int64 == start.Int64 {
		s = strconv.FormatInt(start.Int64, 10)
	} else {
		s = fmt.Sprintf("%d-%d", start.Int64, end.Int64)
	}
	return &s
}

// nullStringOr reads an optional manuscripts column, substituting fallback
// for NULL or blank values so Work fields are never empty.
func nullStringOr(s sql.NullString, fallback string) string {
	if s.Valid && strings.TrimSpace(s.String) != "" {
		return s.String
	}
	return fallback
}

// nullInt64Ptr maps a nullable year column onto Work.Year; NULL means undated.
func nullInt64Ptr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
