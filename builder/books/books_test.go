package books

import (
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"folio/builder/config"
	"folio/builder/parser"
	"folio/builder/testutil"
)

func setupBooksTest(t *testing.T) (*Service, afero.Fs) {
	t.Helper()
	fs := testutil.NewContentFs()
	cfg := config.Default()
	return NewService(fs, cfg, parser.NewPipeline()), fs
}

func TestListBooksSortsByPublishedDateDescending(t *testing.T) {
	svc, fs := setupBooksTest(t)
	testutil.WriteBook(t, fs, "en", testutil.BookSpec{
		Slug: "early", Title: "Early", Author: "A", PublishedDate: "2022-03-01",
	})
	testutil.WriteBook(t, fs, "en", testutil.BookSpec{
		Slug: "late", Title: "Late", Author: "A", PublishedDate: "2024-07-15",
	})
	testutil.WriteBook(t, fs, "en", testutil.BookSpec{
		Slug: "mid", Title: "Mid", Author: "A", PublishedDate: "2023-01-01",
	})

	books, err := svc.ListBooks("en")
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 3 {
		t.Fatalf("got %d books, want 3", len(books))
	}
	wantOrder := []string{"late", "mid", "early"}
	for i, want := range wantOrder {
		if books[i].Slug != want {
			t.Errorf("books[%d].Slug = %q, want %q", i, books[i].Slug, want)
		}
	}
}

func TestListBooksSkipsDirsWithoutMeta(t *testing.T) {
	svc, fs := setupBooksTest(t)
	testutil.WriteBook(t, fs, "en", testutil.BookSpec{
		Slug: "real", Title: "Real", Author: "A", PublishedDate: "2024-01-01",
	})
	testutil.WriteBook(t, fs, "en", testutil.BookSpec{Slug: "draft", WithoutMeta: true})
	// And a chapters dir inside the draft, which still does not make it a book.
	testutil.WriteChapter(t, fs, "en", "draft", testutil.ChapterSpec{Slug: "ch1", Title: "One"})

	books, err := svc.ListBooks("en")
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 1 {
		t.Fatalf("got %d books, want 1", len(books))
	}
	if books[0].Slug != "real" {
		t.Errorf("Slug = %q, want real", books[0].Slug)
	}
}

func TestListBooksMissingLocaleIsEmpty(t *testing.T) {
	svc, _ := setupBooksTest(t)

	books, err := svc.ListBooks("ko")
	if err != nil {
		t.Fatal(err)
	}
	if books == nil || len(books) != 0 {
		t.Fatalf("got %v, want empty slice", books)
	}
}

func TestListBooksChapterCount(t *testing.T) {
	svc, fs := setupBooksTest(t)
	testutil.WriteBook(t, fs, "en", testutil.BookSpec{
		Slug: "counted", Title: "Counted", Author: "A", PublishedDate: "2024-01-01",
	})
	testutil.WriteChapter(t, fs, "en", "counted", testutil.ChapterSpec{Slug: "one", Title: "One", Order: 1})
	testutil.WriteChapter(t, fs, "en", "counted", testutil.ChapterSpec{Slug: "two", Title: "Two", Order: 2})
	testutil.WriteBook(t, fs, "en", testutil.BookSpec{
		Slug: "bare", Title: "Bare", Author: "A", PublishedDate: "2023-01-01",
	})

	books, err := svc.ListBooks("en")
	if err != nil {
		t.Fatal(err)
	}
	counts := map[string]int{}
	for _, b := range books {
		counts[b.Slug] = b.ChapterCount
	}
	if counts["counted"] != 2 {
		t.Errorf("counted.ChapterCount = %d, want 2", counts["counted"])
	}
	if counts["bare"] != 0 {
		t.Errorf("bare.ChapterCount = %d, want 0", counts["bare"])
	}
}

func TestGetBookSortsChaptersByOrder(t *testing.T) {
	svc, fs := setupBooksTest(t)
	testutil.WriteBook(t, fs, "en", testutil.BookSpec{
		Slug: "guide", Title: "Guide", Author: "A", PublishedDate: "2024-01-01",
	})
	// Written out of order on purpose.
	testutil.WriteChapter(t, fs, "en", "guide", testutil.ChapterSpec{Slug: "closing", Title: "Closing", Order: 3})
	testutil.WriteChapter(t, fs, "en", "guide", testutil.ChapterSpec{Slug: "opening", Title: "Opening", Order: 1})
	testutil.WriteChapter(t, fs, "en", "guide", testutil.ChapterSpec{Slug: "middle", Title: "Middle", Order: 2})

	book, err := svc.GetBook("guide", "en")
	if err != nil {
		t.Fatal(err)
	}
	if book == nil {
		t.Fatal("got nil book")
	}
	var slugs []string
	for _, c := range book.Chapters {
		slugs = append(slugs, c.Slug)
	}
	want := []string{"opening", "middle", "closing"}
	if !reflect.DeepEqual(slugs, want) {
		t.Errorf("chapter order = %v, want %v", slugs, want)
	}
}

func TestGetBookMissingMetaIsNil(t *testing.T) {
	svc, fs := setupBooksTest(t)
	testutil.WriteBook(t, fs, "en", testutil.BookSpec{Slug: "draft", WithoutMeta: true})

	book, err := svc.GetBook("draft", "en")
	if err != nil {
		t.Fatal(err)
	}
	if book != nil {
		t.Fatalf("got %+v, want nil", book)
	}
}

func TestGetBookWithoutChaptersDirIsEmpty(t *testing.T) {
	svc, fs := setupBooksTest(t)
	testutil.WriteBook(t, fs, "en", testutil.BookSpec{
		Slug: "bare", Title: "Bare", Author: "A", PublishedDate: "2024-01-01",
	})

	book, err := svc.GetBook("bare", "en")
	if err != nil {
		t.Fatal(err)
	}
	if book == nil {
		t.Fatal("got nil book")
	}
	if len(book.Chapters) != 0 {
		t.Fatalf("got %d chapters, want 0", len(book.Chapters))
	}
}

// A chapter without an order field takes its 1-based position among the
// files as read when listed through the book.
func TestGetBookDefaultsOrderToPosition(t *testing.T) {
	svc, fs := setupBooksTest(t)
	testutil.WriteBook(t, fs, "en", testutil.BookSpec{
		Slug: "mixed", Title: "Mixed", Author: "A", PublishedDate: "2024-01-01",
	})
	testutil.WriteChapter(t, fs, "en", "mixed", testutil.ChapterSpec{Slug: "alpha", Title: "Alpha"})
	testutil.WriteChapter(t, fs, "en", "mixed", testutil.ChapterSpec{Slug: "beta", Title: "Beta"})

	book, err := svc.GetBook("mixed", "en")
	if err != nil {
		t.Fatal(err)
	}
	orders := map[string]int{}
	for _, c := range book.Chapters {
		orders[c.Slug] = c.Order
	}
	if orders["alpha"] != 1 || orders["beta"] != 2 {
		t.Errorf("orders = %v, want alpha=1 beta=2", orders)
	}
}

// The same chapter fetched directly keeps order 0: there is no book
// context to derive a position from.
func TestGetChapterDefaultsOrderToZero(t *testing.T) {
	svc, fs := setupBooksTest(t)
	testutil.WriteBook(t, fs, "en", testutil.BookSpec{
		Slug: "mixed", Title: "Mixed", Author: "A", PublishedDate: "2024-01-01",
	})
	testutil.WriteChapter(t, fs, "en", "mixed", testutil.ChapterSpec{Slug: "alpha", Title: "Alpha"})

	ch, err := svc.GetChapter("mixed", "alpha", "en")
	if err != nil {
		t.Fatal(err)
	}
	if ch == nil {
		t.Fatal("got nil chapter")
	}
	if ch.Order != 0 {
		t.Errorf("Order = %d, want 0", ch.Order)
	}
}

func TestGetChapterRendersContent(t *testing.T) {
	svc, fs := setupBooksTest(t)
	testutil.WriteBook(t, fs, "en", testutil.BookSpec{
		Slug: "guide", Title: "Guide", Author: "A", PublishedDate: "2024-01-01",
	})
	testutil.WriteChapter(t, fs, "en", "guide", testutil.ChapterSpec{
		Slug: "one", Title: "One", Order: 1, Body: "Some *emphasis* here.",
	})

	ch, err := svc.GetChapter("guide", "one", "en")
	if err != nil {
		t.Fatal(err)
	}
	if ch == nil {
		t.Fatal("got nil chapter")
	}
	if !strings.Contains(ch.Content, "<em>emphasis</em>") {
		t.Errorf("content = %q, want rendered emphasis", ch.Content)
	}
	if ch.ID != "one" {
		t.Errorf("ID = %q, want slug fallback", ch.ID)
	}
}

func TestGetChapterMissingIsNil(t *testing.T) {
	svc, fs := setupBooksTest(t)
	testutil.WriteBook(t, fs, "en", testutil.BookSpec{
		Slug: "guide", Title: "Guide", Author: "A", PublishedDate: "2024-01-01",
	})

	ch, err := svc.GetChapter("guide", "nope", "en")
	if err != nil {
		t.Fatal(err)
	}
	if ch != nil {
		t.Fatalf("got %+v, want nil", ch)
	}
}

func TestBookMetaIDFallsBackToSlug(t *testing.T) {
	svc, fs := setupBooksTest(t)
	testutil.WriteBook(t, fs, "en", testutil.BookSpec{
		Slug: "anon", Title: "Anon", Author: "A", PublishedDate: "2024-01-01",
	})
	testutil.WriteBook(t, fs, "en", testutil.BookSpec{
		Slug: "named", ID: "custom-id", Title: "Named", Author: "A", PublishedDate: "2023-01-01",
	})

	books, err := svc.ListBooks("en")
	if err != nil {
		t.Fatal(err)
	}
	ids := map[string]string{}
	for _, b := range books {
		ids[b.Slug] = b.ID
	}
	if ids["anon"] != "anon" {
		t.Errorf("anon.ID = %q, want slug fallback", ids["anon"])
	}
	if ids["named"] != "custom-id" {
		t.Errorf("named.ID = %q, want custom-id", ids["named"])
	}
}

func TestListAllChapterSlugs(t *testing.T) {
	svc, fs := setupBooksTest(t)
	testutil.WriteBook(t, fs, "en", testutil.BookSpec{
		Slug: "guide", Title: "Guide", Author: "A", PublishedDate: "2024-01-01",
	})
	testutil.WriteChapter(t, fs, "en", "guide", testutil.ChapterSpec{Slug: "one", Title: "One", Order: 1})
	testutil.WriteBook(t, fs, "ja", testutil.BookSpec{
		Slug: "guide", Title: "Guide", Author: "A", PublishedDate: "2024-01-01",
	})
	testutil.WriteChapter(t, fs, "ja", "guide", testutil.ChapterSpec{Slug: "one", Title: "一", Order: 1})
	testutil.WriteChapter(t, fs, "ja", "guide", testutil.ChapterSpec{Slug: "two", Title: "二", Order: 2})

	refs, err := svc.ListAllChapterSlugs()
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 3 {
		t.Fatalf("got %d refs, want 3", len(refs))
	}
	seen := map[string]bool{}
	for _, r := range refs {
		seen[r.Locale+"/"+r.BookSlug+"/"+r.ChapterSlug] = true
	}
	for _, want := range []string{"en/guide/one", "ja/guide/one", "ja/guide/two"} {
		if !seen[want] {
			t.Errorf("missing %s", want)
		}
	}
}

func TestListBooksByTagAndListTags(t *testing.T) {
	svc, fs := setupBooksTest(t)
	testutil.WriteBook(t, fs, "en", testutil.BookSpec{
		Slug: "go-book", Title: "Go Book", Author: "A", PublishedDate: "2024-01-01",
		Tags: []string{"Programming", "Go"},
	})
	testutil.WriteBook(t, fs, "en", testutil.BookSpec{
		Slug: "novel", Title: "Novel", Author: "B", PublishedDate: "2023-01-01",
		Tags: []string{"Fiction"},
	})

	tagged, err := svc.ListBooksByTag("Go", "en")
	if err != nil {
		t.Fatal(err)
	}
	if len(tagged) != 1 || tagged[0].Slug != "go-book" {
		t.Fatalf("ListBooksByTag = %v, want [go-book]", tagged)
	}

	tags, err := svc.ListTags("en")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Fiction", "Go", "Programming"}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("ListTags = %v, want %v", tags, want)
	}
}

func TestFilterValidBookDirs(t *testing.T) {
	fs := testutil.NewContentFs()
	testutil.WriteBook(t, fs, "en", testutil.BookSpec{
		Slug: "valid", Title: "Valid", Author: "A", PublishedDate: "2024-01-01",
	})
	testutil.WriteBook(t, fs, "en", testutil.BookSpec{Slug: "invalid", WithoutMeta: true})
	// A stray file at the locale root is not a book directory.
	if err := afero.WriteFile(fs, "content/books/en/readme.txt", []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	entries, err := afero.ReadDir(fs, "content/books/en")
	if err != nil {
		t.Fatal(err)
	}
	slugs, err := filterValidBookDirs(fs, "content/books/en", entries)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(slugs, []string{"valid"}) {
		t.Errorf("slugs = %v, want [valid]", slugs)
	}
}

func TestParseDateFormats(t *testing.T) {
	tests := []struct {
		in     string
		isZero bool
	}{
		{"2024-03-01", false},
		{"2024-03-01T10:00:00Z", false},
		{"March 1, 2024", true},
		{"", true},
	}
	for _, tt := range tests {
		if got := parseDate(tt.in).IsZero(); got != tt.isZero {
			t.Errorf("parseDate(%q).IsZero() = %v, want %v", tt.in, got, tt.isZero)
		}
	}
}
