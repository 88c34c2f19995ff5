// Package query turns caller-supplied list criteria (filters, free-text
// search, ordering, paging) into typed queries. The postgres store renders
// them to SQL; the memory store evaluates them with Match and the Sort helpers.
// Both give identical results: text ordering is by code point and ties break
// on ascending id.
package query

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/baharkarakas/librarium/internal/errs"
	"github.com/baharkarakas/librarium/internal/models"
	"github.com/baharkarakas/librarium/internal/validate"
)

const msgNumber = "Enter a number."

// Ordering is one sort key; Desc comes from a leading "-".
type Ordering struct {
	Field string
	Desc  bool
}

func (o Ordering) String() string {
	if o.Desc {
		return "-" + o.Field
	}
	return o.Field
}

// ParseOrdering accepts exactly one of allowed, optionally prefixed with "-".
// Unknown fields are rejected rather than ignored.
func ParseOrdering(raw string, allowed []string, def Ordering) (Ordering, *validate.ErrField) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	o := Ordering{Field: raw}
	if strings.HasPrefix(raw, "-") {
		o = Ordering{Field: raw[1:], Desc: true}
	}
	for _, a := range allowed {
		if a == o.Field {
			return o, nil
		}
	}
	return Ordering{}, &validate.ErrField{
		Field: "ordering",
		Msg:   "unknown ordering field " + strconv.Quote(o.Field) + "; allowed: " + strings.Join(allowed, ", "),
	}
}

// Terms splits a search string into whitespace separated terms. Every term
// must match at least one searched field.
func Terms(search string) []string { return strings.Fields(search) }

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func matchTerms(terms []string, fields ...string) bool {
	for _, t := range terms {
		hit := false
		for _, f := range fields {
			if containsFold(f, t) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func int64Param(v url.Values, name string, fe *validate.Errs) *int64 {
	raw := strings.TrimSpace(v.Get(name))
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fe.Addf(name, msgNumber)
		return nil
	}
	return &n
}

func intParam(v url.Values, name string, fe *validate.Errs) *int {
	n := int64Param(v, name, fe)
	if n == nil {
		return nil
	}
	i := int(*n)
	return &i
}

// ---------------------------------------------------------------- books

var BookOrderFields = []string{"title", "publication_year", "author__name"}

type BookQuery struct {
	Title           string // case-insensitive substring
	AuthorID        *int64
	PublicationYear *int
	Search          string // title or author name
	Order           Ordering
}

func ParseBookQuery(v url.Values) (BookQuery, error) {
	var fe validate.Errs
	q := BookQuery{
		Title:           strings.TrimSpace(v.Get("title")),
		AuthorID:        int64Param(v, "author", &fe),
		PublicationYear: intParam(v, "publication_year", &fe),
		Search:          v.Get("search"),
	}
	o, oe := ParseOrdering(v.Get("ordering"), BookOrderFields, Ordering{Field: "title"})
	fe.Add(oe)
	q.Order = o
	if len(fe) > 0 {
		return BookQuery{}, errs.Invalid(fe)
	}
	return q, nil
}

// Match evaluates the filters and search against b. b.AuthorName must be set.
func (q BookQuery) Match(b models.Book) bool {
	if q.Title != "" && !containsFold(b.Title, q.Title) {
		return false
	}
	if q.AuthorID != nil && b.AuthorID != *q.AuthorID {
		return false
	}
	if q.PublicationYear != nil && b.PublicationYear != *q.PublicationYear {
		return false
	}
	return matchTerms(Terms(q.Search), b.Title, b.AuthorName)
}

func SortBooks(books []models.Book, o Ordering) {
	sort.SliceStable(books, func(i, j int) bool {
		a, b := books[i], books[j]
		var c int
		switch o.Field {
		case "title":
			c = strings.Compare(a.Title, b.Title)
		case "publication_year":
			c = cmpInt(int64(a.PublicationYear), int64(b.PublicationYear))
		case "author__name":
			c = strings.Compare(a.AuthorName, b.AuthorName)
		}
		if o.Desc {
			c = -c
		}
		if c == 0 {
			return a.ID < b.ID
		}
		return c < 0
	})
}

// ---------------------------------------------------------------- shelf

var ShelfOrderFields = []string{"id", "title", "author", "publication_year"}

type ShelfQuery struct {
	Q               string // title contains
	Search          string // title or author
	PublicationYear *int
	Order           Ordering
}

func ParseShelfQuery(v url.Values) (ShelfQuery, error) {
	var fe validate.Errs
	q := ShelfQuery{
		Q:               strings.TrimSpace(v.Get("q")),
		Search:          v.Get("search"),
		PublicationYear: intParam(v, "publication_year", &fe),
	}
	fe.Add(validate.MaxLen("q", q.Q, 100, ""))
	o, oe := ParseOrdering(v.Get("ordering"), ShelfOrderFields, Ordering{Field: "title"})
	fe.Add(oe)
	q.Order = o
	if len(fe) > 0 {
		return ShelfQuery{}, errs.Invalid(fe)
	}
	return q, nil
}

func (q ShelfQuery) Match(b models.ShelfBook) bool {
	if q.Q != "" && !containsFold(b.Title, q.Q) {
		return false
	}
	if q.PublicationYear != nil && b.PublicationYear != *q.PublicationYear {
		return false
	}
	return matchTerms(Terms(q.Search), b.Title, b.Author)
}

func SortShelf(books []models.ShelfBook, o Ordering) {
	sort.SliceStable(books, func(i, j int) bool {
		a, b := books[i], books[j]
		var c int
		switch o.Field {
		case "id":
			c = cmpInt(a.ID, b.ID)
		case "title":
			c = strings.Compare(a.Title, b.Title)
		case "author":
			c = strings.Compare(a.Author, b.Author)
		case "publication_year":
			c = cmpInt(int64(a.PublicationYear), int64(b.PublicationYear))
		}
		if o.Desc {
			c = -c
		}
		if c == 0 {
			return a.ID < b.ID
		}
		return c < 0
	})
}

// ---------------------------------------------------------------- posts

const DefaultPageSize = 5

// MaxPage keeps (page-1)*DefaultPageSize inside an int32 offset.
const MaxPage = math.MaxInt32 / DefaultPageSize

var PostOrderFields = []string{"id", "title", "published_date"}

type PostQuery struct {
	Search   string // title, content or any tag name
	Tag      string
	AuthorID *int64
	Order    Ordering
	Page     int
	PageSize int
}

// ParsePostQuery reads q (or search), tag, author, ordering and page.
func ParsePostQuery(v url.Values) (PostQuery, error) {
	var fe validate.Errs
	q := PostQuery{
		Search:   v.Get("q"),
		Tag:      strings.ToLower(strings.TrimSpace(v.Get("tag"))),
		AuthorID: int64Param(v, "author", &fe),
		Page:     1,
		PageSize: DefaultPageSize,
	}
	if q.Search == "" {
		q.Search = v.Get("search")
	}
	fe.Add(validate.MaxLen("q", q.Search, 200, ""))
	if p := int64Param(v, "page", &fe); p != nil {
		switch {
		case *p < 1:
			fe.Addf("page", "must be >= 1")
		case *p > MaxPage:
			fe.Addf("page", "must be <= %d", MaxPage)
		default:
			q.Page = int(*p)
		}
	}
	o, oe := ParseOrdering(v.Get("ordering"), PostOrderFields, Ordering{Field: "published_date", Desc: true})
	fe.Add(oe)
	q.Order = o
	if len(fe) > 0 {
		return PostQuery{}, errs.Invalid(fe)
	}
	return q, nil
}

func (q PostQuery) Offset() int { return (q.Page - 1) * q.PageSize }

func (q PostQuery) Match(p models.Post) bool {
	if q.AuthorID != nil && p.AuthorID != *q.AuthorID {
		return false
	}
	names := p.TagNames()
	if q.Tag != "" {
		found := false
		for _, n := range names {
			if n == q.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return matchTerms(Terms(q.Search), append([]string{p.Title, p.Content}, names...)...)
}

func SortPosts(posts []models.Post, o Ordering) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		var c int
		switch o.Field {
		case "id":
			c = cmpInt(a.ID, b.ID)
		case "title":
			c = strings.Compare(a.Title, b.Title)
		case "published_date":
			c = a.PublishedDate.Compare(b.PublishedDate)
		}
		if o.Desc {
			c = -c
		}
		if c == 0 {
			return a.ID < b.ID
		}
		return c < 0
	})
}

// Paginate returns the page slice of items; out-of-range pages are empty.
func Paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 || offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
