package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/baharkarakas/librarium/internal/validate"
)

const (
	MsgTitleTooShort   = "Title must be at least 5 characters long."
	MsgContentTooShort = "Content must be at least 10 characters long."
	MsgCommentTooShort = "Comment must be at least 3 characters long."
	MsgCommentTooLong  = "Comment cannot exceed 1000 characters."

	MaxTagLen     = 50
	MaxCommentLen = 1000
)

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Post struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	AuthorID      int64     `json:"author"`
	PublishedDate time.Time `json:"published_date"`
	Tags          []Tag     `json:"tags"`
	Comments      []Comment `json:"comments,omitempty"`
}

func (p Post) Validate() validate.Errs {
	var errs validate.Errs
	if fe := validate.Required("title", p.Title); fe != nil {
		errs.Add(fe)
	} else {
		errs.Add(
			validate.MinLen("title", p.Title, 5, MsgTitleTooShort),
			validate.MaxLen("title", p.Title, 200, ""),
		)
	}
	if fe := validate.Required("content", p.Content); fe != nil {
		errs.Add(fe)
	} else {
		errs.Add(validate.MinLen("content", p.Content, 10, MsgContentTooShort))
	}
	return errs
}

// TagNames returns the names of the post's tags in stored order.
func (p Post) TagNames() []string {
	out := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		out = append(out, t.Name)
	}
	return out
}

type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post"`
	AuthorID  int64     `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeComment trims raw and enforces the length bounds: at least 3
// characters after trimming, at most 1000 before.
func NormalizeComment(raw string) (string, *validate.ErrField) {
	trimmed := strings.TrimSpace(raw)
	if utf8.RuneCountInString(trimmed) < 3 {
		return "", &validate.ErrField{Field: "content", Msg: MsgCommentTooShort}
	}
	if utf8.RuneCountInString(raw) > MaxCommentLen {
		return "", &validate.ErrField{Field: "content", Msg: MsgCommentTooLong}
	}
	return trimmed, nil
}

// TagList decodes either a comma separated string or an array of strings.
type TagList []string

func (t *TagList) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = splitTags(s)
		return nil
	}
	var arr []string
	if err := json.Unmarshal(b, &arr); err != nil {
		return fmt.Errorf("tags: expected a string or a list of strings")
	}
	var out TagList
	for _, a := range arr {
		out = append(out, splitTags(a)...)
	}
	if out == nil {
		out = TagList{}
	}
	*t = out
	return nil
}

func splitTags(s string) []string { return strings.Split(s, ",") }

var tagNameRe = regexp.MustCompile(`^[a-z0-9_-]+$`)

// NormalizeTags lowercases, trims and de-duplicates tag names, keeping the
// first occurrence order. Blank entries are skipped.
func NormalizeTags(raw []string) ([]string, validate.Errs) {
	var errs validate.Errs
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		name := strings.ToLower(strings.TrimSpace(r))
		if name == "" {
			continue
		}
		if utf8.RuneCountInString(name) > MaxTagLen {
			errs.Addf("tags", "Tag '%s' is too long (max %d characters).", name, MaxTagLen)
			continue
		}
		if !tagNameRe.MatchString(name) {
			errs.Addf("tags", "Invalid tag '%s': tags may only contain letters, numbers, hyphens and underscores.", name)
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, errs
}
