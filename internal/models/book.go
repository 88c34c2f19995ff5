package models

import (
	"time"

	"github.com/baharkarakas/librarium/internal/validate"
)

const MsgFutureYear = "Publication year cannot be in the future."

// Book is the relational variant: Author is a reference and deleting the
// Author deletes the Book.
type Book struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	PublicationYear int    `json:"publication_year"`
	AuthorID        int64  `json:"author"`

	// AuthorName is joined in by the store for search and ordering.
	AuthorName string `json:"-"`
}

// Validate checks a fully merged record. It is re-run on every write.
func (b Book) Validate(now time.Time) validate.Errs {
	var errs validate.Errs
	if fe := validate.Required("title", b.Title); fe != nil {
		errs.Add(fe)
	} else {
		errs.Add(validate.MaxLen("title", b.Title, 200, ""))
	}
	errs.Add(PublicationYear(b.PublicationYear, now))
	if b.AuthorID <= 0 {
		errs.Add(&validate.ErrField{Field: "author", Msg: validate.MsgRequired})
	}
	return errs
}

// PublicationYear rejects years after the current calendar year of now.
func PublicationYear(year int, now time.Time) *validate.ErrField {
	return validate.MaxInt("publication_year", int64(year), int64(now.Year()), MsgFutureYear)
}
