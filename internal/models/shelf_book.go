package models

import (
	"time"

	"github.com/baharkarakas/librarium/internal/validate"
)

// ShelfBook is the bookshelf variant of a book: the author is free text and
// there is no Author entity behind it.
type ShelfBook struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	PublicationYear int    `json:"publication_year"`
}

func (b ShelfBook) Validate(now time.Time) validate.Errs {
	var errs validate.Errs
	if fe := validate.Required("title", b.Title); fe != nil {
		errs.Add(fe)
	} else {
		errs.Add(validate.MaxLen("title", b.Title, 200, ""))
	}
	if fe := validate.Required("author", b.Author); fe != nil {
		errs.Add(fe)
	} else {
		errs.Add(validate.MaxLen("author", b.Author, 100, ""))
	}
	errs.Add(PublicationYear(b.PublicationYear, now))
	return errs
}
