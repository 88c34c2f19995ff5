package models

import "github.com/baharkarakas/librarium/internal/validate"

// Library only associates Books; it never owns their lifecycle.
type Library struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	BookIDs []int64 `json:"books"`
}

func (l Library) Validate() validate.Errs {
	var errs validate.Errs
	if fe := validate.Required("name", l.Name); fe != nil {
		errs.Add(fe)
	} else {
		errs.Add(validate.MaxLen("name", l.Name, 200, ""))
	}
	return errs
}

// Librarian belongs to exactly one Library and each Library has at most one.
type Librarian struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	LibraryID int64  `json:"library"`
}

func (l Librarian) Validate() validate.Errs {
	var errs validate.Errs
	if fe := validate.Required("name", l.Name); fe != nil {
		errs.Add(fe)
	} else {
		errs.Add(validate.MaxLen("name", l.Name, 100, ""))
	}
	if l.LibraryID <= 0 {
		errs.Add(&validate.ErrField{Field: "library", Msg: validate.MsgRequired})
	}
	return errs
}
