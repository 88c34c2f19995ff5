package models

import "github.com/baharkarakas/librarium/internal/validate"

type Author struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Books []Book `json:"books"`
}

func (a Author) Validate() validate.Errs {
	var errs validate.Errs
	if fe := validate.Required("name", a.Name); fe != nil {
		errs.Add(fe)
	} else {
		errs.Add(validate.MaxLen("name", a.Name, 100, ""))
	}
	return errs
}
