package validate

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"
)

const MsgRequired = "required"

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Add appends every non-nil field error.
func (e *Errs) Add(fe ...*ErrField) {
	for _, f := range fe {
		if f != nil {
			*e = append(*e, *f)
		}
	}
}

// Addf appends a field error built from a format string.
func (e *Errs) Addf(field, format string, args ...any) {
	*e = append(*e, ErrField{Field: field, Msg: fmt.Sprintf(format, args...)})
}

// Has reports whether field already carries an error.
func (e Errs) Has(field string) bool {
	for _, f := range e {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Err returns nil when no field failed, so callers can write `return errs.Err()`.
func (e Errs) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// ByField groups messages per field, keeping their insertion order.
func (e Errs) ByField() map[string][]string {
	out := make(map[string][]string, len(e))
	for _, f := range e {
		out[f.Field] = append(out[f.Field], f.Msg)
	}
	return out
}

// Helpers

func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: MsgRequired}
	}
	return nil
}

// Present reports a required error for a nil pointer field.
func Present[T any](field string, v *T) *ErrField {
	if v == nil {
		return &ErrField{Field: field, Msg: MsgRequired}
	}
	return nil
}

func MinInt(field string, v, min int64) *ErrField {
	if v < min {
		return &ErrField{Field: field, Msg: "must be >= " + strconv.FormatInt(min, 10)}
	}
	return nil
}

func MaxInt(field string, v, max int64, msg string) *ErrField {
	if v > max {
		if msg == "" {
			msg = "must be <= " + strconv.FormatInt(max, 10)
		}
		return &ErrField{Field: field, Msg: msg}
	}
	return nil
}

// MinLen and MaxLen count runes, not bytes.
func MinLen(field, value string, min int, msg string) *ErrField {
	if utf8.RuneCountInString(value) < min {
		if msg == "" {
			msg = fmt.Sprintf("must be at least %d characters long", min)
		}
		return &ErrField{Field: field, Msg: msg}
	}
	return nil
}

func MaxLen(field, value string, max int, msg string) *ErrField {
	if utf8.RuneCountInString(value) > max {
		if msg == "" {
			msg = fmt.Sprintf("ensure this field has no more than %d characters", max)
		}
		return &ErrField{Field: field, Msg: msg}
	}
	return nil
}

func Email(field, value string) *ErrField {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return &ErrField{Field: field, Msg: "enter a valid email address"}
	}
	return nil
}
