// Package errors provides helpers for combining a sentinel error with
// contextual detail so that callers can match either with errors.Is/As.
package errors

// With returns an error that represents detail layered on top of the base
// error. The returned error matches both base and detail under errors.Is
// and errors.As; its message leads with the detail.
func With(base, detail error) error {
	if base == nil && detail == nil {
		return nil
	}
	if detail == nil {
		return base
	}
	if base == nil {
		return detail
	}
	return union{base: base, detail: detail}
}

type union struct {
	base   error
	detail error
}

func (u union) Error() string {
	return u.detail.Error() + ": " + u.base.Error()
}

// Unwrap exposes both branches to the stdlib errors traversal.
func (u union) Unwrap() []error {
	return []error{u.detail, u.base}
}
