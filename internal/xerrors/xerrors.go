// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

// Package xerrors backports errors.Join (introduced in go 1.20) so the root
// module, which targets go 1.18, can aggregate multiple finalizer/teardown
// errors into one without bumping the language version.
package xerrors

import "strings"

// Join mirrors the standard library's errors.Join: it returns an error that
// wraps every non-nil error in errs, or nil if all of them are nil. The
// returned error's Error() joins each wrapped error's message with a newline,
// and its Unwrap() []error exposes the individual errors for errors.Is/As.
func Join(errs ...error) error {
	n := 0

	for _, err := range errs {
		if err != nil {
			n++
		}
	}

	if n == 0 {
		return nil
	}

	e := &joinError{errs: make([]error, 0, n)}

	for _, err := range errs {
		if err != nil {
			e.errs = append(e.errs, err)
		}
	}

	return e
}

type joinError struct {
	errs []error
}

func (e *joinError) Error() string {
	var b strings.Builder

	for i, err := range e.errs {
		if i > 0 {
			b.WriteByte('\n')
		}

		b.WriteString(err.Error())
	}

	return b.String()
}

func (e *joinError) Unwrap() []error {
	return e.errs
}
