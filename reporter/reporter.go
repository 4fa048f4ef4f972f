// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package reporter contains the structured error type returned by every
// stage of the compiler, and the types used to report errors and warnings
// while compiling.
package reporter

import (
	"errors"
	"sync"
)

// ErrorReporter is responsible for reporting the given error. If the reporter
// returns a non-nil error, compilation aborts with that error. If the
// reporter returns nil, the current stage continues so that more errors can
// be found, but compilation still fails once the stage completes.
type ErrorReporter func(err *Error) error

// WarningReporter is responsible for reporting the given warning. Warnings
// never cause compilation to fail.
type WarningReporter func(*Error)

// Reporter receives the errors and warnings found during compilation.
type Reporter interface {
	Error(*Error) error
	Warning(*Error)
}

// NewReporter creates a new reporter that invokes the given functions on
// error or warning. A nil errs reports every error back, which fails at the
// first error found.
func NewReporter(errs ErrorReporter, warnings WarningReporter) Reporter {
	return reporterFuncs{errs: errs, warnings: warnings}
}

type reporterFuncs struct {
	errs     ErrorReporter
	warnings WarningReporter
}

func (r reporterFuncs) Error(err *Error) error {
	if r.errs == nil {
		return err
	}
	return r.errs(err)
}

func (r reporterFuncs) Warning(err *Error) {
	if r.warnings != nil {
		r.warnings(err)
	}
}

// Handler is used by compilation stages to report errors and warnings. It
// remembers the first error its Reporter chose to abort with.
//
// This type is thread-safe.
type Handler struct {
	reporter Reporter

	mu           sync.Mutex
	errsReported bool
	err          error
}

// NewHandler creates a new Handler that reports to rep. If rep is nil, a
// default reporter that fails on the first error is used.
func NewHandler(rep Reporter) *Handler {
	if rep == nil {
		rep = NewReporter(nil, nil)
	}
	return &Handler{reporter: rep}
}

// HandleError reports err. It returns a non-nil error if compilation should
// abort.
//
// Errors that are not *Error are returned as-is and always abort.
func (h *Handler) HandleError(err error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.err != nil {
		return h.err
	}

	var e *Error
	if errors.As(err, &e) {
		h.errsReported = true
		err = h.reporter.Error(e)
	}
	h.err = err
	return err
}

// HandleWarning reports a warning.
func (h *Handler) HandleWarning(w *Error) {
	// Warnings don't interact with mutable fields.
	h.reporter.Warning(w)
}

// Error returns the error compilation should fail with, if any.
//
// If errors were reported but the Reporter swallowed them all, this returns
// [ErrInvalidSource].
func (h *Handler) Error() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.errsReported && h.err == nil {
		return ErrInvalidSource
	}
	return h.err
}
