// SPDX-License-Identifier: EPL-2.0

package status

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnspecified marks a failure that carries no native status, such as a
// null reference returned where only success or failure was reported.
var ErrUnspecified = errors.New("unspecified native failure")

// StatusError reports a native call that returned a nonzero status.
type StatusError struct {
	Op   string
	Code Code
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %s", e.Op, e.Code)
}

// Is matches another *StatusError carrying the same code. An empty Op on
// the target matches any operation.
func (e *StatusError) Is(target error) bool {
	t, ok := target.(*StatusError)
	if !ok {
		return false
	}

	return t.Code == e.Code && (t.Op == "" || t.Op == e.Op)
}

// FileError reports that the source path could not be resolved or opened.
// Code is zero when the failure carried no status (Err explains it then).
type FileError struct {
	Path string
	Code Code
	Err  error
}

func (e *FileError) Error() string {
	switch {
	case e.Err != nil && e.Code != OK:
		return fmt.Sprintf("open %q: status %s: %v", e.Path, e.Code, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("open %q: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("open %q: status %s", e.Path, e.Code)
	}
}

func (e *FileError) Unwrap() error { return e.Err }

// TeardownError collects the failures seen while stopping, uninitializing
// and closing a graph. It is always fatal: there is no defined state to
// resume from once releasing native resources fails.
type TeardownError struct {
	Errs []error
}

func (e *TeardownError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}

	return "fatal teardown failure: " + strings.Join(msgs, "; ")
}

func (e *TeardownError) Unwrap() []error { return e.Errs }

// Fatal always reports true.
func (e *TeardownError) Fatal() bool { return true }

// Check returns nil for OK and a *StatusError naming op otherwise.
func Check(op string, code Code) error {
	if code == OK {
		return nil
	}

	return &StatusError{Op: op, Code: code}
}

// IsFatal reports whether err (or anything it wraps) is fatal.
func IsFatal(err error) bool {
	var fatal interface{ Fatal() bool }
	if errors.As(err, &fatal) {
		return fatal.Fatal()
	}

	return false
}

// CodeOf extracts the native status carried by err, if any.
func CodeOf(err error) (Code, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}

	var fe *FileError
	if errors.As(err, &fe) && fe.Code != OK {
		return fe.Code, true
	}

	return OK, false
}
