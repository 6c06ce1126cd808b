// SPDX-License-Identifier: MPL-2.0

package wheelhouse

import "fmt"

// ErrorKind classifies lifecycle failures so callers can branch on the
// failure class instead of matching message text.
type ErrorKind int

const (
	// KindLocator marks an unusable source locator: unsupported URL
	// scheme, unreadable archive, or a directory without setup.py.
	KindLocator ErrorKind = iota + 1
	// KindTool marks a failed external tool invocation (pip, the venv
	// builder, auditwheel) or a required tool missing from PATH.
	KindTool
	// KindCollision marks a destination archive that already exists.
	KindCollision
	// KindCompatibility marks an archive whose declared platform does
	// not match the installing machine.
	KindCompatibility
)

func (k ErrorKind) String() string {
	switch k {
	case KindLocator:
		return "locator"
	case KindTool:
		return "tool"
	case KindCollision:
		return "collision"
	case KindCompatibility:
		return "compatibility"
	default:
		return "unknown"
	}
}

// Error is the typed failure of a lifecycle operation.
type Error struct {
	Kind ErrorKind
	// Msg describes the failure. For KindTool it includes the tool's
	// aggregated stderr, reported here exactly once.
	Msg string
	// Err is the underlying cause, when one exists.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}
