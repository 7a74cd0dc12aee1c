// Package failure defines the error kinds a step can fail with.
//
// Every error that crosses a step boundary is a *Error carrying a stable Kind.
// The executor records the kind on the step outcome; callers match on it with
// errors.Is against the sentinels below or with KindOf.
package failure

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind is a stable error kind name. It appears verbatim in run reports.
type Kind string

const (
	KindConfiguration         Kind = "ConfigurationError"
	KindAnchorNotFound        Kind = "AnchorNotFound"
	KindTemplateNotFound      Kind = "TemplateNotFound"
	KindUnresolvedPlaceholder Kind = "UnresolvedPlaceholder"
	KindPathNotFound          Kind = "PathNotFound"
	KindPathExists            Kind = "PathExists"
	KindSubprocessFailed      Kind = "SubprocessFailed"
	KindTimedOut              Kind = "TimedOut"
	KindIO                    Kind = "IOError"
)

// Sentinels for errors.Is. Only the Kind is compared.
var (
	ErrConfiguration         = &Error{Kind: KindConfiguration}
	ErrAnchorNotFound        = &Error{Kind: KindAnchorNotFound}
	ErrTemplateNotFound      = &Error{Kind: KindTemplateNotFound}
	ErrUnresolvedPlaceholder = &Error{Kind: KindUnresolvedPlaceholder}
	ErrPathNotFound          = &Error{Kind: KindPathNotFound}
	ErrPathExists            = &Error{Kind: KindPathExists}
	ErrSubprocessFailed      = &Error{Kind: KindSubprocessFailed}
	ErrTimedOut              = &Error{Kind: KindTimedOut}
	ErrIO                    = &Error{Kind: KindIO}
)

// Error is a classified step error.
type Error struct {
	Kind     Kind
	Msg      string
	Path     string // file the error refers to, if any
	ExitCode int    // set for KindSubprocessFailed
	Err      error
}

// Error returns "Kind: message (path): cause", omitting empty parts.
func (e *Error) Error() string {
	s := string(e.Kind)
	if e.Kind == KindSubprocessFailed {
		s = fmt.Sprintf("%s(%d)", e.Kind, e.ExitCode)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Path != "" {
		s += " (" + e.Path + ")"
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New creates an error of the given kind.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind around cause.
func Wrap(kind Kind, msg string, cause error) error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// WithPath creates an error of the given kind that refers to path.
func WithPath(kind Kind, path, msg string, cause error) error {
	return &Error{Kind: kind, Msg: msg, Path: path, Err: cause}
}

// Subprocess creates a KindSubprocessFailed error for a command that exited
// with exitCode. Use -1 when the process could not be started.
func Subprocess(command string, exitCode int, cause error) error {
	return &Error{Kind: KindSubprocessFailed, Msg: command, ExitCode: exitCode, Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// FromFS classifies a filesystem error for path: fs.ErrNotExist becomes
// KindPathNotFound, fs.ErrExist KindPathExists and anything else KindIO.
// Errors that are already classified pass through unchanged.
func FromFS(path string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return WithPath(KindPathNotFound, path, "", err)
	case errors.Is(err, fs.ErrExist):
		return WithPath(KindPathExists, path, "", err)
	default:
		return WithPath(KindIO, path, "", err)
	}
}
