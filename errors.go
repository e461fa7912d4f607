// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package netnspin

import (
	"errors"
	"syscall"
)

// Kinds of failures; use [errors.Is] to check for them.
var (
	ErrNotFound            = errors.New("network namespace not found")
	ErrAlreadyExists       = errors.New("network namespace already exists")
	ErrInvalidNamespace    = errors.New("not a valid network namespace")
	ErrInvalidName         = errors.New("invalid network namespace name")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrUnsupportedPlatform = errors.New("network namespaces not supported on this platform")
	ErrIO                  = errors.New("i/o failure")
	// ErrRestoreFailed signals that the calling OS-level thread could not be
	// switched back into its original network namespace. The thread must not
	// be used anymore for anything network namespace-sensitive.
	ErrRestoreFailed = errors.New("cannot restore original network namespace")
)

// ErrStale is the cause of [ErrAlreadyExists] errors when the existing entry
// is just a stale file without any network namespace mounted onto it, such as
// left behind by a crashed process.
var ErrStale = errors.New("stale entry without network namespace")

// Error describes a failed operation on a network namespace together with the
// kind of failure and the underlying cause, if any.
type Error struct {
	Op   string // operation, such as "mount" or "setns"
	Path string // VFS path involved, if any
	Kind error  // one of the Err* kinds
	Err  error  // underlying cause, often a syscall.Errno
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns both the kind of failure as well as its underlying cause, so
// that [errors.Is] matches either.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// WorkError wraps an error returned by a function executed inside a network
// namespace, telling it apart from failures to switch namespaces.
type WorkError struct {
	Err error
}

func (e *WorkError) Error() string { return e.Err.Error() }

func (e *WorkError) Unwrap() error { return e.Err }

// newError returns an *Error for the specified operation, deriving the kind of
// failure from the passed cause.
func newError(op, path string, err error) *Error {
	return &Error{Op: op, Path: path, Kind: kindOf(err), Err: err}
}

// kindOf maps OS-level errors to our kinds of failures.
func kindOf(err error) error {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return ErrIO
	}
	switch errno {
	case syscall.ENOENT:
		return ErrNotFound
	case syscall.EEXIST:
		return ErrAlreadyExists
	case syscall.EPERM, syscall.EACCES:
		return ErrPermissionDenied
	case syscall.ENOSYS, syscall.EOPNOTSUPP:
		return ErrUnsupportedPlatform
	}
	return ErrIO
}
