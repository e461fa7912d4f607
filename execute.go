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

//go:build linux

package netnspin

import (
	"errors"
	"runtime"

	"golang.org/x/sys/unix"
)

// RunIn executes fn synchronously on the caller's go routine while the
// underlying OS-level thread is attached to the network namespace referenced
// by target, returning fn's result.
//
// RunIn locks the caller's go routine to its OS-level thread for the duration
// of the call, so no other go routine can ever get scheduled onto this thread
// while it is attached to the target network namespace. Afterwards, RunIn
// always switches the thread back into its original network namespace, even
// when fn fails or panics.
//
// Errors returned by fn are wrapped in a [*WorkError]; all other errors
// returned are [*Error]s and signal that switching network namespaces failed.
// When switching back fails, RunIn returns an [ErrRestoreFailed] error even if
// fn succeeded; in this case the OS-level thread is intentionally left locked,
// so that the Go runtime throws it away as soon as the calling go routine
// terminates.
//
// Please note that go routines started by fn do not run in the target network
// namespace, as they get scheduled onto other OS-level threads. The same holds
// for anything fn hands off to other go routines, such as pooled connections.
// In contrast, child processes started by fn inherit the target network
// namespace.
func RunIn[R any](target *Handle, fn func() (R, error)) (result R, err error) {
	if err := target.withFd("setns", func(int) error { return nil }); err != nil {
		return result, err
	}

	release, err := pin()
	if err != nil {
		return result, err
	}
	defer release(&err)

	if err := target.withFd("setns", func(fd int) error {
		err := unix.Setns(fd, unix.CLONE_NEWNET)
		if err == nil {
			return nil
		}
		e := newError("setns", target.path, err)
		if errors.Is(err, unix.EINVAL) {
			e.Kind = ErrInvalidNamespace
		}
		return e
	}); err != nil {
		return result, err
	}

	result, err = fn()
	if err != nil {
		return result, &WorkError{Err: err}
	}
	return result, nil
}

// Do executes fn synchronously while attached to the network namespace of this
// handle. It is the non-generic convenience form of [RunIn], see there for
// details.
func (h *Handle) Do(fn func() error) error {
	_, err := RunIn(h, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// pin locks the calling go routine to its OS-level thread and takes a reference
// to the thread's current network namespace. The returned release function
// then must be deferred in order to switch the thread back into its original
// network namespace and unlock it again. If switching back fails, release
// replaces the error pointed to by errp with an [ErrRestoreFailed] error and
// leaves the thread locked.
func pin() (release func(errp *error), err error) {
	runtime.LockOSThread()

	callersNetns, err := Current()
	if err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}
	var callersStat unix.Stat_t
	if err := unix.Fstat(callersNetns.Fd(), &callersStat); err != nil {
		_ = callersNetns.Close()
		runtime.UnlockOSThread()
		return nil, newError("stat", threadNetns, err)
	}
	return func(errp *error) {
		defer func() { _ = callersNetns.Close() }()
		// Skip switching when we never left, such as when unsharing failed,
		// as setns(2) requires privileges even for a no-op.
		var st unix.Stat_t
		if unix.Stat(threadNetns, &st) == nil &&
			st.Dev == callersStat.Dev && st.Ino == callersStat.Ino {
			runtime.UnlockOSThread()
			return
		}
		if err := unix.Setns(callersNetns.Fd(), unix.CLONE_NEWNET); err != nil {
			*errp = &Error{
				Op:   "setns",
				Path: threadNetns,
				Kind: ErrRestoreFailed,
				Err:  errors.Join(err, *errp),
			}
			return
		}
		runtime.UnlockOSThread()
	}, nil
}
