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

package nstest

import (
	"fmt"
	"runtime"

	"github.com/thediveo/netnspin"
	"golang.org/x/sys/unix"

	. "github.com/onsi/ginkgo/v2" //nolint:staticcheck // ST1001 rule does not apply
	. "github.com/onsi/gomega"    //nolint:staticcheck // ST1001 rule does not apply
)

// NewTransient creates a new network namespace, but doesn't enter it. Instead,
// it returns a handle referencing the new network namespace. NewTransient
// also schedules a Ginkgo deferred cleanup in order to close the handle; the
// caller thus should not close it.
func NewTransient() *netnspin.Handle {
	GinkgoHelper()

	h, err := netnspin.NewTransient()
	Expect(err).NotTo(HaveOccurred(), "cannot create transient network namespace")
	DeferCleanup(func() { _ = h.Close() })
	return h
}

// EnterTransient creates and enters a new (and isolated) network namespace,
// returning a function that needs to be defer'ed in order to correctly switch
// the calling go routine and its locked OS-level thread back when the caller
// itself returns.
//
//	defer nstest.EnterTransient()() // sic!
//
// In case the caller cannot be switched back correctly, the defer'ed clean up
// will panic with an error description; the OS-level thread then stays locked
// and thus will be thrown away.
func EnterTransient() func() {
	GinkgoHelper()

	runtime.LockOSThread()

	callersNetns, err := netnspin.Current()
	Expect(err).NotTo(HaveOccurred(),
		"cannot determine current network namespace from procfs")
	Expect(unix.Unshare(unix.CLONE_NEWNET)).To(Succeed(),
		"cannot create new network namespace")

	// Our cleanup cannot be DeferCleanup'ed, because we need to restore the current
	// locked go routine, so that the defer rollback sequence is kept correct.
	return func() {
		if err := unix.Setns(callersNetns.Fd(), unix.CLONE_NEWNET); err != nil {
			panic(fmt.Sprintf("leaving from EnterTransient: cannot restore original network namespace, reason: %s",
				err.Error()))
		}
		_ = callersNetns.Close()
		runtime.UnlockOSThread()
	}
}

// Execute fn synchronously while attached to the network namespace referenced
// by h, failing the current test if switching network namespaces fails.
//
// Execute can be safely used in DeferCleanup funcs.
func Execute(h *netnspin.Handle, fn func()) {
	GinkgoHelper()

	Expect(h.Do(func() error {
		fn()
		return nil
	})).To(Succeed(), "cannot execute in network namespace %s", h)
}
