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

package netnspin_test

import (
	"os"
	"runtime"

	"github.com/thediveo/caps"
	"github.com/thediveo/netnspin"
	"github.com/thediveo/netnspin/nstest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

var _ = Describe("transient network namespaces", Ordered, func() {

	BeforeAll(func() {
		if os.Getuid() != 0 {
			Skip("needs root")
		}
	})

	It("creates without entering", func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		origIno := nstest.CurrentIno()
		h := Successful(netnspin.NewTransient())
		defer func() { _ = h.Close() }()
		Expect(nstest.CurrentIno()).To(Equal(origIno), "didn't switch back")
		Expect(nstest.Ino(h)).NotTo(Equal(origIno), "didn't create new network namespace")
		Expect(h.Name()).To(BeEmpty())
	})

	It("creates independent network namespaces", func() {
		h1 := nstest.NewTransient()
		h2 := nstest.NewTransient()
		Expect(h1.Equal(h2)).To(BeFalse())
	})

	It("stays thread-locked when the caller was locked", func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		before := Successful(os.Readlink("/proc/thread-self"))
		h := Successful(netnspin.NewTransient())
		defer func() { _ = h.Close() }()
		Expect(Successful(os.Readlink("/proc/thread-self"))).To(Equal(before))
	})

	It("reports lacking privileges", func() {
		errCh := make(chan error)
		go func() {
			defer GinkgoRecover()
			runtime.LockOSThread() // this thread will be tainted
			Expect(caps.SetForThisTask(caps.TaskCapabilities{})).To(Succeed())
			origIno := nstest.CurrentIno()
			h, err := netnspin.NewTransient()
			Expect(h).To(BeNil())
			Expect(nstest.CurrentIno()).To(Equal(origIno))
			errCh <- err
		}()
		var err error
		Eventually(errCh).Should(Receive(&err))
		Expect(err).To(MatchError(netnspin.ErrPermissionDenied))
		Expect(err).NotTo(MatchError(netnspin.ErrRestoreFailed))
	})

})
