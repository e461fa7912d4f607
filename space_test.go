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
	"runtime"
	"time"

	"github.com/thediveo/netnspin"
	"github.com/thediveo/netnspin/nstest"
	"github.com/vishvananda/netns"
	"golang.org/x/sys/unix"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gleak"
	. "github.com/thediveo/fdooze"
	. "github.com/thediveo/success"
)

var _ = Describe("network namespace handles", func() {

	BeforeEach(func() {
		goodfds := Filedescriptors()
		goodgos := Goroutines()
		DeferCleanup(func() {
			Eventually(Goroutines).Within(2 * time.Second).ProbeEvery(100 * time.Millisecond).
				ShouldNot(HaveLeaked(goodgos))
			Expect(Filedescriptors()).NotTo(HaveLeakedFds(goodfds))
		})
	})

	It("references the current network namespace", func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		h := Successful(netnspin.Current())
		defer func() { _ = h.Close() }()
		Expect(h.Name()).To(BeEmpty())
		Expect(h.Path()).To(BeEmpty())
		Expect(h.Fd()).To(BeNumerically(">", 0))
		Expect(Successful(h.Ino())).To(Equal(nstest.CurrentIno()))

		p := Successful(netnspin.OpenPath("/proc/thread-self/ns/net"))
		defer func() { _ = p.Close() }()
		Expect(p.Equal(h)).To(BeTrue())
		Expect(h.Equal(p)).To(BeTrue())
		Expect(h.Equal(nil)).To(BeFalse())
	})

	It("rejects references to something else than a network namespace", func() {
		Expect(netnspin.OpenPath("/proc/self/ns/uts")).Error().To(
			MatchError(netnspin.ErrInvalidNamespace))
		Expect(netnspin.OpenPath("/proc/self/status")).Error().To(
			MatchError(netnspin.ErrInvalidNamespace))
		Expect(netnspin.OpenPath("/proc/me,myself,I")).Error().To(
			MatchError(netnspin.ErrNotFound))
	})

	It("adopts file descriptors", func() {
		h := Successful(netnspin.FromFd(
			Successful(unix.Open("/proc/self/ns/net", unix.O_RDONLY|unix.O_CLOEXEC, 0)),
			"blue", "/run/netns/blue"))
		defer func() { _ = h.Close() }()
		Expect(h.Name()).To(Equal("blue"))
		Expect(h.Path()).To(Equal("/run/netns/blue"))
		Expect(h.String()).To(ContainSubstring(`name: "blue"`))

		Expect(netnspin.FromFd(-1, "", "")).Error().To(
			MatchError(netnspin.ErrInvalidNamespace))
		// closes the passed fd on failure, as checked by the leak detection.
		Expect(netnspin.FromFd(
			Successful(unix.Open("/proc/self/ns/uts", unix.O_RDONLY|unix.O_CLOEXEC, 0)),
			"", "")).Error().To(MatchError(netnspin.ErrInvalidNamespace))
	})

	It("duplicates file descriptors outliving their handles", func() {
		h := Successful(netnspin.Current())
		dupfd := Successful(h.Dup())
		defer func() { _ = unix.Close(dupfd) }()
		Expect(dupfd).NotTo(Equal(h.Fd()))
		ino := Successful(h.Ino())
		Expect(h.Close()).To(Succeed())
		Expect(h.Dup()).Error().To(MatchError(netnspin.ErrInvalidNamespace))
		Expect(nstest.Ino(dupfd)).To(Equal(ino))
	})

	It("closes idempotently", func() {
		h := Successful(netnspin.Current())
		Expect(h.String()).To(MatchRegexp(`NS\(\d+:\d+\)`))
		Expect(h.Close()).To(Succeed())
		Expect(h.Close()).To(Succeed())
		Expect(h.Fd()).To(Equal(-1))
		Expect(h.String()).To(ContainSubstring("closed"))
		Expect(h.Ino()).Error().To(MatchError(netnspin.ErrInvalidNamespace))

		p := Successful(netnspin.Current())
		defer func() { _ = p.Close() }()
		Expect(h.Equal(p)).To(BeFalse())
	})

	It("interoperates with netns.NsHandle", func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		h := Successful(netnspin.Current())
		defer func() { _ = h.Close() }()
		nsh := Successful(netns.GetFromPath("/proc/thread-self/ns/net"))
		defer func() { _ = nsh.Close() }()
		Expect(h.NsHandle().Equal(nsh)).To(BeTrue())
		Expect(h.String()).To(ContainSubstring(nsh.UniqueId()))
	})

})
