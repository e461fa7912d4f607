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

//go:build !linux

package netnspin_test

import (
	"path/filepath"

	"github.com/thediveo/netnspin"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("unsupported platforms", func() {

	It("fails handle operations", func() {
		Expect(netnspin.Current()).Error().To(MatchError(netnspin.ErrUnsupportedPlatform))
		Expect(netnspin.OpenPath("/proc/self/ns/net")).Error().To(MatchError(netnspin.ErrUnsupportedPlatform))
		Expect(netnspin.FromFd(0, "", "")).Error().To(MatchError(netnspin.ErrUnsupportedPlatform))
		Expect(netnspin.NewTransient()).Error().To(MatchError(netnspin.ErrUnsupportedPlatform))
	})

	It("never runs functions", func() {
		called := false
		_, err := netnspin.RunIn(nil, func() (int, error) {
			called = true
			return 42, nil
		})
		Expect(err).To(MatchError(netnspin.ErrUnsupportedPlatform))
		Expect(called).To(BeFalse())
	})

	It("fails store operations without side effects", func() {
		dir := filepath.Join(GinkgoT().TempDir(), "netns")
		store := netnspin.New(netnspin.WithDirectory(dir))

		Expect(store.EnsureDirectory()).To(MatchError(netnspin.ErrUnsupportedPlatform))
		Expect(store.Create("blue")).Error().To(MatchError(netnspin.ErrUnsupportedPlatform))
		Expect(store.Get("blue")).Error().To(MatchError(netnspin.ErrUnsupportedPlatform))
		Expect(store.Remove("blue")).To(MatchError(netnspin.ErrUnsupportedPlatform))
		Expect(store.List()).Error().To(MatchError(netnspin.ErrUnsupportedPlatform))
		Expect(store.RemoveAll()).To(MatchError(netnspin.ErrUnsupportedPlatform))
		Expect(store.Exists("blue")).To(BeFalse())
		Expect(store.RunIn("blue", func(*netnspin.Handle) error {
			Fail("must not be called")
			return nil
		})).To(MatchError(netnspin.ErrUnsupportedPlatform))

		Expect(dir).NotTo(BeAnExistingFile())
	})

})
