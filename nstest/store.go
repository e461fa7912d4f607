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
	"errors"
	"log/slog"
	"path/filepath"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/thediveo/netnspin"
	"golang.org/x/sys/unix"

	. "github.com/onsi/ginkgo/v2" //nolint:staticcheck // ST1001 rule does not apply
	. "github.com/onsi/gomega"    //nolint:staticcheck // ST1001 rule does not apply
)

// TempStore returns a [netnspin.Store] working on a new and empty temporary
// directory, with slog output going to the GinkgoWriter. TempStore schedules
// a Ginkgo deferred cleanup that removes all network namespaces left in this
// directory and then unmounts the directory itself, in case it was turned
// into a mount point.
func TempStore() *netnspin.Store {
	GinkgoHelper()

	dir := filepath.Join(GinkgoT().TempDir(), "netns")
	store := netnspin.New(
		netnspin.WithDirectory(dir),
		netnspin.WithLogger(slog.New(slog.NewTextHandler(GinkgoWriter, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))))
	DeferCleanup(func() {
		Expect(store.RemoveAll()).To(Succeed(),
			"cannot remove network namespaces from %s", dir)
		if err := unix.Unmount(dir, unix.MNT_DETACH); err != nil &&
			!errors.Is(err, unix.EINVAL) && !errors.Is(err, unix.ENOENT) {
			Fail("cannot unmount " + dir + ": " + err.Error())
		}
	})
	return store
}

// Name returns a new random network namespace name, such as “tidy-bunny”.
func Name() string {
	return "ns-" + petname.Generate(2, "-")
}
