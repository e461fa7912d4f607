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

package links

import (
	"github.com/thediveo/netnspin"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("network interfaces on unsupported platforms", func() {

	It("fails", func() {
		Expect(List(nil)).Error().To(MatchError(netnspin.ErrUnsupportedPlatform))
		Expect(Names(nil)).Error().To(MatchError(netnspin.ErrUnsupportedPlatform))
		Expect(AddDummy(nil, "dummy0")).To(MatchError(netnspin.ErrUnsupportedPlatform))
	})

})
