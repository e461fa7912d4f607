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
	"fmt"
	"io/fs"
	"syscall"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("errors", func() {

	DescribeTable("mapping OS-level errors to kinds",
		func(err error, kind error) {
			Expect(kindOf(err)).To(BeIdenticalTo(kind))
		},
		Entry("ENOENT", syscall.ENOENT, ErrNotFound),
		Entry("wrapped ENOENT", &fs.PathError{Op: "open", Path: "/nada", Err: syscall.ENOENT}, ErrNotFound),
		Entry("EEXIST", syscall.EEXIST, ErrAlreadyExists),
		Entry("EPERM", syscall.EPERM, ErrPermissionDenied),
		Entry("EACCES", syscall.EACCES, ErrPermissionDenied),
		Entry("ENOSYS", syscall.ENOSYS, ErrUnsupportedPlatform),
		Entry("EBUSY", syscall.EBUSY, ErrIO),
		Entry("no errno at all", errors.New("D'oh!"), ErrIO),
	)

	It("matches both kind and cause", func() {
		err := newError("mount", "/run/netns/foo", syscall.EPERM)
		Expect(err).To(MatchError(ErrPermissionDenied))
		Expect(err).To(MatchError(syscall.EPERM))
		Expect(err).NotTo(MatchError(ErrIO))
		Expect(err.Error()).To(Equal("mount /run/netns/foo: permission denied: operation not permitted"))
	})

	It("renders errors without cause and path", func() {
		err := &Error{Op: "setns", Kind: ErrInvalidNamespace}
		Expect(err.Error()).To(Equal("setns: not a valid network namespace"))
		Expect(err).To(MatchError(ErrInvalidNamespace))
	})

	It("tells work errors apart", func() {
		cause := errors.New("D'oh!")
		var err error = &WorkError{Err: fmt.Errorf("wrapped: %w", cause)}
		Expect(err).To(MatchError(cause))
		Expect(err.Error()).To(Equal("wrapped: D'oh!"))
		var workerr *WorkError
		Expect(errors.As(err, &workerr)).To(BeTrue())
		var nserr *Error
		Expect(errors.As(err, &nserr)).To(BeFalse())
	})

})
