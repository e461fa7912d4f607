/*
Package nstest supports unit tests working with network namespaces managed by
[github.com/thediveo/netnspin], handling cleanup and error checking
automatically.

This package leverages the [Ginkgo] testing framework with [Gomega] matchers.

# Usage

[TempStore] returns a [netnspin.Store] on a throw-away directory, so that tests
never touch the system-wide network namespace directory. Any named network
namespaces still left when the current test ends get removed automatically.

	import "github.com/thediveo/netnspin/nstest"

	It("tests something with a named network namespace", func() {
	    store := nstest.TempStore()
	    h := Successful(store.Create(nstest.Name()))
	    defer h.Close()
	    nstest.Execute(h, func() {
	        // ...
	    })
	})

[NewTransient] returns handles to anonymous throw-away network namespaces,
whereas [EnterTransient] switches the calling go routine's OS-level thread into
a new throw-away network namespace until the returned function gets called –
mind the double-paired brackets.

	defer nstest.EnterTransient()() // !!! double ()()

[Ino] and [CurrentIno] help comparing network namespaces by their identifiers
in form of inode numbers.

[Ginkgo]: https://github.com/onsi/ginkgo
[Gomega]: https://github.com/onsi/gomega
*/
package nstest
