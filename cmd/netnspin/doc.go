/*
Command netnspin manages named network namespaces bind-mounted into a directory,
compatible with “ip netns”, and runs commands inside them.

	netnspin [--dir DIR] [--log-level LEVEL] COMMAND [ARGS]

Commands:

  - add [NAME]: creates a new named network namespace; without NAME, a random
    name gets generated. Prints the name of the new network namespace.
  - del NAME: removes a named network namespace; removing a non-existing one
    is not an error.
  - list: lists the names of all network namespaces in the directory.
  - exists NAME: exits with code 0 if NAME refers to a valid network namespace,
    otherwise with code 1.
  - links NAME: lists the network interfaces inside a named network namespace.
  - exec NAME [--] CMD [ARG...]: runs CMD inside a named network namespace,
    passing on the exit code of CMD.

The directory defaults to “/var/run/netns”, unless overridden by the
NETNSPIN_DIR environment variable or the --dir flag.
*/
package main
