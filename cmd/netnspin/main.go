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

package main

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"text/tabwriter"

	petname "github.com/dustinkirkland/golang-petname"
	flag "github.com/spf13/pflag"
	"github.com/thediveo/netnspin"
	"github.com/thediveo/netnspin/links"
)

// envDir names the environment variable overriding the default directory for
// named network namespaces.
const envDir = "NETNSPIN_DIR"

const execUsage = "exec NAME [--] CMD [ARG...]"

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// cli is the context shared by all commands of a single run.
type cli struct {
	store  *netnspin.Store
	log    *slog.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	usage   string
	minArgs int
	maxArgs int // -1 for unlimited
	run     func(c *cli, args []string) (int, error)
}

var commands = map[string]command{
	"add":    {usage: "add [NAME]", maxArgs: 1, run: (*cli).add},
	"del":    {usage: "del NAME", minArgs: 1, maxArgs: 1, run: (*cli).del},
	"list":   {usage: "list", run: (*cli).list},
	"exists": {usage: "exists NAME", minArgs: 1, maxArgs: 1, run: (*cli).exists},
	"links":  {usage: "links NAME", minArgs: 1, maxArgs: 1, run: (*cli).links},
	"exec":   {usage: execUsage, minArgs: 2, maxArgs: -1, run: (*cli).exec},
}

// run parses the command line arguments (without the program name) and runs
// the requested command, returning the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("netnspin", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.SetInterspersed(false)
	dir := flags.String("dir", cmp.Or(os.Getenv(envDir), netnspin.DefaultDirectory),
		"directory for named network namespaces (env "+envDir+")")
	logLevel := flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "usage: netnspin [FLAGS] COMMAND [ARGS]\n\ncommands:\n")
		for _, name := range []string{"add", "del", "list", "exists", "links", "exec"} {
			_, _ = fmt.Fprintf(stderr, "  %s\n", commands[name].usage)
		}
		_, _ = fmt.Fprintf(stderr, "\nflags:\n%s", flags.FlagUsages())
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		_, _ = fmt.Fprintf(stderr, "netnspin: invalid log level %q\n", *logLevel)
		return exitUsage
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if flags.NArg() == 0 {
		flags.Usage()
		return exitUsage
	}
	name, cmdargs := flags.Arg(0), flags.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		_, _ = fmt.Fprintf(stderr, "netnspin: unknown command %q\n", name)
		flags.Usage()
		return exitUsage
	}
	if len(cmdargs) < cmd.minArgs || (cmd.maxArgs >= 0 && len(cmdargs) > cmd.maxArgs) {
		_, _ = fmt.Fprintf(stderr, "usage: netnspin %s\n", cmd.usage)
		return exitUsage
	}

	c := &cli{
		store: netnspin.New(
			netnspin.WithDirectory(*dir),
			netnspin.WithLogger(log)),
		log:    log,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}
	code, err := cmd.run(c, cmdargs)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "netnspin %s: %s\n", name, err)
	}
	return code
}

func (c *cli) add(args []string) (int, error) {
	name := petname.Generate(2, "-")
	if len(args) > 0 {
		name = args[0]
	}
	h, err := c.store.Create(name)
	if err != nil {
		return exitError, err
	}
	defer func() { _ = h.Close() }()
	_, _ = fmt.Fprintln(c.stdout, h.Name())
	return exitOK, nil
}

func (c *cli) del(args []string) (int, error) {
	if err := c.store.Remove(args[0]); err != nil {
		return exitError, err
	}
	return exitOK, nil
}

func (c *cli) list([]string) (int, error) {
	names, err := c.store.List()
	if err != nil {
		return exitError, err
	}
	for _, name := range names {
		_, _ = fmt.Fprintln(c.stdout, name)
	}
	return exitOK, nil
}

// exists signals by exit code only.
func (c *cli) exists(args []string) (int, error) {
	if c.store.Exists(args[0]) {
		return exitOK, nil
	}
	return exitError, nil
}

func (c *cli) links(args []string) (int, error) {
	h, err := c.store.Get(args[0])
	if err != nil {
		return exitError, err
	}
	defer func() { _ = h.Close() }()
	ls, err := links.List(h)
	if err != nil {
		return exitError, err
	}
	w := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "INDEX\tNAME\tKIND\tSTATE")
	for _, l := range ls {
		state := "DOWN"
		if l.Up {
			state = "UP"
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", l.Index, l.Name, cmp.Or(l.Kind, "-"), state)
	}
	return exitOK, w.Flush()
}

// exec runs a command inside a named network namespace, passing through the
// command's exit code.
func (c *cli) exec(args []string) (int, error) {
	name, argv := args[0], args[1:]
	if argv[0] == "--" {
		argv = argv[1:]
	}
	if len(argv) == 0 {
		_, _ = fmt.Fprintf(c.stderr, "usage: netnspin %s\n", execUsage)
		return exitUsage, nil
	}
	err := c.store.RunIn(name, func(*netnspin.Handle) error {
		cmd := exec.Command(argv[0], argv[1:]...)
		cmd.Stdin = c.stdin
		cmd.Stdout = c.stdout
		cmd.Stderr = c.stderr
		c.log.Debug("executing in network namespace",
			slog.String("name", name),
			slog.String("cmd", strings.Join(argv, " ")))
		return cmd.Run()
	})
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// ExitCode is -1 when killed by a signal.
			if code := exitErr.ExitCode(); code >= 0 {
				return code, nil
			}
		}
		return exitError, err
	}
	return exitOK, nil
}
