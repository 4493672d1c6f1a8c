// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"
)

// Info holds everything necessary to describe a Command's intent and usage.
type Info struct {
	// Name is the Command's name.
	Name string

	// Args describes the command's expected arguments.
	Args string

	// Purpose is a short explanation of the Command's purpose.
	Purpose string

	// Doc is the long documentation for the Command.
	Doc string
}

// Usage combines Name and Args to describe the Command's intended usage.
func (i *Info) Usage() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", i.Name, i.Args))
}

// Context holds the execution environment of a command.
type Context struct {
	context.Context

	Stdout io.Writer
	Stderr io.Writer
}

// Command is implemented by the charmstore sub-commands.
type Command interface {
	// Info returns information about the command.
	Info() *Info

	// SetFlags adds command specific flags to the flag set.
	SetFlags(f *gnuflag.FlagSet)

	// Init initializes the command from its positional arguments, after
	// the flags have been parsed.
	Init(args []string) error

	// Run will execute the command according to the options and positional
	// arguments interpreted by a call to Init.
	Run(ctx *Context) error
}

// newFlagSet returns a FlagSet initialized for use with c.
func newFlagSet(c Command) *gnuflag.FlagSet {
	f := gnuflag.NewFlagSet(c.Info().Name, gnuflag.ContinueOnError)
	f.SetOutput(io.Discard)
	f.Usage = func() {}
	c.SetFlags(f)
	return f
}

// printUsage prints usage information for c.
func printUsage(c Command, w io.Writer) {
	i := c.Info()
	fmt.Fprintf(w, "usage: charmstore %s\n", i.Usage())
	fmt.Fprintf(w, "purpose: %s\n", i.Purpose)
	if i.Doc != "" {
		fmt.Fprintf(w, "\n%s\n", strings.TrimSpace(i.Doc))
	}
}

// parse parses args on c. This must be called before c is Run.
func parse(c Command, args []string) error {
	f := newFlagSet(c)
	if err := f.Parse(true, args); err != nil {
		return errors.Trace(err)
	}
	return c.Init(f.Args())
}

// checkEmpty is a utility function that returns an error if args is not empty.
func checkEmpty(args []string) error {
	if len(args) != 0 {
		return errors.Errorf("unrecognised args: %s", args)
	}
	return nil
}

// requireRef returns the single entity argument of a command.
func requireRef(args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("missing charm or bundle")
	}
	if err := checkEmpty(args[1:]); err != nil {
		return "", errors.Trace(err)
	}
	return args[0], nil
}
