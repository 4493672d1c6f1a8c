// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package commands

import (
	"fmt"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"gopkg.in/macaroon.v2"

	"github.com/juju/csclient/charmstore"
)

type debugCommand struct {
	storeCommand
	out Output
}

func newDebugCommand() *debugCommand {
	return &debugCommand{}
}

// Info returns help related info about the command.
func (c *debugCommand) Info() *Info {
	return &Info{
		Name:    "debug",
		Purpose: "Show the status checks of the charm store.",
	}
}

// SetFlags defines flags which can be used with the debug command.
func (c *debugCommand) SetFlags(f *gnuflag.FlagSet) {
	c.out.AddFlags(f, "yaml", map[string]Formatter{
		"yaml": FormatYaml,
		"json": FormatJson,
	})
}

// Init initializes the debug command with the given arguments.
func (c *debugCommand) Init(args []string) error {
	return checkEmpty(args)
}

// Run is the business logic of the debug command.
func (c *debugCommand) Run(ctx *Context) error {
	status, err := c.client.Debug(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	return c.out.Write(ctx, status)
}

const loginDoc = `
The login command fetches a macaroon from the charm store and prints it
encoded as a macaroon-storefront cookie value. When --config is given
the cookie is also saved there, and sent with every later request.

The macaroon usually carries third party caveats that must be
discharged before the store accepts it.
`

type loginCommand struct {
	storeCommand
	raw bool
}

func newLoginCommand() *loginCommand {
	return &loginCommand{}
}

// Info returns help related info about the command.
func (c *loginCommand) Info() *Info {
	return &Info{
		Name:    "login",
		Purpose: "Fetch a macaroon from the charm store.",
		Doc:     loginDoc,
	}
}

// SetFlags defines flags which can be used with the login command.
func (c *loginCommand) SetFlags(f *gnuflag.FlagSet) {
	f.BoolVar(&c.raw, "raw", false, "print the macaroon as returned by the store")
}

// Init initializes the login command with the given arguments.
func (c *loginCommand) Init(args []string) error {
	return checkEmpty(args)
}

// Run is the business logic of the login command.
func (c *loginCommand) Run(ctx *Context) error {
	if c.raw {
		raw, err := c.client.FetchMacaroon(ctx)
		if err != nil {
			return errors.Trace(err)
		}
		_, err = fmt.Fprintln(ctx.Stdout, raw)
		return errors.Trace(err)
	}
	m, err := c.client.Macaroon(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	cookie, err := charmstore.EncodeMacaroons(macaroon.Slice{m})
	if err != nil {
		return errors.Trace(err)
	}
	if path := c.options.configPath; path != "" {
		cfg := c.options.file
		cfg.Macaroon = cookie
		if err := writeConfig(path, cfg); err != nil {
			return errors.Trace(err)
		}
		logger.Infof("saved macaroon to %s", path)
	}
	_, err = fmt.Fprintln(ctx.Stdout, cookie)
	return errors.Trace(err)
}
