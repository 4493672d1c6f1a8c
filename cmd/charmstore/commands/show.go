// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/gosuri/uitable"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/juju/csclient/charm"
	"github.com/juju/csclient/charmstore"
	"github.com/juju/csclient/charmstore/transport"
)

const showDoc = `
The show command prints the meta data of one or more charms or bundles.
With a single entity the --channel and --include flags select what is
returned; with several the canonical ids are fetched in one request.

Examples:
    charmstore show wordpress
    charmstore show --include charm-metadata,charm-config cs:trusty/mysql-10
    charmstore show wordpress mysql
`

type showCommand struct {
	storeCommand
	out      Output
	channel  string
	includes stringsValue
	refs     []charmstore.Ref
}

func newShowCommand() *showCommand {
	return &showCommand{}
}

// Info returns help related info about the command.
func (c *showCommand) Info() *Info {
	return &Info{
		Name:    "show",
		Args:    "<charm or bundle> ...",
		Purpose: "Show charm or bundle meta data.",
		Doc:     showDoc,
	}
}

// SetFlags defines flags which can be used with the show command.
func (c *showCommand) SetFlags(f *gnuflag.FlagSet) {
	f.StringVar(&c.channel, "channel", "", "channel of the entity")
	f.Var(&c.includes, "include", "meta data to include")
	c.out.AddFlags(f, "yaml", map[string]Formatter{
		"yaml": FormatYaml,
		"json": FormatJson,
	})
}

// Init initializes the show command with the given arguments.
func (c *showCommand) Init(args []string) error {
	if len(args) == 0 {
		return errors.New("missing charm or bundle")
	}
	if len(args) > 1 && (c.channel != "" || len(c.includes) > 0) {
		return errors.New("--channel and --include apply to a single entity")
	}
	for _, arg := range args {
		ref, err := parseRef(arg)
		if err != nil {
			return errors.Trace(err)
		}
		c.refs = append(c.refs, ref)
	}
	return nil
}

// Run is the business logic of the show command.
func (c *showCommand) Run(ctx *Context) error {
	if len(c.refs) == 1 {
		entity, err := c.client.Entity(ctx, c.refs[0], charmstore.EntityOptions{
			Channel:  c.channel,
			Includes: c.includes,
		})
		if err != nil {
			return errors.Trace(err)
		}
		return c.out.Write(ctx, entity)
	}
	entities, err := c.client.Entities(ctx, c.refs)
	if err != nil {
		return errors.Trace(err)
	}
	return c.out.Write(ctx, entities)
}

type idCommand struct {
	storeCommand
	ref charmstore.Ref
}

func newIDCommand() *idCommand {
	return &idCommand{}
}

// Info returns help related info about the command.
func (c *idCommand) Info() *Info {
	return &Info{
		Name:    "id",
		Args:    "<charm or bundle>",
		Purpose: "Print the canonical id of a charm or bundle.",
	}
}

// SetFlags defines flags which can be used with the id command.
func (c *idCommand) SetFlags(f *gnuflag.FlagSet) {}

// Init initializes the id command with the given arguments.
func (c *idCommand) Init(args []string) (err error) {
	c.ref, err = refArg(args)
	return err
}

// Run is the business logic of the id command.
func (c *idCommand) Run(ctx *Context) error {
	id, err := c.client.EntityID(ctx, c.ref)
	if err != nil {
		return errors.Trace(err)
	}
	_, err = fmt.Fprintln(ctx.Stdout, id)
	return errors.Trace(err)
}

type configCommand struct {
	storeCommand
	out Output
	ref charmstore.Ref
}

func newConfigCommand() *configCommand {
	return &configCommand{}
}

// Info returns help related info about the command.
func (c *configCommand) Info() *Info {
	return &Info{
		Name:    "config",
		Args:    "<charm>",
		Purpose: "Show the configuration options of a charm.",
	}
}

// SetFlags defines flags which can be used with the config command.
func (c *configCommand) SetFlags(f *gnuflag.FlagSet) {
	c.out.AddFlags(f, "tabular", map[string]Formatter{
		"yaml":    FormatYaml,
		"json":    FormatJson,
		"tabular": formatConfig,
	})
}

// Init initializes the config command with the given arguments.
func (c *configCommand) Init(args []string) (err error) {
	c.ref, err = refArg(args)
	return err
}

// Run is the business logic of the config command.
func (c *configCommand) Run(ctx *Context) error {
	cfg, err := c.client.Config(ctx, c.ref)
	if err != nil {
		return errors.Trace(err)
	}
	return c.out.Write(ctx, cfg)
}

func formatConfig(w io.Writer, value interface{}) error {
	cfg, ok := value.(*transport.CharmConfig)
	if !ok {
		return errors.Errorf("expected value of type %T, got %T", cfg, value)
	}
	names := make([]string, 0, len(cfg.Options))
	for name := range cfg.Options {
		names = append(names, name)
	}
	sort.Strings(names)

	table := uitable.New()
	table.MaxColWidth = 50
	table.Wrap = true

	table.AddRow("Option", "Type", "Default", "Description")
	for _, name := range names {
		option := cfg.Options[name]
		def := ""
		if option.Default != nil {
			def = fmt.Sprint(option.Default)
		}
		table.AddRow(name, option.Type, def, option.Description)
	}
	_, err := fmt.Fprintln(w, table)
	return errors.Trace(err)
}

// parseRef accepts charm URLs, which are validated, as well as the
// shorter forms the store resolves itself, such as "wordpress".
func parseRef(arg string) (charmstore.Ref, error) {
	if u, err := charm.ParseURL(arg); err == nil {
		return u, nil
	}
	ref := charmstore.StringRef(arg)
	if charmstore.EntityPath(ref) == "" {
		return nil, errors.NotValidf("empty charm or bundle")
	}
	return ref, nil
}

func refArg(args []string) (charmstore.Ref, error) {
	arg, err := requireRef(args)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return parseRef(arg)
}
