// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/juju/csclient/charmstore"
	"github.com/juju/csclient/charmstore/transport"
)

const searchDoc = `
The search command queries the charm store for charms and bundles
matching the given text. Without text every entity matches, subject to
the filters.

Examples:
    charmstore search wordpress
    charmstore search --type bundle --tags databases,web
    charmstore search --autocomplete word
`

// filterFlags are the flags shared by search and list.
type filterFlags struct {
	params      charmstore.ListParams
	includes    stringsValue
	tags        stringsValue
	series      stringsValue
	promulgated bool
}

func (ff *filterFlags) setFlags(f *gnuflag.FlagSet) {
	f.Var(&ff.includes, "include", "meta data to include with each result")
	f.IntVar(&ff.params.Limit, "limit", 0, "maximum number of results")
	f.StringVar(&ff.params.Type, "type", "", "only return entities of this type (charm|bundle)")
	f.Var(&ff.tags, "tags", "comma separated tags to match")
	f.Var(&ff.series, "series", "comma separated series to match")
	f.StringVar(&ff.params.Owner, "owner", "", "only return entities owned by this user")
	f.BoolVar(&ff.promulgated, "promulgated", false, "only return promulgated entities")
	f.StringVar(&ff.params.Sort, "sort", "", "sort order, e.g. -downloads")
	f.StringVar(&ff.params.Channel, "channel", "", "channel to search")
}

func (ff *filterFlags) validate() error {
	switch ff.params.Type {
	case "", "charm", "bundle":
	default:
		return errors.NotValidf("type %q", ff.params.Type)
	}
	if ff.params.Limit < 0 {
		return errors.NotValidf("negative limit")
	}
	return nil
}

func (ff *filterFlags) listParams() charmstore.ListParams {
	params := ff.params
	params.Includes = ff.includes
	params.Tags = ff.tags
	params.Series = ff.series
	params.Promulgated = ff.promulgated
	return params
}

type searchCommand struct {
	storeCommand
	out     Output
	filter  filterFlags
	text    string
	partial bool
}

func newSearchCommand() *searchCommand {
	return &searchCommand{}
}

// Info returns help related info about the command.
func (c *searchCommand) Info() *Info {
	return &Info{
		Name:    "search",
		Args:    "[text]",
		Purpose: "Search for charms and bundles.",
		Doc:     searchDoc,
	}
}

// SetFlags defines flags which can be used with the search command.
func (c *searchCommand) SetFlags(f *gnuflag.FlagSet) {
	c.filter.setFlags(f)
	f.BoolVar(&c.partial, "autocomplete", false, "match the text as a name prefix")
	c.out.AddFlags(f, "tabular", map[string]Formatter{
		"yaml":    FormatYaml,
		"json":    FormatJson,
		"tabular": formatResults,
	})
}

// Init initializes the search command with the given arguments.
func (c *searchCommand) Init(args []string) error {
	if len(args) > 0 {
		c.text = strings.Join(args, " ")
	}
	return c.filter.validate()
}

// Run is the business logic of the search command.
func (c *searchCommand) Run(ctx *Context) error {
	params := charmstore.SearchParams{
		ListParams:   c.filter.listParams(),
		Autocomplete: c.partial,
	}
	results, err := c.client.Search(ctx, c.text, params)
	if err != nil {
		return errors.Trace(err)
	}
	return writeResults(ctx, &c.out, results, "No matching charms or bundles")
}

type listCommand struct {
	storeCommand
	out    Output
	filter filterFlags
}

func newListCommand() *listCommand {
	return &listCommand{}
}

// Info returns help related info about the command.
func (c *listCommand) Info() *Info {
	return &Info{
		Name:    "list",
		Purpose: "List charms and bundles matching filters.",
	}
}

// SetFlags defines flags which can be used with the list command.
func (c *listCommand) SetFlags(f *gnuflag.FlagSet) {
	c.filter.setFlags(f)
	c.out.AddFlags(f, "tabular", map[string]Formatter{
		"yaml":    FormatYaml,
		"json":    FormatJson,
		"tabular": formatResults,
	})
}

// Init initializes the list command with the given arguments.
func (c *listCommand) Init(args []string) error {
	if err := checkEmpty(args); err != nil {
		return errors.Trace(err)
	}
	return c.filter.validate()
}

// Run is the business logic of the list command.
func (c *listCommand) Run(ctx *Context) error {
	results, err := c.client.List(ctx, c.filter.listParams())
	if err != nil {
		return errors.Trace(err)
	}
	return writeResults(ctx, &c.out, results, "No matching charms or bundles")
}

type interfacesCommand struct {
	storeCommand
	out   Output
	iface string
	way   string
}

func newInterfacesCommand() *interfacesCommand {
	return &interfacesCommand{}
}

// Info returns help related info about the command.
func (c *interfacesCommand) Info() *Info {
	return &Info{
		Name:    "interfaces",
		Args:    "<interface>",
		Purpose: "Find charms that require or provide a relation interface.",
	}
}

// SetFlags defines flags which can be used with the interfaces command.
func (c *interfacesCommand) SetFlags(f *gnuflag.FlagSet) {
	f.StringVar(&c.way, "direction", charmstore.Requires, "either requires or provides")
	c.out.AddFlags(f, "tabular", map[string]Formatter{
		"yaml":    FormatYaml,
		"json":    FormatJson,
		"tabular": formatResults,
	})
}

// Init initializes the interfaces command with the given arguments.
func (c *interfacesCommand) Init(args []string) error {
	if len(args) == 0 {
		return errors.New("missing interface name")
	}
	if err := checkEmpty(args[1:]); err != nil {
		return errors.Trace(err)
	}
	c.iface = args[0]
	if c.way != charmstore.Requires && c.way != charmstore.Provides {
		return errors.NotValidf("direction %q", c.way)
	}
	return nil
}

// Run is the business logic of the interfaces command.
func (c *interfacesCommand) Run(ctx *Context) error {
	results, err := c.client.FetchInterfaces(ctx, c.iface, c.way)
	if err != nil {
		return errors.Trace(err)
	}
	msg := fmt.Sprintf("No charms %s %q", c.way, c.iface)
	return writeResults(ctx, &c.out, results, msg)
}

func writeResults(ctx *Context, out *Output, results []transport.EntityResult, empty string) error {
	if len(results) == 0 && out.Name() == "tabular" {
		fmt.Fprintln(ctx.Stderr, empty)
		return nil
	}
	return out.Write(ctx, results)
}

// formatResults writes one row per result. The summary column is shown
// when the charm-metadata include was requested.
func formatResults(w io.Writer, value interface{}) error {
	results, ok := value.([]transport.EntityResult)
	if !ok {
		return errors.Errorf("expected value of type %T, got %T", results, value)
	}

	table := uitable.New()
	table.MaxColWidth = 50
	table.Wrap = true

	table.AddRow("Id", "Summary")
	for _, result := range results {
		table.AddRow(result.ID, summary(result.Meta))
	}
	_, err := fmt.Fprintln(w, table)
	return errors.Trace(err)
}

func summary(meta map[string]interface{}) string {
	md, ok := meta["charm-metadata"].(map[string]interface{})
	if !ok {
		md, ok = meta["bundle-metadata"].(map[string]interface{})
	}
	if !ok {
		return ""
	}
	s, _ := md["Summary"].(string)
	return s
}
