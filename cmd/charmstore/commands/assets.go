// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/gosuri/uitable"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/juju/csclient/charmstore"
)

type readmeCommand struct {
	storeCommand
	ref charmstore.Ref
}

func newReadmeCommand() *readmeCommand {
	return &readmeCommand{}
}

// Info returns help related info about the command.
func (c *readmeCommand) Info() *Info {
	return &Info{
		Name:    "readme",
		Args:    "<charm or bundle>",
		Purpose: "Print the README of a charm or bundle.",
	}
}

// SetFlags defines flags which can be used with the readme command.
func (c *readmeCommand) SetFlags(f *gnuflag.FlagSet) {}

// Init initializes the readme command with the given arguments.
func (c *readmeCommand) Init(args []string) (err error) {
	c.ref, err = refArg(args)
	return err
}

// Run is the business logic of the readme command.
func (c *readmeCommand) Run(ctx *Context) error {
	readme, err := c.client.EntityReadme(ctx, c.ref)
	if err != nil {
		return errors.Trace(err)
	}
	_, err = io.WriteString(ctx.Stdout, readme)
	return errors.Trace(err)
}

// assetCommand writes an image of an entity to stdout, or prints its URL.
type assetCommand struct {
	storeCommand
	info    Info
	showURL bool
	ref     charmstore.Ref

	url   func(*charmstore.Client, charmstore.Ref) string
	fetch func(*charmstore.Client, context.Context, charmstore.Ref) ([]byte, error)
}

func newIconCommand() *assetCommand {
	return &assetCommand{
		info: Info{
			Name:    "icon",
			Args:    "<charm>",
			Purpose: "Fetch the SVG icon of a charm.",
		},
		url:   (*charmstore.Client).CharmIconURL,
		fetch: (*charmstore.Client).CharmIcon,
	}
}

func newDiagramCommand() *assetCommand {
	return &assetCommand{
		info: Info{
			Name:    "diagram",
			Args:    "<bundle>",
			Purpose: "Fetch the SVG visualization of a bundle.",
		},
		url:   (*charmstore.Client).BundleVisualizationURL,
		fetch: (*charmstore.Client).BundleVisualization,
	}
}

// Info returns help related info about the command.
func (c *assetCommand) Info() *Info {
	return &c.info
}

// SetFlags defines flags which can be used with the asset commands.
func (c *assetCommand) SetFlags(f *gnuflag.FlagSet) {
	f.BoolVar(&c.showURL, "url", false, "print the URL instead of fetching")
}

// Init initializes the asset command with the given arguments.
func (c *assetCommand) Init(args []string) (err error) {
	c.ref, err = refArg(args)
	return err
}

// Run is the business logic of the asset commands.
func (c *assetCommand) Run(ctx *Context) error {
	if c.showURL {
		_, err := fmt.Fprintln(ctx.Stdout, c.url(c.client, c.ref))
		return errors.Trace(err)
	}
	data, err := c.fetch(c.client, ctx, c.ref)
	if err != nil {
		return errors.Trace(err)
	}
	_, err = ctx.Stdout.Write(data)
	return errors.Trace(err)
}

type urlsCommand struct {
	storeCommand
	out      Output
	ref      charmstore.Ref
	resource string
	revision int
}

func newURLsCommand() *urlsCommand {
	return &urlsCommand{}
}

// Info returns help related info about the command.
func (c *urlsCommand) Info() *Info {
	return &Info{
		Name:    "urls",
		Args:    "<charm or bundle>",
		Purpose: "Print the URLs of the assets of a charm or bundle.",
	}
}

// SetFlags defines flags which can be used with the urls command.
func (c *urlsCommand) SetFlags(f *gnuflag.FlagSet) {
	f.StringVar(&c.resource, "resource", "", "also print the URL of this resource")
	f.IntVar(&c.revision, "revision", -1, "revision of the resource")
	c.out.AddFlags(f, "tabular", map[string]Formatter{
		"yaml":    FormatYaml,
		"json":    FormatJson,
		"tabular": formatURLs,
	})
}

// Init initializes the urls command with the given arguments.
func (c *urlsCommand) Init(args []string) (err error) {
	if (c.resource == "") != (c.revision < 0) {
		return errors.New("--resource and --revision must be given together")
	}
	c.ref, err = refArg(args)
	return err
}

// Run is the business logic of the urls command. The archive URL is only
// printed for entities known to the store.
func (c *urlsCommand) Run(ctx *Context) error {
	archive, err := c.client.ArchiveURL(ctx, c.ref)
	if err != nil {
		return errors.Trace(err)
	}
	urls := map[string]string{
		"archive": archive,
		"icon":    c.client.CharmIconURL(c.ref),
		"diagram": c.client.BundleVisualizationURL(c.ref),
		"readme":  c.client.EntityReadmeURL(c.ref),
	}
	if c.resource != "" {
		urls["resource"] = c.client.ResourceURL(c.ref, c.resource, c.revision)
	}
	return c.out.Write(ctx, urls)
}

func formatURLs(w io.Writer, value interface{}) error {
	urls, ok := value.(map[string]string)
	if !ok {
		return errors.Errorf("expected value of type %T, got %T", urls, value)
	}
	table := uitable.New()
	for _, name := range []string{"archive", "icon", "diagram", "readme", "resource"} {
		if u, ok := urls[name]; ok {
			table.AddRow(name, u)
		}
	}
	_, err := fmt.Fprintln(w, table)
	return errors.Trace(err)
}
