// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package commands

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/juju/csclient/charmstore"
)

type filesCommand struct {
	storeCommand
	out Output
	ref charmstore.Ref
}

func newFilesCommand() *filesCommand {
	return &filesCommand{}
}

// Info returns help related info about the command.
func (c *filesCommand) Info() *Info {
	return &Info{
		Name:    "files",
		Args:    "<charm or bundle>",
		Purpose: "List the files of a charm or bundle archive.",
	}
}

// SetFlags defines flags which can be used with the files command.
func (c *filesCommand) SetFlags(f *gnuflag.FlagSet) {
	c.out.AddFlags(f, "tabular", map[string]Formatter{
		"yaml":    FormatYaml,
		"json":    FormatJson,
		"tabular": formatFiles,
	})
}

// Init initializes the files command with the given arguments.
func (c *filesCommand) Init(args []string) (err error) {
	c.ref, err = refArg(args)
	return err
}

// archiveFile is the output form of a manifest entry.
type archiveFile struct {
	Name string `json:"name" yaml:"name"`
	Size uint64 `json:"size" yaml:"size"`
	Hash string `json:"hash,omitempty" yaml:"hash,omitempty"`
	URL  string `json:"url" yaml:"url"`
}

// Run is the business logic of the files command.
func (c *filesCommand) Run(ctx *Context) error {
	manifest, err := c.client.Manifest(ctx, c.ref)
	if err != nil {
		return errors.Trace(err)
	}
	files := make([]archiveFile, len(manifest))
	for i, file := range manifest {
		files[i] = archiveFile{
			Name: file.Name,
			Size: uint64(file.Size),
			Hash: file.Hash,
			URL:  c.client.ArchiveFileURL(c.ref, file.Name),
		}
	}
	return c.out.Write(ctx, files)
}

func formatFiles(w io.Writer, value interface{}) error {
	files, ok := value.([]archiveFile)
	if !ok {
		return errors.Errorf("expected value of type %T, got %T", files, value)
	}

	table := uitable.New()
	table.AddRow("Name", "Size", "URL")
	for _, file := range files {
		table.AddRow(file.Name, humanize.Bytes(file.Size), file.URL)
	}
	_, err := fmt.Fprintln(w, table)
	return errors.Trace(err)
}

type catCommand struct {
	storeCommand
	ref      charmstore.Ref
	filename string
}

func newCatCommand() *catCommand {
	return &catCommand{}
}

// Info returns help related info about the command.
func (c *catCommand) Info() *Info {
	return &Info{
		Name:    "cat",
		Args:    "<charm or bundle> <file>",
		Purpose: "Print a file of a charm or bundle archive.",
	}
}

// SetFlags defines flags which can be used with the cat command.
func (c *catCommand) SetFlags(f *gnuflag.FlagSet) {}

// Init initializes the cat command with the given arguments.
func (c *catCommand) Init(args []string) error {
	if len(args) < 2 {
		return errors.New("expected a charm or bundle and a file name")
	}
	if err := checkEmpty(args[2:]); err != nil {
		return errors.Trace(err)
	}
	ref, err := parseRef(args[0])
	if err != nil {
		return errors.Trace(err)
	}
	c.ref, c.filename = ref, args[1]
	return nil
}

// Run is the business logic of the cat command.
func (c *catCommand) Run(ctx *Context) error {
	data, err := c.client.FileContent(ctx, c.ref, c.filename)
	if err != nil {
		return errors.Trace(err)
	}
	_, err = ctx.Stdout.Write(data)
	return errors.Trace(err)
}
