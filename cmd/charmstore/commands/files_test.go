// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package commands_test

import (
	"net/http"

	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"
	"gopkg.in/yaml.v3"
)

type FilesSuite struct {
	commandSuite
}

var _ = gc.Suite(&FilesSuite{})

const manifest = `[
	{"Name": "README.md", "Size": 2048, "Hash": "abc"},
	{"Name": "icon.svg", "Size": 10}
]`

func (s *FilesSuite) TestFilesTabular(c *gc.C) {
	s.store.ok("/v5/trusty/mysql-10/meta/manifest", manifest)

	stdout, _, code := s.run(c, "files", "trusty/mysql-10")
	c.Assert(code, gc.Equals, 0)
	c.Assert(rows(stdout), jc.DeepEquals, [][]string{
		{"Name", "Size", "URL"},
		{"README.md", "2.0", "kB", s.baseURL + "/trusty/mysql-10/archive/README.md"},
		{"icon.svg", "10", "B", s.baseURL + "/trusty/mysql-10/archive/icon.svg"},
	})
}

func (s *FilesSuite) TestFilesYAML(c *gc.C) {
	s.store.ok("/v5/trusty/mysql-10/meta/manifest", manifest)

	stdout, _, code := s.run(c, "files", "--format", "yaml", "trusty/mysql-10")
	c.Assert(code, gc.Equals, 0)
	var files []map[string]interface{}
	err := yaml.Unmarshal([]byte(stdout), &files)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(files, jc.DeepEquals, []map[string]interface{}{{
		"name": "README.md",
		"size": 2048,
		"hash": "abc",
		"url":  s.baseURL + "/trusty/mysql-10/archive/README.md",
	}, {
		"name": "icon.svg",
		"size": 10,
		"url":  s.baseURL + "/trusty/mysql-10/archive/icon.svg",
	}})
}

func (s *FilesSuite) TestFilesNotFound(c *gc.C) {
	_, stderr, code := s.run(c, "files", "missing")
	c.Assert(code, gc.Equals, 1)
	c.Assert(stderr, jc.Contains, "ERROR "+s.baseURL+"/missing/meta/manifest\n")
}

func (s *FilesSuite) TestCat(c *gc.C) {
	s.store.ok("/v5/trusty/mysql-10/meta/manifest", manifest)
	s.store.ok("/v5/trusty/mysql-10/archive/README.md", "# MySQL\n")

	stdout, _, code := s.run(c, "cat", "trusty/mysql-10", "README.md")
	c.Assert(code, gc.Equals, 0)
	c.Assert(stdout, gc.Equals, "# MySQL\n")
}

func (s *FilesSuite) TestCatFileNotInManifest(c *gc.C) {
	s.store.ok("/v5/trusty/mysql-10/meta/manifest", manifest)

	_, stderr, code := s.run(c, "cat", "trusty/mysql-10", "hooks/install")
	c.Assert(code, gc.Equals, 1)
	c.Assert(stderr, jc.Contains, "ERROR "+s.baseURL+"/trusty/mysql-10/archive/hooks/install\n")
	c.Assert(s.store.received(), gc.HasLen, 1)
}

func (s *FilesSuite) TestCatMissingFile(c *gc.C) {
	_, stderr, code := s.run(c, "cat", "trusty/mysql-10")
	c.Assert(code, gc.Equals, 2)
	c.Assert(stderr, jc.Contains, "ERROR expected a charm or bundle and a file name")
}

func (s *FilesSuite) TestReadme(c *gc.C) {
	s.store.ok("/v5/mongodb/readme", "This is the readme")

	stdout, _, code := s.run(c, "readme", "mongodb")
	c.Assert(code, gc.Equals, 0)
	c.Assert(stdout, gc.Equals, "This is the readme")
}

func (s *FilesSuite) TestIcon(c *gc.C) {
	s.store.ok("/v5/mongodb/icon.svg", "<svg/>")

	stdout, _, code := s.run(c, "icon", "mongodb")
	c.Assert(code, gc.Equals, 0)
	c.Assert(stdout, gc.Equals, "<svg/>")
}

func (s *FilesSuite) TestIconURL(c *gc.C) {
	stdout, _, code := s.run(c, "icon", "--url", "cs:mongodb")
	c.Assert(code, gc.Equals, 0)
	c.Assert(stdout, gc.Equals, s.baseURL+"/mongodb/icon.svg\n")
	c.Assert(s.store.received(), gc.HasLen, 0)
}

func (s *FilesSuite) TestDiagramNotFound(c *gc.C) {
	s.store.handle("/v5/bundle/wiki/diagram.svg", http.StatusNotFound, "")

	_, stderr, code := s.run(c, "diagram", "bundle/wiki")
	c.Assert(code, gc.Equals, 1)
	c.Assert(stderr, jc.Contains, "ERROR "+s.baseURL+"/bundle/wiki/diagram.svg\n")
}

func (s *FilesSuite) TestURLs(c *gc.C) {
	s.store.ok("/v5/mysql/meta/manifest", manifest)

	stdout, _, code := s.run(c, "urls", "--resource", "data", "--revision", "3", "mysql")
	c.Assert(code, gc.Equals, 0)
	c.Assert(rows(stdout), jc.DeepEquals, [][]string{
		{"archive", s.baseURL + "/mysql/archive"},
		{"icon", s.baseURL + "/mysql/icon.svg"},
		{"diagram", s.baseURL + "/mysql/diagram.svg"},
		{"readme", s.baseURL + "/mysql/readme"},
		{"resource", s.baseURL + "/mysql/resource/data/3"},
	})
}

func (s *FilesSuite) TestURLsResourceNeedsRevision(c *gc.C) {
	_, stderr, code := s.run(c, "urls", "--resource", "data", "mysql")
	c.Assert(code, gc.Equals, 2)
	c.Assert(stderr, jc.Contains, "ERROR --resource and --revision must be given together")
}
