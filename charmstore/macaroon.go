// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charmstore

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/juju/errors"
	"gopkg.in/macaroon.v2"
)

// MacaroonCookieName is the cookie carrying the client's macaroons.
const MacaroonCookieName = "macaroon-storefront"

// EncodeMacaroons encodes a macaroon slice the way macaroon cookies are
// conventionally stored: base64 encoded JSON.
func EncodeMacaroons(ms macaroon.Slice) (string, error) {
	data, err := json.Marshal(ms)
	if err != nil {
		return "", errors.Annotate(err, "cannot marshal macaroons")
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeMacaroons reverses the encoding used for the macaroon cookie.
func DecodeMacaroons(value string) (macaroon.Slice, error) {
	data, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, errors.Annotate(err, "cannot base64-decode macaroons")
	}
	var ms macaroon.Slice
	if err := json.Unmarshal(data, &ms); err != nil {
		return nil, errors.Annotate(err, "cannot unmarshal macaroons")
	}
	return ms, nil
}

// SetMacaroons sets the macaroons sent with every subsequent request.
// An empty slice stops sending them. It must not be called concurrently
// with requests.
func (c *Client) SetMacaroons(ms macaroon.Slice) error {
	if len(ms) == 0 {
		c.macaroons = ""
		return nil
	}
	value, err := EncodeMacaroons(ms)
	if err != nil {
		return errors.Trace(err)
	}
	c.macaroons = value
	return nil
}

// SetMacaroonCookie sets an already encoded macaroon cookie value, as
// obtained from a browser session for example. The client does not
// inspect it. It must not be called concurrently with requests.
func (c *Client) SetMacaroonCookie(value string) {
	c.macaroons = value
}

func (c *Client) addMacaroons(req *http.Request) {
	if c.macaroons == "" {
		return
	}
	req.AddCookie(&http.Cookie{
		Name:  MacaroonCookieName,
		Value: c.macaroons,
	})
}
