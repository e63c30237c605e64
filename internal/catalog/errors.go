package catalog

import "errors"

// ErrInvalidURL indicates the caller-supplied string does not parse as an
// absolute http(s) URL.
var ErrInvalidURL = errors.New("invalid url")

// ErrHostNotAllowed indicates the URL parses but its host is neither the
// allowed origin nor a subdomain of it.
var ErrHostNotAllowed = errors.New("url host not allowed")
