package config

import "regexp"

var portPattern = regexp.MustCompile(`^[0-9]{1,5}$`)

// prefixPattern matches "" or a rooted path without a trailing slash, e.g. "/cdn".
var prefixPattern = regexp.MustCompile(`^(/[A-Za-z0-9._~-]+)*$`)
