// Package templates embeds the files written by "filegraph init".
package templates

import _ "embed"

// ConfigFile is the name of the project configuration file.
const ConfigFile = "filegraph.yml"

// DefaultConfig is the commented default filegraph.yml. Its active keys
// match the built-in defaults.
//
//go:embed filegraph.yml
var DefaultConfig []byte
