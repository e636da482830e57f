// Package schemas embeds the JSON Schemas shipped with the binary.
package schemas

import _ "embed"

// Config is the JSON Schema for configuration files.
//
//go:embed config.schema.json
var Config []byte
