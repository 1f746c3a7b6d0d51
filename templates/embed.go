// Package templates holds the starter files written by `batchmaker init`.
package templates

import _ "embed"

//go:embed design.yaml
var DesignYAML string

//go:embed design.hcl
var DesignHCL string
