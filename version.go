// Package qlshim holds module-wide metadata for the qlshim MCP server.
package qlshim

// Version is the qlshim release version.
const Version = "v0.3.0"
