// Package mcpserver implements the Model Context Protocol (MCP) server
// for fsgate using the mcp-go library.
//
// The server exposes filesystem tools (read, write, delete, move, list)
// over stdio using JSON-RPC 2.0 as specified by the MCP standard. It is
// typically started as a subprocess by an AI assistant that supports MCP
// integration.
//
// # Security
//
// Every tool call is routed through the guard and safeio packages: the
// path is normalized and resolved against the operator-whitelisted
// directories before any descriptor is opened, and the I/O primitives
// close the validation-to-syscall race window. No tool handler touches
// the filesystem directly.
//
// # References
//
// - MCP Specification: https://modelcontextprotocol.io/specification
// - mcp-go Library: https://github.com/mark3labs/mcp-go
package mcpserver
