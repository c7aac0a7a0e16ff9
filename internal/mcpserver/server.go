package mcpserver

import (
	"fsgate/internal/guard"
	"fsgate/internal/logging"
	"fsgate/internal/safeio"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is reported during the MCP handshake.
const Version = "1.0.0"

// Server wires the filesystem tools to an MCP stdio transport.
type Server struct {
	logger    *logging.AppLogger
	policy    *guard.Policy
	ops       *safeio.Ops
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server bound to the given policy.
func NewServer(policy *guard.Policy, logger *logging.AppLogger) *Server {
	return &Server{
		logger: logger,
		policy: policy,
		ops:    safeio.NewOps(policy),
	}
}

// Start registers the tools and serves MCP over stdio until EOF or
// termination.
func (s *Server) Start() error {
	s.logger.Info("Initializing MCP server", "allowedDirs", s.policy.AllowedDirs())

	s.mcpServer = server.NewMCPServer("fsgate", Version,
		server.WithToolCapabilities(false),
	)
	s.registerTools()

	s.logger.Info("MCP server created, starting stdio communication")
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("read_file",
			mcp.WithDescription("Read the contents of a file inside the allowed directories."),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path of the file to read")),
		),
		s.handleReadFile,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("write_file",
			mcp.WithDescription("Write a file inside the allowed directories, creating it or atomically overwriting an existing regular file."),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path of the file to write")),
			mcp.WithString("content", mcp.Required(), mcp.Description("New file contents")),
		),
		s.handleWriteFile,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("create_file",
			mcp.WithDescription("Create a new file inside the allowed directories; fails if the target already exists."),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path of the file to create")),
			mcp.WithString("content", mcp.Required(), mcp.Description("File contents")),
		),
		s.handleCreateFile,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_file",
			mcp.WithDescription("Delete a file (or empty directory) inside the allowed directories."),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path to delete")),
		),
		s.handleDeleteFile,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("move_file",
			mcp.WithDescription("Move or rename a file inside the allowed directories."),
			mcp.WithString("source", mcp.Required(), mcp.Description("Existing path")),
			mcp.WithString("destination", mcp.Required(), mcp.Description("New path")),
		),
		s.handleMoveFile,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_directory",
			mcp.WithDescription("List the entries of a directory inside the allowed directories."),
			mcp.WithString("path", mcp.Required(), mcp.Description("Directory to list")),
		),
		s.handleListDirectory,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_allowed_directories",
			mcp.WithDescription("List the directories this server is allowed to access."),
		),
		s.handleListAllowedDirectories,
	)
}

// Stop gracefully shuts down the MCP server
func (s *Server) Stop() error {
	s.logger.Info("Stopping MCP server")
	// The mcp-go server handles cleanup when the stdio stream closes.
	return nil
}
