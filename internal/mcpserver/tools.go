package mcpserver

import (
	"context"
	"fmt"
	"os"
	"strings"

	"fsgate/internal/guard"

	"github.com/mark3labs/mcp-go/mcp"
)

// The handle* functions only unpack tool arguments; the corresponding
// lowercase methods carry the behavior so tests can exercise them without
// an MCP transport.

func (s *Server) handleReadFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := s.readFile(path)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleWriteFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.writeFile(path, []byte(content)); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Wrote %d bytes", len(content))), nil
}

func (s *Server) handleCreateFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.createFile(path, []byte(content)); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Created file with %d bytes", len(content))), nil
}

func (s *Server) handleDeleteFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.deleteFile(path); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText("Deleted"), nil
}

func (s *Server) handleMoveFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	destination, err := req.RequireString("destination")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.moveFile(source, destination); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText("Moved"), nil
}

func (s *Server) handleListDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	listing, err := s.listDirectory(path)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(listing), nil
}

func (s *Server) handleListAllowedDirectories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(strings.Join(s.policy.AllowedDirs(), "\n")), nil
}

// Tool behavior

func (s *Server) readFile(path string) (string, error) {
	res, err := s.policy.Resolve(path, guard.IntentRead)
	if err != nil {
		return "", err
	}
	data, err := s.ops.ReadFile(res)
	if err != nil {
		return "", err
	}
	s.logger.Debug("Read file", "path", res.Real, "bytes", len(data))
	return string(data), nil
}

// writeFile creates the target when it does not exist and atomically
// overwrites it when it does. Symlink targets are refused either way.
func (s *Server) writeFile(path string, data []byte) error {
	res, err := s.policy.Resolve(path, guard.IntentCreateNew)
	if err != nil {
		return err
	}

	switch res.Kind {
	case guard.ResolvedNew:
		if err := s.ops.WriteNewFile(res, data); err != nil {
			return err
		}
	case guard.ResolvedExisting:
		if err := s.ops.OverwriteExistingFile(res, data); err != nil {
			return err
		}
	}

	s.logger.Debug("Wrote file", "path", res.Real, "bytes", len(data))
	return nil
}

// createFile is the strict variant: the target must not exist. A target
// already present at resolve time is a plain already-exists error; only
// the exclusive create deeper down reports a race.
func (s *Server) createFile(path string, data []byte) error {
	res, err := s.policy.Resolve(path, guard.IntentCreateNew)
	if err != nil {
		return err
	}
	if res.Kind != guard.ResolvedNew {
		return guard.Reject(guard.KindIOError, path, os.ErrExist)
	}
	if err := s.ops.WriteNewFile(res, data); err != nil {
		return err
	}
	s.logger.Debug("Created file", "path", res.Real, "bytes", len(data))
	return nil
}

func (s *Server) deleteFile(path string) error {
	res, err := s.policy.Resolve(path, guard.IntentDelete)
	if err != nil {
		return err
	}
	if res.Kind != guard.ResolvedExisting {
		return guard.Reject(guard.KindIOError, path, fmt.Errorf("no such file"))
	}
	if err := s.ops.DeletePath(res); err != nil {
		return err
	}
	s.logger.Debug("Deleted", "path", res.Real)
	return nil
}

func (s *Server) moveFile(source, destination string) error {
	srcRes, err := s.policy.Resolve(source, guard.IntentRename)
	if err != nil {
		return err
	}
	if srcRes.Kind != guard.ResolvedExisting {
		return guard.Reject(guard.KindIOError, source, fmt.Errorf("no such file"))
	}
	dstRes, err := s.policy.Resolve(destination, guard.IntentRename)
	if err != nil {
		return err
	}
	if err := s.ops.RenamePath(srcRes, dstRes); err != nil {
		return err
	}
	s.logger.Debug("Moved", "from", srcRes.Real, "to", dstRes.Real)
	return nil
}

func (s *Server) listDirectory(path string) (string, error) {
	res, err := s.policy.Resolve(path, guard.IntentRead)
	if err != nil {
		return "", err
	}
	entries, err := s.ops.ListDir(res)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, e := range entries {
		if e.IsDir {
			b.WriteString("[DIR]  ")
		} else {
			b.WriteString("[FILE] ")
		}
		b.WriteString(e.Name)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// toolError translates the rejection taxonomy into a tool result. The
// message carries the kind and the caller's path only; canonical paths
// the caller never saw stay out of the transcript.
func toolError(err error) *mcp.CallToolResult {
	if r, ok := guard.AsRejection(err); ok {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", r.Kind, r.Path))
	}
	return mcp.NewToolResultError(err.Error())
}
