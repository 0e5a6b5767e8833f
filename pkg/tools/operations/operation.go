// Package operations provides file system tools: reading and editing files.
package operations

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/hamzaessahbaoui/agentic-toolkit/toolkit"
)

// ErrPathRequired is returned when a file operation gets an empty path.
var ErrPathRequired = errors.New("path_required")

// EditFile writes args.Content to args.Path, creating parent directories as needed.
func EditFile(ctx context.Context, args EditFileArgs) (EditFileResponse, error) {
	log.Ctx(ctx).Debug().Str("path", args.Path).Int("bytes", len(args.Content)).Msg("edit file")

	if args.Path == "" {
		return EditFileResponse{}, ErrPathRequired
	}
	if dir := filepath.Dir(args.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return EditFileResponse{}, err
		}
	}
	if err := os.WriteFile(args.Path, []byte(args.Content), 0o644); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("path", args.Path).Msg("failed to write file")
		return EditFileResponse{}, err
	}
	return EditFileResponse{Success: true, BytesWritten: len(args.Content)}, nil
}

// ReadFile returns the content of args.Path.
func ReadFile(ctx context.Context, args ReadFileArgs) (ReadFileResponse, error) {
	log.Ctx(ctx).Debug().Str("path", args.Path).Msg("read file")

	if args.Path == "" {
		return ReadFileResponse{}, ErrPathRequired
	}
	content, err := os.ReadFile(args.Path)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("path", args.Path).Msg("failed to read file")
		return ReadFileResponse{}, err
	}
	return ReadFileResponse{Success: true, Content: string(content)}, nil
}

// Register adds the edit_file and read_file tools to tk.
func Register(tk *toolkit.Toolkit) error {
	edit, err := toolkit.NewTool("edit_file", "Writes content to a file.", EditFile)
	if err != nil {
		return err
	}
	read, err := toolkit.NewTool("read_file", "Reads content from a file.", ReadFile)
	if err != nil {
		return err
	}
	for _, d := range []*toolkit.Descriptor{edit, read} {
		if _, err := tk.Register(d); err != nil {
			return err
		}
	}
	return nil
}
