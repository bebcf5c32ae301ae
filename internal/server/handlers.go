package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/packforge/packd/internal"
	"github.com/packforge/packd/internal/build"
	"github.com/packforge/packd/internal/manifest"
	"github.com/packforge/packd/internal/protocol"
	"github.com/packforge/packd/internal/runtime"
	"github.com/packforge/packd/internal/tags"
)

// Handles a build command.
//
// Receives a recipe from the CLI and executes it against the container
// engine. When the request carries a tag name, the build output is
// registered in the tag registry and the record is returned alongside the
// output path.
func (s *Server) handleBuild(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.BuildRequest](payload)
	if err != nil {
		s.respondErr(conn, err)
		return
	}

	data, err := req.Recipe.Bytes()
	if err != nil {
		s.respondErr(conn, err)
		return
	}

	recipe, err := manifest.Parse(req.Recipe.Name, data)
	if err != nil {
		s.respondErr(conn, err)
		return
	}

	result, err := build.Run(ctx, s.engine, build.Options{
		Recipe:     recipe,
		Resource:   req.Resource,
		Output:     req.Output,
		Root:       req.Root,
		Entrypoint: req.Entrypoint,
		Platforms:  req.Platforms,
	})
	if err != nil {
		s.respondErr(conn, err)
		return
	}

	s.mu.Lock()
	s.builds++
	s.mu.Unlock()

	res := &protocol.BuildResult{Output: result.Output}

	if req.Tag != "" {
		rec, err := s.registerTag(ctx, req.Tag, result.Output)
		if err != nil {
			s.respondErr(conn, err)
			return
		}
		res.Tag = &rec
	}

	s.respond(conn, protocol.CmdOK, res)
}

// Points a tag at a freshly built output, creating or repointing as needed.
func (s *Server) registerTag(ctx context.Context, name, target string) (protocol.TagRecord, error) {
	rec, err := s.tags.Create(ctx, name, target)
	if errors.Is(err, tags.ErrExists) {
		return s.tags.Update(ctx, name, target)
	}
	return rec, err
}

// Handles an image import command.
func (s *Server) handleImageImport(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.ImageImportRequest](payload)
	if err != nil {
		s.respondErr(conn, err)
		return
	}

	if err := s.engine.ImportImage(ctx, req.Path, req.Tag); err != nil {
		s.respondErr(conn, err)
		return
	}

	s.respond(conn, protocol.CmdOK, nil)
}

// Handles an image start command.
func (s *Server) handleImageStart(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.ImageStartRequest](payload)
	if err != nil {
		s.respondErr(conn, err)
		return
	}

	if _, err := s.engine.StartFromImage(ctx, req.Tag, req.ID, runtime.DefaultPlatform()); err != nil {
		s.respondErr(conn, err)
		return
	}

	s.respond(conn, protocol.CmdOK, nil)
}

// Handles an image destroy command.
func (s *Server) handleImageDestroy(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.ImageDestroyRequest](payload)
	if err != nil {
		s.respondErr(conn, err)
		return
	}

	if err := s.engine.DestroyImage(ctx, req.Tag); err != nil {
		s.respondErr(conn, err)
		return
	}

	s.respond(conn, protocol.CmdOK, nil)
}

// Handles a container stop command.
func (s *Server) handleContainerStop(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.ContainerRequest](payload)
	if err != nil {
		s.respondErr(conn, err)
		return
	}

	if err := s.engine.Container(req.ID).Stop(ctx); err != nil {
		s.respondErr(conn, err)
		return
	}

	s.respond(conn, protocol.CmdOK, nil)
}

// Handles a container destroy command.
func (s *Server) handleContainerDestroy(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.ContainerRequest](payload)
	if err != nil {
		s.respondErr(conn, err)
		return
	}

	s.engine.Container(req.ID).Destroy(ctx)
	s.respond(conn, protocol.CmdOK, nil)
}

// Handles a container status command.
func (s *Server) handleContainerStatus(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.ContainerRequest](payload)
	if err != nil {
		s.respondErr(conn, err)
		return
	}

	state, err := s.engine.Container(req.ID).Status(ctx)
	if err != nil {
		s.respondErr(conn, err)
		return
	}

	s.respond(conn, protocol.CmdOK, &protocol.ContainerStatusResult{State: state})
}

// Handles a container exec command.
func (s *Server) handleContainerExec(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.ContainerExecRequest](payload)
	if err != nil {
		s.respondErr(conn, err)
		return
	}

	result, err := s.engine.Container(req.ID).ExecArgs(ctx, req.Args)
	if err != nil {
		s.respondErr(conn, err)
		return
	}

	s.respond(conn, protocol.CmdOK, &protocol.ContainerExecResult{
		ExitCode: result.ExitCode,
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
	})
}

// Handles a status command.
func (s *Server) handleStatus(ctx context.Context, conn net.Conn) {
	s.mu.Lock()
	builds := s.builds
	s.mu.Unlock()

	tagCount, err := s.tags.Count(ctx)
	if err != nil {
		slog.Warn("failed to count tags", "error", err)
	}

	uptime := time.Since(s.startedAt).Truncate(time.Second)

	s.respond(conn, protocol.CmdOK, &protocol.StatusResult{
		Running: true,
		Version: internal.VersionString(),
		Pid:     os.Getpid(),
		Uptime:  uptime.String(),
		Builds:  builds,
		Tags:    tagCount,
	})
}

// Handles a shutdown command.
func (s *Server) handleShutdown(conn net.Conn) {
	s.respond(conn, protocol.CmdOK, nil)
	slog.Info("shutdown requested")

	go func() {
		s.Stop()
	}()
}
