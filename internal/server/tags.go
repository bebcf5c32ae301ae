package server

import (
	"context"
	"encoding/json"
	"net"

	"github.com/packforge/packd/internal/protocol"
)

// Handles a tag create command.
func (s *Server) handleTagCreate(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.TagCreateRequest](payload)
	if err != nil {
		s.respondErr(conn, err)
		return
	}

	rec, err := s.tags.Create(ctx, req.Name, req.Target)
	if err != nil {
		s.respondErr(conn, err)
		return
	}

	s.respond(conn, protocol.CmdOK, &rec)
}

// Handles a tag update command.
func (s *Server) handleTagUpdate(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.TagUpdateRequest](payload)
	if err != nil {
		s.respondErr(conn, err)
		return
	}

	rec, err := s.tags.Update(ctx, req.Name, req.Target)
	if err != nil {
		s.respondErr(conn, err)
		return
	}

	s.respond(conn, protocol.CmdOK, &rec)
}

// Handles a tag get command.
func (s *Server) handleTagGet(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.TagGetRequest](payload)
	if err != nil {
		s.respondErr(conn, err)
		return
	}

	rec, err := s.tags.Get(ctx, req.Name)
	if err != nil {
		s.respondErr(conn, err)
		return
	}

	s.respond(conn, protocol.CmdOK, &rec)
}

// Handles a tag list command.
func (s *Server) handleTagList(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.TagListRequest](payload)
	if err != nil {
		s.respondErr(conn, err)
		return
	}

	page, err := s.tags.List(ctx, req.Skip, req.Limit, req.Target)
	if err != nil {
		s.respondErr(conn, err)
		return
	}

	s.respond(conn, protocol.CmdOK, &page)
}

// Handles a tag delete command.
func (s *Server) handleTagDelete(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.TagDeleteRequest](payload)
	if err != nil {
		s.respondErr(conn, err)
		return
	}

	if err := s.tags.Delete(ctx, req.Name); err != nil {
		s.respondErr(conn, err)
		return
	}

	s.respond(conn, protocol.CmdOK, nil)
}
