// Package mcp provides a Model Context Protocol interface to the round
// tracker.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for round and course operations
//   - A thin REST proxy: every tool call becomes an API request
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - create_round: Start a round for a player on a course
//   - round_state: Get the scorecard and current position
//   - log_shot: Record a stroke with GPS position and club
//   - complete_hole: Finish a hole without holing out
//   - abandon_round: Abandon a round in progress
//   - delete_round: Remove and archive a player's round
//   - list_rounds: List all live rounds
//   - list_courses: List available courses
//   - course_details: Hole-by-hole course layout
//   - caddie_instructions: Usage instructions and rules
//
// Transport Modes:
//
// The server supports stdio communication for local MCP clients. The client
// itself talks to the REST API over HTTP, so the MCP process can run
// anywhere the API is reachable.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// AI Integration:
//
// The MCP interface enables AI agents to act as a caddie: start rounds,
// log shots from reported positions, watch for hazard encounters, and
// report the scorecard on request.
package mcp
