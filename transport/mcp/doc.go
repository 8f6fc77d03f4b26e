// Package mcp provides a Model Context Protocol interface to the simulation.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for environment operations
//   - Session-aware command execution
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - env_state: Get current state with a rendered field
//   - step: Advance the simulation one time step
//   - reset_env: Reset the episode to initial state
//   - episode_trace: Retrieve executed steps with pagination
//   - create_session: Create new session with map, team size, and seed
//   - get_session: Get specific session details
//   - list_sessions: List all active sessions
//   - list_maps: List available field maps
//   - env_instructions: Get rules and strategy notes
//
// Architecture:
//
// The client is a thin proxy: every tool call is translated into a REST
// request against the API server, and the JSON response is rendered into
// text an agent can read. The MCP process holds no simulation state of its
// own, so stdio clients and the HTTP endpoint always observe the same
// sessions.
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: Streamable HTTP endpoint mounted on the API server
//
// Usage:
//
//	// Stdio mode
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// AI Integration:
//
// The MCP interface enables AI agents to:
//   - Drive episodes step by step against the scripted opponent
//   - Develop and test control policies
//   - Replay episodes via the trace tool
//   - Manage multiple concurrent sessions
package mcp
