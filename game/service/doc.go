// Package service provides the business logic layer for the grid soccer
// environment.
//
// The service package implements:
//   - Multi-session environment management
//   - Action name parsing at the external boundary
//   - Step orchestration and episode trace tracking
//   - Map listing, loading and saving
//   - Session lifecycle management
//
// Core Interfaces:
//
// EnvService is the main service interface providing high-level environment
// operations. SessionManager handles session creation, retrieval, and
// lifecycle. MapManager handles map loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the simulation engine, providing session isolation and business logic
// orchestration. Each session maintains its own environment instance with an
// independent state and RNG stream. Action names arriving from transports are
// parsed here; everything below this layer works with typed actions only.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	mapMgr, _ := config.NewManager("maps")
//	envService := service.NewEnvService(sessionMgr, mapMgr)
//
//	info, err := envService.CreateSession(ctx, service.CreateSessionOptions{
//		MapName:  "classic",
//		TeamSize: 2,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := envService.Step(ctx, info.ID, []string{"MOVE_RIGHT", "STAND"})
//
// Episode Traces:
//
// The service records every executed step of the current episode per session.
// Traces are cleared on reset and deleted with their session; GetTrace serves
// them paginated, most recent first by default.
package service
