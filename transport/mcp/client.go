package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gridsoccer/gridsoccer/game/engine"
	"github.com/gridsoccer/gridsoccer/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Grid Soccer Environment",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Grid Soccer Environment - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Control the PLAYER team on a grid soccer field. Move your agents toward the
opponent's goal tiles while holding the ball. Scripted COMPUTER agents defend
and attack on their own. An episode ends when either team scores or the step
limit is reached.

AVAILABLE TOOLS:
- create_session: Create a new environment session
- list_sessions: List all active sessions
- get_session: Get session details
- env_state: Get the current state with a rendered field
- step: Advance the simulation one time step - requires one action per player agent
- reset_env: Reset the episode to a fresh initial state
- episode_trace: View executed steps of the current episode
- list_maps: List available field maps
- env_instructions: Get comprehensive rules and strategy notes

NOTE: The 'intent' parameter on the step tool serves as rubber duck debugging - explain your reasoning!`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new environment session with optional map, team size, and seed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"map_name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the map to use (optional)",
				},
				"team_size": map[string]interface{}{
					"type":        "integer",
					"description": "Number of agents per team (optional, default 1)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Random seed for reproducible episodes (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active environment sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Environment operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "env_state",
		Description: "Get the current environment state with a rendered field",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleEnvState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "step",
		Description: "Advance the simulation one time step with one action per player agent",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"actions": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"MOVE_UP", "MOVE_DOWN", "MOVE_LEFT", "MOVE_RIGHT", "STAND"},
					},
					"description": "One action per player agent, ordered by agent index",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this step (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "actions"},
		},
	}, c.handleStep)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_env",
		Description: "Reset the episode to a fresh initial state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "episode_trace",
		Description: "Get the executed steps of the current episode",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleEpisodeTrace)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_maps",
		Description: "List available field maps",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListMaps)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "env_instructions",
		Description: "Get comprehensive environment rules and strategy notes",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleEnvInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// loadMapConfig fetches the map definition backing a session so the field
// can be rendered client-side
func (c *Client) loadMapConfig(mapID string) *engine.MapConfig {
	if mapID == "" {
		return nil
	}
	var cfg engine.MapConfig
	if err := c.apiCall("GET", fmt.Sprintf("/api/maps/%s", mapID), nil, &cfg); err != nil {
		return nil
	}
	return &cfg
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	mapName, _ := args["map_name"].(string)

	body := map[string]interface{}{}
	if mapName != "" {
		body["map_name"] = mapName
	}
	if teamSize, ok := args["team_size"].(float64); ok {
		body["team_size"] = int(teamSize)
	}
	if seed, ok := args["seed"].(float64); ok {
		body["seed"] = int64(seed)
	}

	var session service.SessionInfo
	err := c.apiCall("POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nMap: %s\nTeam size: %d\n",
		session.ID, session.MapID, session.TeamSize)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "running"
		if s.Terminal {
			status = "terminal"
		}
		result += fmt.Sprintf("- %s (Map: %s, Team size: %d, %s, Created: %s)\n",
			s.ID, s.MapID, s.TeamSize, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatSessionInfo(&session, c.loadMapConfig(session.MapID))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleEnvState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var state service.StateInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatStateInfo(&state, c.loadMapConfig(state.MapID))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	actionsRaw, _ := args["actions"].([]interface{})
	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	// Convert actions to string array
	actions := make([]string, 0, len(actionsRaw))
	for _, a := range actionsRaw {
		if action, ok := a.(string); ok {
			actions = append(actions, action)
		}
	}

	body := map[string]interface{}{
		"actions": actions,
	}

	var result service.StepResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/step", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Fetch the session to learn which map to render
	var cfg *engine.MapConfig
	var session service.SessionInfo
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session); err == nil {
		cfg = c.loadMapConfig(session.MapID)
	}

	response := formatStepResult(&result, cfg)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var response struct {
		Message string           `json:"message"`
		State   *engine.Snapshot `json:"state"`
	}

	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var cfg *engine.MapConfig
	var session service.SessionInfo
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session); err == nil {
		cfg = c.loadMapConfig(session.MapID)
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatSnapshot(response.State, cfg))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleEpisodeTrace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	params := "?"
	if page, ok := args["page"].(float64); ok {
		params += fmt.Sprintf("page=%d&", int(page))
	}
	if limit, ok := args["limit"].(float64); ok {
		params += fmt.Sprintf("limit=%d&", int(limit))
	}

	var trace service.TraceResponse
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/trace%s", sessionID, params), nil, &trace)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatTrace(&trace)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListMaps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var maps []service.MapInfo
	err := c.apiCall("GET", "/api/maps", nil, &maps)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Maps:\n\n"
	for _, m := range maps {
		result += fmt.Sprintf("• %s\n  %s\n  Grid: %dx%d, Player spawns: %d, Computer spawns: %d\n\n",
			m.MapID, m.Description, m.Width, m.Height, m.PlayerSpawns, m.ComputerSpawns)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleEnvInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Grid Soccer Environment - Complete Instructions

OBJECTIVE:
Score by moving a ball-holding PLAYER agent onto one of the opponent's goal
tiles before the scripted COMPUTER team scores on you or the step limit ends
the episode in a draw.

MECHANICS:
• Discrete time: every step tool call advances the whole simulation one tick
• You supply one action per PLAYER agent, ordered by agent index
• COMPUTER agents act on their own scripted policies in the same tick
• Actions: MOVE_UP, MOVE_DOWN, MOVE_LEFT, MOVE_RIGHT, STAND
• MOVE_UP decreases y; the origin (0,0) is the top-left corner
• Moves into walls or off the field leave the agent standing in place
• Two agents can never share a tile: contested moves are resolved randomly
  and losers stay where they were
• When an agent steps next to (or into the resolution group of) the ball
  holder, the ball may switch hands; at most one switch happens per tick
• Reward is from the PLAYER team's perspective: +1 for scoring, -1 when the
  COMPUTER team scores, 0 otherwise

FIELD RENDERING:
• # - wall (impassable)
• . - open ground
• digits 0,1,2,... - PLAYER agents, numbered by agent index
• letters A,B,C,... - COMPUTER agents, in index order
• * - suffix marking the ball holder in the agent list below the field
• g - goal tiles where YOU score (on the computer's side)
• G - goal tiles where the COMPUTER scores (on your side)

STRATEGY NOTES:
• Holding the ball: head for the nearest 'g' tile; prefer corridors that keep
  distance from DEFENSIVE computer agents
• Not holding: shadow the computer ball holder to force a contested tile and
  a chance at winning the ball
• Computer OFFENSIVE agents rush your goals when they hold the ball; block
  the shortest approach corridor
• The episode is capped: stalling is a draw, not a win

SESSION MANAGEMENT:
- Multiple sessions can run simultaneously
- Each session has a unique 4-character ID
- Sessions maintain independent state, map, and random seed
- Pass a seed at creation for reproducible episodes

Remember: every step call moves BOTH teams. Check env_state before planning
multi-step sequences, and use episode_trace to review how an episode unfolded.`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo, cfg *engine.MapConfig) string {
	return fmt.Sprintf("Session: %s\nMap: %s\nTeam size: %d\nCreated: %s\n\n%s",
		session.ID, session.MapID, session.TeamSize,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatSnapshot(session.State, cfg))
}

func formatStateInfo(state *service.StateInfo, cfg *engine.MapConfig) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Session: %s | Map: %s | Time step: %d\n",
		state.SessionID, state.MapID, state.TimeStep))
	if state.Terminal {
		b.WriteString("Episode: TERMINAL\n")
	}
	b.WriteString("\n")
	b.WriteString(formatSnapshot(state.State, cfg))
	return b.String()
}

func formatStepResult(result *service.StepResult, cfg *engine.MapConfig) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Step %d executed\n", result.TimeStep))
	b.WriteString(fmt.Sprintf("Player actions: %s\n", strings.Join(result.Actions, ", ")))
	b.WriteString(fmt.Sprintf("Reward: %g\n", result.Reward))

	if result.BallHolder != nil {
		b.WriteString(fmt.Sprintf("Ball: %s agent %d\n", result.BallHolder.Team, result.BallHolder.Index))
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nAgent movements:\n")
		for _, s := range result.Steps {
			ball := ""
			if s.HasBall {
				ball = " [ball]"
			}
			b.WriteString(fmt.Sprintf("%d. %s %s (%d,%d)->(%d,%d)%s\n",
				s.Index, s.Team, s.Action, s.From.X, s.From.Y, s.To.X, s.To.Y, ball))
		}
	}

	if result.Terminal {
		switch {
		case result.Reward > 0:
			b.WriteString("\nEPISODE OVER: PLAYER team scored!")
		case result.Reward < 0:
			b.WriteString("\nEPISODE OVER: COMPUTER team scored.")
		default:
			b.WriteString("\nEPISODE OVER: step limit reached, draw.")
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(formatSnapshot(result.State, cfg))
	return b.String()
}

// formatSnapshot renders the field with agents overlaid on the map layout.
// Player agents render as digits of their index, computer agents as letters
// starting at A. Without a map the agent list alone is returned.
func formatSnapshot(snap *engine.Snapshot, cfg *engine.MapConfig) string {
	if snap == nil {
		return "No state available"
	}

	var b strings.Builder

	if cfg != nil && len(cfg.Layout) > 0 {
		grid := make([][]rune, len(cfg.Layout))
		for y, row := range cfg.Layout {
			cells := make([]rune, 0, len(row))
			for _, r := range row {
				switch cfg.Legend[string(r)] {
				case "wall":
					cells = append(cells, '#')
				case "player_goal":
					cells = append(cells, 'g')
				case "computer_goal":
					cells = append(cells, 'G')
				default:
					cells = append(cells, '.')
				}
			}
			grid[y] = cells
		}

		for i, agent := range snap.Agents {
			x, y := agent.Pos.X, agent.Pos.Y
			if y < 0 || y >= len(grid) || x < 0 || x >= len(grid[y]) {
				continue
			}
			if i < snap.TeamSize {
				grid[y][x] = rune('0' + i)
			} else {
				grid[y][x] = rune('A' + (i - snap.TeamSize))
			}
		}

		for _, row := range grid {
			b.WriteString(string(row))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("Time step: %d\n", snap.TimeStep))
	for i, agent := range snap.Agents {
		team := "PLAYER"
		label := fmt.Sprintf("%d", i)
		if i >= snap.TeamSize {
			team = "COMPUTER"
			label = string(rune('A' + (i - snap.TeamSize)))
		}
		ball := ""
		if agent.HasBall {
			ball = " *ball*"
		}
		mode := ""
		if agent.Mode != engine.ModeNone {
			mode = fmt.Sprintf(" [%s]", agent.Mode)
		}
		b.WriteString(fmt.Sprintf("- %s %s at (%d,%d)%s%s\n",
			team, label, agent.Pos.X, agent.Pos.Y, mode, ball))
	}

	return b.String()
}

func formatTrace(trace *service.TraceResponse) string {
	result := fmt.Sprintf("Episode Trace (Page %d/%d) - Total steps: %d\n\n",
		trace.Page, trace.TotalPages, trace.TotalSteps)

	for _, entry := range trace.Steps {
		terminal := ""
		if entry.Terminal {
			terminal = " TERMINAL"
		}
		result += fmt.Sprintf("%d. actions=[%s] reward=%g%s\n",
			entry.Step, strings.Join(entry.Actions, ","), entry.Reward, terminal)
	}

	return result
}
