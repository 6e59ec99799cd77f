package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/fairwaylabs/caddie/game/engine"
	"github.com/fairwaylabs/caddie/game/service"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
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
		"Caddie Round Tracker",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Caddie Round Tracker - MCP Interface

This is a thin client that proxies all requests to the REST API server.

PURPOSE:
Track a live golf round shot by shot. Each player has at most one active
round. Shots are logged with GPS coordinates and the club used; the tracker
computes distances, detects hazards, and keeps the scorecard.

AVAILABLE TOOLS:
- create_round: Start a round for a player on a course
- round_state: Get the player's current round and scorecard
- log_shot: Record a stroke with position and club
- complete_hole: Pick up without holing out (e.g. conceded putt)
- abandon_round: Abandon the round (rain-out, walk-off)
- delete_round: Remove and archive the player's round
- list_rounds: List all live rounds
- list_courses: List available courses
- course_details: Hole-by-hole layout of a course
- caddie_instructions: Get comprehensive usage instructions

NOTE: A shot landing within 3 meters of the pin holes out automatically.`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Round lifecycle
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_round",
		Description: "Start a new round for a player, optionally on a named course",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Player identifier",
				},
				"course_id": map[string]interface{}{
					"type":        "string",
					"description": "Course to play (optional, defaults to the server's default course)",
				},
			},
			Required: []string{"player_id"},
		},
	}, c.handleCreateRound)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "round_state",
		Description: "Get the player's current round, scorecard, and position",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Player identifier",
				},
			},
			Required: []string{"player_id"},
		},
	}, c.handleRoundState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rounds",
		Description: "List all live rounds",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRounds)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_round",
		Description: "Remove the player's round from the tracker (archiving its final state)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Player identifier",
				},
			},
			Required: []string{"player_id"},
		},
	}, c.handleDeleteRound)

	// In-round operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "log_shot",
		Description: "Record a stroke at the given GPS position with the club used",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Player identifier",
				},
				"lat": map[string]interface{}{
					"type":        "number",
					"description": "Latitude where the ball came to rest",
				},
				"lon": map[string]interface{}{
					"type":        "number",
					"description": "Longitude where the ball came to rest",
				},
				"club": map[string]interface{}{
					"type":        "string",
					"description": "Club used for the stroke (driver, iron, wedge, putter, ...)",
				},
			},
			Required: []string{"player_id", "lat", "lon", "club"},
		},
	}, c.handleLogShot)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "complete_hole",
		Description: "Finish the current hole without a holed shot (picked up, conceded)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Player identifier",
				},
			},
			Required: []string{"player_id"},
		},
	}, c.handleCompleteHole)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "abandon_round",
		Description: "Abandon the player's round; scores so far are kept",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Player identifier",
				},
			},
			Required: []string{"player_id"},
		},
	}, c.handleAbandonRound)

	// Courses
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_courses",
		Description: "List the courses available for play",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListCourses)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "course_details",
		Description: "Get the hole-by-hole layout of a course, including hazards",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"course_id": map[string]interface{}{
					"type":        "string",
					"description": "Course identifier",
				},
			},
			Required: []string{"course_id"},
		},
	}, c.handleCourseDetails)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "caddie_instructions",
		Description: "Get comprehensive instructions for tracking a round",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleCaddieInstructions)
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

// Tool handlers

func (c *Client) handleCreateRound(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	playerID, _ := args["player_id"].(string)
	courseID, _ := args["course_id"].(string)

	body := map[string]string{"player_id": playerID}
	if courseID != "" {
		body["course_id"] = courseID
	}

	var info service.RoundInfo
	err := c.apiCall("POST", "/api/rounds", body, &info)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Started round %s for %s\nCourse: %s (%d holes, par %d)\nOn the tee of hole %d.\n",
		info.Round.ID, info.Round.PlayerID, info.CourseID, info.HolesTotal, info.TotalPar, info.Round.CurrentHole)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleRoundState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	playerID, _ := args["player_id"].(string)

	var info service.RoundInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/rounds/%s", playerID), nil, &info)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRoundInfo(&info)), nil
}

func (c *Client) handleListRounds(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count  int                  `json:"count"`
		Rounds []*service.RoundInfo `json:"rounds"`
	}

	err := c.apiCall("GET", "/api/rounds", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Live Rounds (%d):\n\n", response.Count)
	for _, info := range response.Rounds {
		result += fmt.Sprintf("- %s on %s: hole %d, %d strokes, %s (started %s)\n",
			info.Round.PlayerID, info.CourseID, info.Round.CurrentHole,
			info.Round.TotalShots, info.Round.State,
			info.Round.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleDeleteRound(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	playerID, _ := args["player_id"].(string)

	err := c.apiCall("DELETE", fmt.Sprintf("/api/rounds/%s", playerID), nil, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Round for %s removed and archived.", playerID)), nil
}

func (c *Client) handleLogShot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	playerID, _ := args["player_id"].(string)
	lat, _ := args["lat"].(float64)
	lon, _ := args["lon"].(float64)
	club, _ := args["club"].(string)

	body := service.ShotRequest{Lat: lat, Lon: lon, Club: club}

	var result service.ShotResult
	err := c.apiCall("POST", fmt.Sprintf("/api/rounds/%s/shots", playerID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatShotResult(&result)), nil
}

func (c *Client) handleCompleteHole(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	playerID, _ := args["player_id"].(string)

	var info service.RoundInfo
	err := c.apiCall("POST", fmt.Sprintf("/api/rounds/%s/complete-hole", playerID), nil, &info)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Hole completed.\n\n" + formatRoundInfo(&info)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleAbandonRound(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	playerID, _ := args["player_id"].(string)

	var info service.RoundInfo
	err := c.apiCall("POST", fmt.Sprintf("/api/rounds/%s/abandon", playerID), nil, &info)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Round abandoned.\n\n" + formatRoundInfo(&info)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListCourses(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var courses []*service.CourseInfo
	err := c.apiCall("GET", "/api/courses", nil, &courses)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Courses:\n\n"
	for _, course := range courses {
		result += fmt.Sprintf("• %s (%s)\n  %d holes, par %d\n\n",
			course.Name, course.CourseID, course.Holes, course.TotalPar)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleCourseDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	courseID, _ := args["course_id"].(string)

	var detail service.CourseDetail
	err := c.apiCall("GET", fmt.Sprintf("/api/courses/%s", courseID), nil, &detail)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Course: %s (par %d)\n\n", detail.Name, detail.TotalPar))
	for _, hole := range detail.Holes {
		b.WriteString(fmt.Sprintf("Hole %d — par %d\n", hole.Number, hole.Par))
		b.WriteString(fmt.Sprintf("  Tee: (%.4f, %.4f)  Pin: (%.4f, %.4f)\n",
			hole.Tee.Lat, hole.Tee.Lon, hole.Pin.Lat, hole.Pin.Lon))
		for _, hz := range hole.Hazards {
			b.WriteString(fmt.Sprintf("  Hazard: %s (%s)\n", hz.ID, hz.Kind))
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleCaddieInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Caddie Round Tracker - Complete Instructions

PURPOSE:
Track a live golf round shot by shot from GPS positions. The tracker keeps
the scorecard, measures every shot, detects hazard encounters, and advances
through the course automatically.

ROUND LIFECYCLE:
• created: round started, no shots yet
• in_progress: at least one shot logged on the current hole
• round_complete: the last hole has been finished (terminal)
• abandoned: the round was walked off (terminal)

Each player has at most ONE live round. Starting a second round while one is
active is rejected; finish or abandon the first. A finished round is
replaced automatically when a new one is created.

LOGGING SHOTS:
• Every shot needs lat, lon, and the club used
• Shot distance is measured from the previous ball position (the tee for the
  first shot of a hole)
• A shot within 3 meters of the pin holes out automatically: the hole score
  is recorded and play advances to the next hole
• Use complete_hole for picked-up balls and conceded putts; the strokes
  logged so far become the hole score

HAZARDS:
• Courses define water, sand, rough, and out-of-bounds areas
• A ball at rest inside a hazard (or within 5 meters of a line or point
  hazard) records a hazard encounter
• Each hazard counts once per round no matter how many times it is visited

SCORING:
• Hole score = number of shots logged on that hole
• Total score = sum of completed hole scores
• The scorecard in round_state shows per-hole scores against par

TYPICAL FLOW:
1. list_courses, then create_round with the chosen course
2. log_shot after every stroke with the ball's resting position
3. round_state whenever you want the scorecard
4. The round completes itself when the last hole is holed out
5. delete_round to archive and clear the finished round

ERROR HANDLING:
• "no active round for player": create a round first
• "player already has an active round": abandon or finish the current one
• "invalid coordinate": lat must be [-90,90], lon [-180,180]
• "club is required": every shot names the club used
• Rejected shots change nothing; correct the input and resend`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatRoundInfo(info *service.RoundInfo) string {
	var b strings.Builder
	snap := info.Round

	b.WriteString(fmt.Sprintf("Player: %s | Course: %s | State: %s\n",
		snap.PlayerID, info.CourseID, snap.State))
	b.WriteString(fmt.Sprintf("Hole %d of %d | Strokes: %d | Score: %d (par %d)\n",
		snap.CurrentHole, info.HolesTotal, snap.TotalShots, snap.TotalScore, info.TotalPar))

	if snap.LastPosition != nil {
		b.WriteString(fmt.Sprintf("Ball at: (%.4f, %.4f)\n", snap.LastPosition.Lat, snap.LastPosition.Lon))
	} else if !snap.State.Terminal() {
		b.WriteString("Ball on the tee.\n")
	}

	b.WriteString("\n" + formatScorecard(snap))

	if len(snap.Hazards) > 0 {
		b.WriteString(fmt.Sprintf("\nHazards encountered: %s\n", strings.Join(snap.Hazards, ", ")))
	}

	return b.String()
}

// formatScorecard renders completed holes in order.
func formatScorecard(snap engine.Snapshot) string {
	if len(snap.Scores) == 0 {
		return "Scorecard: (no holes completed)\n"
	}

	holes := make([]int, 0, len(snap.Scores))
	for n := range snap.Scores {
		holes = append(holes, n)
	}
	sort.Ints(holes)

	var b strings.Builder
	b.WriteString("Scorecard:\n")
	for _, n := range holes {
		b.WriteString(fmt.Sprintf("  Hole %d: %d\n", n, snap.Scores[n]))
	}
	b.WriteString(fmt.Sprintf("  Total: %d\n", snap.TotalScore))
	return b.String()
}

func formatShotResult(result *service.ShotResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Shot logged: %s, %.0fm, hole %d\n",
		result.Shot.Club, result.Shot.DistanceMeters, result.HoleNumber))

	for _, hz := range result.Shot.Hazards {
		b.WriteString(fmt.Sprintf("⚠ Ball in hazard: %s\n", hz))
	}

	if result.HoleCompleted {
		b.WriteString(fmt.Sprintf("⛳ Hole %d complete in %d strokes\n", result.HoleNumber, result.HoleScore))
		if !result.RoundComplete {
			b.WriteString(fmt.Sprintf("Now on hole %d.\n", result.CurrentHole))
		}
	}

	if result.RoundComplete {
		b.WriteString(fmt.Sprintf("🏁 Round complete: %d strokes total\n", result.Round.TotalScore))
	}

	b.WriteString("\n" + formatScorecard(result.Round))
	return b.String()
}
