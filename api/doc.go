// Package api provides HTTP REST handlers for live round tracking.
//
// The api package implements:
//   - RESTful endpoints for round lifecycle and shot logging
//   - Course listing and layout endpoints
//   - WebSocket upgrade handling for live round updates
//
// Endpoints:
//
// Round Lifecycle:
//   - POST /api/rounds - Start a round for a player
//   - GET /api/rounds - List all live rounds
//   - GET /api/rounds/{player} - Get the player's round
//   - DELETE /api/rounds/{player} - Remove (and archive) the player's round
//
// In-Round Operations:
//   - POST /api/rounds/{player}/shots - Log a stroke
//   - POST /api/rounds/{player}/complete-hole - Pick up without holing out
//   - POST /api/rounds/{player}/abandon - Abandon the round
//
// Courses:
//   - GET /api/courses - List available courses
//   - GET /api/courses/{id} - Hole-by-hole course layout
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Rounds are addressed by player
// identifier because each player has at most one live round.
//
// Shots are sent as POST with JSON body:
//
//	{
//	  "lat": 47.6064,
//	  "lon": -122.3314,
//	  "club": "driver"
//	}
//
// Error Handling:
//
// Errors are returned as JSON with the domain error mapped to a status code:
//
//	{
//	  "error": "error message"
//	}
//
//   - 404: no round for player, unknown course
//   - 409: duplicate active round, round already finished, no holes left
//   - 422: invalid coordinate, missing club, missing player id
//   - 400: malformed request body
package api
