// Package websocket provides real-time round updates over WebSocket.
//
// The websocket package implements:
//   - Live push of round snapshots after every logged shot
//   - Player-aware WebSocket connections
//   - Connection lifecycle management
//   - Hazard and completion event delivery
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a dedicated
// goroutine that manages reading, writing, and cleanup. All hub state is
// owned by the Run goroutine; broadcasts flow through its channel.
//
// Message Protocol:
//
// Messages are JSON-encoded with the following structure:
//   - Outgoing: {player_id, round: <snapshot>, event: "round_update"}
//   - Outgoing: {player_id, event: "shot"|"hazard"|"hole_complete"|"round_complete", data: ...}
//
// Incoming messages from clients are ignored; connections are read only to
// keep them alive.
//
// Player Integration:
//
// WebSocket connections follow one player's round. Clients specify the
// player via query parameter (?player=alice) when establishing the
// connection. Updates are broadcast only to clients following that player,
// so a caddie, a scorer, and a spectator can all watch the same round.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	// after a shot is logged:
//	hub.BroadcastRound(playerID, result.Round)
//
// Connection Lifecycle:
//
// 1. Client connects with a player ID
// 2. Connection registered with hub
// 3. Client receives round updates as shots are logged
// 4. Disconnection triggers cleanup
//
// Concurrency:
//
// The hub and client handlers are designed for concurrent operation.
// Multiple clients can connect, disconnect, and receive updates
// simultaneously without blocking each other.
package websocket
