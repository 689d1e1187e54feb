package model

import "time"

// ServerInfo is one live game server entry in the browser. Entries live in
// redis under a heartbeat TTL; a server that stops announcing drops out of
// the listing on its own.
type ServerInfo struct {
	Name       string    `json:"name"`
	Address    string    `json:"address"` // host:port, also the registry key
	Map        string    `json:"map"`
	Players    int       `json:"players"`
	MaxPlayers int       `json:"max_players"`
	LastSeen   time.Time `json:"last_seen"`
}
