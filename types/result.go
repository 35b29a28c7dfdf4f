package types

import "time"

// SyncReport the outcome of a dataset synchronization run
type SyncReport struct {
	RunID                string        `json:"run_id"`
	Films                int           `json:"films"`
	Actors               int           `json:"actors"`
	Appearances          int           `json:"appearances"`
	NodesCreated         int           `json:"nodes_created"`
	RelationshipsCreated int           `json:"relationships_created"`
	Unlinked             []Appearance  `json:"unlinked,omitempty"` // appearances whose film or actor was missing
	Elapsed              time.Duration `json:"elapsed"`
}

// Connection a co-star reached through a shared film
type Connection struct {
	Actor string `json:"actor"`
	Film  string `json:"film"`
}

// PathNode one node on a path, either a film or an actor
type PathNode struct {
	Label string `json:"label"`
	Name  string `json:"name"`
	Year  int    `json:"year,omitempty"`
}

// Path a path between two actors
type Path struct {
	Start  string     `json:"start"`
	End    string     `json:"end"`
	Length int        `json:"length"` // number of relationships
	Nodes  []PathNode `json:"nodes"`
}

// ActorPair two actors picked to start a game
type ActorPair struct {
	First  Actor `json:"first"`
	Second Actor `json:"second"`
}

// GraphStats node and relationship counts
type GraphStats struct {
	Films       int `json:"films"`
	Actors      int `json:"actors"`
	Appearances int `json:"appearances"`
}
