package api

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yaoapp/filmgraph/dataset"
	"github.com/yaoapp/filmgraph/kv"
	"github.com/yaoapp/filmgraph/types"
)

// Handler answers a request with a JSON-serializable value
type Handler func(c *gin.Context) (any, error)

// Path a route of the API
type Path struct {
	Label   string `json:"label"`
	Method  string `json:"method"`
	Path    string `json:"path"`
	Cached  bool   `json:"cached,omitempty"` // responses are kept in the read cache until the next sync
	handler Handler
}

// Loader returns the dataset a sync applies
type Loader func() ([]types.Film, error)

// Option the API options
type Option struct {
	Root      string        `json:"root,omitempty"`       // API Root
	Allows    []string      `json:"allows,omitempty"`     // CORS Domains
	CacheSize int           `json:"cache_size,omitempty"` // read cache entries
	Timeout   time.Duration `json:"timeout,omitempty"`    // per request store timeout
}

// API the HTTP surface of a synchronizer
type API struct {
	synchronizer *dataset.Synchronizer
	loader       Loader
	cache        kv.Store
	option       Option
	paths        []Path
	syncing      sync.Mutex
}

// Error the JSON error body
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// StatsResponse the body of GET /stats
type StatsResponse struct {
	*types.GraphStats
	Cache kv.Stats `json:"cache"`
}
