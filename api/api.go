package api

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yaoapp/filmgraph/dataset"
	"github.com/yaoapp/filmgraph/kv/lru"
	"github.com/yaoapp/filmgraph/types"
	"github.com/yaoapp/kun/log"
)

const (
	defaultCacheSize = 256
	defaultTimeout   = 30 * time.Second
)

// New creates the API of a synchronizer. loader supplies the dataset POST /sync applies.
func New(synchronizer *dataset.Synchronizer, loader Loader, option Option) (*API, error) {
	if option.CacheSize <= 0 {
		option.CacheSize = defaultCacheSize
	}
	if option.Timeout <= 0 {
		option.Timeout = defaultTimeout
	}
	if option.Root == "" {
		option.Root = "/"
	}

	cache, err := lru.New(option.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}

	api := &API{synchronizer: synchronizer, loader: loader, cache: cache, option: option}
	api.paths = []Path{
		{Label: "List all films", Method: "GET", Path: "/films", Cached: true, handler: api.films},
		{Label: "Films of an actor", Method: "GET", Path: "/actors/:name/films", Cached: true, handler: api.actorFilms},
		{Label: "Co-stars of an actor", Method: "GET", Path: "/actors/:name/connections", Cached: true, handler: api.connections},
		{Label: "Shortest path between two actors", Method: "GET", Path: "/path", Cached: true, handler: api.path},
		{Label: "Random actor pair", Method: "GET", Path: "/random", handler: api.random},
		{Label: "Graph statistics", Method: "GET", Path: "/stats", handler: api.stats},
		{Label: "Synchronize the dataset", Method: "POST", Path: "/sync", handler: api.sync},
	}
	return api, nil
}

// Paths returns the routes of the API
func (api *API) Paths() []Path {
	return api.paths
}

// SetRoutes registers every route on the router under the API root
func (api *API) SetRoutes(router *gin.Engine) {
	group := router.Group(api.option.Root)
	if len(api.option.Allows) > 0 {
		allowsMap := map[string]bool{}
		for _, allow := range api.option.Allows {
			allowsMap[allow] = true
		}
		group.Use(crossDomain(allowsMap))
		group.OPTIONS("/*path", func(c *gin.Context) { c.AbortWithStatus(204) })
	}

	for _, p := range api.paths {
		group.Handle(p.Method, p.Path, api.handle(p))
		log.Debug("[API] %s %s", p.Method, path.Join(api.option.Root, p.Path))
	}
}

// Sync applies the loaded dataset and purges the read cache. Concurrent calls run one at a time.
func (api *API) Sync(ctx context.Context) (*types.SyncReport, error) {
	api.syncing.Lock()
	defer api.syncing.Unlock()

	films, err := api.loader()
	if err != nil {
		return nil, types.NewError(types.ConfigurationError, "load dataset", err)
	}

	// a failed run may still have written nodes
	report, err := api.synchronizer.SyncDataset(ctx, films)
	api.cache.Clear()
	return report, err
}

// IsAllowed check if the referer is in allow list
func IsAllowed(c *gin.Context, allowsMap map[string]bool) bool {
	referer := c.Request.Referer()
	if referer == "" {
		return true
	}

	u, err := url.Parse(referer)
	if err != nil {
		return true
	}

	port := fmt.Sprintf(":%s", u.Port())
	if port == ":" || port == ":80" || port == ":443" {
		port = ""
	}
	host := fmt.Sprintf("%s%s", u.Hostname(), port)
	if host == c.Request.Host {
		return true
	}
	return allowsMap[host]
}

func crossDomain(allowsMap map[string]bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		referer := c.Request.Referer()
		if referer == "" {
			return
		}
		if !IsAllowed(c, allowsMap) {
			c.AbortWithStatus(403)
			return
		}
		u, _ := url.Parse(referer)
		c.Header("Access-Control-Allow-Origin", fmt.Sprintf("%s://%s", u.Scheme, u.Host))
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Credentials", "true")
	}
}
