package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/yaoapp/filmgraph/dataset"
	"github.com/yaoapp/filmgraph/types"
	"github.com/yaoapp/kun/log"
)

// errNotFound the requested path or pair does not exist
var errNotFound = errors.New("not found")

func (api *API) handle(p Path) gin.HandlerFunc {
	return func(c *gin.Context) {
		var value any
		var err error
		if p.Cached {
			key := fmt.Sprintf("%s %s", p.Method, c.Request.URL.RequestURI())
			cache := "HIT"
			value, err = api.cache.GetSet(key, func(string) (any, error) {
				cache = "MISS"
				return p.handler(c)
			})
			c.Header("X-Cache", cache)
		} else {
			value, err = p.handler(c)
		}

		if err != nil {
			status := StatusOf(err)
			if status >= 500 {
				log.With(log.F{"kind": types.KindOf(err)}).Error("[API] %s %s %s", p.Method, c.Request.URL.Path, err.Error())
			}
			respond(c, status, Error{Code: status, Message: err.Error()})
			return
		}
		respond(c, http.StatusOK, value)
	}
}

// StatusOf maps an error to its HTTP status
func StatusOf(err error) int {
	switch {
	case errors.Is(err, types.ErrConfiguration):
		return http.StatusInternalServerError
	case errors.Is(err, types.ErrInvalidArgument), errors.Is(err, types.ErrInvalidRecord):
		return http.StatusBadRequest
	case errors.Is(err, errNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respond(c *gin.Context, status int, value any) {
	data, err := jsoniter.Marshal(value)
	if err != nil {
		log.Error("[API] %s %s", c.Request.URL.Path, err.Error())
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(status, "application/json; charset=utf-8", data)
}

func (api *API) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), api.option.Timeout)
}

func (api *API) films(c *gin.Context) (any, error) {
	ctx, cancel := api.requestContext(c)
	defer cancel()
	return api.synchronizer.ListAllFilms(ctx)
}

func (api *API) actorFilms(c *gin.Context) (any, error) {
	ctx, cancel := api.requestContext(c)
	defer cancel()
	return api.synchronizer.FindFilmsByActor(ctx, c.Param("name"))
}

func (api *API) connections(c *gin.Context) (any, error) {
	ctx, cancel := api.requestContext(c)
	defer cancel()
	return api.synchronizer.ConnectedActors(ctx, c.Param("name"))
}

func (api *API) path(c *gin.Context) (any, error) {
	ctx, cancel := api.requestContext(c)
	defer cancel()

	from, to := c.Query("from"), c.Query("to")
	path, err := api.synchronizer.ShortestPath(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if path == nil {
		return nil, fmt.Errorf("%w: no path between %q and %q", errNotFound, from, to)
	}
	return path, nil
}

func (api *API) random(c *gin.Context) (any, error) {
	difficulty, err := dataset.ParseDifficulty(c.Query("difficulty"))
	if err != nil {
		return nil, err
	}

	ctx, cancel := api.requestContext(c)
	defer cancel()
	pair, err := api.synchronizer.RandomActorPair(ctx, difficulty)
	if err != nil {
		return nil, err
	}
	if pair == nil {
		return nil, fmt.Errorf("%w: no connected actors for difficulty %s", errNotFound, difficulty)
	}
	return pair, nil
}

func (api *API) stats(c *gin.Context) (any, error) {
	ctx, cancel := api.requestContext(c)
	defer cancel()
	stats, err := api.synchronizer.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return StatsResponse{GraphStats: stats, Cache: api.cache.Stats()}, nil
}

func (api *API) sync(c *gin.Context) (any, error) {
	ctx, cancel := api.requestContext(c)
	defer cancel()
	return api.Sync(ctx)
}
