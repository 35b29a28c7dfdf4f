// Package memory provides an in-process graph store that understands the
// statements issued by the dataset package. It backs the CLI's --memory mode
// and the tests of every package above the Neo4j driver.
package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yaoapp/filmgraph/types"
)

// Call a recorded ExecuteQuery invocation
type Call struct {
	Query    string
	Params   map[string]any
	Routing  types.Routing
	Database string
}

type film struct {
	name string
	year int
}

type edge struct {
	film  int
	actor int
}

// Store an in-memory film graph
type Store struct {
	mu sync.RWMutex

	films     []film
	filmIndex map[film]int
	actors    []string
	actorIdx  map[string]int
	edges     []edge
	edgeIndex map[edge]bool

	constraints []string
	calls       []Call
	failures    map[string]error
	latency     time.Duration
	random      *rand.Rand
}

// New creates an empty store
func New() *Store {
	return &Store{
		filmIndex: map[film]int{},
		actorIdx:  map[string]int{},
		edgeIndex: map[edge]bool{},
		failures:  map[string]error{},
		random:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Seed makes the random actor pairs repeatable
func (s *Store) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.random = rand.New(rand.NewSource(seed))
}

// FailOn makes every query containing fragment return err; a nil err clears it
func (s *Store) FailOn(fragment string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, fragment)
		return
	}
	s.failures[fragment] = err
}

// SetLatency delays every query by d, honoring context cancellation
func (s *Store) SetLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency = d
}

// Calls returns the recorded calls in order
func (s *Store) Calls() []Call {
	s.mu.RLock()
	defer s.mu.RUnlock()
	calls := make([]Call, len(s.calls))
	copy(calls, s.calls)
	return calls
}

// Constraints returns the constraint statements received
func (s *Store) Constraints() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.constraints...)
}

// Counts returns the number of film nodes, actor nodes and HAS edges
func (s *Store) Counts() (films, actors, appearances int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.films), len(s.actors), len(s.edges)
}

// ExecuteQuery implements types.QueryExecutor
func (s *Store) ExecuteQuery(ctx context.Context, query string, params map[string]any, routing types.Routing, database string) (*types.QueryResult, error) {
	s.mu.RLock()
	latency := s.latency
	s.mu.RUnlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return nil, types.NewError(types.StoreUnavailable, "execute query", ctx.Err())
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, types.NewError(types.StoreUnavailable, "execute query", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, Call{Query: query, Params: params, Routing: routing, Database: database})
	for fragment, err := range s.failures {
		if strings.Contains(query, fragment) {
			return nil, err
		}
	}

	started := time.Now()
	normalized := strings.Join(strings.Fields(query), " ")
	result, err := s.dispatch(normalized, params, routing)
	if err != nil {
		return nil, types.NewQueryError("execute query", query, err)
	}
	result.Summary.Query = query
	result.Summary.ResultAvailableAfter = time.Since(started)
	result.Summary.ContainsUpdates = result.Summary.NodesCreated > 0 || result.Summary.RelationshipsCreated > 0
	if result.Keys == nil {
		result.Keys = []string{}
	}
	if result.Records == nil {
		result.Records = []map[string]any{}
	}
	return result, nil
}

func (s *Store) dispatch(query string, params map[string]any, routing types.Routing) (*types.QueryResult, error) {
	write := strings.Contains(query, "MERGE") || strings.HasPrefix(query, "CREATE CONSTRAINT")
	if write && routing == types.RoutingRead {
		return nil, fmt.Errorf("writing in read access mode not allowed")
	}

	switch {
	case strings.HasPrefix(query, "CREATE CONSTRAINT"):
		s.constraints = append(s.constraints, query)
		return &types.QueryResult{}, nil
	case strings.Contains(query, "MERGE (f)-[:HAS]->(a)"):
		return s.mergeAppearance(params), nil
	case strings.HasPrefix(query, "MERGE (f:Film"):
		return s.mergeFilm(params), nil
	case strings.HasPrefix(query, "MERGE (a:Actor"):
		return s.mergeActor(params), nil
	case strings.Contains(query, "shortestPath"):
		return s.shortestPath(params), nil
	case strings.Contains(query, "rand()"):
		return s.randomPair(params), nil
	case strings.Contains(query, "count(h) AS appearances"):
		return s.stats(), nil
	case strings.Contains(query, "RETURN DISTINCT p.name AS actor"):
		return s.connected(params), nil
	case strings.Contains(query, "(a:Actor {name: $name})") && strings.Contains(query, "RETURN f.name"):
		return s.filmsByActor(params), nil
	case strings.HasPrefix(query, "MATCH (f:Film) RETURN f.name"):
		return s.allFilms(), nil
	}
	return nil, fmt.Errorf("unsupported statement: %s", query)
}

func (s *Store) mergeFilm(params map[string]any) *types.QueryResult {
	key := film{name: toString(params["name"]), year: toInt(params["year"])}
	result := &types.QueryResult{}
	if _, ok := s.filmIndex[key]; !ok {
		s.filmIndex[key] = len(s.films)
		s.films = append(s.films, key)
		result.Summary.NodesCreated = 1
		result.Summary.PropertiesSet = 2
	}
	return result
}

func (s *Store) mergeActor(params map[string]any) *types.QueryResult {
	name := toString(params["name"])
	result := &types.QueryResult{}
	if _, ok := s.actorIdx[name]; !ok {
		s.actorIdx[name] = len(s.actors)
		s.actors = append(s.actors, name)
		result.Summary.NodesCreated = 1
		result.Summary.PropertiesSet = 1
	}
	return result
}

func (s *Store) mergeAppearance(params map[string]any) *types.QueryResult {
	result := &types.QueryResult{Keys: []string{"linked"}}
	f, filmOK := s.filmIndex[film{name: toString(params["film"]), year: toInt(params["year"])}]
	a, actorOK := s.actorIdx[toString(params["actor"])]
	if !filmOK || !actorOK {
		result.Records = []map[string]any{{"linked": int64(0)}}
		return result
	}

	e := edge{film: f, actor: a}
	if !s.edgeIndex[e] {
		s.edgeIndex[e] = true
		s.edges = append(s.edges, e)
		result.Summary.RelationshipsCreated = 1
	}
	result.Records = []map[string]any{{"linked": int64(1)}}
	return result
}

func (s *Store) filmsByActor(params map[string]any) *types.QueryResult {
	result := &types.QueryResult{Keys: []string{"name"}}
	a, ok := s.actorIdx[toString(params["name"])]
	if !ok {
		return result
	}
	for _, e := range s.edges {
		if e.actor == a {
			result.Records = append(result.Records, map[string]any{"name": s.films[e.film].name})
		}
	}
	return result
}

func (s *Store) allFilms() *types.QueryResult {
	result := &types.QueryResult{Keys: []string{"name"}}
	for _, f := range s.films {
		result.Records = append(result.Records, map[string]any{"name": f.name})
	}
	return result
}

func (s *Store) connected(params map[string]any) *types.QueryResult {
	result := &types.QueryResult{Keys: []string{"actor", "film"}}
	name := toString(params["name"])
	a, ok := s.actorIdx[name]
	if !ok {
		return result
	}

	seen := map[[2]string]bool{}
	pairs := [][2]string{}
	for _, f := range s.filmsOf(a) {
		for _, p := range s.actorsOf(f) {
			if s.actors[p] == name {
				continue
			}
			pair := [2]string{s.actors[p], s.films[f].name}
			if !seen[pair] {
				seen[pair] = true
				pairs = append(pairs, pair)
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	for _, pair := range pairs {
		result.Records = append(result.Records, map[string]any{"actor": pair[0], "film": pair[1]})
	}
	return result
}

// node ids in the bipartite graph: actors are >= 0, films are encoded as -(index+1)
func (s *Store) neighbours(id int) []int {
	if id >= 0 {
		ids := []int{}
		for _, f := range s.filmsOf(id) {
			ids = append(ids, -(f + 1))
		}
		return ids
	}
	ids := []int{}
	for _, a := range s.actorsOf(-id - 1) {
		ids = append(ids, a)
	}
	return ids
}

// bfs returns the predecessor map and hop distance of every node reachable from start
func (s *Store) bfs(start int) (map[int]int, map[int]int) {
	prev := map[int]int{}
	dist := map[int]int{start: 0}
	queue := []int{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range s.neighbours(current) {
			if _, seen := dist[next]; seen {
				continue
			}
			dist[next] = dist[current] + 1
			prev[next] = current
			queue = append(queue, next)
		}
	}
	return prev, dist
}

func (s *Store) shortestPath(params map[string]any) *types.QueryResult {
	result := &types.QueryResult{Keys: []string{"nodes"}}
	from, fromOK := s.actorIdx[toString(params["from"])]
	to, toOK := s.actorIdx[toString(params["to"])]
	if !fromOK || !toOK {
		return result
	}

	prev, dist := s.bfs(from)
	if _, ok := dist[to]; !ok {
		return result
	}

	ids := []int{to}
	for current := to; current != from; {
		current = prev[current]
		ids = append([]int{current}, ids...)
	}

	nodes := make([]any, 0, len(ids))
	for _, id := range ids {
		if id >= 0 {
			nodes = append(nodes, map[string]any{"label": "Actor", "name": s.actors[id], "year": nil})
			continue
		}
		f := s.films[-id-1]
		nodes = append(nodes, map[string]any{"label": "Film", "name": f.name, "year": int64(f.year)})
	}
	result.Records = []map[string]any{{"nodes": nodes}}
	return result
}

func (s *Store) randomPair(params map[string]any) *types.QueryResult {
	result := &types.QueryResult{Keys: []string{"first", "second"}}
	threshold := toInt(params["minFilms"])
	pairs := [][2]int{}
	for a := range s.actors {
		if len(s.filmsOf(a)) < threshold {
			continue
		}
		_, dist := s.bfs(a)
		for b := range s.actors {
			hops, reachable := dist[b]
			if b == a || !reachable || hops > 6 || len(s.filmsOf(b)) < threshold {
				continue
			}
			pairs = append(pairs, [2]int{a, b})
		}
	}
	if len(pairs) == 0 {
		return result
	}

	pair := pairs[s.random.Intn(len(pairs))]
	result.Records = []map[string]any{{"first": s.actors[pair[0]], "second": s.actors[pair[1]]}}
	return result
}

func (s *Store) stats() *types.QueryResult {
	return &types.QueryResult{
		Keys: []string{"films", "actors", "appearances"},
		Records: []map[string]any{{
			"films":       int64(len(s.films)),
			"actors":      int64(len(s.actors)),
			"appearances": int64(len(s.edges)),
		}},
	}
}

func (s *Store) filmsOf(actor int) []int {
	films := []int{}
	for _, e := range s.edges {
		if e.actor == actor {
			films = append(films, e.film)
		}
	}
	return films
}

func (s *Store) actorsOf(f int) []int {
	actors := []int{}
	for _, e := range s.edges {
		if e.film == f {
			actors = append(actors, e.actor)
		}
	}
	return actors
}

func toString(value any) string {
	if v, ok := value.(string); ok {
		return v
	}
	return ""
}

func toInt(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
