package dataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/yaoapp/filmgraph/types"
)

// Difficulty selects which actors RandomActorPair may pick
type Difficulty string

const (
	// DifficultyEasy only actors appearing in at least two films
	DifficultyEasy Difficulty = "easy"
	// DifficultyHard any actor
	DifficultyHard Difficulty = "hard"
)

// minFilms the appearance threshold for each difficulty
var minFilms = map[Difficulty]int{
	DifficultyEasy: 2,
	DifficultyHard: 0,
}

// ParseDifficulty parses a difficulty name; empty means easy
func ParseDifficulty(name string) (Difficulty, error) {
	difficulty := Difficulty(strings.ToLower(strings.TrimSpace(name)))
	if difficulty == "" {
		return DifficultyEasy, nil
	}
	if _, ok := minFilms[difficulty]; !ok {
		return "", fmt.Errorf("%w: unknown difficulty %q (easy or hard)", types.ErrInvalidArgument, name)
	}
	return difficulty, nil
}

// FindFilmsByActor returns the names of the films the actor appears in, in store order
func (s *Synchronizer) FindFilmsByActor(ctx context.Context, actorName string) ([]string, error) {
	if strings.TrimSpace(actorName) == "" {
		return nil, fmt.Errorf("%w: actor name cannot be empty", types.ErrInvalidArgument)
	}
	result, err := s.run(ctx, fmt.Sprintf("find films by actor %q", actorName), queryFilmsByActor, map[string]any{
		"name": actorName,
	}, types.RoutingRead)
	if err != nil {
		return nil, err
	}
	return stringColumn(result, "name"), nil
}

// ListAllFilms returns the names of every film in the store
func (s *Synchronizer) ListAllFilms(ctx context.Context) ([]string, error) {
	result, err := s.run(ctx, "list all films", queryAllFilms, nil, types.RoutingRead)
	if err != nil {
		return nil, err
	}
	return stringColumn(result, "name"), nil
}

// ConnectedActors returns the actors sharing at least one film with actorName
func (s *Synchronizer) ConnectedActors(ctx context.Context, actorName string) ([]types.Connection, error) {
	if strings.TrimSpace(actorName) == "" {
		return nil, fmt.Errorf("%w: actor name cannot be empty", types.ErrInvalidArgument)
	}
	result, err := s.run(ctx, fmt.Sprintf("connected actors %q", actorName), queryConnectedActors, map[string]any{
		"name": actorName,
	}, types.RoutingRead)
	if err != nil {
		return nil, err
	}

	connections := make([]types.Connection, 0, len(result.Records))
	for _, record := range result.Records {
		actor, _ := record["actor"].(string)
		film, _ := record["film"].(string)
		connections = append(connections, types.Connection{Actor: actor, Film: film})
	}
	return connections, nil
}

// ShortestPath returns the shortest chain of films linking two actors, nil if none exists
func (s *Synchronizer) ShortestPath(ctx context.Context, from, to string) (*types.Path, error) {
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return nil, fmt.Errorf("%w: both actor names are required", types.ErrInvalidArgument)
	}
	if from == to {
		return nil, fmt.Errorf("%w: start and end actor are the same", types.ErrInvalidArgument)
	}

	result, err := s.run(ctx, fmt.Sprintf("shortest path %q -> %q", from, to), queryShortestPath, map[string]any{
		"from": from,
		"to":   to,
	}, types.RoutingRead)
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, nil
	}

	raw, _ := result.Records[0]["nodes"].([]any)
	path := &types.Path{Start: from, End: to, Nodes: make([]types.PathNode, 0, len(raw))}
	for _, item := range raw {
		props, ok := item.(map[string]any)
		if !ok {
			continue
		}
		node := types.PathNode{Year: toInt(props["year"])}
		node.Label, _ = props["label"].(string)
		node.Name, _ = props["name"].(string)
		path.Nodes = append(path.Nodes, node)
	}
	if len(path.Nodes) > 0 {
		path.Length = len(path.Nodes) - 1
	}
	return path, nil
}

// RandomActorPair picks two distinct, connected actors; nil if the graph has none
func (s *Synchronizer) RandomActorPair(ctx context.Context, difficulty Difficulty) (*types.ActorPair, error) {
	threshold, ok := minFilms[difficulty]
	if !ok {
		return nil, fmt.Errorf("%w: unknown difficulty %q (easy or hard)", types.ErrInvalidArgument, difficulty)
	}

	result, err := s.run(ctx, fmt.Sprintf("random actor pair (%s)", difficulty), queryRandomActorPair, map[string]any{
		"minFilms": threshold,
	}, types.RoutingRead)
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, nil
	}

	first, _ := result.Records[0]["first"].(string)
	second, _ := result.Records[0]["second"].(string)
	return &types.ActorPair{First: types.Actor{Name: first}, Second: types.Actor{Name: second}}, nil
}

// Stats counts films, actors and appearances
func (s *Synchronizer) Stats(ctx context.Context) (*types.GraphStats, error) {
	result, err := s.run(ctx, "stats", queryStats, nil, types.RoutingRead)
	if err != nil {
		return nil, err
	}

	stats := &types.GraphStats{}
	if len(result.Records) > 0 {
		record := result.Records[0]
		stats.Films = toInt(record["films"])
		stats.Actors = toInt(record["actors"])
		stats.Appearances = toInt(record["appearances"])
	}
	return stats, nil
}

// stringColumn collects the string values of one column
func stringColumn(result *types.QueryResult, key string) []string {
	values := make([]string, 0, len(result.Records))
	for _, record := range result.Records {
		if value, ok := record[key].(string); ok {
			values = append(values, value)
		}
	}
	return values
}
