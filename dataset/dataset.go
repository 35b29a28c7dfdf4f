package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/yaoapp/filmgraph/types"
	"gopkg.in/yaml.v3"
)

// File the on-disk layout of a dataset file
type File struct {
	Films []types.Film `json:"films" yaml:"films"`
}

// Default returns the built-in demonstration dataset
func Default() []types.Film {
	return []types.Film{
		{Name: "Pulp Fiction", Year: 1994, Actors: []string{"John Travolta", "Samuel L Jackson", "Uma Thurman"}},
		{Name: "The Avengers", Year: 2012, Actors: []string{"Samuel L Jackson", "Chris Evans", "Scarlett Johansson"}},
		{Name: "Knives Out", Year: 2019, Actors: []string{"Chris Evans", "Daniel Craig", "Jamie Lee Curtis"}},
		{Name: "Scott Pilgrim vs. the World", Year: 2010, Actors: []string{"Michael Cera", "Chris Evans", "Anna Kendrick"}},
	}
}

// Load reads a dataset from a .yaml, .yml or .json file
func Load(file string) ([]types.Film, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", file, err)
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(file)), ".")
	films, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", file, err)
	}
	return films, nil
}

// Parse decodes a dataset in the given format (yaml, yml or json) and validates every film
func Parse(data []byte, format string) ([]types.Film, error) {
	var content File
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &content); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case "json":
		if err := jsoniter.Unmarshal(data, &content); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", format)
	}

	films := make([]types.Film, 0, len(content.Films))
	for i, film := range content.Films {
		validated, err := types.NewFilm(film.Name, film.Year, film.Actors...)
		if err != nil {
			return nil, fmt.Errorf("film #%d: %w", i, err)
		}
		films = append(films, validated)
	}
	return films, nil
}
