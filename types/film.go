package types

import (
	"fmt"
	"strings"
)

// Film a film node, unique by (Name, Year)
type Film struct {
	Name   string   `json:"name" yaml:"name"`
	Year   int      `json:"year" yaml:"year"`
	Actors []string `json:"actors,omitempty" yaml:"actors,omitempty"`
}

// Actor an actor node, unique by Name
type Actor struct {
	Name string `json:"name" yaml:"name"`
}

// Appearance the HAS relationship between a film and an actor
type Appearance struct {
	FilmName  string `json:"film_name"`
	FilmYear  int    `json:"film_year"`
	ActorName string `json:"actor_name"`
}

// NewFilm creates a validated film record
func NewFilm(name string, year int, actors ...string) (Film, error) {
	film := Film{Name: strings.TrimSpace(name), Year: year}
	for _, actor := range actors {
		film.Actors = append(film.Actors, strings.TrimSpace(actor))
	}
	if err := film.Validate(); err != nil {
		return Film{}, err
	}
	return film, nil
}

// Validate checks the film record
func (film Film) Validate() error {
	if strings.TrimSpace(film.Name) == "" {
		return fmt.Errorf("%w: film name cannot be empty", ErrInvalidRecord)
	}
	if film.Year < 0 {
		return fmt.Errorf("%w: film %q has a negative year %d", ErrInvalidRecord, film.Name, film.Year)
	}
	for i, actor := range film.Actors {
		if strings.TrimSpace(actor) == "" {
			return fmt.Errorf("%w: film %q has an empty actor name at index %d", ErrInvalidRecord, film.Name, i)
		}
	}
	return nil
}

// Key the identity of the film in the graph
func (film Film) Key() string {
	return fmt.Sprintf("%s (%d)", film.Name, film.Year)
}

// Appearances returns one appearance per listed actor
func (film Film) Appearances() []Appearance {
	appearances := make([]Appearance, 0, len(film.Actors))
	for _, actor := range film.Actors {
		appearances = append(appearances, Appearance{FilmName: film.Name, FilmYear: film.Year, ActorName: actor})
	}
	return appearances
}
