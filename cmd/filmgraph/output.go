package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/yaoapp/filmgraph/types"
)

const separator = "========================================================="

var (
	heading = color.New(color.FgYellow)
	value   = color.New(color.FgWhite)
	faint   = color.New(color.FgHiBlack)
	warning = color.New(color.FgRed)
)

func printList(title string, items []string) {
	heading.Fprintln(stdout, title)
	for _, item := range items {
		value.Fprintln(stdout, item)
	}
}

func printSeparator() {
	faint.Fprintln(stdout, separator)
}

func printReport(report *types.SyncReport) {
	heading.Fprintf(stdout, "Sync %s finished in %s\n", report.RunID, report.Elapsed)
	value.Fprintf(stdout, "films: %d, actors: %d, appearances: %d (created %d nodes, %d relationships)\n",
		report.Films, report.Actors, report.Appearances, report.NodesCreated, report.RelationshipsCreated)
	for _, appearance := range report.Unlinked {
		warning.Fprintf(stdout, "not linked: %s in %s (%d)\n", appearance.ActorName, appearance.FilmName, appearance.FilmYear)
	}
}

func printConnections(actor string, connections []types.Connection) {
	heading.Fprintf(stdout, "Actors connected to %s:\n", actor)
	for _, connection := range connections {
		value.Fprintf(stdout, "%s (%s)\n", connection.Actor, connection.Film)
	}
}

func printPath(path *types.Path) {
	heading.Fprintf(stdout, "Shortest path from %s to %s (%d hops):\n", path.Start, path.End, path.Length)
	steps := make([]string, 0, len(path.Nodes))
	for _, node := range path.Nodes {
		if node.Label == "Film" {
			steps = append(steps, fmt.Sprintf("[%s (%d)]", node.Name, node.Year))
			continue
		}
		steps = append(steps, node.Name)
	}
	value.Fprintln(stdout, strings.Join(steps, " -> "))
}

func printStats(stats *types.GraphStats) {
	heading.Fprintln(stdout, "Graph statistics")
	value.Fprintf(stdout, "films: %d\nactors: %d\nappearances: %d\n", stats.Films, stats.Actors, stats.Appearances)
}
