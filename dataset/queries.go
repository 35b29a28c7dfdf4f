package dataset

// Cypher statements issued by the Synchronizer. Films point at actors with HAS;
// read queries match the relationship in either direction.
const (
	queryMergeFilm = `MERGE (f:Film {name: $name, year: $year})`

	queryMergeActor = `MERGE (a:Actor {name: $name})`

	queryMergeAppearance = `MATCH (f:Film {name: $film, year: $year})
MATCH (a:Actor {name: $actor})
MERGE (f)-[:HAS]->(a)
RETURN count(*) AS linked`

	queryFilmsByActor = `MATCH (f:Film)-[:HAS]-(a:Actor {name: $name})
RETURN f.name AS name`

	queryAllFilms = `MATCH (f:Film)
RETURN f.name AS name`

	queryConnectedActors = `MATCH (:Actor {name: $name})-[:HAS]-(f:Film)-[:HAS]-(p:Actor)
WHERE p.name <> $name
RETURN DISTINCT p.name AS actor, f.name AS film
ORDER BY actor, film`

	queryShortestPath = `MATCH (a:Actor {name: $from}), (b:Actor {name: $to})
MATCH p = shortestPath((a)-[:HAS*]-(b))
RETURN [n IN nodes(p) | {label: head(labels(n)), name: n.name, year: n.year}] AS nodes`

	queryRandomActorPair = `MATCH (a:Actor)
WHERE a.name IS NOT NULL AND a.name <> "" AND size([(a)-[:HAS]-(:Film) | 1]) >= $minFilms
WITH a, rand() AS r
ORDER BY r
LIMIT 1
MATCH (a)-[:HAS*1..6]-(b:Actor)
WHERE a <> b AND b.name IS NOT NULL AND b.name <> "" AND size([(b)-[:HAS]-(:Film) | 1]) >= $minFilms
WITH a, b, rand() AS r2
ORDER BY r2
LIMIT 1
RETURN a.name AS first, b.name AS second`

	queryStats = `MATCH (f:Film)
WITH count(f) AS films
OPTIONAL MATCH (a:Actor)
WITH films, count(a) AS actors
OPTIONAL MATCH (:Film)-[h:HAS]->(:Actor)
RETURN films, actors, count(h) AS appearances`

	queryFilmConstraint = `CREATE CONSTRAINT film_name_year IF NOT EXISTS
FOR (f:Film) REQUIRE (f.name, f.year) IS UNIQUE`

	queryActorConstraint = `CREATE CONSTRAINT actor_name IF NOT EXISTS
FOR (a:Actor) REQUIRE a.name IS UNIQUE`
)
