// Package graph mirrors entity cross-links (CAPA, incident, training,
// equipment) into an optional neo4j store so the link neighborhood of an
// entity can be walked without fanning out over collections.
package graph

import (
	"context"
	"strconv"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type Linker interface {
	Link(ctx context.Context, org, fromKind, fromID, rel, toKind, toID string) error
	Neighborhood(ctx context.Context, org, id string, maxHops int) ([]Edge, error)
}

// Edge is one relationship in an entity's neighborhood.
type Edge struct {
	FromKind string `json:"fromKind"`
	FromID   string `json:"fromId"`
	Rel      string `json:"rel"`
	ToKind   string `json:"toKind"`
	ToID     string `json:"toId"`
	Distance int    `json:"distance"`
}

type Neo4j struct {
	driver neo4j.DriverWithContext
}

func NewNeo4j(driver neo4j.DriverWithContext) *Neo4j {
	return &Neo4j{driver: driver}
}

func (g *Neo4j) Link(ctx context.Context, org, fromKind, fromID, rel, toKind, toID string) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: "neo4j"})
	defer session.Close(ctx)

	cypherQuery := `
	MERGE (a:Entity {id: $fromID, kind: $fromKind, org: $org})
	MERGE (b:Entity {id: $toID, kind: $toKind, org: $org})
	MERGE (a)-[r:` + rel + `]->(b)
	`
	_, err := session.Run(ctx, cypherQuery, map[string]interface{}{
		"org":      org,
		"fromID":   fromID,
		"fromKind": fromKind,
		"toID":     toID,
		"toKind":   toKind,
	})
	return err
}

func (g *Neo4j) Neighborhood(ctx context.Context, org, id string, maxHops int) ([]Edge, error) {
	if maxHops <= 0 || maxHops > 6 {
		maxHops = 3
	}
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: "neo4j"})
	defer session.Close(ctx)

	cypherQuery := `
	MATCH (root:Entity {id: $id, org: $org})
	MATCH p = (root)-[*1..` + strconv.Itoa(maxHops) + `]-(neighbor:Entity)
	WITH root, neighbor, length(p) as distance
	ORDER BY distance ASC
	RETURN root.kind as fromKind, root.id as fromId,
	       neighbor.kind as toKind, neighbor.id as toId,
	       min(distance) as dist
	LIMIT 500
	`
	res, err := session.Run(ctx, cypherQuery, map[string]interface{}{"id": id, "org": org})
	if err != nil {
		return nil, err
	}

	var edges []Edge
	for res.Next(ctx) {
		rec := res.Record()
		fromKind, _ := rec.Get("fromKind")
		fromID, _ := rec.Get("fromId")
		toKind, _ := rec.Get("toKind")
		toID, _ := rec.Get("toId")
		dist, _ := rec.Get("dist")
		edges = append(edges, Edge{
			FromKind: asString(fromKind),
			FromID:   asString(fromID),
			Rel:      "LINKED",
			ToKind:   asString(toKind),
			ToID:     asString(toID),
			Distance: asInt(dist),
		})
	}
	return edges, nil
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt(v interface{}) int {
	n, _ := v.(int64)
	return int(n)
}
