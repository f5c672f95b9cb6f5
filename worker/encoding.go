package worker

import (
	"encoding/json"
	"fmt"

	"github.com/poiesic/secondbrain/core"
)

// GraphResult is the JSON form of a knowledge graph in a task result.
// Cards are referenced by ID.
type GraphResult struct {
	CentralCard  string             `json:"central_card"`
	Entities     []EntityResult     `json:"entities"`
	RelatedCards []string           `json:"related_cards"`
	Connections  []ConnectionResult `json:"connections"`
}

type EntityResult struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

type ConnectionResult struct {
	SourceID    string  `json:"source_id"`
	SourceType  string  `json:"source_type"`
	TargetID    string  `json:"target_id"`
	TargetType  string  `json:"target_type"`
	Strength    float64 `json:"strength"`
	Type        string  `json:"type"`
	Description string  `json:"description,omitempty"`
}

func encodeGraph(graph *core.KnowledgeGraph) (string, error) {
	res := GraphResult{
		Entities:     make([]EntityResult, 0, len(graph.Entities)),
		RelatedCards: make([]string, 0, len(graph.RelatedCards)),
		Connections:  connectionResults(graph.Connections),
	}
	if graph.CentralCard != nil {
		res.CentralCard = graph.CentralCard.ID
	}
	for _, e := range graph.Entities {
		res.Entities = append(res.Entities, EntityResult{
			Name:        e.Name,
			Type:        string(e.Type),
			Description: e.Description,
		})
	}
	for _, c := range graph.RelatedCards {
		if c != nil {
			res.RelatedCards = append(res.RelatedCards, c.ID)
		}
	}
	return marshal(res)
}

func encodeConnections(connections []core.Connection) (string, error) {
	return marshal(connectionResults(connections))
}

func connectionResults(connections []core.Connection) []ConnectionResult {
	out := make([]ConnectionResult, 0, len(connections))
	for _, c := range connections {
		out = append(out, ConnectionResult{
			SourceID:    c.SourceID,
			SourceType:  string(c.SourceType),
			TargetID:    c.TargetID,
			TargetType:  string(c.TargetType),
			Strength:    c.Strength,
			Type:        string(c.Type),
			Description: c.Description,
		})
	}
	return out
}

func marshal(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	return string(data), nil
}
