package graph

import "context"

// NodeData is the payload of a snapshot node.
type NodeData struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// EdgeData is the payload of a snapshot edge.
type EdgeData struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}

// SnapshotNode wraps node data in the element shape Cytoscape expects.
type SnapshotNode struct {
	Data NodeData `json:"data"`
}

// SnapshotEdge wraps edge data in the element shape Cytoscape expects.
type SnapshotEdge struct {
	Data EdgeData `json:"data"`
}

// Snapshot is a project's graph as a node/edge list for visualization.
type Snapshot struct {
	Nodes []SnapshotNode `json:"nodes"`
	Edges []SnapshotEdge `json:"edges"`
}

// Snapshot exports the project's graph in Cytoscape element form.
func (g *KnowledgeGraph) Snapshot(ctx context.Context, projectID string) (Snapshot, error) {
	entities, err := g.Entities(ctx, projectID)
	if err != nil {
		return Snapshot{}, err
	}
	relations, err := g.Relations(ctx, projectID, "", "")
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Nodes: make([]SnapshotNode, 0, len(entities)),
		Edges: make([]SnapshotEdge, 0, len(relations)),
	}
	for _, e := range entities {
		snap.Nodes = append(snap.Nodes, SnapshotNode{Data: NodeData{
			ID:    e.ID,
			Label: e.Name,
			Type:  string(e.Type),
		}})
	}
	for _, rel := range relations {
		snap.Edges = append(snap.Edges, SnapshotEdge{Data: EdgeData{
			Source: rel.SourceID,
			Target: rel.TargetID,
			Label:  rel.Type,
		}})
	}
	return snap, nil
}
