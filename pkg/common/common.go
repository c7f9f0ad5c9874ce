package common

// Node is an entity extracted from text. ID is the semantic identifier
// (for example "Marie Curie") and must be unique within a graph.
type Node struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Relationship is a directed, typed edge between two nodes referenced by
// their semantic ids.
type Relationship struct {
	SourceID   string         `json:"source_id"`
	TargetID   string         `json:"target_id"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Chunk is a contiguous piece of the input text. It is metadata only and
// never persisted.
type Chunk struct {
	Text  string `json:"text"`
	Index int    `json:"index"`
	Total int    `json:"total_chunks"`
}

// Fragment is the raw output of one extraction call. Its node and
// relationship lists may contain duplicates and dangling references.
type Fragment struct {
	Nodes         []Node         `json:"nodes"`
	Relationships []Relationship `json:"relationships"`
	Chunk         *Chunk         `json:"chunk,omitempty"`
}

// Graph is the assembled, referentially consistent result of one document.
//
// Every relationship references nodes present in Nodes, and every node is
// the endpoint of at least one relationship. Connected holds the ids of
// those endpoints.
type Graph struct {
	Nodes         []Node              `json:"nodes"`
	Relationships []Relationship      `json:"relationships"`
	Connected     map[string]struct{} `json:"-"`
}

// NodeByID returns the node with the given semantic id.
func (g *Graph) NodeByID(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// IsConnected reports whether id is an endpoint of a kept relationship.
func (g *Graph) IsConnected(id string) bool {
	_, ok := g.Connected[id]
	return ok
}

// StoredNode is an entity as read back from a durable store. InternalID is
// assigned by the store and differs from the semantic ID.
type StoredNode struct {
	InternalID string         `json:"internal_id"`
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}

// StoredRelationship references its endpoints by store internal id.
type StoredRelationship struct {
	SourceInternalID string `json:"source"`
	TargetInternalID string `json:"target"`
	Type             string `json:"type"`
}

// AccumulatedGraph is the union of everything ever stored. Nodes without
// relationships are kept, and the same semantic id may appear several
// times under different internal ids.
type AccumulatedGraph struct {
	Nodes         []StoredNode         `json:"nodes"`
	Relationships []StoredRelationship `json:"relationships"`
}

const (
	PropSourceDocument = "source_document"
	PropCreatedAt      = "created_at"
)
