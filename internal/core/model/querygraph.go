package model

const (
	PredicateAffects   = "biolink:affects"
	PredicateRelatedTo = "biolink:related_to"
	CategoryGene       = "biolink:Gene"
)

// QueryGraph is the single-hop query sent to the reasoning network. Each side
// is one query node carrying every identifier of that side.
type QueryGraph struct {
	SubjectIDs []string `json:"subject_ids"`
	ObjectIDs  []string `json:"object_ids"`
	Predicate  string   `json:"predicate"`
	Directed   bool     `json:"directed"`
}

type QueryDocument struct {
	Message QueryMessage `json:"message"`
}

type QueryMessage struct {
	QueryGraph QueryGraphBody `json:"query_graph"`
}

type QueryGraphBody struct {
	Nodes map[string]QNode `json:"nodes"`
	Edges map[string]QEdge `json:"edges"`
}

type QNode struct {
	IDs        []string `json:"ids"`
	Categories []string `json:"categories"`
	IsSet      bool     `json:"is_set"`
}

type QEdge struct {
	Subject    string   `json:"subject"`
	Object     string   `json:"object"`
	Predicates []string `json:"predicates"`
}
