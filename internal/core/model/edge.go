package model

// Edge is one submitted gene pair plus everything the pipeline attaches to it.
type Edge struct {
	Source        Node             `json:"source"`
	Target        Node             `json:"target"`
	Directed      bool             `json:"directed"`
	Justification *string          `json:"justification"`
	Results       []EvidenceRecord `json:"results"`
}

// EvidenceRecord is the part of one knowledge-graph edge binding that the
// annotator reports back for a pair.
type EvidenceRecord struct {
	Predicate          string   `json:"predicate"`
	QualifiedPredicate *string  `json:"qualified_predicate"`
	ObjectModifier     *string  `json:"object_modifier"`
	ObjectAspect       *string  `json:"object_aspect"`
	ResourceID         string   `json:"resource_id"`
	PrimarySource      *string  `json:"primary_source"`
	Publications       []string `json:"publications"`
}

// PairKey addresses an input edge. Undirected keys are stored with A <= B.
type PairKey struct {
	A string
	B string
}

func NewPairKey(source, target string, directed bool) PairKey {
	if !directed && target < source {
		source, target = target, source
	}
	return PairKey{A: source, B: target}
}

// Key returns the PairKey of the edge.
func (e Edge) Key(directed bool) PairKey {
	return NewPairKey(e.Source.ID, e.Target.ID, directed)
}
