package binding

import (
	"github.com/agenthands/annotator/internal/core/common"
	"github.com/agenthands/annotator/internal/core/model"
	"github.com/agenthands/annotator/internal/logger"
)

const (
	qualifiedPredicate    = "biolink:qualified_predicate"
	objectAspectQualifier = "biolink:object_aspect_qualifier"
	objectModifier        = "biolink:object_modifier_qualifier"
	primarySourceRole     = "primary_knowledge_source"
	publicationsAttribute = "biolink:publications"
)

type Binder struct {
	log *logger.Logger
}

func NewBinder(log *logger.Logger) *Binder {
	if log == nil {
		log = logger.Nop()
	}
	return &Binder{log: log}
}

// Stats counts what happened to the edge bindings of one Bind call.
type Stats struct {
	Bound      int
	Unmapped   int
	Unmatched  int
	Dangling   int
	Duplicates int
}

// Bind attaches one EvidenceRecord per knowledge-graph edge binding whose
// normalized subject/object pair matches an input edge. Every returned edge
// has a non-nil Results slice. The first edge with a given PairKey is the
// only one that can receive evidence.
func (b *Binder) Bind(edges []model.Edge, result *model.Response, norm *model.NormalizationMap, directed bool) ([]model.Edge, Stats) {
	var stats Stats

	index := make(map[model.PairKey]int, len(edges))
	for i, e := range edges {
		key := e.Key(directed)
		if _, ok := index[key]; ok {
			stats.Duplicates++
			b.log.Warn("duplicate input pair; only the first receives evidence", "source", e.Source.ID, "target", e.Target.ID, "index", i)
			continue
		}
		index[key] = i
	}

	if result != nil && result.Message.KnowledgeGraph != nil {
		kgEdges := result.Message.KnowledgeGraph.Edges
		for _, r := range result.Message.Results {
			for _, analysis := range r.Analyses {
				for _, qEdgeKey := range common.SortedKeys(analysis.EdgeBindings) {
					for _, eb := range analysis.EdgeBindings[qEdgeKey] {
						kedge, ok := kgEdges[eb.ID]
						if !ok {
							stats.Dangling++
							continue
						}
						subject, ok := norm.Lookup(kedge.Subject)
						if !ok {
							stats.Unmapped++
							continue
						}
						object, ok := norm.Lookup(kedge.Object)
						if !ok {
							stats.Unmapped++
							continue
						}
						idx, ok := index[model.NewPairKey(subject, object, directed)]
						if !ok {
							stats.Unmatched++
							continue
						}
						edges[idx].Results = append(edges[idx].Results, Extract(kedge, analysis.ResourceID))
						stats.Bound++
					}
				}
			}
		}
	}

	for i := range edges {
		if edges[i].Results == nil {
			edges[i].Results = []model.EvidenceRecord{}
		}
	}

	b.log.Debug("bound evidence", "bound", stats.Bound, "unmapped", stats.Unmapped, "unmatched", stats.Unmatched, "dangling", stats.Dangling)
	return edges, stats
}

// Extract pulls the fields the annotator reports from a knowledge-graph edge.
// Repeated qualifiers, sources or attributes keep their last occurrence.
func Extract(kedge model.KGEdge, resourceID string) model.EvidenceRecord {
	rec := model.EvidenceRecord{
		Predicate:  kedge.Predicate,
		ResourceID: resourceID,
	}
	for _, q := range kedge.Qualifiers {
		v := q.Value
		switch q.TypeID {
		case qualifiedPredicate:
			rec.QualifiedPredicate = &v
		case objectAspectQualifier:
			rec.ObjectAspect = &v
		case objectModifier:
			rec.ObjectModifier = &v
		}
	}
	for _, s := range kedge.Sources {
		if s.ResourceRole == primarySourceRole {
			id := s.ResourceID
			rec.PrimarySource = &id
		}
	}
	for _, a := range kedge.Attributes {
		if a.TypeID == publicationsAttribute {
			rec.Publications = a.Strings()
		}
	}
	return rec
}
