package querygraph

import (
	"github.com/agenthands/annotator/internal/core/common"
	"github.com/agenthands/annotator/internal/core/model"
)

const (
	SubjectNode = "n00"
	ObjectNode  = "n01"
	QueryEdge   = "e00"
)

// Build collapses the edges into one subject group and one object group.
// The reasoning network treats each group as a disjunctive ID set for a
// single query node, so pairs are not preserved here; the binder restores them.
func Build(edges []model.Edge, directed bool) model.QueryGraph {
	sources := make([]string, 0, len(edges))
	targets := make([]string, 0, len(edges))
	for _, e := range edges {
		sources = append(sources, e.Source.ID)
		targets = append(targets, e.Target.ID)
	}

	predicate := model.PredicateRelatedTo
	if directed {
		predicate = model.PredicateAffects
	}

	return model.QueryGraph{
		SubjectIDs: common.SortedUnique(sources),
		ObjectIDs:  common.SortedUnique(targets),
		Predicate:  predicate,
		Directed:   directed,
	}
}

// Document renders g as a TRAPI query message.
func Document(g model.QueryGraph) model.QueryDocument {
	return model.QueryDocument{
		Message: model.QueryMessage{
			QueryGraph: model.QueryGraphBody{
				Nodes: map[string]model.QNode{
					SubjectNode: {
						IDs:        g.SubjectIDs,
						Categories: []string{model.CategoryGene},
						IsSet:      false,
					},
					ObjectNode: {
						IDs:        g.ObjectIDs,
						Categories: []string{model.CategoryGene},
						IsSet:      false,
					},
				},
				Edges: map[string]model.QEdge{
					QueryEdge: {
						Subject:    SubjectNode,
						Object:     ObjectNode,
						Predicates: []string{g.Predicate},
					},
				},
			},
		},
	}
}
