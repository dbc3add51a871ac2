package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Response is the subset of a TRAPI response the binder reads.
type Response struct {
	Message Message `json:"message"`
}

type Message struct {
	QueryGraph     json.RawMessage `json:"query_graph,omitempty"`
	KnowledgeGraph *KnowledgeGraph `json:"knowledge_graph"`
	Results        []Result        `json:"results"`
}

type KnowledgeGraph struct {
	Nodes map[string]json.RawMessage `json:"nodes"`
	Edges map[string]KGEdge          `json:"edges"`
}

type KGEdge struct {
	Subject    string            `json:"subject"`
	Object     string            `json:"object"`
	Predicate  string            `json:"predicate"`
	Qualifiers []Qualifier       `json:"qualifiers,omitempty"`
	Sources    []RetrievalSource `json:"sources,omitempty"`
	Attributes []Attribute       `json:"attributes,omitempty"`
}

type Qualifier struct {
	TypeID string `json:"qualifier_type_id"`
	Value  string `json:"qualifier_value"`
}

type RetrievalSource struct {
	ResourceID   string `json:"resource_id"`
	ResourceRole string `json:"resource_role"`
}

type Attribute struct {
	TypeID string          `json:"attribute_type_id"`
	Value  json.RawMessage `json:"value"`
}

type Result struct {
	Analyses []Analysis `json:"analyses"`
}

type Analysis struct {
	ResourceID   string                   `json:"resource_id"`
	EdgeBindings map[string][]EdgeBinding `json:"edge_bindings"`
}

type EdgeBinding struct {
	ID string `json:"id"`
}

// Strings decodes an attribute value as a list of strings. A bare string
// becomes a one-element list and non-string list members are formatted.
// Null and empty members are dropped.
func (a Attribute) Strings() []string {
	if len(a.Value) == 0 || bytes.Equal(bytes.TrimSpace(a.Value), []byte("null")) {
		return nil
	}
	var single string
	if err := json.Unmarshal(a.Value, &single); err == nil {
		if single == "" {
			return nil
		}
		return []string{single}
	}
	var many []interface{}
	if err := json.Unmarshal(a.Value, &many); err != nil {
		return nil
	}
	out := make([]string, 0, len(many))
	for _, v := range many {
		switch t := v.(type) {
		case nil:
		case string:
			if t != "" {
				out = append(out, t)
			}
		default:
			out = append(out, fmt.Sprint(t))
		}
	}
	return out
}
