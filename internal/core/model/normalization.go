package model

// Collision records an equivalent identifier claimed by more than one original.
type Collision struct {
	Identifier string `json:"identifier"`
	Kept       string `json:"kept"`
	Dropped    string `json:"dropped"`
}

// NormalizationMap resolves any equivalent identifier to the original CURIE
// the caller submitted. A missing key means "no match".
type NormalizationMap struct {
	entries    map[string]string
	Collisions []Collision
}

func NewNormalizationMap() *NormalizationMap {
	return &NormalizationMap{entries: make(map[string]string)}
}

func (m *NormalizationMap) Lookup(id string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.entries[id]
	return v, ok
}

// Set maps id to original, recording a collision if another original held it.
func (m *NormalizationMap) Set(id, original string) {
	if prev, ok := m.entries[id]; ok && prev != original {
		m.Collisions = append(m.Collisions, Collision{Identifier: id, Kept: original, Dropped: prev})
	}
	m.entries[id] = original
}

func (m *NormalizationMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}
