// Package nodenorm resolves CURIEs to their equivalence classes through the
// SRI node normalization service.
package nodenorm

import (
	"context"
	"fmt"
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/agenthands/annotator/internal/core/common"
	"github.com/agenthands/annotator/internal/core/model"
	"github.com/agenthands/annotator/internal/logger"
	"github.com/agenthands/annotator/internal/transport"
)

type Normalizer struct {
	url        string
	httpClient *http.Client
	log        *logger.Logger
	// cache holds the equivalence set returned for each CURIE, itself included.
	cache *lru.Cache[string, []string]
}

type Option func(*Normalizer)

func WithHTTPClient(c *http.Client) Option {
	return func(n *Normalizer) { n.httpClient = c }
}

func WithLogger(l *logger.Logger) Option {
	return func(n *Normalizer) { n.log = l }
}

// New creates a Normalizer. cacheSize <= 0 disables caching.
func New(url string, cacheSize int, opts ...Option) (*Normalizer, error) {
	if url == "" {
		return nil, fmt.Errorf("nodenorm: url is required")
	}
	n := &Normalizer{
		url:        url,
		httpClient: &http.Client{},
		log:        logger.Nop(),
	}
	if cacheSize > 0 {
		cache, err := lru.New[string, []string](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("nodenorm: create cache: %w", err)
		}
		n.cache = cache
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

type request struct {
	Curies []string `json:"curies"`
}

type nodeInfo struct {
	EquivalentIdentifiers []struct {
		Identifier string `json:"identifier"`
	} `json:"equivalent_identifiers"`
}

// Normalize maps every identifier equivalent to one of ids back to the id it
// came from. Unknown ids are left out of the map unless another original's
// class names them. A resolved original always maps to itself; other overlaps
// are resolved in sorted order of the originals and recorded as collisions.
func (n *Normalizer) Normalize(ctx context.Context, ids []string) (*model.NormalizationMap, error) {
	originals := common.SortedUnique(ids)
	classes, err := n.equivalents(ctx, originals)
	if err != nil {
		return nil, err
	}

	isOriginal := make(map[string]bool, len(originals))
	for _, id := range originals {
		isOriginal[id] = true
	}

	m := model.NewNormalizationMap()
	for _, original := range originals {
		class, ok := classes[original]
		if !ok {
			continue
		}
		for _, equiv := range class {
			// An original the service resolved keeps itself; one it did not
			// resolve is reached through the class that names it.
			if _, resolved := classes[equiv]; resolved && isOriginal[equiv] && equiv != original {
				m.Collisions = append(m.Collisions, model.Collision{Identifier: equiv, Kept: equiv, Dropped: original})
				continue
			}
			m.Set(equiv, original)
		}
	}
	for _, original := range originals {
		if _, ok := classes[original]; ok {
			m.Set(original, original)
		}
	}

	for _, c := range m.Collisions {
		n.log.Warn("normalization collision", "identifier", c.Identifier, "kept", c.Kept, "dropped", c.Dropped)
	}
	n.log.Debug("normalized identifiers", "requested", len(originals), "resolved", len(classes), "mapped", m.Len())
	return m, nil
}

// equivalents returns the equivalence class for every id the service knows,
// asking the service only about ids missing from the cache.
func (n *Normalizer) equivalents(ctx context.Context, ids []string) (map[string][]string, error) {
	classes := make(map[string][]string, len(ids))
	var missing []string
	for _, id := range ids {
		if n.cache != nil {
			if class, ok := n.cache.Get(id); ok {
				classes[id] = class
				continue
			}
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return classes, nil
	}

	var resp map[string]*nodeInfo
	if err := transport.DoJSON(ctx, n.httpClient, n.log, http.MethodPost, n.url, "node normalization", request{Curies: missing}, &resp); err != nil {
		return nil, err
	}

	for _, id := range missing {
		info, ok := resp[id]
		if !ok || info == nil {
			continue
		}
		class := []string{id}
		for _, eq := range info.EquivalentIdentifiers {
			if eq.Identifier != "" && eq.Identifier != id {
				class = append(class, eq.Identifier)
			}
		}
		class = common.SortedUnique(class)
		classes[id] = class
		if n.cache != nil {
			n.cache.Add(id, class)
		}
	}
	return classes, nil
}
