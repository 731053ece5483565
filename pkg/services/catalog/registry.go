package catalog

import (
	"fmt"

	"github.com/de-tools/social-atlas/pkg/models/domain"
)

// Registry maps networks to their catalogs. Build one with NewRegistry and pass
// it explicitly to the pipeline stages.
type Registry struct {
	catalogs map[domain.Network]*Catalog
	order    []domain.Network
}

// NewRegistry builds the catalogs of every supported network.
func NewRegistry() (*Registry, error) {
	catalogs := make([]*Catalog, 0, len(definitions))
	for _, network := range domain.Networks() {
		defs, ok := definitions[network]
		if !ok {
			continue
		}
		c, err := New(network, defs()...)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s catalog: %w", network, err)
		}
		catalogs = append(catalogs, c)
	}
	return NewRegistryFrom(catalogs...), nil
}

// NewRegistryFrom wraps already built catalogs; later catalogs replace earlier
// ones for the same network.
func NewRegistryFrom(catalogs ...*Catalog) *Registry {
	r := &Registry{catalogs: make(map[domain.Network]*Catalog, len(catalogs))}
	for _, c := range catalogs {
		if _, exists := r.catalogs[c.Network()]; !exists {
			r.order = append(r.order, c.Network())
		}
		r.catalogs[c.Network()] = c
	}
	return r
}

func (r *Registry) Get(network domain.Network) (*Catalog, error) {
	c, ok := r.catalogs[network]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNetwork, network)
	}
	return c, nil
}

func (r *Registry) Networks() []domain.Network {
	return append([]domain.Network(nil), r.order...)
}
