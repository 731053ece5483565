package normalizer

import (
	"fmt"

	"github.com/de-tools/social-atlas/pkg/models/domain"
	"github.com/de-tools/social-atlas/pkg/services/catalog"
)

// Factory builds the normalizer of a network from its catalog.
type Factory func(network domain.Network, c *catalog.Catalog) Normalizer

// DefaultFactories selects the item normalizer for Facebook and Instagram and
// the generic one for every other network.
func DefaultFactories() map[domain.Network]Factory {
	return map[domain.Network]Factory{
		domain.NetworkFacebook:  NewItemNormalizer,
		domain.NetworkInstagram: NewItemNormalizer,
		domain.NetworkLinkedIn:  NewGenericNormalizer,
		domain.NetworkTwitter:   NewGenericNormalizer,
		domain.NetworkYouTube:   NewGenericNormalizer,
		domain.NetworkTikTok:    NewGenericNormalizer,
		domain.NetworkThreads:   NewGenericNormalizer,
	}
}

type Registry struct {
	normalizers map[domain.Network]Normalizer
}

// NewRegistry instantiates one normalizer per network known to the catalogs.
func NewRegistry(catalogs *catalog.Registry, factories map[domain.Network]Factory) (*Registry, error) {
	r := &Registry{normalizers: make(map[domain.Network]Normalizer)}
	for _, network := range catalogs.Networks() {
		factory, ok := factories[network]
		if !ok {
			return nil, fmt.Errorf("no normalizer registered for network %q", network)
		}
		c, err := catalogs.Get(network)
		if err != nil {
			return nil, err
		}
		r.normalizers[network] = factory(network, c)
	}
	return r, nil
}

func (r *Registry) Get(network domain.Network) (Normalizer, error) {
	n, ok := r.normalizers[network]
	if !ok {
		return nil, fmt.Errorf("%w: %s", catalog.ErrUnknownNetwork, network)
	}
	return n, nil
}
