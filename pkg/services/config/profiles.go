package config

import (
	"context"
	"fmt"

	"github.com/de-tools/social-atlas/pkg/models/domain"
	"gopkg.in/ini.v1"
)

// ProfileRegistry resolves the customer profiles configured per network. The
// backing INI file has one section per network with "id = name" entries:
//
//	[facebook]
//	1234 = Main Page
type ProfileRegistry interface {
	GetNetworks(ctx context.Context) ([]domain.Network, error)
	GetProfiles(ctx context.Context, network domain.Network) ([]domain.Profile, error)
}

type iniRegistry struct {
	cfg *ini.File
}

func NewProfileRegistry(path string) (ProfileRegistry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	return &iniRegistry{cfg: cfg}, nil
}

func (r *iniRegistry) GetNetworks(_ context.Context) ([]domain.Network, error) {
	var networks []domain.Network
	for _, section := range r.cfg.Sections() {
		if len(section.Keys()) == 0 {
			continue
		}
		network, err := domain.ParseNetwork(section.Name())
		if err != nil {
			return nil, fmt.Errorf("profiles section %q: %w", section.Name(), err)
		}
		networks = append(networks, network)
	}
	return networks, nil
}

func (r *iniRegistry) GetProfiles(_ context.Context, network domain.Network) ([]domain.Profile, error) {
	section, err := r.cfg.GetSection(string(network))
	if err != nil {
		return nil, fmt.Errorf("no profiles configured for %s", network)
	}

	profiles := make([]domain.Profile, 0, len(section.Keys()))
	for _, key := range section.Keys() {
		profiles = append(profiles, domain.Profile{ID: key.Name(), Name: key.String()})
	}
	return profiles, nil
}

// ProfilesByNetwork loads the profiles of every requested network.
func ProfilesByNetwork(ctx context.Context, r ProfileRegistry, networks []domain.Network) (map[domain.Network][]domain.Profile, error) {
	out := make(map[domain.Network][]domain.Profile, len(networks))
	for _, network := range networks {
		profiles, err := r.GetProfiles(ctx, network)
		if err != nil {
			return nil, err
		}
		out[network] = profiles
	}
	return out, nil
}
