package app

import (
	"github.com/louisbranch/crowdcue/internal/party"
	apperrors "github.com/louisbranch/crowdcue/internal/platform/errors"
)

// Gateway translates the registry into the external listen contract.
type Gateway struct {
	registry *Registry
}

// NewGateway creates a gateway over the shared registry.
func NewGateway(registry *Registry) *Gateway {
	return &Gateway{registry: registry}
}

// Listen returns the party's current snapshot, a channel delivering every
// later transition in materialization order, and a cancel that detaches the
// observer. A party with no materialized state yet fails with a distinct
// not-ready condition instead of blocking; the sequence is not restartable,
// and a late subscriber never sees transitions prior to its snapshot.
func (g *Gateway) Listen(code party.Code) (party.State, <-chan party.State, func(), error) {
	if !code.Valid() {
		return party.State{}, nil, nil, apperrors.New(apperrors.CodePartyCodeInvalid,
			"party code is invalid")
	}
	snapshot, obs, err := g.registry.Subscribe(code)
	if err != nil {
		return party.State{}, nil, nil, err
	}
	cancel := func() { g.registry.unsubscribe(code, obs) }
	return snapshot, obs.Updates(), cancel, nil
}
