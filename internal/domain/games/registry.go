package games

import "sort"

var registry = map[string]Engine{}

func register(e Engine) {
	registry[e.Info().ID] = e
}

func init() {
	register(NewBlackjack())
	register(NewBridge())
	register(NewCanasta())
	register(NewCribbage())
	register(NewHearts())
	register(NewPinochle())
}

// Get returns the engine for a game id.
func Get(id string) (Engine, bool) {
	e, ok := registry[id]
	return e, ok
}

// IDs returns the registered game ids in stable order.
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
