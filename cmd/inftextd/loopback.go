package main

// groupFunc adapts a plain function to session.SubscriptionGroup, letting
// the demo wire two sessions together without a real transport. Leave is a
// no-op since there's no actual peer roster to evict from.
type groupFunc struct {
	broadcast func(envelope []byte) error
}

func (g groupFunc) Broadcast(envelope []byte) error { return g.broadcast(envelope) }
func (g groupFunc) Leave(string)                    {}
