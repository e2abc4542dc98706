package ecs

import (
	"github.com/phanxgames/deskgraph"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// InteractionEventType is the Donburi event type for delivered element events.
var InteractionEventType = events.NewEventType[deskgraph.InteractionEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Element events are published to InteractionEventType and can be
// consumed with events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) deskgraph.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event deskgraph.InteractionEvent) {
	InteractionEventType.Publish(s.world, event)
}

// ForElement wraps fn so it only sees events for the element with id.
func ForElement(id string, fn func(donburi.World, deskgraph.InteractionEvent)) func(donburi.World, deskgraph.InteractionEvent) {
	return func(w donburi.World, e deskgraph.InteractionEvent) {
		if e.ElementID == id {
			fn(w, e)
		}
	}
}
