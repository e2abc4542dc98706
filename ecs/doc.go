// Package ecs provides ECS adapters for deskgraph's element events.
//
// The primary adapter is [NewDonburiStore], which forwards every event a
// deskgraph Dispatcher delivers (button, scroll, mouse over/leave) into a
// [Donburi] world as a typed event. Subscribe to [InteractionEventType] in
// your ECS systems to receive them.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	scene.SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
