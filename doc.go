// Package deskgraph is a retained-mode scene graph and geometry engine for
// desktop widgets, rendered with [Ebitengine].
//
// A [Scene] owns a flat set of elements identified by string ids. Each
// element has a [Kind] (Text, Image, Bar, Shape or RoundLine) and a bag of
// named properties. Elements nest through the "container" property, which
// also sets paint order: a container paints before its children, and later
// siblings paint over earlier ones.
//
// # Quick start
//
//	scene := deskgraph.NewScene()
//	scene.AddElement(deskgraph.KindShape, "panel", deskgraph.Props{
//		"x": 10, "y": 10, "width": 200, "height": 80,
//		"radius": 8, "fillColor": "linearGradient(90, #336, #66a)",
//	})
//	scene.AddElement(deskgraph.KindBar, "cpu", deskgraph.Props{
//		"container": "panel", "x": 10, "y": 30, "width": 180, "height": 12,
//		"value": 0.4,
//	})
//	deskgraph.Run(scene, deskgraph.RunConfig{Title: "Widgets", Width: 320, Height: 200})
//
// # Properties
//
// Properties are set with [Scene.AddElement], [Scene.SetProperties] and
// [Scene.SetPropertiesByGroup]. A patch is validated as a whole before any
// of it is applied; a nil value unsets a property. Geometry, paint and
// transform caches are invalidated from the properties a patch touches.
//
// # Geometry
//
// Every element resolves to one or more [Outline] parts: background, fill,
// stroke, content and bevel. Shapes come from rectangles, ellipses, lines,
// arcs, curves and SVG-style path data, and can be combined with union,
// intersect and xor through [Scene.Combine]. Outlines are flattened to
// polylines with the scene's flatten tolerance.
//
// # Hit testing and events
//
// [Scene.HitTest] walks elements in reverse paint order and tests the exact
// geometry of each part. A [Dispatcher] turns raw pointer input into element
// events (button up/down/double click, scroll, mouse over/leave) and calls
// the handlers registered for the tokens stored on elements.
//
// [Ebitengine]: https://ebitengine.org
package deskgraph
