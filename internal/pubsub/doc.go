// Package pubsub delivers change events to live subscribers.
//
// A Registry maps hierarchical topics such as [printer] and [printer, 42] to
// the subscribers currently listening on them. Publishing to a topic reaches
// the subscribers of that topic and of every ancestor, so a collection
// listener on [printer] sees changes to every printer. Delivery is best
// effort: a subscriber that cannot accept an event is dropped, nothing is
// queued for subscribers that are not connected.
//
// The Emitter is the entry point for services. It stamps and encodes a
// snapshot once, publishes it locally and forwards it to optional sinks.
package pubsub
