// Package dispatch routes decoded messages to handlers.
//
// On the host, Host binds exactly one handler per request kind and turns
// each handler outcome into zero or one notification. On the UI, Listeners
// fans each notification out to every listener registered for its kind.
package dispatch
