// Package host binds every request kind to a handler backed by host-side
// collaborators, and ships the concrete collaborators used by the
// fbbridge-host binary.
//
// Handlers never send an error notification: a failure is shown through
// Display and the handler returns without a notification, except where the
// catalog defines an outcome payload (hostingDeploy reports success=false).
package host
