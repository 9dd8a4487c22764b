// Package protocol is the message catalog shared by the host and the UI.
//
// The catalog is closed: every Kind is declared here, belongs to exactly one
// Direction, and carries one statically shaped payload type. Requests travel
// UI→Host, notifications travel Host→UI. There is no correlation id on the
// wire; the notification a request may trigger is fixed by the catalog
// (see Responses).
package protocol
