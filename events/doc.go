// Package events persists the append-only audit log. The recorder writes
// event facts inside the caller's transaction so business rows and their
// audit records share fate; the repository serves the two read shapes built
// on top of the log: per-entity history and the changes-since sync feed.
package events
