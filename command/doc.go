// Package command exposes go-command compatible handlers for inventory
// mutations. Every handler enforces ownership through the authorization gate
// before writing, then persists the business row and its audit record inside
// one transaction so neither survives without the other.
package command
