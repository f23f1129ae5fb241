package command

import (
	"errors"

	"github.com/croysdar/clutter-map-sub000/pkg/types"
)

var (
	// ErrProjectIDRequired occurs when a project-scoped command omits the project id.
	ErrProjectIDRequired = errors.New("clutter-map: project id required")
	// ErrProjectNameRequired indicates the project payload lacks a name.
	ErrProjectNameRequired = errors.New("clutter-map: project name required")
	// ErrRoomIDRequired occurs when a room command omits the room id.
	ErrRoomIDRequired = errors.New("clutter-map: room id required")
	// ErrRoomNameRequired indicates the room payload lacks a name.
	ErrRoomNameRequired = errors.New("clutter-map: room name required")
	// ErrOrgUnitIDRequired occurs when an org unit command omits the org unit id.
	ErrOrgUnitIDRequired = errors.New("clutter-map: org unit id required")
	// ErrOrgUnitNameRequired indicates the org unit payload lacks a name.
	ErrOrgUnitNameRequired = errors.New("clutter-map: org unit name required")
	// ErrItemIDRequired occurs when an item command omits the item id.
	ErrItemIDRequired = errors.New("clutter-map: item id required")
	// ErrItemNameRequired indicates the item payload lacks a name.
	ErrItemNameRequired = errors.New("clutter-map: item name required")
	// ErrQuantityInvalid indicates a negative item quantity.
	ErrQuantityInvalid = errors.New("clutter-map: item quantity must not be negative")
	// ErrCrossProjectContainment indicates a container from another project.
	ErrCrossProjectContainment = errors.New("clutter-map: container belongs to a different project")
	// ErrMissingGate occurs when commands lack the authorization gate.
	ErrMissingGate = errors.New("clutter-map: missing authorization gate")
	// ErrMissingStores re-exports the shared sentinel for wiring checks.
	ErrMissingStores = types.ErrMissingStores
	// ErrMissingRecorder re-exports the shared sentinel for wiring checks.
	ErrMissingRecorder = types.ErrMissingRecorder
)
