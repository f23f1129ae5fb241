package diff

import (
	"testing"

	"github.com/croysdar/clutter-map-sub000/inventory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestDiffIdenticalSnapshotsIsEmpty(t *testing.T) {
	room := &inventory.Room{
		ID:          uuid.New(),
		ProjectID:   uuid.New(),
		Name:        "Room 1",
		Description: "A",
	}

	changes, err := Diff(room, room)
	require.NoError(t, err)
	require.Empty(t, changes)
}

func TestDiffReportsOnlyChangedFields(t *testing.T) {
	id := uuid.New()
	projectID := uuid.New()
	before := &inventory.Room{ID: id, ProjectID: projectID, Name: "Room 1", Description: "A"}
	after := &inventory.Room{ID: id, ProjectID: projectID, Name: "Room 1", Description: "B"}

	changes, err := Diff(before, after)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"description": "B"}, changes)
}

func TestDiffMismatchedKinds(t *testing.T) {
	room := &inventory.Room{ID: uuid.New(), Name: "Room 1"}
	item := &inventory.Item{ID: uuid.New(), Name: "Lamp"}

	_, err := Diff(room, item)
	require.ErrorIs(t, err, ErrInvalidDiffOperands)
}

func TestDiffNilOperands(t *testing.T) {
	room := &inventory.Room{ID: uuid.New(), Name: "Room 1"}

	_, err := Diff(nil, room)
	require.ErrorIs(t, err, ErrInvalidDiffOperands)
	_, err = Diff(room, nil)
	require.ErrorIs(t, err, ErrInvalidDiffOperands)
}

func TestDiffNilToValueCountsAsChange(t *testing.T) {
	id := uuid.New()
	before := &inventory.Item{ID: id, Name: "Lamp", Quantity: 1}
	after := &inventory.Item{ID: id, Name: "Lamp", Quantity: 1, Tags: []string{"fragile"}}

	changes, err := Diff(before, after)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"tags": []string{"fragile"}}, changes)

	reverse, err := Diff(after, before)
	require.NoError(t, err)
	require.Contains(t, reverse, "tags")
}

func TestDiffNilAndEmptySlicesAreEqual(t *testing.T) {
	id := uuid.New()
	before := &inventory.Item{ID: id, Name: "Lamp", Tags: nil}
	after := &inventory.Item{ID: id, Name: "Lamp", Tags: []string{}}

	changes, err := Diff(before, after)
	require.NoError(t, err)
	require.Empty(t, changes)
}

func TestDiffIsDeterministic(t *testing.T) {
	id := uuid.New()
	before := &inventory.Item{ID: id, Name: "Lamp", Description: "old", Quantity: 1}
	after := &inventory.Item{ID: id, Name: "Torch", Description: "new", Quantity: 3}

	first, err := Diff(before, after)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Diff(before, after)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}
