package events

import (
	"testing"

	"github.com/croysdar/clutter-map-sub000/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestSanitizeDetailsMasksSensitiveKeys(t *testing.T) {
	details := map[string]any{
		"name":   "Socket Set",
		"secret": "shh",
		"token":  "abcd1234",
	}

	out := SanitizeDetails(DefaultMasker(), details)
	require.Equal(t, "Socket Set", out["name"])
	require.NotEqual(t, "shh", out["secret"])
	require.NotEqual(t, "abcd1234", out["token"])

	// the input map is left untouched
	require.Equal(t, "shh", details["secret"])
}

func TestSanitizeEntries(t *testing.T) {
	entries := []types.HistoryEntry{
		{Details: map[string]any{"secret": "shh", "quantity": 2}},
		{Details: nil},
	}

	out := SanitizeEntries(DefaultMasker(), entries)
	require.Len(t, out, 2)
	require.NotEqual(t, "shh", out[0].Details["secret"])
	require.Equal(t, 2, out[0].Details["quantity"])
	require.Nil(t, out[1].Details)
}
