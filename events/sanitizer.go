package events

import (
	"sync"

	"github.com/croysdar/clutter-map-sub000/pkg/types"
	"github.com/goliatone/go-masker"
)

var defaultMaskerOnce sync.Once

// DefaultMasker returns the shared masker with the default denylist applied.
// Inventory payloads are caller supplied, so credential-shaped keys are
// masked before history entries leave the repository.
func DefaultMasker() *masker.Masker {
	defaultMaskerOnce.Do(func() {
		if masker.Default == nil {
			return
		}
		registerDefaultMaskFields(masker.Default)
	})
	return masker.Default
}

// SanitizeDetails masks sensitive values in a payload or details map.
func SanitizeDetails(mask *masker.Masker, details map[string]any) map[string]any {
	if len(details) == 0 {
		return details
	}
	if mask == nil {
		mask = DefaultMasker()
	}
	if mask == nil {
		return map[string]any{}
	}

	masked, err := mask.Mask(cloneStringMap(details))
	if err != nil {
		return map[string]any{}
	}
	switch masked := masked.(type) {
	case map[string]any:
		return masked
	default:
		return map[string]any{}
	}
}

// SanitizeEntries masks every entry's details in place of the originals.
func SanitizeEntries(mask *masker.Masker, entries []types.HistoryEntry) []types.HistoryEntry {
	if len(entries) == 0 {
		return entries
	}
	out := make([]types.HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		entry.Details = SanitizeDetails(mask, entry.Details)
		out = append(out, entry)
	}
	return out
}

func registerDefaultMaskFields(mask *masker.Masker) {
	if mask == nil {
		return
	}
	mask.RegisterMaskField("Secret", "filled4")
	mask.RegisterMaskField("secret", "filled4")
	mask.RegisterMaskField("token", "filled4")
}

func cloneStringMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return map[string]any{}
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
