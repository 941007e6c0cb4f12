package ipintel

import (
	"fmt"
	"time"
)

// Stats summarizes the active data set generation for diagnostics and the
// CLI's "stats" command, without exposing internal/dataset's types
// directly to callers.
type Stats struct {
	Version                   string
	Published                 time.Time
	NextUpdate                time.Time
	Components                []string
	RequiredProperties        []string
	PropertyValueIndexEnabled bool
}

// Stats borrows the active generation just long enough to summarize it.
func (m *Manager) Stats() (Stats, error) {
	h := m.borrow()
	defer h.Release()
	ds := h.Resource()

	comps := ds.Components()
	names := make([]string, 0, len(comps))
	for _, c := range comps {
		name, err := ds.ComponentName(c)
		if err != nil {
			return Stats{}, err
		}
		names = append(names, name)
	}

	required := make([]string, 0, len(ds.Required))
	for _, r := range ds.Required {
		required = append(required, r.Name)
	}

	v := ds.Header.Version
	return Stats{
		Version:                   fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Rev),
		Published:                 time.Unix(ds.Header.Published, 0).UTC(),
		NextUpdate:                time.Unix(ds.Header.NextUpdate, 0).UTC(),
		Components:                names,
		RequiredProperties:        required,
		PropertyValueIndexEnabled: ds.PropertyValueIndexEnabled(),
	}, nil
}
