package fuel

// Filter is the static allow-list of station identities the system tracks.
// Configured at startup, immutable during a run.
type Filter struct {
	stations []Station
}

// NewFilter creates a Filter over the tracked station list.
func NewFilter(stations []Station) *Filter {
	return &Filter{stations: stations}
}

// Allows reports whether a raw (name, address) identity is tracked. An entry
// without an address matches any site with that name; an entry with an
// address matches only that exact site.
func (f *Filter) Allows(name, address string) bool {
	for _, st := range f.stations {
		if st.Name != name {
			continue
		}
		if st.Address == "" || st.Address == address {
			return true
		}
	}
	return false
}
