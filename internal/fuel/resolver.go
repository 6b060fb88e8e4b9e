package fuel

// pairKey indexes a mapping rule on an exact (name, address) pair.
type pairKey struct {
	name    string
	address string
}

// Resolver maps a raw upstream (name, address) pair to a stable display key.
// Lookup order: exact (name, address) pair, then name alone, then the raw
// name itself. Matching is exact string equality; address strings that differ
// only by incidental formatting are deliberately treated as distinct sites.
type Resolver struct {
	byPair map[pairKey]string
	byName map[string]string
}

// NewResolver builds a Resolver from the tracked station list. Stations
// without a Display contribute no rule and fall through to the raw name.
func NewResolver(stations []Station) *Resolver {
	r := &Resolver{
		byPair: make(map[pairKey]string),
		byName: make(map[string]string),
	}

	for _, st := range stations {
		if st.Display == "" {
			continue
		}
		if st.Address != "" {
			r.byPair[pairKey{name: st.Name, address: st.Address}] = st.Display
			continue
		}
		r.byName[st.Name] = st.Display
	}

	return r
}

// Resolve returns the display key for a raw station identity. It is total:
// an unmapped station resolves to its raw name, so new or rebranded stations
// still produce a usable series key.
func (r *Resolver) Resolve(name, address string) string {
	if key, ok := r.byPair[pairKey{name: name, address: address}]; ok {
		return key
	}
	if key, ok := r.byName[name]; ok {
		return key
	}
	return name
}
