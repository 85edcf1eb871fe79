package poster

// Registry is the ordered list of selectable posters. Index i is what
// digit key i+1 selects.
type Registry struct {
	defs []Definition
}

// NewRegistry creates a registry from definitions in display order
func NewRegistry(defs ...Definition) *Registry {
	r := &Registry{}
	for _, d := range defs {
		r.Register(d)
	}
	return r
}

// Register appends a definition
func (r *Registry) Register(d Definition) {
	r.defs = append(r.defs, d)
}

// Len returns the number of posters
func (r *Registry) Len() int {
	return len(r.defs)
}

// Get returns the definition at index i
func (r *Registry) Get(i int) (Definition, bool) {
	if i < 0 || i >= len(r.defs) {
		return Definition{}, false
	}
	return r.defs[i], true
}

// Index returns the position of the named poster, or -1
func (r *Registry) Index(name string) int {
	for i, d := range r.defs {
		if d.Name == name {
			return i
		}
	}
	return -1
}

// Names returns poster names in order
func (r *Registry) Names() []string {
	out := make([]string, len(r.defs))
	for i, d := range r.defs {
		out[i] = d.Name
	}
	return out
}

// Subset returns a registry with only the named posters, in the order
// given. Unknown names are reported in missing.
func (r *Registry) Subset(names []string) (sub *Registry, missing []string) {
	sub = &Registry{}
	for _, n := range names {
		i := r.Index(n)
		if i < 0 {
			missing = append(missing, n)
			continue
		}
		sub.Register(r.defs[i])
	}
	return sub, missing
}
