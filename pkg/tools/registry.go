package tools

import "sort"

// Registry holds the fixed tool set sorted by ascending priority.
type Registry struct {
	tools []Tool
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

func (r *Registry) Register(t Tool) {
	r.tools = append(r.tools, t)
	sort.SliceStable(r.tools, func(i, j int) bool {
		return r.tools[i].Priority < r.tools[j].Priority
	})
}

// ByName returns the named tool, or false when it is not registered.
func (r *Registry) ByName(name string) (Tool, bool) {
	for _, t := range r.tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

// All returns the tools in priority order.
func (r *Registry) All() []Tool {
	out := make([]Tool, len(r.tools))
	copy(out, r.tools)
	return out
}
