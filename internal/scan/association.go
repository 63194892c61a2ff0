package scan

// association maps external surface ids to visual indices and back
type association[V any] struct {
	byID    map[string]int
	ids     []string
	visuals []*V
}

func newAssociation[V any]() association[V] {
	return association[V]{byID: make(map[string]int)}
}

func (a *association[V]) lookup(id string) (*V, bool) {
	i, ok := a.byID[id]
	if !ok {
		return nil, false
	}
	return a.visuals[i], true
}

func (a *association[V]) insert(id string, v *V) {
	a.byID[id] = len(a.visuals)
	a.ids = append(a.ids, id)
	a.visuals = append(a.visuals, v)
}

// remove swaps the last visual into the freed index
func (a *association[V]) remove(id string) bool {
	i, ok := a.byID[id]
	if !ok {
		return false
	}
	last := len(a.visuals) - 1
	if i != last {
		a.visuals[i] = a.visuals[last]
		a.ids[i] = a.ids[last]
		a.byID[a.ids[i]] = i
	}
	a.visuals[last] = nil
	a.visuals = a.visuals[:last]
	a.ids = a.ids[:last]
	delete(a.byID, id)
	return true
}

// prune drops every visual whose id is not in keep and returns the removed ids
func (a *association[V]) prune(keep map[string]struct{}) []string {
	var removed []string
	for i := len(a.ids) - 1; i >= 0; i-- {
		id := a.ids[i]
		if _, ok := keep[id]; !ok {
			a.remove(id)
			removed = append(removed, id)
		}
	}
	return removed
}

func (a *association[V]) clear() {
	clear(a.byID)
	a.ids = nil
	a.visuals = nil
}

func (a *association[V]) len() int {
	return len(a.visuals)
}

func (a *association[V]) all() []*V {
	return append([]*V(nil), a.visuals...)
}
