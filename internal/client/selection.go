package client

// Selection tracks which record ids are marked for batch action. It is
// ephemeral client state; Prune keeps it a subset of the ids on the most
// recently loaded page.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection creates an empty selection
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// ToggleOne flips membership of a single id
func (s *Selection) ToggleOne(id string) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// ToggleAllOnPage selects every id on the page, or deselects them all when
// every one of them is already selected. Page-scoped: ids from other pages
// are untouched.
func (s *Selection) ToggleAllOnPage(pageIDs []string) {
	if s.AllSelected(pageIDs) {
		for _, id := range pageIDs {
			delete(s.ids, id)
		}
		return
	}
	for _, id := range pageIDs {
		s.ids[id] = struct{}{}
	}
}

// Prune drops every selected id not present in pageIDs, preserving
// membership for ids that remain. Called on every page load.
func (s *Selection) Prune(pageIDs []string) {
	keep := make(map[string]struct{}, len(pageIDs))
	for _, id := range pageIDs {
		keep[id] = struct{}{}
	}
	for id := range s.ids {
		if _, ok := keep[id]; !ok {
			delete(s.ids, id)
		}
	}
}

// Clear empties the selection
func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
}

// Has reports whether id is selected
func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids
func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids in unspecified order
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}

// AllSelected reports whether every id on the page is selected. An empty
// page is never considered fully selected.
func (s *Selection) AllSelected(pageIDs []string) bool {
	if len(pageIDs) == 0 {
		return false
	}
	for _, id := range pageIDs {
		if _, ok := s.ids[id]; !ok {
			return false
		}
	}
	return true
}
