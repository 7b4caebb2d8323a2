package persona

// Store exposes persona retrieval for HTTP handlers and the resolver.
type Store interface {
	List() []Persona
	FindByID(id string) (Persona, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Persona
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied personas.
// Later entries replace earlier ones with the same ID.
func NewMemoryStore(items []Persona) *MemoryStore {
	s := &MemoryStore{items: make([]Persona, 0, len(items))}
	for _, item := range items {
		if i := s.indexOf(item.ID); i >= 0 {
			s.items[i] = item
			continue
		}
		s.items = append(s.items, item)
	}
	return s
}

// List returns the persona catalog.
func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.items...)
}

// FindByID looks up a persona by identifier.
func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	return Persona{}, false
}

func (s *MemoryStore) indexOf(id string) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
