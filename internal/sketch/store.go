package sketch

import "sync"

// syncMap is a typed wrapper over sync.Map keyed by surface id.
type syncMap struct {
	m sync.Map
}

func (s *syncMap) store(key string, surface *Surface) {
	s.m.Store(key, surface)
}

func (s *syncMap) load(key string) (*Surface, bool) {
	v, ok := s.m.Load(key)
	if !ok {
		return nil, false
	}
	return v.(*Surface), true
}

func (s *syncMap) delete(key string) (*Surface, bool) {
	v, ok := s.m.LoadAndDelete(key)
	if !ok {
		return nil, false
	}
	return v.(*Surface), true
}

func (s *syncMap) each(fn func(*Surface)) {
	s.m.Range(func(_, v any) bool {
		fn(v.(*Surface))
		return true
	})
}
