// FILE: lixenwraith/layerconf/section.go
package layerconf

// Section is a view of the keys under a path. It holds no data of its own.
type Section struct {
	root *Root
	path string
}

// Key returns the last segment of the section's path
func (s *Section) Key() string {
	return SectionKey(s.path)
}

// Path returns the full path of the section
func (s *Section) Path() string {
	return s.path
}

// Value returns the value stored at the section's own path
func (s *Section) Value() (string, bool) {
	return s.root.Get(s.path)
}

// Exists reports whether the section has a value or any children
func (s *Section) Exists() bool {
	if _, ok := s.Value(); ok {
		return true
	}
	return len(s.ChildKeys()) > 0
}

// Get resolves a key relative to the section
func (s *Section) Get(key string) (string, bool) {
	return s.root.Get(Combine(s.path, key))
}

// Set writes a key relative to the section. See Root.Set.
func (s *Section) Set(key, value string) {
	s.root.Set(Combine(s.path, key), value)
}

// Section returns a sub-section relative to this one
func (s *Section) Section(key string) *Section {
	return s.root.Section(Combine(s.path, key))
}

// ChildKeys returns the immediate child segments of the section
func (s *Section) ChildKeys() []string {
	return s.root.ChildKeys(s.path)
}

// Children returns the immediate child sections
func (s *Section) Children() []*Section {
	return s.root.childrenOf(s.path)
}
