package config

// Loader is a configuration loader bound to a path. The path is recorded but
// never opened; Load always yields the same fixed settings.
type Loader struct {
	path string
}

// NewLoader returns a Loader for path. Any path, including "", is accepted.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Path returns the path the loader was created with.
func (l *Loader) Path() string {
	return l.path
}

// Load returns {"debug": true, "port": 8080}. Each call builds a new map, so
// callers may mutate the result freely.
func (l *Loader) Load() map[string]any {
	return map[string]any{
		"debug": true,
		"port":  8080,
	}
}
