// FILE: lixenwraith/layerconf/section_test.go
package layerconf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSection(t *testing.T) {
	root := buildRoot(t,
		newTestProvider("defaults", map[string]string{
			"server:host":     "localhost",
			"server:port":     "80",
			"server:tls:cert": "/etc/cert",
			"logging:level":   "info",
			"logging":         "enabled",
			"features:0:name": "alpha",
			"features:1:name": "beta",
		}),
		newTestProvider("override", map[string]string{
			"server:port":    "8080",
			"server:tls:key": "/etc/key",
		}),
	)

	t.Run("PathAndKey", func(t *testing.T) {
		tls := root.Section("server").Section("tls")
		assert.Equal(t, "server:tls", tls.Path())
		assert.Equal(t, "tls", tls.Key())
	})

	t.Run("RelativeGet", func(t *testing.T) {
		server := root.Section("server")

		v, ok := server.Get("port")
		assert.True(t, ok)
		assert.Equal(t, "8080", v)

		v, ok = server.Get("tls:key")
		assert.True(t, ok)
		assert.Equal(t, "/etc/key", v)

		_, ok = server.Value()
		assert.False(t, ok)
	})

	t.Run("ValueAndChildrenCoexist", func(t *testing.T) {
		logging := root.Section("logging")

		v, ok := logging.Value()
		assert.True(t, ok)
		assert.Equal(t, "enabled", v)
		assert.Equal(t, []string{"level"}, logging.ChildKeys())
	})

	t.Run("Children", func(t *testing.T) {
		tls := root.Section("server:tls")
		assert.Equal(t, []string{"cert", "key"}, tls.ChildKeys())

		var paths []string
		for _, c := range tls.Children() {
			paths = append(paths, c.Path())
		}
		assert.Equal(t, []string{"server:tls:cert", "server:tls:key"}, paths)

		var top []string
		for _, c := range root.Children() {
			top = append(top, c.Key())
		}
		assert.Equal(t, []string{"features", "logging", "server"}, top)
	})

	t.Run("IndexedChildren", func(t *testing.T) {
		features := root.Section("features")
		assert.Equal(t, []string{"0", "1"}, features.ChildKeys())
		assert.Equal(t, "beta", root.Value("features:1:name"))
	})

	t.Run("Exists", func(t *testing.T) {
		assert.True(t, root.Section("server").Exists(), "children only")
		assert.True(t, root.Section("server:port").Exists(), "value only")
		assert.False(t, root.Section("nothing").Exists())
		assert.NotNil(t, root.Section("nothing"))
	})

	t.Run("SectionsAreLive", func(t *testing.T) {
		p := newTestProvider("live", nil)
		r := buildRoot(t, p)
		s := r.Section("app")
		assert.False(t, s.Exists())

		p.Replace(map[string]string{"app:name": "demo"}, true)
		assert.True(t, s.Exists())
		v, _ := s.Get("name")
		assert.Equal(t, "demo", v)
	})
}
