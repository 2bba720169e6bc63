package girder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryScanner_FiltersByBasePackage(t *testing.T) {
	t.Parallel()

	s := NewRegistryScanner()
	s.Register(
		ScannedType{Key: "a", Package: "example.com/app/storage"},
		ScannedType{Key: "b", Package: "example.com/app"},
		ScannedType{Key: "c", Package: "example.com/other"},
		ScannedType{Key: "d", Package: "example.com/appendix"},
	)

	found, err := s.Scan([]string{"example.com/app"}, []string{AutoBindMarker})
	require.NoError(t, err)

	keys := make([]string, 0, len(found))
	for _, f := range found {
		keys = append(keys, f.Key)
	}

	// Prefix matching is segment-aware: appendix does not match app.
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestRegistryScanner_FiltersByMarker(t *testing.T) {
	t.Parallel()

	s := NewRegistryScanner()
	s.Register(
		ScannedType{Key: "auto", Package: "example.com/app"},
		ScannedType{Key: "custom", Package: "example.com/app", Marker: "example.Custom"},
	)

	found, err := s.Scan([]string{"example.com/app"}, []string{AutoBindMarker})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "auto", found[0].Key)

	// Registration defaulted the empty marker.
	assert.Equal(t, AutoBindMarker, found[0].Marker)

	found, err = s.Scan([]string{"example.com/app"}, []string{"example.Custom"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "custom", found[0].Key)
}

func TestRegistryScanner_NoBasePackagesFindsNothing(t *testing.T) {
	t.Parallel()

	s := NewRegistryScanner()
	s.Register(ScannedType{Key: "a", Package: "example.com/app"})

	found, err := s.Scan(nil, []string{AutoBindMarker})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestEmptyScanner(t *testing.T) {
	t.Parallel()

	found, err := EmptyScanner{}.Scan([]string{"example.com/app"}, []string{AutoBindMarker})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestComponent(t *testing.T) {
	t.Parallel()

	st := Component("example.com/app", func(ctx context.Context, r Resolver) (*testConfig, error) {
		return &testConfig{Port: 7}, nil
	})

	assert.Equal(t, Key[*testConfig](), st.Key)
	assert.Equal(t, "example.com/app", st.Package)
	assert.Equal(t, AutoBindMarker, st.Marker)
	assert.Nil(t, st.Module)
	require.NotNil(t, st.Ctor)

	v, err := st.Ctor(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 7, v.(*testConfig).Port)
}

func TestConfigModule(t *testing.T) {
	t.Parallel()

	ctor := func(ctx context.Context, r Resolver) (Module, error) {
		return ModuleFunc(func(b *Binder) error { return nil }), nil
	}
	st := ConfigModule("example.com/app", "example.com/app.DBModule", ctor)

	assert.Equal(t, "example.com/app.DBModule", st.Key)
	assert.Equal(t, AutoBindMarker, st.Marker)
	assert.Nil(t, st.Ctor)
	assert.NotNil(t, st.Module)
}

func TestStandardScanner_SharedRegistry(t *testing.T) {
	t.Parallel()

	assert.Same(t, StandardScanner(), StandardScanner())
}
