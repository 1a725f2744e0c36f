package domain

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSchema(t *testing.T) {
	s := DefaultSchema()

	require.NoError(t, s.Validate())
	assert.Equal(t, "RainTomorrow", s.Target)
	assert.Len(t, s.Numeric, 17)
	assert.Equal(t, []string{"Location", "WindGustDir", "WindDir9am", "WindDir3pm", "RainToday"}, s.OneHotColumns())
}

func TestDecodeSchema(t *testing.T) {
	t.Run("partial document keeps defaults", func(t *testing.T) {
		s, err := DecodeSchema(strings.NewReader("target: RainToday\nstandardize: false\n"))
		require.NoError(t, err)

		assert.Equal(t, "RainToday", s.Target)
		assert.False(t, s.Standardize)
		assert.Equal(t, DefaultSchema().Numeric, s.Numeric)
		assert.NotContains(t, s.OneHotColumns(), "RainToday")
	})

	t.Run("empty document", func(t *testing.T) {
		s, err := DecodeSchema(strings.NewReader(""))
		require.NoError(t, err)
		assert.Equal(t, DefaultSchema(), s)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := DecodeSchema(strings.NewReader("targt: RainToday\n"))
		assert.Error(t, err)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := DecodeSchema(strings.NewReader("drop_columns: [RainTomorrow]\n"))
		assert.Error(t, err)
	})
}

func TestSchemaValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Schema)
	}{
		{"no target", func(s *Schema) { s.Target = "" }},
		{"target dropped", func(s *Schema) { s.DropColumns = append(s.DropColumns, s.Target) }},
		{"date without layouts", func(s *Schema) { s.DateLayouts = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSchema()
			tt.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestLoadSchema(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		s, err := LoadSchema("")
		require.NoError(t, err)
		assert.Equal(t, DefaultSchema(), s)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schema.yaml")
		require.NoError(t, os.WriteFile(path, []byte("date_column: \"\"\nlocation_column: Station\n"), 0o600))

		s, err := LoadSchema(path)
		require.NoError(t, err)
		assert.Empty(t, s.DateColumn)
		assert.Equal(t, "Station", s.LocationColumn)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSchema(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
