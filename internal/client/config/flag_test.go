package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "url and timeout", args: []string{"cmd", "-a", "http://api.local:9090", "-t", "3"},
			expected: &Config{ServerURL: "http://api.local:9090", RequestTimeout: 3 * time.Second}},
		{name: "unrelated flags ignored", args: []string{"cmd", "-x", "1", "-a=http://h:1"},
			expected: &Config{ServerURL: "http://h:1"}},
		{name: "bad timeout", args: []string{"cmd", "-t", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
