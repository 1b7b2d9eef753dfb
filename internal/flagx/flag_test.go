package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "short flag with separate value",
			args:    []string{"-c", "conf.json", "-a", "localhost"},
			allowed: []string{"-c", "--config"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "long flag with equals",
			args:    []string{"--config=alt.json", "-a", "localhost"},
			allowed: []string{"-c", "--config"},
			want:    []string{"--config=alt.json"},
		},
		{
			name:    "unknown flags ignored",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "flag without value at end",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "flag followed by another flag",
			args:    []string{"-c", "-notvalue"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "several allowed flags keep order",
			args:    []string{"-s", "secret", "-x", "-a", ":8080"},
			allowed: []string{"-a", "-s"},
			want:    []string{"-s", "secret", "-a", ":8080"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = []string{"bin", "-a", ":8080", "-c", "cfg.json"}
	assert.Equal(t, "cfg.json", ConfigFileFlag())

	os.Args = []string{"bin", "-config=other.json"}
	assert.Equal(t, "other.json", ConfigFileFlag())

	os.Args = []string{"bin", "-a", ":8080"}
	assert.Equal(t, "", ConfigFileFlag())
}

func TestEnvFileFlag(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = []string{"bin", "-env", "local.env", "-c", "cfg.json"}
	assert.Equal(t, "local.env", EnvFileFlag())

	os.Args = []string{"bin"}
	assert.Equal(t, "", EnvFileFlag())
}
