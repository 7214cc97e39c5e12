package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "heuristic", cfg.LLM.Provider)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 5, cfg.Retrieval.Limit)
	assert.Equal(t, 400, cfg.Retrieval.SegmentChars)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 120, cfg.Engine.SnippetWindow)
}

func TestLoad_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("llm.provider", "openai")
	v.Set("llm.model", "gpt-4o-mini")
	v.Set("llm.timeout", "10s")
	v.Set("engine.snippet_window", 90)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 10*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 90, cfg.Engine.SnippetWindow)
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(v *viper.Viper)
		wantErr string
	}{
		{
			name:    "non-positive timeout",
			mutate:  func(v *viper.Viper) { v.Set("llm.timeout", "0s") },
			wantErr: "llm.timeout",
		},
		{
			name:    "zero retrieval limit",
			mutate:  func(v *viper.Viper) { v.Set("retrieval.limit", 0) },
			wantErr: "retrieval.limit",
		},
		{
			name:    "unknown store driver",
			mutate:  func(v *viper.Viper) { v.Set("store.driver", "cassandra") },
			wantErr: "store.driver",
		},
		{
			name:    "postgres without dsn",
			mutate:  func(v *viper.Viper) { v.Set("store.driver", "postgres") },
			wantErr: "store.dsn",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := viper.New()
			tc.mutate(v)

			_, err := Load(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
