package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Provider:    ProviderOpenRouter,
		APIKey:      "test-key",
		Model:       "openai/gpt-4o",
		OracleRPS:   1,
		ArtifactDir: t.TempDir(),
		LogName:     "test",
	}
}

func TestNewContainer(t *testing.T) {
	c, err := NewContainer(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.Applier)
	p, err := c.Profiles.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "John", p.PersonalInfo.FirstName)
}

func TestNewContainer_Providers(t *testing.T) {
	for _, provider := range []string{"", ProviderOpenAI, ProviderGemini} {
		t.Run(provider, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Provider = provider
			c, err := NewContainer(context.Background(), cfg)
			require.NoError(t, err)
			c.Close()
		})
	}

	cfg := testConfig(t)
	cfg.Provider = "anthropic"
	_, err := NewContainer(context.Background(), cfg)
	assert.ErrorContains(t, err, "unsupported oracle provider")
}

func TestNewContainer_SiteAdapters(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "sites.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`
- name: ashby
  hosts: [jobs.ashbyhq.com]
  form: "#form"
  submit: "button.submit"
`), 0o600))

	cfg := testConfig(t)
	cfg.SitesPath = good
	c, err := NewContainer(context.Background(), cfg)
	require.NoError(t, err)
	c.Close()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("- name: broken\n"), 0o600))
	cfg.SitesPath = bad
	_, err = NewContainer(context.Background(), cfg)
	assert.ErrorContains(t, err, "name and hosts are required")

	cfg.SitesPath = filepath.Join(dir, "missing.yaml")
	_, err = NewContainer(context.Background(), cfg)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
