package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("BUNGIE_API_KEY", "key")
	t.Setenv("BUNGIE_GROUP_ID", "4242")
	t.Setenv("DATA_DIR", filepath.Join(t.TempDir(), "data"))

	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestBuildCreatesDocuments(t *testing.T) {
	cfg := testConfig(t)

	container, err := Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	for _, name := range []string{membersDocument, alertsDocument, restDocument, blockDocument} {
		_, statErr := os.Stat(cfg.DocumentPath(name))
		assert.NoError(t, statErr, name)
	}

	b, err := container.NewBot()
	require.NoError(t, err)
	assert.NotNil(t, b)
	assert.Contains(t, container.Clan.Info().Lines[0], "클랜원: 0명")
}

func TestBuildRejectsNilInputs(t *testing.T) {
	_, err := Build(context.Background(), nil, zap.NewNop())
	assert.Error(t, err)

	_, err = Build(context.Background(), &config.Config{}, nil)
	assert.Error(t, err)
}

func TestBuildFailsWhenRedisUnreachable(t *testing.T) {
	cfg := testConfig(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Host = "127.0.0.1"
	cfg.Redis.Port = 1

	_, err := Build(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
