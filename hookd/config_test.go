// Copyright 2025 FluxHook Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hookd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "PUBLISH_USERNAME", "MAX_DATE_SKEW", "FORCE_CLEAN_SESSION",
		"HOOK_HOST", "HOOK_PATH", "DATABASE_HOST", "DATABASE_PORT",
		"DATABASE_NAME", "DATABASE_USER", "DATABASE_PASSWORD",
		"DATABASE_SSLMODE", "DATABASE_URL", "REDIS_ADDR",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "solarnode", cfg.Auth.PublishUsername)
	assert.Equal(t, Duration(15*time.Minute), cfg.Auth.MaxDateSkew)
	assert.Equal(t, "postgres://fluxhook:@localhost:5432/fluxhook?sslmode=disable",
		cfg.Database.ConnectionURL())
}

func TestLoadConfigFromFile(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9090
auth:
  publish_username: gateway
  max_date_skew: 5m
  force_clean_session: true
database:
  host: db.internal
  name: broker
redis:
  addr: cache.internal:6379
`), 0600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "gateway", cfg.Auth.PublishUsername)
	assert.Equal(t, Duration(5*time.Minute), cfg.Auth.MaxDateSkew)
	assert.True(t, cfg.Auth.ForceCleanSession)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "broker", cfg.Database.Name)
	assert.Equal(t, "cache.internal:6379", cfg.Redis.Addr)
	// file values merge over defaults
	assert.Equal(t, 5432, cfg.Database.Port)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "8181")
	t.Setenv("MAX_DATE_SKEW", "30m")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x?sslmode=require")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8181, cfg.Port)
	assert.Equal(t, Duration(30*time.Minute), cfg.Auth.MaxDateSkew)
	assert.Equal(t, "postgres://u:p@db:5432/x?sslmode=require", cfg.Database.ConnectionURL())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoadConfigBadEnvValue(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "not-a-port")
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	clearConfigEnv(t)
	_, err := LoadConfig("/does/not/exist.yaml")
	assert.Error(t, err)
}
