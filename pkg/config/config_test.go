// Copyright 2026 fanjia1024
//
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

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  http_port: 9000
  ws_port: 9001
  host: "127.0.0.1"
database:
  url: "postgres://localhost/quests"
log:
  level: "debug"
`
	path := filepath.Join(dir, "test.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.HTTPPort != 9000 {
		t.Errorf("Server.HTTPPort: got %d", cfg.Server.HTTPPort)
	}
	if cfg.Server.WSPort != 9001 {
		t.Errorf("Server.WSPort: got %d", cfg.Server.WSPort)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host: got %q", cfg.Server.Host)
	}
	if cfg.Database.URL != "postgres://localhost/quests" {
		t.Errorf("Database.URL: got %q", cfg.Database.URL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level: got %q", cfg.Log.Level)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.HTTPPort != 3000 {
		t.Errorf("default HTTPPort: got %d", cfg.Server.HTTPPort)
	}
	if cfg.Redis.Queue != "events:queue" {
		t.Errorf("default Redis.Queue: got %q", cfg.Redis.Queue)
	}
	if cfg.Redis.Channel != "QUEST_UPDATES" {
		t.Errorf("default Redis.Channel: got %q", cfg.Redis.Channel)
	}
	if cfg.Database.MinConns != 5 || cfg.Database.MaxConns != 10 {
		t.Errorf("default pool bounds: got %d/%d", cfg.Database.MinConns, cfg.Database.MaxConns)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("HTTP_SERVER_PORT", "4500")
	t.Setenv("DATABASE_URL", "postgres://env/quests")
	t.Setenv("WKC_METRICS_BEARER_TOKEN", "tok-1")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.HTTPPort != 4500 {
		t.Errorf("env HTTPPort: got %d", cfg.Server.HTTPPort)
	}
	if cfg.Database.URL != "postgres://env/quests" {
		t.Errorf("env Database.URL: got %q", cfg.Database.URL)
	}
	if cfg.Metrics.BearerToken != "tok-1" {
		t.Errorf("env Metrics.BearerToken: got %q", cfg.Metrics.BearerToken)
	}
}
