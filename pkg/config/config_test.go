package config

import (
	"testing"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("APP_REQUIRE_EMAIL_VERIFICATION", "true")
	t.Setenv("APP_DEPLOYMENT_URL", "http://localhost:8080")
	t.Setenv("APP_EMAIL_VERIFICATION_KEY", "0123456789abcdef")
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("REDIS_DB", "")
	t.Setenv("JWT_EXPIRY_HOURS", "")
	t.Setenv("AUTH_RATE_LIMIT_PER_MINUTE", "")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("MODEL_ARTIFACT_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.JWT.ExpiryHours != 24 {
		t.Errorf("ExpiryHours = %d, want 24", cfg.JWT.ExpiryHours)
	}
	if cfg.Model.ArtifactPath != "models.json" {
		t.Errorf("ArtifactPath = %q, want models.json", cfg.Model.ArtifactPath)
	}
	if cfg.Model.IdentifierColumn != "Commodities" {
		t.Errorf("IdentifierColumn = %q", cfg.Model.IdentifierColumn)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing jwt secret", map[string]string{"JWT_SECRET": ""}},
		{"missing db password", map[string]string{"DB_PASSWORD": ""}},
		{"unknown driver", map[string]string{"DB_DRIVER": "oracle"}},
		{"short aes key", map[string]string{"APP_EMAIL_VERIFICATION_KEY": "short"}},
		{"missing deployment url", map[string]string{"APP_DEPLOYMENT_URL": ""}},
		{"admin email without password", map[string]string{"ADMIN_EMAIL": "root@example.com"}},
		{"bad redis db", map[string]string{"REDIS_DB": "zero"}},
		{"bad jwt expiry", map[string]string{"JWT_EXPIRY_HOURS": "-1"}},
		{"bad auth rate limit", map[string]string{"AUTH_RATE_LIMIT_PER_MINUTE": "lots"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadSqliteNeedsNoPassword(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_PASSWORD", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Driver = %q, want sqlite", cfg.Database.Driver)
	}
}

func TestLoadVerificationDisabled(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_REQUIRE_EMAIL_VERIFICATION", "false")
	t.Setenv("APP_EMAIL_VERIFICATION_KEY", "")
	t.Setenv("APP_DEPLOYMENT_URL", "")

	if _, err := Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b ,c")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoadModelWithoutSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATASET_PATH", "data/prices.xlsx")
	t.Setenv("MODEL_ARTIFACT_PATH", "")

	m := LoadModel()
	if m.DatasetPath != "data/prices.xlsx" {
		t.Errorf("DatasetPath = %q", m.DatasetPath)
	}
	if m.ArtifactPath != "models.json" {
		t.Errorf("ArtifactPath = %q, want default", m.ArtifactPath)
	}
}
