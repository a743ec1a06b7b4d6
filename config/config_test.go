package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("EDUSYNC_AUTH_JWT_SECRET", "test-secret-key-for-unit-testing")
	t.Setenv("EDUSYNC_DB_DRIVER", "sqlite")
	t.Setenv("EDUSYNC_SERVER_PORT", "9090")

	cfg, err := Load(writeConfig(t, "log:\n  level: debug\n"))
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("期望环境变量覆盖端口为 9090，实际 %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("期望 driver=sqlite，实际 %s", cfg.Database.Driver)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("期望配置文件 log.level=debug，实际 %s", cfg.Log.Level)
	}
	if cfg.Schedule.LockTimeout != 5*time.Second {
		t.Errorf("期望默认锁等待 5s，实际 %v", cfg.Schedule.LockTimeout)
	}
	if cfg.Audit.Spec != "@every 1h" {
		t.Errorf("期望默认巡检周期 @every 1h，实际 %s", cfg.Audit.Spec)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("EDUSYNC_AUTH_JWT_SECRET", "")

	if _, err := Load(writeConfig(t, "server:\n  port: 8080\n")); err == nil {
		t.Error("缺少 jwt_secret 时应返回错误")
	}
}

func TestValidate_Driver(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: 8080},
		Auth:     AuthConfig{JWTSecret: "0123456789abcdef"},
		Database: DatabaseConfig{Driver: "mysql"},
		Schedule: ScheduleConfig{LockTimeout: time.Second, Timezone: "UTC"},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("不支持的 driver 应校验失败")
	}

	cfg.Database.Driver = "postgres"
	if err := cfg.Validate(); err != nil {
		t.Errorf("合法配置不应报错: %v", err)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}
	return path
}
