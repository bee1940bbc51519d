package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/jury/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func clearConfigEnvVars() {
	for _, key := range []string{
		"JURY_CONFIG",
		"JURY_ADDR",
		"JURY_LOG_LEVEL",
		"JURY_STORE_BACKEND",
		"JURY_REDIS_ADDR",
		"JURY_NAMESPACE",
		"JURY_SUBJECT_ID",
		"JURY_TWO_AXIS",
		"JURY_MAX_LEADERBOARD_LIMIT",
		"JURY_RESET_PARALLELISM",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.StoreBackend, convey.ShouldEqual, "memory")
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("JURY_ADDR", ":8080")
			_ = os.Setenv("JURY_STORE_BACKEND", "redis")
			_ = os.Setenv("JURY_REDIS_ADDR", "redis:6379")
			_ = os.Setenv("JURY_NAMESPACE", "hackathon-2026")
			_ = os.Setenv("JURY_SUBJECT_ID", "judge-7")
			_ = os.Setenv("JURY_MAX_LEADERBOARD_LIMIT", "25")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StoreBackend, convey.ShouldEqual, "redis")
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "redis:6379")
				convey.So(cfg.Namespace, convey.ShouldEqual, "hackathon-2026")
				convey.So(cfg.SubjectID, convey.ShouldEqual, "judge-7")
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 25)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
log_level: debug
two_axis: true
categories:
  - golden_banana
  - crowd_favorite
criteria:
  - id: behavior
    label: Behavior
    max_score: 10
  - id: work
    label: Work
    max_score: 10
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("JURY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.TwoAxis, convey.ShouldBeTrue)
				convey.So(cfg.Categories, convey.ShouldResemble, []string{"golden_banana", "crowd_favorite"})
				convey.So(cfg.CriteriaList().TotalMax(), convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(t, "addr: \":9090\"\nlog_level: debug\n")
			_ = os.Setenv("JURY_CONFIG", tmpFile)
			_ = os.Setenv("JURY_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env vars win over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("JURY_CONFIG", "/nonexistent/config.yaml")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading fails with a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a value fails validation", func() {
			_ = os.Setenv("JURY_STORE_BACKEND", "etcd")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading fails with an invalid config error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the rubric in the file is malformed", func() {
			yamlContent := `
criteria:
  - id: dup
    max_score: 10
  - id: dup
    max_score: 10
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("JURY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading fails with an invalid config error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
