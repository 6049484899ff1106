package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/healthdash/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.APIBaseURL, convey.ShouldEqual, "http://localhost:5000")
			convey.So(cfg.HealthAPIAddr, convey.ShouldEqual, ":5000")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.DBMaxConns, convey.ShouldEqual, 10)
			convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"*"})
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		convey.Reset(clearConfigEnvVars)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.APIBaseURL, convey.ShouldEqual, "http://localhost:5000")
				convey.So(cfg.DatabaseDSN, convey.ShouldEqual, "")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("HEALTHDASH_ADDR", ":8080")
			_ = os.Setenv("HEALTHDASH_API_BASE_URL", "https://health.example.com/v1")
			_ = os.Setenv("HEALTHDASH_LOG_FORMAT", "json")
			_ = os.Setenv("HEALTHDASH_DB_MAX_CONNS", "4")
			_ = os.Setenv("HEALTHDASH_CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.APIBaseURL, convey.ShouldEqual, "https://health.example.com/v1")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.DBMaxConns, convey.ShouldEqual, 4)
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"http://a.test", "http://b.test"})
			})
		})

		convey.Convey("When the origin list has padding and empty items", func() {
			_ = os.Setenv("HEALTHDASH_CORS_ALLOWED_ORIGINS", " http://a.test , ,http://b.test,")

			cfg, err := config.Load(ctx)

			convey.Convey("Then each origin is a separate trimmed entry", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"http://a.test", "http://b.test"})
			})
		})

		convey.Convey("When env origins override a YAML list", func() {
			tmpFile := createTempFile(t, "cfg.yaml", "cors_allowed_origins:\n  - \"http://file.test\"\n")
			_ = os.Setenv("HEALTHDASH_CONFIG", tmpFile)
			_ = os.Setenv("HEALTHDASH_CORS_ALLOWED_ORIGINS", "http://env.test,http://other.test")

			cfg, err := config.Load(ctx)

			convey.Convey("Then the env list replaces the file list", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"http://env.test", "http://other.test"})
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempFile(t, "cfg.yaml", `
addr: ":9090"
api_base_url: "http://upstream:5000"
catalog_file: "/etc/healthdash/projects.yaml"
cors_allowed_origins:
  - "http://localhost:3000"
`)
			_ = os.Setenv("HEALTHDASH_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.APIBaseURL, convey.ShouldEqual, "http://upstream:5000")
				convey.So(cfg.CatalogFile, convey.ShouldEqual, "/etc/healthdash/projects.yaml")
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"http://localhost:3000"})
				convey.So(cfg.HealthAPIAddr, convey.ShouldEqual, ":5000") // default kept
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempFile(t, "cfg.yaml", "addr: \":9090\"\nhealth_api_addr: \":6000\"\n")
			_ = os.Setenv("HEALTHDASH_CONFIG", tmpFile)
			_ = os.Setenv("HEALTHDASH_ADDR", ":8080")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.HealthAPIAddr, convey.ShouldEqual, ":6000")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempFile(t, "bad.yaml", `invalid: yaml: content: [`)
			_ = os.Setenv("HEALTHDASH_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("HEALTHDASH_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("HEALTHDASH_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the base URL is relative", func() {
			_ = os.Setenv("HEALTHDASH_API_BASE_URL", "/api")

			_, err := config.Load(ctx)

			convey.Convey("Then it should be rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "api_base_url")
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("HEALTHDASH_DB_MAX_CONNS", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a .env file is provided", func() {
			envFile := createTempFile(t, "test.env", "HEALTHDASH_API_BASE_URL=http://from-dotenv:5000\nHEALTHDASH_HEALTH_API_ADDR=:7000\n")
			_ = os.Setenv("HEALTHDASH_ENV_FILE", envFile)
			_ = os.Setenv("HEALTHDASH_HEALTH_API_ADDR", ":7500")

			cfg, err := config.Load(ctx)

			convey.Convey("Then its values are merged under the real environment", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.APIBaseURL, convey.ShouldEqual, "http://from-dotenv:5000")
				convey.So(cfg.HealthAPIAddr, convey.ShouldEqual, ":7500")
			})
		})

		convey.Convey("When an explicit .env file is missing", func() {
			_ = os.Setenv("HEALTHDASH_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

			_, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"HEALTHDASH_CONFIG",
		"HEALTHDASH_ENV_FILE",
		"HEALTHDASH_ADDR",
		"HEALTHDASH_API_BASE_URL",
		"HEALTHDASH_HEALTH_API_ADDR",
		"HEALTHDASH_LOG_FORMAT",
		"HEALTHDASH_DB_MAX_CONNS",
		"HEALTHDASH_CORS_ALLOWED_ORIGINS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
