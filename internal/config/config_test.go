package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("DB port = %d, want 5432", cfg.Database.Port)
	}
	if cfg.Blob.Dir != "uploads" {
		t.Errorf("Blob dir = %s, want uploads", cfg.Blob.Dir)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("MIGRATIONS", "1")

	cfg := Load()
	if cfg.Server.Port != "9999" {
		t.Errorf("Port = %s, want 9999", cfg.Server.Port)
	}
	if cfg.Database.Port != 5433 {
		t.Errorf("DB port = %d, want 5433", cfg.Database.Port)
	}
	if !cfg.App.Migrations {
		t.Error("Migrations should be enabled")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", DBName: "db", SSLMode: "disable"}
	want := "host=h port=5432 user=u password=p dbname=db sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
