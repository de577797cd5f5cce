package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("MEDIA_URL", "")

	cfg := Load()

	require.Equal(t, "mysql", cfg.DBDriver)
	require.Equal(t, "/media/", cfg.MediaURL)
	require.Equal(t, ":8080", cfg.ListenAddr)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("SITE_URL", "https://portal.example.edu/")

	cfg := Load()

	require.Equal(t, "postgres", cfg.DBDriver)
	require.Equal(t, "https://portal.example.edu/", cfg.SiteURL)
}
