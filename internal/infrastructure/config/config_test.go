package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "https://www.doctolib.de", cfg.BaseURL)
	assert.Equal(t, time.Second, cfg.Pause)
	assert.Equal(t, 4, cfg.AvailabilityLimit)
	assert.Equal(t, -1, cfg.PatientIndex)
	assert.Equal(t, DefaultRefMotiveIDs, cfg.RefMotiveIDs)
	assert.True(t, cfg.MotivePattern.MatchString("Erstimpfung (BioNTech-Pfizer)"))
	assert.False(t, cfg.MotivePattern.MatchString("Erstimpfung AstraZeneca"))
	require.Len(t, cfg.FallbackCenters["berlin"], 1)
}

func TestLoadEnvAndFlags(t *testing.T) {
	t.Setenv("DOCTOSHOTGUN_BASE_URL", "https://www.doctolib.fr/")
	t.Setenv("DOCTOSHOTGUN_PAUSE", "250ms")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.BoolP("debug", "d", false, "")
	fs.IntP("patient", "p", -1, "")
	require.NoError(t, fs.Parse([]string{"-d", "-p", "2"}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, "https://www.doctolib.fr", cfg.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Pause)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 2, cfg.PatientIndex)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad pattern", "DOCTOSHOTGUN_MOTIVE_PATTERN", "(Pfizer"},
		{"zero limit", "DOCTOSHOTGUN_AVAILABILITY_LIMIT", "0"},
		{"negative rate", "DOCTOSHOTGUN_RATE", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load(nil)
			assert.Error(t, err)
		})
	}
}
