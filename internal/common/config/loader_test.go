package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==================== Defaults ====================

func TestApplyDefaults_PolicyKnobs(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)

	assert.Equal(t, "Delhi", cfg.RTI.DefaultRegion)
	assert.Equal(t, 10, cfg.RTI.GeneralFee)
	assert.Equal(t, 30, cfg.RTI.ResponseDeadlineDays)
	assert.Equal(t, 5, cfg.RTI.ReminderLeadDays)
	assert.Equal(t, "RTI", cfg.RTI.RefNumberPrefix)
	assert.Equal(t, 10000, cfg.Gemini.TimeoutMS)
	assert.Equal(t, "configs/state_aliases.json", cfg.Directory.StateAliasesPath)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	var cfg Config
	cfg.RTI.GeneralFee = 50
	cfg.Gemini.TimeoutMS = 2500

	applyDefaults(&cfg)

	assert.Equal(t, 50, cfg.RTI.GeneralFee)
	assert.Equal(t, 2500, cfg.Gemini.TimeoutMS)
}

// ==================== Validation ====================

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *Config) {},
		},
		{
			name: "negative fee rejected",
			mutate: func(cfg *Config) {
				cfg.RTI.GeneralFee = -1
			},
			wantErr: true,
		},
		{
			name: "reminder lead at or past the deadline rejected",
			mutate: func(cfg *Config) {
				cfg.RTI.ReminderLeadDays = 30
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			applyDefaults(&cfg)
			tt.mutate(&cfg)

			err := validateConfig(&cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
