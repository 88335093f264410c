package cliconfig

import (
	"reflect"
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"WABRIDGE_HOME":            "/env/home",
				"WABRIDGE_SEND_TIMEOUT":    "15s",
				"WABRIDGE_MAX_UPLOAD_SIZE": "8MiB",
				"WABRIDGE_CORS_ORIGINS":    "https://a.example, https://b.example",
				"WABRIDGE_METRICS":         "1",
				"WABRIDGE_LOG_MAX_SIZE_MB": "25",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Home:          "/env/home",
				SendTimeout:   15 * time.Second,
				MaxUploadSize: "8MiB",
				CORSOrigins:   []string{"https://a.example", "https://b.example"},
				Metrics:       true,
				LogMaxSizeMB:  25,
			},
		},
		{
			name:     "PORT sets the listen port",
			envVars:  map[string]string{"PORT": "5000"},
			changed:  map[string]bool{},
			initial:  Config{Port: 4000},
			expected: Config{Port: 5000},
		},
		{
			name:     "WABRIDGE_PORT wins over PORT",
			envVars:  map[string]string{"PORT": "5000", "WABRIDGE_PORT": "6000"},
			changed:  map[string]bool{},
			initial:  Config{Port: 4000},
			expected: Config{Port: 6000},
		},
		{
			name:     "respects changed flags",
			envVars:  map[string]string{"PORT": "5000", "WABRIDGE_HOME": "/env/home"},
			changed:  map[string]bool{"port": true},
			initial:  Config{Port: 4100},
			expected: Config{Port: 4100, Home: "/env/home"},
		},
		{
			name:     "handles bool 'false' as false",
			envVars:  map[string]string{"WABRIDGE_METRICS": "false"},
			changed:  map[string]bool{},
			initial:  Config{Metrics: true},
			expected: Config{Metrics: false},
		},
		{
			name:    "returns error for invalid port",
			envVars: map[string]string{"PORT": "http"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid duration",
			envVars: map[string]string{"WABRIDGE_SEND_TIMEOUT": "forever"},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"PORT", "WABRIDGE_PORT", "WABRIDGE_HOME", "WABRIDGE_METRICS"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyEnvConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnvConfig() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(cfg, tt.expected) {
				t.Errorf("config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}
