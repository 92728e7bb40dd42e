package export

import (
	"testing"

	"edulite-cli/internal/config"
)

func TestNewTargetFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ExportTargetConfig
		wantErr bool
	}{
		{
			name: "memory target",
			cfg:  config.ExportTargetConfig{Type: "memory", Name: "test-memory"},
		},
		{
			name: "filesystem target",
			cfg:  config.ExportTargetConfig{Type: "filesystem", Name: "test-fs", FSRoot: t.TempDir()},
		},
		{
			name:    "filesystem target without root",
			cfg:     config.ExportTargetConfig{Type: "filesystem", Name: "test-fs"},
			wantErr: true,
		},
		{
			name:    "s3 target without bucket",
			cfg:     config.ExportTargetConfig{Type: "s3", Name: "test-s3"},
			wantErr: true,
		},
		{
			name:    "unknown target type",
			cfg:     config.ExportTargetConfig{Type: "carrier-pigeon", Name: "test"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTargetFromConfig(tt.cfg)

			if (err != nil) != tt.wantErr {
				t.Errorf("NewTargetFromConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				if got == nil {
					t.Fatal("NewTargetFromConfig() returned nil target")
				}
				if err := got.ValidateSetup(); err != nil {
					t.Errorf("ValidateSetup() error = %v", err)
				}
			}
		})
	}
}
