package export

import (
	"fmt"

	"edulite-cli/internal/config"
)

// NewTargetFromConfig creates a Target implementation based on the export
// target config type.
func NewTargetFromConfig(cfg config.ExportTargetConfig) (Target, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryTarget(cfg.Name), nil
	case "s3":
		return NewS3Target(cfg)
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem target requires fs_root to be set")
		}
		return NewFileSystemTarget(cfg.Name, cfg.FSRoot)
	default:
		return nil, fmt.Errorf("unknown export target type: %s", cfg.Type)
	}
}
