package girder

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// builderSettings is the file-loadable subset of the builder
// configuration. Anything programmatic (modules, scanners, actions) stays
// in code; the file only carries deployment-flavored switches.
type builderSettings struct {
	Stage           string   `yaml:"stage"`
	BasePackages    []string `yaml:"base_packages"`
	IgnoreKeys      []string `yaml:"ignore_keys"`
	DisableAutoBind bool     `yaml:"disable_auto_bind"`
}

// WithSettingsFile loads builder settings from a YAML file. Apply it
// before other options so explicit options win over file values.
func WithSettingsFile(path string) Option {
	return func(b *Builder) {
		data, err := os.ReadFile(path)
		if err != nil {
			b.err = errSettingsInvalid(path, err)
			return
		}
		applySettings(b, data)
	}
}

// WithSettings loads builder settings from YAML bytes.
func WithSettings(data []byte) Option {
	return func(b *Builder) {
		applySettings(b, data)
	}
}

func applySettings(b *Builder, data []byte) {
	var s builderSettings
	if err := yaml.Unmarshal(data, &s); err != nil {
		b.err = errSettingsInvalid("parse", err)
		return
	}

	switch s.Stage {
	case "":
	case "development":
		b.SetStage(StageDevelopment)
	case "production":
		b.SetStage(StageProduction)
	default:
		b.err = errSettingsInvalid(fmt.Sprintf("unknown stage %q", s.Stage), nil)
		return
	}

	b.AddBasePackages(s.BasePackages...)
	b.IgnoreKeys(s.IgnoreKeys...)
	if s.DisableAutoBind {
		b.SetDisableAutoBind(true)
	}
}
