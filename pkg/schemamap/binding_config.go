package schemamap

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// bindingConfig is the YAML document shape for exported schema bindings.
type bindingConfig struct {
	Ontology bindingConfigHeader           `yaml:"ontology"`
	Entities map[string]bindingConfigEntry `yaml:"entities"`
}

type bindingConfigHeader struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type bindingConfigEntry struct {
	Source     string            `yaml:"source"`
	SourceType string            `yaml:"source_type"`
	Mappings   map[string]string `yaml:"mappings"`
}

// BindingConfigYAML serializes the mapper's stored bindings to a YAML
// configuration document, keyed by entity name under an ontology
// name/version header.
func (m *Mapper) BindingConfigYAML() ([]byte, error) {
	cfg := bindingConfig{
		Ontology: bindingConfigHeader{
			Name:    m.ontology.Name,
			Version: m.ontology.Version,
		},
		Entities: make(map[string]bindingConfigEntry, len(m.bindings)),
	}
	for entityName, binding := range m.bindings {
		cfg.Entities[entityName] = bindingConfigEntry{
			Source:     binding.PhysicalSource,
			SourceType: binding.SourceType,
			Mappings:   binding.PropertyMappings,
		}
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal binding config: %w", err)
	}
	return out, nil
}
