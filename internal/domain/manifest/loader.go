package manifest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Loader loads manifests from the filesystem. The codec is chosen by file
// extension: .toml is decoded as TOML, everything else as YAML.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses the manifest at the given path.
// Loading performs no validation beyond decoding; call Validator.Validate
// on the result before compiling steps.
func (l *Loader) Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewManifestNotFoundError(path)
		}
		return nil, err
	}

	var m *Manifest
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		m, err = ParseManifestTOML(data)
		if err != nil {
			return nil, NewTOMLParseError(path, err)
		}
	} else {
		m, err = ParseManifest(data)
		if err != nil {
			if strings.Contains(err.Error(), "yaml:") || strings.Contains(err.Error(), "unmarshal") {
				return nil, NewYAMLParseError(path, err)
			}
			return nil, NewUserError(ErrCodeManifestParse, "failed to parse manifest").
				WithContext(path).
				WithUnderlying(err)
		}
	}

	m.SetSource(path)
	return m, nil
}

// ParseManifestTOML parses a Manifest from TOML bytes.
func ParseManifestTOML(data []byte) (*Manifest, error) {
	var raw manifestRaw
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return fromRaw(raw)
}
