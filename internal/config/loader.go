package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound indicates none of the SearchPaths exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// configNames are tried in order within each search directory.
var configNames = []string{"mtgmcp.yaml", "mtgmcp.yml", "mtgmcp.json"}

// Load reads the configuration file, applies environment overrides and
// resolves the effective configuration. Without an explicit path a missing
// file is fine: the Azure variables alone are enough to start the host.
func Load(explicitPath string) (*Config, error) {
	raw, _, err := LoadRaw(explicitPath)
	switch {
	case err == nil:
	case explicitPath == "" && errors.Is(err, ErrConfigNotFound):
		raw = &RawConfig{}
	default:
		return nil, err
	}
	return Resolve(raw, os.LookupEnv)
}

// SearchPaths returns the candidate config files in lookup order: the
// working directory first, then $XDG_CONFIG_HOME/mtgmcp (or the platform
// equivalent).
func SearchPaths() []string {
	dirs := []string{""}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, "mtgmcp"))
	}
	paths := make([]string, 0, len(dirs)*len(configNames))
	for _, dir := range dirs {
		for _, name := range configNames {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths
}

// LoadRaw reads the config file at explicitPath, or the first existing
// entry of SearchPaths, and returns it with the path it came from.
func LoadRaw(explicitPath string) (*RawConfig, string, error) {
	path := explicitPath
	if path == "" {
		for _, candidate := range SearchPaths() {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				path = candidate
				break
			}
		}
		if path == "" {
			return nil, "", fmt.Errorf("%w; looked in %s", ErrConfigNotFound, strings.Join(SearchPaths(), ", "))
		}
	}

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", fmt.Errorf("config file %s does not exist", path)
	}
	if err != nil {
		return nil, "", fmt.Errorf("opening config file: %w", err)
	}
	defer file.Close()

	raw, err := decodeFile(file)
	if err != nil {
		return nil, "", fmt.Errorf("loading %s: %w", path, err)
	}
	return raw, path, nil
}

// decodeFile picks the format from the file name reported by Stat.
func decodeFile(file fs.File) (*RawConfig, error) {
	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return decode(data, info.Name())
}

// decode expands $VAR and ${VAR} references in data and unmarshals it as
// JSON or YAML by extension. Unknown extensions try YAML, then JSON. The
// prompts section is kept unexpanded since template variables such as $i
// share the same syntax.
func decode(data []byte, name string) (*RawConfig, error) {
	raw, err := unmarshal([]byte(os.ExpandEnv(string(data))), name)
	if err != nil {
		if strings.Contains(string(data), "$") {
			return nil, fmt.Errorf("%w (an expanded environment variable may contain characters that break the syntax)", err)
		}
		return nil, err
	}
	if verbatim, err := unmarshal(data, name); err == nil {
		raw.Prompts = verbatim.Prompts
	}
	return raw, nil
}

func unmarshal(data []byte, name string) (*RawConfig, error) {
	var raw RawConfig
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing %s as JSON: %w", name, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing %s as YAML: %w", name, err)
		}
	default:
		yamlErr := yaml.Unmarshal(data, &raw)
		if yamlErr == nil {
			return &raw, nil
		}
		raw = RawConfig{}
		if jsonErr := json.Unmarshal(data, &raw); jsonErr != nil {
			return nil, fmt.Errorf("parsing %s: not YAML (%v) nor JSON (%v)", name, yamlErr, jsonErr)
		}
	}
	return &raw, nil
}
