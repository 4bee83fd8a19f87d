package core

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// Config represents a repository configuration file
type Config struct {
	Sections map[string]map[string][]string
	path     string
}

// NewConfig creates a new Config
func NewConfig() *Config {
	return &Config{
		Sections: make(map[string]map[string][]string),
	}
}

// LoadRepoConfig loads the local configuration of a repository. A
// missing config file yields an empty configuration, not an error.
func LoadRepoConfig(repo *Repository) (*Config, error) {
	cfg := NewConfig()
	cfg.path = repo.ConfigFile
	return loadConfigFile(cfg, repo.ConfigFile)
}

// loadConfigFile loads a configuration file
func loadConfigFile(cfg *Config, path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, FSError(fmt.Sprintf("failed to stat config file %s", path), err)
	}
	if info.IsDir() {
		return cfg, nil // Treat directory as non-existent config
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, FSError(fmt.Sprintf("failed to open config file %s", path), err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var currentSection string
	sectionRe := regexp.MustCompile(`^\s*\[([^\]]*)\]\s*$`)
	keyValueRe := regexp.MustCompile(`^\s*([^=]+)\s*=\s*(.*)\s*$`)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if sectionMatch := sectionRe.FindStringSubmatch(line); sectionMatch != nil {
			currentSection = sectionMatch[1]
			if _, exists := cfg.Sections[currentSection]; !exists {
				cfg.Sections[currentSection] = make(map[string][]string)
			}
			continue
		}
		if kvMatch := keyValueRe.FindStringSubmatch(line); kvMatch != nil && currentSection != "" {
			key := strings.TrimSpace(kvMatch[1])
			value := strings.TrimSpace(kvMatch[2])
			cfg.Sections[currentSection][key] = append(cfg.Sections[currentSection][key], value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, FSError(fmt.Sprintf("failed to read config file %s", path), err)
	}
	return cfg, nil
}

// Get returns the first value for a key in a section, or "" if unset.
func (c *Config) Get(section, key string) string {
	if values, exists := c.Sections[section][key]; exists && len(values) > 0 {
		return values[0]
	}
	return ""
}

// Set replaces the values of a key in a section.
func (c *Config) Set(section, key, value string) {
	if _, exists := c.Sections[section]; !exists {
		c.Sections[section] = make(map[string][]string)
	}
	c.Sections[section][key] = []string{value}
}

// Save writes the configuration back to the file it was loaded from.
func (c *Config) Save() error {
	if c.path == "" {
		return ConfigError("configuration has no backing file", nil)
	}

	var b strings.Builder
	sections := make([]string, 0, len(c.Sections))
	for section := range c.Sections {
		sections = append(sections, section)
	}
	sort.Strings(sections)

	for _, section := range sections {
		fmt.Fprintf(&b, "[%s]\n", section)
		keys := make([]string, 0, len(c.Sections[section]))
		for key := range c.Sections[section] {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			for _, value := range c.Sections[section][key] {
				fmt.Fprintf(&b, "\t%s = %s\n", key, value)
			}
		}
	}

	if err := WriteFileContent(c.path, []byte(b.String()), 0644); err != nil {
		return ConfigError(fmt.Sprintf("failed to save config file %s", c.path), err)
	}
	return nil
}

// GetConfigValue gets a configuration value by dotted key, e.g.
// "core.bare".
func GetConfigValue(repo *Repository, key string) (string, error) {
	section, name, err := splitConfigKey(key)
	if err != nil {
		return "", err
	}

	cfg, err := LoadRepoConfig(repo)
	if err != nil {
		return "", err
	}
	return cfg.Get(section, name), nil
}

// SetConfigValue sets a configuration value by dotted key and writes
// the config file.
func SetConfigValue(repo *Repository, key, value string) error {
	section, name, err := splitConfigKey(key)
	if err != nil {
		return err
	}

	cfg, err := LoadRepoConfig(repo)
	if err != nil {
		return err
	}
	cfg.Set(section, name, value)
	return cfg.Save()
}

// splitConfigKey splits "section.name" (the name is the last segment).
func splitConfigKey(key string) (section, name string, err error) {
	parts := strings.Split(key, ".")
	if len(parts) < 2 {
		return "", "", ConfigError(fmt.Sprintf("invalid config key: %s", key), nil)
	}
	section = strings.Join(parts[:len(parts)-1], ".")
	name = parts[len(parts)-1]
	return section, name, nil
}
