package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func (c *Config) applyEnv() error {
	if value, ok := lookupEnv("API_URL"); ok {
		c.API.URL = value
	}
	if value, ok := lookupEnv("EMAIL"); ok {
		c.API.Email = value
	} else if value, ok := lookupEnv("USERNAME"); ok && strings.Contains(value, "@") {
		// USERNAME is also the Windows login name; only an address counts.
		c.API.Email = value
	}
	if value, ok := lookupEnv("PASSWORD"); ok {
		c.API.Password = value
	}

	if value, ok := lookupEnv("CSV_INS_WITH_CHAPTER"); ok {
		c.Merge.Inputs = SplitList(value)
	} else if value, ok := lookupEnv("CSV_INS"); ok {
		// Sources listed here are already in the normalized layout.
		c.Merge.Inputs = SplitList(value)
		c.Merge.PassthroughAll = true
	}
	if value, ok := lookupEnv("CSV_UPANISHADS"); ok {
		c.Merge.Output = value
		c.Publish.CSVPath = value
	} else {
		if value, ok := lookupEnv("CSV_OUT"); ok {
			c.Merge.Output = value
		}
		if value, ok := lookupEnv("CSV_PATH"); ok {
			c.Publish.CSVPath = value
		}
	}

	if value, ok := lookupEnv("UPANISHADS"); ok {
		projects, err := ParseProjects(value)
		if err != nil {
			return fmt.Errorf("UPANISHADS: %w", err)
		}
		c.Publish.Projects = projects
	}
	if value, ok := lookupEnv("UPANISHAD_NAME"); ok {
		c.Publish.DefaultUpanishad = value
		description, _ := lookupEnv("UPANISHAD_DESCRIPTION")
		c.Publish.Projects = appendProject(c.Publish.Projects, Project{Name: value, Description: description})
	}
	if value, ok := lookupEnv("CHAPTER"); ok {
		chapter, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("CHAPTER: expected integer, got %q", value)
		}
		c.Publish.DefaultChapter = chapter
	}

	if value, ok := lookupEnv("SUTRASYNC_AUDIO_DIR"); ok {
		c.Paths.AudioDir = value
	}
	if value, ok := lookupEnv("SUTRASYNC_LOG_LEVEL"); ok {
		c.Logging.Level = value
	}
	return nil
}

// lookupEnv treats blank variables as unset.
func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

// SplitList splits a comma separated list, dropping blank entries.
func SplitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// ParseProjects parses "name/description" pairs separated by commas. The
// description may itself contain slashes.
func ParseProjects(value string) ([]Project, error) {
	var projects []Project
	for _, item := range SplitList(value) {
		name, description, ok := strings.Cut(item, "/")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("malformed project %q, expected name/description", item)
		}
		projects = appendProject(projects, Project{Name: name, Description: strings.TrimSpace(description)})
	}
	return projects, nil
}

func appendProject(projects []Project, project Project) []Project {
	for i, existing := range projects {
		if existing.Name == project.Name {
			if projects[i].Description == "" {
				projects[i].Description = project.Description
			}
			return projects
		}
	}
	return append(projects, project)
}

func (c *Config) normalize() error {
	if err := c.normalizeAPI(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeMerge(); err != nil {
		return err
	}
	if err := c.normalizePublish(); err != nil {
		return err
	}
	if err := c.normalizeLedger(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeAPI() error {
	c.API.URL = strings.TrimRight(strings.TrimSpace(c.API.URL), "/")
	c.API.Email = strings.TrimSpace(c.API.Email)
	c.API.UserAgent = strings.TrimSpace(c.API.UserAgent)
	if c.API.UserAgent == "" {
		c.API.UserAgent = defaultUserAgent
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	// The audio tree is resolved relative to the working directory, as the
	// original tooling expected.
	c.Paths.AudioDir = strings.TrimSpace(c.Paths.AudioDir)
	if c.Paths.AudioDir == "" {
		c.Paths.AudioDir = defaultAudioDir
	}
	if strings.HasPrefix(c.Paths.AudioDir, "~") {
		if c.Paths.AudioDir, err = expandPath(c.Paths.AudioDir); err != nil {
			return fmt.Errorf("paths.audio_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeMerge() error {
	inputs := make([]string, 0, len(c.Merge.Inputs))
	for _, input := range c.Merge.Inputs {
		if input = strings.TrimSpace(input); input != "" {
			inputs = append(inputs, input)
		}
	}
	c.Merge.Inputs = inputs
	c.Merge.Output = strings.TrimSpace(c.Merge.Output)
	return nil
}

func (c *Config) normalizePublish() error {
	c.Publish.CSVPath = strings.TrimSpace(c.Publish.CSVPath)
	c.Publish.DefaultUpanishad = strings.TrimSpace(c.Publish.DefaultUpanishad)
	projects := make([]Project, 0, len(c.Publish.Projects))
	for _, project := range c.Publish.Projects {
		project.Name = strings.TrimSpace(project.Name)
		project.Description = strings.TrimSpace(project.Description)
		if project.Name == "" {
			continue
		}
		projects = appendProject(projects, project)
	}
	c.Publish.Projects = projects
	return nil
}

func (c *Config) normalizeLedger() error {
	var err error
	if strings.TrimSpace(c.Ledger.Path) == "" {
		c.Ledger.Path = filepath.Join(c.Paths.StateDir, defaultLedgerFileName)
	}
	if c.Ledger.Path, err = expandPath(c.Ledger.Path); err != nil {
		return fmt.Errorf("ledger.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.File = strings.TrimSpace(c.Logging.File)
}
