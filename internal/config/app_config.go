// Package config loads the optional application configuration that supplies
// scan defaults. The scanner core never reads configuration itself; this
// package produces a well-formed ScanOptions starting point for the CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mvoronov/treescan/internal/types"
	"github.com/mvoronov/treescan/internal/utils"
)

// ConfigFileName is the configuration file looked up in the home and working
// directories.
const ConfigFileName = ".treescan.yaml"

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds the configurable defaults of the tool.
type ApplicationConfiguration struct {
	Scan ScanConfiguration `mapstructure:"scan"`
}

// ScanConfiguration mirrors the knobs of types.ScanOptions plus CLI-side
// toggles. Pointer fields distinguish "unset" from explicit values during
// merging.
type ScanConfiguration struct {
	MaxFileSizeBytes *int64             `mapstructure:"max_file_size_bytes"`
	Exclude          []string           `mapstructure:"exclude"`
	UseGitignore     *bool              `mapstructure:"use_gitignore"`
	UseIgnoreFile    *bool              `mapstructure:"use_ignore"`
	Dependencies     *bool              `mapstructure:"dependencies"`
	ReadConcurrency  *int               `mapstructure:"read_concurrency"`
	Tokens           TokenConfiguration `mapstructure:"tokens"`
	Clipboard        *bool              `mapstructure:"clipboard"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// LoadApplicationConfiguration loads configuration from the home directory
// and the working directory, merging global values under local ones. Missing
// files are not an error.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, homeError := os.UserHomeDir(); homeError == nil && homeDirectory != "" {
		globalConfiguration, loadError := loadConfigurationFromPath(filepath.Join(homeDirectory, ConfigFileName))
		if loadError != nil {
			return ApplicationConfiguration{}, loadError
		}
		merged = merged.Merge(globalConfiguration)
	}

	localPath := options.ExplicitFilePath
	if localPath == "" {
		localPath = filepath.Join(workingDirectory, ConfigFileName)
	} else if !filepath.IsAbs(localPath) {
		localPath = filepath.Join(workingDirectory, localPath)
	}
	localConfiguration, loadError := loadConfigurationFromPath(localPath)
	if loadError != nil {
		return ApplicationConfiguration{}, loadError
	}
	merged = merged.Merge(localConfiguration)

	if len(merged.Scan.Exclude) > 0 {
		merged.Scan.Exclude = utils.DeduplicatePatterns(merged.Scan.Exclude)
	}
	return merged, nil
}

// loadConfigurationFromPath reads and decodes one configuration file.
func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	pathInfo, statError := os.Stat(path)
	if statError != nil {
		if os.IsNotExist(statError) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statError)
	}
	if pathInfo.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readError := reader.ReadInConfig(); readError != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readError)
	}
	var configuration ApplicationConfiguration
	if decodeError := reader.Unmarshal(&configuration); decodeError != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeError)
	}
	return configuration, nil
}

// Merge overlays override onto the receiver, returning the combined
// configuration. Unset override fields keep the receiver's values.
func (configuration ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := configuration
	result.Scan = result.Scan.merge(override.Scan)
	return result
}

func (configuration ScanConfiguration) merge(override ScanConfiguration) ScanConfiguration {
	result := configuration
	if override.MaxFileSizeBytes != nil {
		result.MaxFileSizeBytes = cloneInt64(override.MaxFileSizeBytes)
	}
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, utils.DeduplicatePatterns(override.Exclude)...)
	}
	if override.UseGitignore != nil {
		result.UseGitignore = cloneBool(override.UseGitignore)
	}
	if override.UseIgnoreFile != nil {
		result.UseIgnoreFile = cloneBool(override.UseIgnoreFile)
	}
	if override.Dependencies != nil {
		result.Dependencies = cloneBool(override.Dependencies)
	}
	if override.ReadConcurrency != nil {
		result.ReadConcurrency = cloneInt(override.ReadConcurrency)
	}
	if override.Tokens.Enabled != nil {
		result.Tokens.Enabled = cloneBool(override.Tokens.Enabled)
	}
	if override.Tokens.Model != "" {
		result.Tokens.Model = override.Tokens.Model
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	return result
}

// ApplyTo overlays the configured defaults onto a ScanOptions value.
func (configuration ScanConfiguration) ApplyTo(options *types.ScanOptions) {
	if configuration.MaxFileSizeBytes != nil {
		options.MaxFileSizeBytes = *configuration.MaxFileSizeBytes
	}
	if len(configuration.Exclude) > 0 {
		options.ExcludePatterns = append([]string{}, configuration.Exclude...)
	}
	if configuration.UseGitignore != nil {
		options.UseGitignore = *configuration.UseGitignore
	}
	if configuration.UseIgnoreFile != nil {
		options.UseIgnoreFile = *configuration.UseIgnoreFile
	}
	if configuration.Dependencies != nil {
		options.IncludeDependencies = *configuration.Dependencies
	}
	if configuration.ReadConcurrency != nil {
		options.ReadConcurrency = *configuration.ReadConcurrency
	}
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt64(value *int64) *int64 {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
