// Package cli provides the treescan command line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mvoronov/treescan/internal/config"
	"github.com/mvoronov/treescan/internal/deps"
	"github.com/mvoronov/treescan/internal/ignore"
	"github.com/mvoronov/treescan/internal/scan"
	"github.com/mvoronov/treescan/internal/services/clipboard"
	"github.com/mvoronov/treescan/internal/tokenizer"
	"github.com/mvoronov/treescan/internal/types"
	"github.com/mvoronov/treescan/internal/utils"
	"github.com/mvoronov/treescan/internal/workspace"
)

const (
	rootUse              = "treescan"
	rootShortDescription = "treescan command line interface"
	rootLongDescription  = `treescan turns a project's file tree into a structured, filtered representation.
It honors .gitignore and .ignore rules with negation support, skips binary and
oversized files, and emits the resulting tree or totals as JSON.`

	scanUse                  = "scan [path]"
	scanShortDescription     = "scan a path into a filtered tree"
	estimateUse              = "estimate [path]"
	estimateShortDescription = "estimate file count and size without reading content"
	filesUse                 = "files <path>..."
	filesShortDescription    = "materialize an explicit list of files grouped by parent directory"

	exclusionFlagName        = "e"
	noGitignoreFlagName      = "no-gitignore"
	noIgnoreFlagName         = "no-ignore"
	maxFileSizeFlagName      = "max-file-size"
	dependenciesFlagName     = "deps"
	concurrencyFlagName      = "concurrency"
	tokensFlagName           = "tokens"
	modelFlagName            = "model"
	copyFlagName             = "copy"
	configFlagName           = "config"
	rootFlagName             = "root"

	exclusionFlagDescription    = "exclude path pattern"
	noGitignoreFlagDescription  = "do not use .gitignore"
	noIgnoreFlagDescription     = "do not use .ignore"
	maxFileSizeFlagDescription  = "maximum file size in bytes (0 disables the limit)"
	dependenciesFlagDescription = "scan file imports"
	concurrencyFlagDescription  = "bounded parallel file reads per directory"
	tokensFlagDescription       = "include token counts"
	modelFlagDescription        = "tokenizer model to use for token counting"
	copyFlagDescription         = "copy the JSON output to the clipboard"
	configFlagDescription       = "path to a configuration file"
	rootFlagDescription         = "register a workspace root (repeatable)"

	defaultPath             = "."
	defaultMaxFileSizeBytes = int64(1 << 20)
	defaultTokenizerModel   = "gpt-4o"

	workingDirectoryErrorFormat = "unable to determine working directory: %w"
)

// scanResult is the JSON payload emitted by the scan command.
type scanResult struct {
	Tree           *types.DirectoryInfo `json:"tree"`
	TotalFiles     int                  `json:"totalFiles"`
	TotalSize      string               `json:"totalSize"`
	TotalSizeBytes int64                `json:"totalSizeBytes"`
	TotalTokens    int                  `json:"totalTokens,omitempty"`
	Model          string               `json:"model,omitempty"`
}

// estimateResult is the JSON payload emitted by the estimate command.
type estimateResult struct {
	TotalFiles     int    `json:"totalFiles"`
	TotalSize      string `json:"totalSize"`
	TotalSizeBytes int64  `json:"totalSizeBytes"`
}

// Execute runs the treescan application with the provided logger.
func Execute(logger *zap.Logger) error {
	rootCommand := NewRootCommand(utils.LoggerOrNop(logger))
	return rootCommand.Execute()
}

// NewRootCommand builds the root cobra command and its subcommands.
func NewRootCommand(logger *zap.Logger) *cobra.Command {
	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}
	rootCommand.AddCommand(
		createScanCommand(logger),
		createEstimateCommand(logger),
		createFilesCommand(logger),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// scanFlags stores the flag values shared by the three subcommands.
type scanFlags struct {
	exclusionPatterns []string
	disableGitignore  bool
	disableIgnoreFile bool
	maxFileSizeBytes  int64
	scanDependencies  bool
	readConcurrency   int
	tokensEnabled     bool
	tokenModel        string
	copyToClipboard   bool
	configFilePath    string
	workspaceRoots    []string
}

// addScanFlags registers the shared flags on a command.
func addScanFlags(command *cobra.Command, flags *scanFlags) {
	command.Flags().StringArrayVarP(&flags.exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	command.Flags().BoolVar(&flags.disableGitignore, noGitignoreFlagName, false, noGitignoreFlagDescription)
	command.Flags().BoolVar(&flags.disableIgnoreFile, noIgnoreFlagName, false, noIgnoreFlagDescription)
	command.Flags().Int64Var(&flags.maxFileSizeBytes, maxFileSizeFlagName, defaultMaxFileSizeBytes, maxFileSizeFlagDescription)
	command.Flags().BoolVar(&flags.scanDependencies, dependenciesFlagName, false, dependenciesFlagDescription)
	command.Flags().IntVar(&flags.readConcurrency, concurrencyFlagName, 1, concurrencyFlagDescription)
	command.Flags().BoolVar(&flags.copyToClipboard, copyFlagName, false, copyFlagDescription)
	command.Flags().StringVar(&flags.configFilePath, configFlagName, "", configFlagDescription)
	command.Flags().StringArrayVar(&flags.workspaceRoots, rootFlagName, nil, rootFlagDescription)
}

// createScanCommand returns the scan subcommand.
func createScanCommand(logger *zap.Logger) *cobra.Command {
	var flags scanFlags
	flags.tokenModel = defaultTokenizerModel

	scanCommand := &cobra.Command{
		Use:   scanUse,
		Short: scanShortDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			targetPath := defaultPath
			if len(arguments) > 0 {
				targetPath = arguments[0]
			}
			return runScan(command, targetPath, flags, logger)
		},
	}
	addScanFlags(scanCommand, &flags)
	scanCommand.Flags().BoolVar(&flags.tokensEnabled, tokensFlagName, false, tokensFlagDescription)
	scanCommand.Flags().StringVar(&flags.tokenModel, modelFlagName, defaultTokenizerModel, modelFlagDescription)
	return scanCommand
}

// createEstimateCommand returns the estimate subcommand.
func createEstimateCommand(logger *zap.Logger) *cobra.Command {
	var flags scanFlags

	estimateCommand := &cobra.Command{
		Use:   estimateUse,
		Short: estimateShortDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			targetPath := defaultPath
			if len(arguments) > 0 {
				targetPath = arguments[0]
			}
			return runEstimate(command, targetPath, flags, logger)
		},
	}
	addScanFlags(estimateCommand, &flags)
	return estimateCommand
}

// createFilesCommand returns the files subcommand.
func createFilesCommand(logger *zap.Logger) *cobra.Command {
	var flags scanFlags

	filesCommand := &cobra.Command{
		Use:   filesUse,
		Short: filesShortDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return runFiles(command, arguments, flags, logger)
		},
	}
	addScanFlags(filesCommand, &flags)
	return filesCommand
}

// buildScanOptions layers built-in defaults, configuration file values, and
// explicitly set flags into the ScanOptions handed to the core.
func buildScanOptions(command *cobra.Command, flags scanFlags, workingDirectory string) (types.ScanOptions, config.ApplicationConfiguration, error) {
	applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: flags.configFilePath,
	})
	if configurationError != nil {
		return types.ScanOptions{}, config.ApplicationConfiguration{}, configurationError
	}

	options := types.ScanOptions{
		MaxFileSizeBytes: defaultMaxFileSizeBytes,
		UseGitignore:     true,
		UseIgnoreFile:    true,
		ReadConcurrency:  1,
	}
	applicationConfiguration.Scan.ApplyTo(&options)

	commandFlags := command.Flags()
	if commandFlags.Changed(maxFileSizeFlagName) {
		options.MaxFileSizeBytes = flags.maxFileSizeBytes
	}
	if len(flags.exclusionPatterns) > 0 {
		options.ExcludePatterns = append(options.ExcludePatterns, flags.exclusionPatterns...)
	}
	if flags.disableGitignore {
		options.UseGitignore = false
	}
	if flags.disableIgnoreFile {
		options.UseIgnoreFile = false
	}
	if commandFlags.Changed(dependenciesFlagName) {
		options.IncludeDependencies = flags.scanDependencies
	}
	if commandFlags.Changed(concurrencyFlagName) {
		options.ReadConcurrency = flags.readConcurrency
	}

	return options, applicationConfiguration, nil
}

// buildScanner assembles the scanner and its collaborators for one
// invocation.
func buildScanner(workspaceRoots []string, options types.ScanOptions, workingDirectory string, logger *zap.Logger) *scan.Scanner {
	resolver := workspace.NewResolver(workingDirectory, workspaceRoots...)

	var dependencyScanner scan.DependencyScanner
	if options.IncludeDependencies {
		dependencyRoot := workingDirectory
		if len(workspaceRoots) > 0 {
			dependencyRoot = workspaceRoots[len(workspaceRoots)-1]
		}
		dependencyScanner = deps.NewRegistry(dependencyRoot, logger)
	}

	return scan.NewScanner(resolver, ignore.NewStore(logger), dependencyScanner, logger)
}

// scanRoots combines the explicitly registered roots with the root implied by
// the scan target.
func scanRoots(targetPath string, flags scanFlags) []string {
	workspaceRoots := append([]string{}, flags.workspaceRoots...)
	if targetRoot := resolveTargetRoot(targetPath); targetRoot != "" {
		workspaceRoots = append(workspaceRoots, targetRoot)
	}
	return workspaceRoots
}

// fileListRoots determines the workspace roots for explicitly listed files.
// Without --root flags each locator's parent directory becomes an implicit
// root, so relative paths stay short and ignore files next to the listed
// files apply.
func fileListRoots(fileLocators []string, flags scanFlags) []string {
	if len(flags.workspaceRoots) > 0 {
		return append([]string{}, flags.workspaceRoots...)
	}
	var workspaceRoots []string
	for _, locator := range fileLocators {
		if parentRoot := resolveTargetRoot(locator); parentRoot != "" {
			workspaceRoots = append(workspaceRoots, parentRoot)
		}
	}
	return workspaceRoots
}

// resolveTargetRoot maps a scan target to the workspace root it implies: the
// target itself for a directory, its parent for a file, nothing when the
// target cannot be inspected.
func resolveTargetRoot(targetPath string) string {
	if targetPath == "" {
		return ""
	}
	absoluteTarget, absoluteError := filepath.Abs(targetPath)
	if absoluteError != nil {
		return ""
	}
	targetInfo, statError := os.Stat(absoluteTarget)
	if statError != nil {
		return ""
	}
	if targetInfo.IsDir() {
		return absoluteTarget
	}
	return filepath.Dir(absoluteTarget)
}

// runScan executes the scan subcommand.
func runScan(command *cobra.Command, targetPath string, flags scanFlags, logger *zap.Logger) error {
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}

	options, applicationConfiguration, optionsError := buildScanOptions(command, flags, workingDirectory)
	if optionsError != nil {
		return optionsError
	}

	scanner := buildScanner(scanRoots(targetPath, flags), options, workingDirectory, logger)
	directoryTree, scanError := scanner.Scan(targetPath, options)
	if scanError != nil {
		return scanError
	}

	result := scanResult{Tree: directoryTree}
	result.TotalFiles, result.TotalSizeBytes = treeTotals(directoryTree)
	result.TotalSize = utils.FormatFileSize(result.TotalSizeBytes)

	if tokensRequested(command, flags, applicationConfiguration) {
		tokenModel := flags.tokenModel
		if !command.Flags().Changed(modelFlagName) && applicationConfiguration.Scan.Tokens.Model != "" {
			tokenModel = applicationConfiguration.Scan.Tokens.Model
		}
		tokenCounter, resolvedModel, counterError := tokenizer.NewCounter(tokenizer.Config{Model: tokenModel})
		if counterError != nil {
			return counterError
		}
		totalTokens, countError := tokenizer.CountTree(tokenCounter, directoryTree)
		if countError != nil {
			return countError
		}
		result.TotalTokens = totalTokens
		result.Model = resolvedModel
	}

	return emitJSON(command, result, copyRequested(flags, applicationConfiguration), logger)
}

// runEstimate executes the estimate subcommand.
func runEstimate(command *cobra.Command, targetPath string, flags scanFlags, logger *zap.Logger) error {
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}

	options, applicationConfiguration, optionsError := buildScanOptions(command, flags, workingDirectory)
	if optionsError != nil {
		return optionsError
	}

	scanner := buildScanner(scanRoots(targetPath, flags), options, workingDirectory, logger)
	totals, estimateError := scanner.EstimateSize(targetPath, options)
	if estimateError != nil {
		return estimateError
	}

	result := estimateResult{
		TotalFiles:     totals.TotalFiles,
		TotalSize:      utils.FormatFileSize(totals.TotalSizeBytes),
		TotalSizeBytes: totals.TotalSizeBytes,
	}
	return emitJSON(command, result, copyRequested(flags, applicationConfiguration), logger)
}

// runFiles executes the files subcommand.
func runFiles(command *cobra.Command, fileLocators []string, flags scanFlags, logger *zap.Logger) error {
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}

	options, applicationConfiguration, optionsError := buildScanOptions(command, flags, workingDirectory)
	if optionsError != nil {
		return optionsError
	}

	scanner := buildScanner(fileListRoots(fileLocators, flags), options, workingDirectory, logger)
	directoryNodes := scanner.ProcessFiles(fileLocators, options)
	return emitJSON(command, directoryNodes, copyRequested(flags, applicationConfiguration), logger)
}

// treeTotals walks a scanned tree accumulating file count and size.
func treeTotals(node *types.DirectoryInfo) (int, int64) {
	if node == nil {
		return 0, 0
	}
	totalFiles := len(node.Files)
	var totalBytes int64
	for _, fileInfo := range node.Files {
		totalBytes += fileInfo.SizeBytes
	}
	for _, childNode := range node.Directories {
		childFiles, childBytes := treeTotals(childNode)
		totalFiles += childFiles
		totalBytes += childBytes
	}
	return totalFiles, totalBytes
}

// tokensRequested reports whether token counting applies to this invocation.
func tokensRequested(command *cobra.Command, flags scanFlags, applicationConfiguration config.ApplicationConfiguration) bool {
	if command.Flags().Changed(tokensFlagName) {
		return flags.tokensEnabled
	}
	if applicationConfiguration.Scan.Tokens.Enabled != nil {
		return *applicationConfiguration.Scan.Tokens.Enabled
	}
	return false
}

// copyRequested reports whether the output should also reach the clipboard.
func copyRequested(flags scanFlags, applicationConfiguration config.ApplicationConfiguration) bool {
	if flags.copyToClipboard {
		return true
	}
	if applicationConfiguration.Scan.Clipboard != nil {
		return *applicationConfiguration.Scan.Clipboard
	}
	return false
}

// emitJSON renders the payload as indented JSON on the command's stdout and
// optionally copies it to the system clipboard. Clipboard failures degrade to
// a warning.
func emitJSON(command *cobra.Command, payload any, copyToClipboard bool, logger *zap.Logger) error {
	encoded, marshalError := json.MarshalIndent(payload, "", "  ")
	if marshalError != nil {
		return fmt.Errorf("encoding output: %w", marshalError)
	}
	fmt.Fprintln(command.OutOrStdout(), string(encoded))

	if copyToClipboard {
		if copyError := clipboard.NewService().Copy(string(encoded)); copyError != nil {
			utils.LoggerOrNop(logger).Warn("unable to copy output to clipboard", zap.Error(copyError))
		}
	}
	return nil
}
