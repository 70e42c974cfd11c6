package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dyuri/lookcfg/internal/config"
	"github.com/dyuri/lookcfg/internal/dbpf"
	"github.com/dyuri/lookcfg/internal/model"
	"github.com/dyuri/lookcfg/internal/text"
	"github.com/dyuri/lookcfg/pkg/lookcfg"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var fs = afero.NewOsFs()

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lookcfg",
	Short: "Generate outfit config lines from Sims 4 styled looks",
	Long: `lookcfg reads StyledLook and SimInfo resources from Sims 4 .package
files, matches every styled look with the sim it was built from, and writes
one config line per gender, age group and outfit category the look is
tagged for.

Each line names the CAS parts of the sim's everyday outfit:

  O.<gender>.<age>,<category>,<bodyType>:0x<instance>.<bodyType>:0x<instance>...`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Debug logging")
}

// newLogger configures the standard logger from the verbose flag
func newLogger(verbose bool) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// generate command
var generateCmd = &cobra.Command{
	Use:   "generate [package...]",
	Short: "Append config lines for the styled looks of packages",
	Long: `Generate config lines for every styled look in the given packages.

Lines are appended to the output file, one batch per package. A new file
is created when the output does not exist yet. Packages given as arguments
replace the inputs of the config file.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringP("output", "o", config.DefaultOutput, "Output file")
	generateCmd.Flags().StringP("config", "c", "", "YAML config file")
	generateCmd.Flags().Bool("strict", false, "Fail on any resource error")
	generateCmd.Flags().Bool("stdout", false, "Also print generated lines")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	newLogger(cfg.Verbose)

	return lookcfg.Run(cfg)
}

// loadConfig reads the config file, if any, then applies flags that were
// set explicitly and the positional inputs
func loadConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	cfg := config.Default()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		if cfg, err = config.Load(fs, path); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output, _ = flags.GetString("output")
	}
	if flags.Changed("strict") {
		cfg.Strict, _ = flags.GetBool("strict")
	}
	if flags.Changed("stdout") {
		cfg.Stdout, _ = flags.GetBool("stdout")
	}
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}
	if len(args) > 0 {
		cfg.Inputs = args
	}

	return cfg, cfg.Validate()
}

// dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <input.package>",
	Short: "Print decoded records as JSON",
	Long: `Decode the StyledLook and SimInfo resources of a package and print
them as JSON. Resources that fail to decode are listed with their error.`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().String("type", "", "Only dump one record type: styledlook, siminfo")
}

func runDump(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	kind, _ := cmd.Flags().GetString("type")
	verbose, _ := cmd.Flags().GetBool("verbose")

	var only uint32
	switch strings.ToLower(kind) {
	case "":
	case "styledlook":
		only = model.TypeStyledLook
	case "siminfo":
		only = model.TypeSimInfo
	default:
		return fmt.Errorf("unknown record type: %s", kind)
	}

	resources, err := lookcfg.ReadPackage(fs, inputPath)
	if err != nil {
		return err
	}
	results := lookcfg.DecodeResources(newLogger(verbose), resources)

	return writeJSONResults(os.Stdout, results, only)
}

func writeJSONResults(w io.Writer, results []lookcfg.Result, only uint32) error {
	output := make([]map[string]interface{}, 0, len(results))
	for _, res := range results {
		if only != 0 && res.Key.Type != only {
			continue
		}

		entry := map[string]interface{}{
			"key":  res.Key.String(),
			"type": typeName(res.Key.Type),
		}
		var record interface{}
		switch {
		case res.Err != nil:
			entry["error"] = res.Err.Error()
		case res.StyledLook != nil:
			record = res.StyledLook
			entry["ageGender"] = res.StyledLook.AgeGender.String()
			entry["categories"] = categoryNames(res.StyledLook.Tags)
		case res.SimInfo != nil:
			record = res.SimInfo
		}
		if record != nil {
			// NaN floats fail only their own entry
			b, err := json.Marshal(record)
			if err != nil {
				entry["error"] = err.Error()
			} else {
				entry["record"] = json.RawMessage(b)
			}
		}
		output = append(output, entry)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func categoryNames(tags []model.Tag) []string {
	names := []string{}
	for _, label := range text.Categories(tags) {
		names = append(names, text.CategoryName(label))
	}
	return names
}

func typeName(typ uint32) string {
	switch typ {
	case model.TypeStyledLook:
		return "StyledLook"
	case model.TypeSimInfo:
		return "SimInfo"
	default:
		return model.Hex32(typ).String()
	}
}

// info command
var infoCmd = &cobra.Command{
	Use:   "info <input.package>",
	Short: "Display package information",
	Long: `Display the header and resource index of a package.

Shows the format version, resource counts per type and, with --list,
every index entry.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().Bool("json", false, "Output as JSON")
	infoCmd.Flags().BoolP("list", "l", false, "List every resource")
}

func runInfo(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")
	list, _ := cmd.Flags().GetBool("list")

	stat, err := fs.Stat(inputPath)
	if err != nil {
		return fmt.Errorf("stat input file: %w", err)
	}

	p, err := dbpf.Open(fs, inputPath)
	if err != nil {
		return fmt.Errorf("open package: %w", err)
	}
	defer p.Close()

	if jsonOutput {
		return outputInfoJSON(os.Stdout, inputPath, p, stat.Size())
	}
	return outputInfoText(os.Stdout, inputPath, p, stat.Size(), list)
}

// countTypes returns resource counts keyed by type name
func countTypes(resources []dbpf.Entry) map[string]int {
	counts := make(map[string]int)
	for _, e := range resources {
		counts[typeName(e.Key.Type)]++
	}
	return counts
}

func outputInfoText(w io.Writer, path string, p *dbpf.Package, fileSize int64, list bool) error {
	h := p.Header()
	resources := p.Resources()
	counts := countTypes(resources)

	fmt.Fprintf(w, "Package: %s\n", path)
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Header:")
	fmt.Fprintf(w, "  Version:          %d.%d\n", h.Major, h.Minor)
	fmt.Fprintf(w, "  Index version:    %d.%d\n", h.IndexMajor, h.IndexMinor)
	fmt.Fprintf(w, "  Index entries:    %d\n", h.IndexCount)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Resources:")
	fmt.Fprintf(w, "  StyledLook:       %d\n", counts["StyledLook"])
	fmt.Fprintf(w, "  SimInfo:          %d\n", counts["SimInfo"])
	fmt.Fprintf(w, "  Other:            %d\n", len(resources)-counts["StyledLook"]-counts["SimInfo"])
	fmt.Fprintln(w)

	fmt.Fprintf(w, "File Size:          %s (%d bytes)\n", formatBytes(fileSize), fileSize)

	if list {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Index:")
		for _, e := range resources {
			fmt.Fprintf(w, "  %s  %10s  %s\n", e.Key, formatBytes(int64(e.MemSize)), compressionName(e))
		}
	}

	return nil
}

func outputInfoJSON(w io.Writer, path string, p *dbpf.Package, fileSize int64) error {
	h := p.Header()
	resources := p.Resources()

	entries := make([]map[string]interface{}, len(resources))
	for i, e := range resources {
		entries[i] = map[string]interface{}{
			"key":         e.Key.String(),
			"type":        typeName(e.Key.Type),
			"fileSize":    e.FileSize,
			"memSize":     e.MemSize,
			"compression": compressionName(e),
		}
	}

	info := map[string]interface{}{
		"file": path,
		"header": map[string]interface{}{
			"major":      h.Major,
			"minor":      h.Minor,
			"indexCount": h.IndexCount,
		},
		"counts":    countTypes(resources),
		"resources": entries,
		"fileSize":  fileSize,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

func compressionName(e dbpf.Entry) string {
	if !e.Extended {
		return "auto"
	}
	switch e.Compression {
	case dbpf.CompressionNone:
		return "none"
	case dbpf.CompressionZlib:
		return "zlib"
	case dbpf.CompressionRefPack, dbpf.CompressionRefPackAlt:
		return "refpack"
	default:
		return fmt.Sprintf("0x%04X", e.Compression)
	}
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("lookcfg version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
	},
}
