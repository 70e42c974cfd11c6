package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dyuri/lookcfg/internal/model"
	"github.com/dyuri/lookcfg/internal/text"
	"github.com/dyuri/lookcfg/pkg/lookcfg"
	"github.com/spf13/cobra"
)

// validate command
var validateCmd = &cobra.Command{
	Use:   "validate <input.package>",
	Short: "Check that a package produces config lines",
	Long: `Decode every StyledLook and SimInfo resource of a package and report
problems.

Decode failures are errors. Looks that would be skipped by generate, such
as looks without a matching sim or without outfit category tags, are
warnings.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().Bool("strict", false, "Fail on warnings")
}

func runValidate(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	strict, _ := cmd.Flags().GetBool("strict")
	verbose, _ := cmd.Flags().GetBool("verbose")

	resources, err := lookcfg.ReadPackage(fs, inputPath)
	if err != nil {
		return err
	}
	log := newLogger(verbose)
	// Problems are reported by the validator instead
	if !verbose {
		log.SetOutput(io.Discard)
	}
	results := lookcfg.DecodeResources(log, resources)

	v := newValidator(strict)
	v.validate(results, inputPath)
	v.printResults(os.Stdout)

	if v.hasErrors() || (strict && v.hasWarnings()) {
		return fmt.Errorf("validation failed")
	}
	return nil
}

// validator holds validation state
type validator struct {
	strict   bool
	errors   []string
	warnings []string
	file     string
}

func newValidator(strict bool) *validator {
	return &validator{
		strict:   strict,
		errors:   make([]string, 0),
		warnings: make([]string, 0),
	}
}

func (v *validator) error(msg string, args ...interface{}) {
	v.errors = append(v.errors, fmt.Sprintf(msg, args...))
}

func (v *validator) warning(msg string, args ...interface{}) {
	v.warnings = append(v.warnings, fmt.Sprintf(msg, args...))
}

func (v *validator) hasErrors() bool {
	return len(v.errors) > 0
}

func (v *validator) hasWarnings() bool {
	return len(v.warnings) > 0
}

func (v *validator) validate(results []lookcfg.Result, file string) {
	v.file = file

	simInfos := make(map[model.Hex64]model.SimInfo)
	var looks []lookcfg.Result
	for _, res := range results {
		switch {
		case res.Err != nil:
			v.error("%s %s: %v", typeName(res.Key.Type), res.Key, res.Err)
		case res.SimInfo != nil:
			instance := model.Hex64(res.Key.Instance)
			if _, ok := simInfos[instance]; ok {
				v.warning("Duplicate SimInfo instance %s", instance)
				continue
			}
			simInfos[instance] = *res.SimInfo
		case res.StyledLook != nil:
			looks = append(looks, res)
		}
	}

	if len(looks) == 0 {
		v.warning("No StyledLook resources")
	}
	for _, res := range looks {
		v.validateLook(res.Key, res.StyledLook, simInfos)
	}
}

func (v *validator) validateLook(key model.ResourceKey, look *model.StyledLook, simInfos map[model.Hex64]model.SimInfo) {
	si, ok := simInfos[look.SimInfoInstance]
	if !ok {
		v.warning("StyledLook %s: no SimInfo %s", key, look.SimInfoInstance)
		return
	}

	if len(text.Genders(look.AgeGender)) == 0 {
		v.warning("StyledLook %s: no gender in flags %s", key, look.AgeGender)
	}
	if len(text.AgeGroups(look.AgeGender)) == 0 {
		v.warning("StyledLook %s: no age group in flags %s", key, look.AgeGender)
	}
	if len(text.Categories(look.Tags)) == 0 {
		v.warning("StyledLook %s: no outfit category tags", key)
	}

	outfit, ok := text.EverydayOutfit(si)
	if !ok {
		v.warning("StyledLook %s: SimInfo %s has no everyday outfit", key, look.SimInfoInstance)
		return
	}
	if _, err := text.RenderParts(outfit, si.LinkList); err != nil {
		v.error("StyledLook %s: %v", key, err)
	}
}

func (v *validator) printResults(w io.Writer) {
	fmt.Fprintf(w, "Validating: %s\n", v.file)
	fmt.Fprintln(w, strings.Repeat("=", 50))

	if len(v.errors) == 0 && len(v.warnings) == 0 {
		fmt.Fprintln(w, "✓ Valid package - no issues found")
		return
	}

	if len(v.errors) > 0 {
		fmt.Fprintf(w, "\nErrors (%d):\n", len(v.errors))
		for _, err := range v.errors {
			fmt.Fprintf(w, "  ✗ %s\n", err)
		}
	}

	if len(v.warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings (%d):\n", len(v.warnings))
		for _, warn := range v.warnings {
			fmt.Fprintf(w, "  ⚠ %s\n", warn)
		}
	}

	fmt.Fprintln(w)
	if len(v.errors) > 0 {
		fmt.Fprintf(w, "Validation failed: %d error(s)", len(v.errors))
		if len(v.warnings) > 0 {
			fmt.Fprintf(w, ", %d warning(s)", len(v.warnings))
		}
		fmt.Fprintln(w)
	} else if len(v.warnings) > 0 {
		fmt.Fprintf(w, "Validation passed with %d warning(s)\n", len(v.warnings))
		if v.strict {
			fmt.Fprintln(w, "(use without --strict to ignore warnings)")
		}
	}
}
