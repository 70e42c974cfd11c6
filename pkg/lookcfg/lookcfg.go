// Package lookcfg turns the styled looks of a Sims 4 package into outfit
// config lines.
//
// This package can be used as a library to read a package, decode its
// StyledLook and SimInfo resources, and generate lines programmatically.
//
// Example usage:
//
//	fs := afero.NewOsFs()
//	resources, err := lookcfg.ReadPackage(fs, "looks.package")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	results := lookcfg.DecodeResources(nil, resources)
//	lines, err := lookcfg.GenerateLines(nil, results)
package lookcfg

import (
	"fmt"
	"io"
	"os"

	"github.com/dyuri/lookcfg/internal/binary"
	"github.com/dyuri/lookcfg/internal/config"
	"github.com/dyuri/lookcfg/internal/dbpf"
	"github.com/dyuri/lookcfg/internal/model"
	"github.com/dyuri/lookcfg/internal/text"
	"github.com/hashicorp/go-multierror"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Config holds the settings of a Run
type Config = config.Config

// Resource is the raw contents of one StyledLook or SimInfo resource.
// Err is set when the resource could not be read or decompressed.
type Resource struct {
	Key  model.ResourceKey
	Data []byte
	Err  error
}

// Result is the outcome of decoding one resource. Exactly one of
// StyledLook, SimInfo and Err is set.
type Result struct {
	Key        model.ResourceKey
	StyledLook *model.StyledLook `json:",omitempty"`
	SimInfo    *model.SimInfo    `json:",omitempty"`
	Err        error             `json:"-"`
}

// ReadPackage returns the StyledLook and SimInfo resources of a package in
// index order. Other resource types are skipped.
//
// Only container level failures are returned as an error; a resource that
// fails to decompress is returned with its Err set.
func ReadPackage(fs afero.Fs, path string) (resources []Resource, err error) {
	p, err := dbpf.Open(fs, path)
	if err != nil {
		return nil, &Error{Code: "invalid_package", Message: "failed to open package " + path, Cause: err}
	}
	defer func() {
		if cerr := p.Close(); cerr != nil && err == nil {
			err = &Error{Code: "invalid_package", Message: "failed to close package " + path, Cause: cerr}
		}
	}()

	for _, e := range p.Resources() {
		if e.Key.Type != model.TypeStyledLook && e.Key.Type != model.TypeSimInfo {
			continue
		}
		data, err := p.ReadResource(e)
		resources = append(resources, Resource{Key: e.Key, Data: data, Err: err})
	}

	return resources, nil
}

// DecodeResources decodes every resource independently. A failure is
// logged and kept in the Result; the remaining resources are still decoded.
// A nil log uses the logrus standard logger.
func DecodeResources(log logrus.FieldLogger, resources []Resource) []Result {
	return decodeResources(defaultLogger(log), resources, nil)
}

func decodeResources(log logrus.FieldLogger, resources []Resource, bar *progressbar.ProgressBar) []Result {
	results := make([]Result, 0, len(resources))

	for _, res := range resources {
		result := decodeResource(res)
		if result.Err != nil {
			log.WithFields(resourceFields(res.Key)).WithError(result.Err).Warn("failed to decode resource")
		}
		results = append(results, result)

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	return results
}

func decodeResource(res Resource) Result {
	result := Result{Key: res.Key}
	if res.Err != nil {
		result.Err = res.Err
		return result
	}

	switch res.Key.Type {
	case model.TypeStyledLook:
		sl, err := binary.DecodeStyledLook(res.Data)
		if err != nil {
			result.Err = err
			break
		}
		result.StyledLook = &sl
	case model.TypeSimInfo:
		si, err := binary.DecodeSimInfo(res.Data)
		if err != nil {
			result.Err = err
			break
		}
		result.SimInfo = &si
	default:
		result.Err = fmt.Errorf("resource type 0x%08X: %w", res.Key.Type, ErrUnrecognizedType)
	}

	return result
}

// GenerateLines joins the decoded looks with their SimInfo by instance and
// generates config lines. Failed results take no part in the join.
// Looks keep their resource order.
func GenerateLines(log logrus.FieldLogger, results []Result) ([]string, error) {
	log = defaultLogger(log)

	var looks []model.StyledLook
	simInfos := make(map[model.Hex64]model.SimInfo)

	for _, res := range results {
		switch {
		case res.Err != nil:
			continue
		case res.StyledLook != nil:
			looks = append(looks, *res.StyledLook)
		case res.SimInfo != nil:
			instance := model.Hex64(res.Key.Instance)
			if _, ok := simInfos[instance]; ok {
				log.WithFields(resourceFields(res.Key)).Warn("duplicate sim info instance, keeping the first")
				continue
			}
			simInfos[instance] = *res.SimInfo
		}
	}

	return text.NewGenerator(log).Generate(looks, simInfos)
}

// Runner executes a configured run against a filesystem
type Runner struct {
	Fs     afero.Fs
	Log    logrus.FieldLogger
	Stdout io.Writer // Receives the lines when Config.Stdout is set
	Stderr io.Writer // Receives progress bars in verbose mode
}

// Run processes cfg.Inputs on the OS filesystem
func Run(cfg Config) error {
	r := &Runner{
		Fs:     afero.NewOsFs(),
		Log:    logrus.StandardLogger(),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	return r.Run(cfg)
}

// Run processes every input package in order and appends the lines of each
// package to cfg.Output as its own batch. Each package is joined on its own.
//
// Failures are logged per package and resource and do not stop the run. It
// fails only when no package could be read. In strict mode any failure fails the run instead, and nothing is
// written.
func (r *Runner) Run(cfg Config) error {
	if len(cfg.Inputs) == 0 {
		return ErrNoInputs
	}
	if err := cfg.Validate(); err != nil {
		return &Error{Code: "invalid_config", Message: "invalid configuration", Cause: err}
	}

	log := defaultLogger(r.Log)

	var (
		batches [][]string
		errs    *multierror.Error
		opened  int
	)
	for _, path := range cfg.Inputs {
		plog := log.WithField("package", path)

		resources, err := ReadPackage(r.Fs, path)
		if err != nil {
			plog.WithError(err).Error("failed to read package")
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		opened++

		var bar *progressbar.ProgressBar
		if cfg.Verbose && r.Stderr != nil {
			bar = progressbar.NewOptions(len(resources),
				progressbar.OptionSetWriter(r.Stderr),
				progressbar.OptionSetDescription(path),
				progressbar.OptionShowCount(),
			)
		}
		results := decodeResources(plog, resources, bar)
		if bar != nil {
			_ = bar.Finish()
		}

		for _, res := range results {
			if res.Err != nil {
				errs = multierror.Append(errs, fmt.Errorf("%s: resource %s: %w", path, res.Key, res.Err))
			}
		}

		lines, err := GenerateLines(plog, results)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", path, err))
		}

		plog.WithFields(logrus.Fields{
			"resources": len(results),
			"lines":     len(lines),
		}).Info("processed package")
		batches = append(batches, lines)
	}

	if opened == 0 {
		return &Error{Code: "invalid_package", Message: "no input package could be read", Cause: errs.ErrorOrNil()}
	}
	if err := errs.ErrorOrNil(); err != nil && cfg.Strict {
		return &Error{Code: "strict", Message: "resources failed in strict mode", Cause: err}
	}

	var tee io.Writer
	if cfg.Stdout {
		tee = r.Stdout
	}
	for _, lines := range batches {
		if err := text.AppendLines(r.Fs, cfg.Output, lines, tee); err != nil {
			return &Error{Code: "write_failed", Message: "failed to write " + cfg.Output, Cause: err}
		}
	}

	return nil
}

// PropertyType selects the encoding read by DecodeProperty
type PropertyType = binary.PropertyType

// Property value encodings
const (
	PropertyBoolean        = binary.PropertyBoolean
	PropertyTags           = binary.PropertyTags
	PropertySwatchColors   = binary.PropertySwatchColors
	PropertyAgeGenderFlags = binary.PropertyAgeGenderFlags
	PropertyHexValue       = binary.PropertyHexValue
	PropertyFloat          = binary.PropertyFloat
	PropertyInt32          = binary.PropertyInt32
)

// NamedTag is a tag property value
type NamedTag = binary.NamedTag

// DecodeProperty decodes a single property value of the given type from the
// start of data and returns it with the number of bytes it used.
func DecodeProperty(data []byte, typ PropertyType) (value any, n int, err error) {
	c := binary.NewCursor(data)
	value, err = binary.DecodeProperty(c, typ)
	if err != nil {
		return nil, 0, err
	}
	return value, c.Tell(), nil
}

func defaultLogger(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return logrus.StandardLogger()
	}
	return log
}

func resourceFields(key model.ResourceKey) logrus.Fields {
	return logrus.Fields{
		"type":     model.Hex32(key.Type).String(),
		"group":    model.Hex32(key.Group).String(),
		"instance": model.Hex64(key.Instance).String(),
	}
}

// Decode errors, usable with errors.Is
var (
	ErrOutOfBounds        = binary.ErrOutOfBounds
	ErrIndexOutOfRange    = binary.ErrIndexOutOfRange
	ErrUnrecognizedType   = binary.ErrUnrecognizedType
	ErrDecompression      = dbpf.ErrDecompression
	ErrBadMagic           = dbpf.ErrBadMagic
	ErrUnsupportedVersion = dbpf.ErrUnsupportedVersion
)

// Common errors
var (
	ErrNoInputs       = &Error{Code: "no_inputs", Message: "no input packages"}
	ErrInvalidPackage = &Error{Code: "invalid_package", Message: "invalid package"}
	ErrStrict         = &Error{Code: "strict", Message: "resources failed in strict mode"}
)

// Error represents a lookcfg error
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by code, so errors.Is(err, ErrStrict) holds for any
// strict mode failure
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}
