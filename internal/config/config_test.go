package config

import (
	"reflect"
	"testing"

	"github.com/spf13/afero"
)

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	data := []byte(`inputs:
  - a.package
  - b.package
output: looks.cfg
strict: true
`)
	if err := afero.WriteFile(fs, "lookcfg.yaml", data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(fs, "lookcfg.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := Config{
		Inputs: []string{"a.package", "b.package"},
		Output: "looks.cfg",
		Strict: true,
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}
}

func TestLoadDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "empty.yaml", nil, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(fs, "empty.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Output != DefaultOutput {
		t.Errorf("Output = %q, want %q", cfg.Output, DefaultOutput)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown key", "outputs: x.cfg\n"},
		{"bad yaml", "inputs: [\n"},
		{"empty output", "output: \"\"\n"},
		{"empty input", "inputs: [\"\"]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if err := afero.WriteFile(fs, "c.yaml", []byte(tt.data), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(fs, "c.yaml"); err == nil {
				t.Errorf("Load succeeded, want error")
			}
		})
	}

	if _, err := Load(afero.NewMemMapFs(), "missing.yaml"); err == nil {
		t.Errorf("Load of missing file succeeded")
	}
}
