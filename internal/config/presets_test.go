package config

import (
	"testing"

	"github.com/artemshloyda/imagetoolbox/internal/format"
)

func TestApplyPreset(t *testing.T) {
	tests := []struct {
		name       string
		preset     string
		wantOK     bool
		wantFormat format.Format
		wantQual   int
		wantScale  int
	}{
		{
			name:       "web preset",
			preset:     "web",
			wantOK:     true,
			wantFormat: format.WEBP,
			wantQual:   75,
			wantScale:  80,
		},
		{
			name:       "print preset",
			preset:     "print",
			wantOK:     true,
			wantFormat: format.JPEG,
			wantQual:   95,
			wantScale:  100,
		},
		{
			name:       "archive preset",
			preset:     "archive",
			wantOK:     true,
			wantFormat: format.PNG,
			wantQual:   100,
			wantScale:  100,
		},
		{
			name:       "thumbnail preset",
			preset:     "thumbnail",
			wantOK:     true,
			wantFormat: format.JPEG,
			wantQual:   60,
			wantScale:  25,
		},
		{
			name:   "unknown preset",
			preset: "unknown",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			ok := cfg.ApplyPreset(tt.preset)

			if ok != tt.wantOK {
				t.Errorf("ApplyPreset() = %v, want %v", ok, tt.wantOK)
			}

			if tt.wantOK {
				if cfg.OutputFormat != tt.wantFormat {
					t.Errorf("OutputFormat = %v, want %v", cfg.OutputFormat, tt.wantFormat)
				}
				if cfg.Quality != tt.wantQual {
					t.Errorf("Quality = %d, want %d", cfg.Quality, tt.wantQual)
				}
				if cfg.Scale != tt.wantScale {
					t.Errorf("Scale = %d, want %d", cfg.Scale, tt.wantScale)
				}
			}
		})
	}
}

func TestValidPresets(t *testing.T) {
	presets := ValidPresets()

	expected := []string{"web", "print", "archive", "thumbnail"}
	if len(presets) != len(expected) {
		t.Errorf("ValidPresets() returned %d presets, want %d", len(presets), len(expected))
	}

	for _, exp := range expected {
		if _, ok := Presets[Preset(exp)]; !ok {
			t.Errorf("Presets missing %q", exp)
		}
	}
}

func TestPresetConfig(t *testing.T) {
	// Все пресеты должны проходить валидацию конфигурации
	for name := range Presets {
		t.Run(string(name), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.ApplyPreset(string(name))
			if err := cfg.Validate(); err != nil {
				t.Errorf("preset %s is invalid: %v", name, err)
			}
		})
	}
}

func TestPresetStore(t *testing.T) {
	store := &PresetStore{Dir: t.TempDir()}

	if list, err := store.List(); err != nil || len(list) != 0 {
		t.Fatalf("List() on empty store = %v, %v", list, err)
	}

	cfg := DefaultConfig()
	cfg.Quality = 42
	if _, err := store.Save("my/preset!", cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := store.Save("alpha", DefaultConfig()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if !store.Exists("mypreset") {
		t.Error("sanitized preset name should exist")
	}

	list, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].Name != "alpha" || list[1].Name != "mypreset" {
		t.Fatalf("List() = %+v, want [alpha mypreset]", list)
	}

	fc, _, err := store.Load("mypreset")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	loaded := DefaultConfig()
	if err := fc.ApplyToConfig(loaded); err != nil {
		t.Fatal(err)
	}
	if loaded.Quality != 42 {
		t.Errorf("loaded Quality = %d, want 42", loaded.Quality)
	}

	if err := store.Delete("mypreset"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := store.Delete("mypreset"); err == nil {
		t.Error("Delete() of missing preset should fail")
	}
	if _, _, err := store.Load("mypreset"); err == nil {
		t.Error("Load() of missing preset should fail")
	}
	if _, err := store.Path("///"); err == nil {
		t.Error("Path() should reject empty sanitized name")
	}
}
