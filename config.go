package gsplat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gekko3d/gsplat/splatrt/rt/splat"
	"github.com/gekko3d/gsplat/splatrt/rt/tiles"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Window  WindowConfig  `toml:"window" yaml:"window"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Splat   SplatConfig   `toml:"splat" yaml:"splat"`
	Scene   SceneConfig   `toml:"scene" yaml:"scene"`
}

type WindowConfig struct {
	Width    int    `toml:"width" yaml:"width"`
	Height   int    `toml:"height" yaml:"height"`
	Title    string `toml:"title" yaml:"title"`
	Headless bool   `toml:"headless" yaml:"headless"`
}

type LoggingConfig struct {
	Prefix string `toml:"prefix" yaml:"prefix"`
	Debug  bool   `toml:"debug" yaml:"debug"`
	File   string `toml:"file" yaml:"file"`
}

type SplatConfig struct {
	MaxTextureWidth        int     `toml:"max_texture_width" yaml:"max_texture_width"`
	BatchSize              int     `toml:"batch_size" yaml:"batch_size"`
	SortDirectionThreshold float32 `toml:"sort_direction_threshold" yaml:"sort_direction_threshold"`
	// Convention is "y-down-z-forward" or "native".
	Convention        string `toml:"convention" yaml:"convention"`
	CompactCovariants bool   `toml:"compact_covariants" yaml:"compact_covariants"`
}

type SceneConfig struct {
	Columns       int     `toml:"columns" yaml:"columns"`
	Rows          int     `toml:"rows" yaml:"rows"`
	SplatsPerTile int     `toml:"splats_per_tile" yaml:"splats_per_tile"`
	TileSize      float32 `toml:"tile_size" yaml:"tile_size"`
	SHDegree      int     `toml:"sh_degree" yaml:"sh_degree"`
	Seed          uint64  `toml:"seed" yaml:"seed"`
	// FlattenOrderZ ranks tiles by their local xy footprint.
	FlattenOrderZ bool    `toml:"flatten_order_z" yaml:"flatten_order_z"`
}

func DefaultConfig() Config {
	sc := splat.DefaultConfig()
	tc := tiles.DefaultOptions()
	return Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "gsplat",
		},
		Logging: LoggingConfig{Prefix: "gsplat"},
		Splat: SplatConfig{
			MaxTextureWidth:        sc.MaxTextureWidth,
			BatchSize:              sc.BatchSize,
			SortDirectionThreshold: sc.SortDirectionThreshold,
			Convention:             sc.Convention.String(),
		},
		Scene: SceneConfig{
			Columns:       tc.Columns,
			Rows:          tc.Rows,
			SplatsPerTile: tc.SplatsPerTile,
			TileSize:      tc.TileSize,
			SHDegree:      tc.SHDegree,
			Seed:          tc.Seed,
		},
	}
}

// LoadConfig reads a TOML (.toml) or YAML (.yaml, .yml) file over the
// defaults. Keys missing from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("config: unsupported file type %q", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if _, err := cfg.Splat.convention(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c SplatConfig) convention() (splat.Convention, error) {
	switch c.Convention {
	case "", splat.ConventionYDownZForward.String():
		return splat.ConventionYDownZForward, nil
	case splat.ConventionNative.String():
		return splat.ConventionNative, nil
	}
	return 0, fmt.Errorf("config: unknown splat convention %q", c.Convention)
}

// Packer converts the section into the packer's configuration.
func (c SplatConfig) Packer() splat.Config {
	conv, _ := c.convention()
	return splat.Config{
		MaxTextureWidth:        c.MaxTextureWidth,
		BatchSize:              c.BatchSize,
		SortDirectionThreshold: c.SortDirectionThreshold,
		Convention:             conv,
		CompactCovariants:      c.CompactCovariants,
	}
}

func (c SceneConfig) TileOptions() tiles.Options {
	return tiles.Options{
		Columns:       c.Columns,
		Rows:          c.Rows,
		SplatsPerTile: c.SplatsPerTile,
		TileSize:      c.TileSize,
		SHDegree:      c.SHDegree,
		Seed:          c.Seed,
	}
}
