package splat

// Convention names the axis convention of incoming splat attributes.
type Convention int

const (
	// ConventionYDownZForward is the camera-centric capture convention (X right,
	// Y down, Z forward). Ingestion flips Y and Z to reach the engine's
	// Y-up, Z-backward frame.
	ConventionYDownZForward Convention = iota
	// ConventionNative data is already Y-up, Z-backward.
	ConventionNative
)

func (c Convention) String() string {
	switch c {
	case ConventionYDownZForward:
		return "y-down-z-forward"
	case ConventionNative:
		return "native"
	}
	return "unknown"
}

const (
	DefaultMaxTextureWidth        = 4096
	DefaultBatchSize              = 327680
	DefaultSortDirectionThreshold = 0.01
)

type Config struct {
	// MaxTextureWidth is the fixed width of every data texture. Heights grow in
	// powers of two up to the same value.
	MaxTextureWidth int
	// BatchSize is how many splats an asynchronous ingestion packs between
	// suspensions.
	BatchSize int
	// SortDirectionThreshold is how far |dot(old, new) - 1| of the view
	// direction must move before a non-forced sort is posted.
	SortDirectionThreshold float32
	// Convention is the default attribute convention; Attributes may override it.
	Convention Convention
	// CompactCovariants stores covariance-B as RG16F instead of RGBA16F.
	CompactCovariants bool
}

func DefaultConfig() Config {
	return Config{
		MaxTextureWidth:        DefaultMaxTextureWidth,
		BatchSize:              DefaultBatchSize,
		SortDirectionThreshold: DefaultSortDirectionThreshold,
		Convention:             ConventionYDownZForward,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxTextureWidth <= 0 {
		c.MaxTextureWidth = DefaultMaxTextureWidth
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.SortDirectionThreshold <= 0 {
		c.SortDirectionThreshold = DefaultSortDirectionThreshold
	}
	return c
}
