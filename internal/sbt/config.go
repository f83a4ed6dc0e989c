package sbt

// Config is the engine's calling policy. The thresholds mirror the
// typing scheme's documented cutoffs and are surfaced as flags and
// configuration keys rather than fixed at call sites; zero values fall
// back to the defaults below.
type Config struct {
	// MinDepth is the minimum per-position read depth for a locus span
	// to count as covered.
	MinDepth int

	// MinIdentity is the minimum percent identity for an assembly hit to
	// establish locus presence.
	MinIdentity float64

	// MinLengthFrac is the minimum fraction of the reference allele
	// length an assembly hit must cover to establish locus presence.
	MinLengthFrac float64

	// SupportRatio promotes a duplicated-locus candidate whose
	// supporting fragment count strictly exceeds this multiple of every
	// rival's positive count. Negative disables ratio promotion, leaving
	// only the sole-support rule.
	SupportRatio float64

	// ExpectedOrientation is the reverse-primer orientation that marks a
	// fragment as originating from the primary copy.
	ExpectedOrientation Orientation

	// Workers bounds batch parallelism; values <= 0 select the number of
	// CPUs.
	Workers int
}

// Scheme default thresholds.
const (
	DefaultMinDepth      = 10
	DefaultMinIdentity   = 95.0
	DefaultMinLengthFrac = 0.30
	DefaultSupportRatio  = 3.0
)

// DefaultConfig returns the scheme's default calling policy.
func DefaultConfig() Config {
	return Config{
		MinDepth:            DefaultMinDepth,
		MinIdentity:         DefaultMinIdentity,
		MinLengthFrac:       DefaultMinLengthFrac,
		SupportRatio:        DefaultSupportRatio,
		ExpectedOrientation: OrientReverse,
	}
}

// normalized fills unset fields with the defaults. SupportRatio keeps
// negative values so ratio promotion can be switched off explicitly.
func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.MinDepth <= 0 {
		c.MinDepth = d.MinDepth
	}
	if c.MinIdentity <= 0 {
		c.MinIdentity = d.MinIdentity
	}
	if c.MinLengthFrac <= 0 {
		c.MinLengthFrac = d.MinLengthFrac
	}
	if c.SupportRatio == 0 {
		c.SupportRatio = d.SupportRatio
	}
	if c.ExpectedOrientation == "" {
		c.ExpectedOrientation = d.ExpectedOrientation
	}
	return c
}
