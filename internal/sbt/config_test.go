package sbt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 10, cfg.MinDepth)
	assert.Equal(t, 95.0, cfg.MinIdentity)
	assert.Equal(t, 0.30, cfg.MinLengthFrac)
	assert.Equal(t, 3.0, cfg.SupportRatio)
	assert.Equal(t, OrientReverse, cfg.ExpectedOrientation)
}

func TestConfig_ZeroValuesNormalized(t *testing.T) {
	typer := NewTyper(newTestDB(), Config{})
	cfg := typer.Config()

	assert.Equal(t, DefaultMinDepth, cfg.MinDepth)
	assert.Equal(t, DefaultMinIdentity, cfg.MinIdentity)
	assert.Equal(t, DefaultMinLengthFrac, cfg.MinLengthFrac)
	assert.Equal(t, DefaultSupportRatio, cfg.SupportRatio)
	assert.Equal(t, OrientReverse, cfg.ExpectedOrientation)
}

func TestConfig_NegativeSupportRatioPreserved(t *testing.T) {
	typer := NewTyper(newTestDB(), Config{SupportRatio: -1})
	assert.Equal(t, -1.0, typer.Config().SupportRatio)
}

func TestConfig_CustomValuesKept(t *testing.T) {
	in := Config{
		MinDepth:            25,
		MinIdentity:         99.0,
		MinLengthFrac:       0.5,
		SupportRatio:        5,
		ExpectedOrientation: OrientForward,
		Workers:             4,
	}
	assert.Equal(t, in, NewTyper(newTestDB(), in).Config())
}
