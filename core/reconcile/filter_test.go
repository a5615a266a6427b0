package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCutoff(t *testing.T) {
	assert.Equal(t, int64(100), Cutoff(100, false))
	assert.Equal(t, int64(0), Cutoff(100, true))
	assert.Equal(t, int64(0), Cutoff(-5, false))
}

func TestAfterCutoff(t *testing.T) {
	assert.True(t, AfterCutoff(movie("tt1", 1, 50), 0))
	assert.False(t, AfterCutoff(movie("tt1", 1, 50), 100))
	assert.True(t, AfterCutoff(movie("tt2", 1, 100), 100))
	assert.True(t, AfterCutoff(movie("tt3", 1, 150), 100))
}

func TestParseOptions(t *testing.T) {
	s, err := ParseStrategy("direct")
	assert.NoError(t, err)
	assert.Equal(t, StrategyDirect, s)

	_, err = ParseStrategy("eager")
	assert.ErrorIs(t, err, ErrInvalidOptions)

	m, err := ParseTxMode("auto")
	assert.NoError(t, err)
	assert.Equal(t, TxAutoCommit, m)
	assert.Equal(t, "single", TxSingle.String())
}

func TestConfig_ImportOptions(t *testing.T) {
	opts, err := Config{Strategy: "direct", TxMode: "single", DryRun: true}.ImportOptions()
	assert.NoError(t, err)
	assert.Equal(t, Options{Strategy: StrategyDirect, TxMode: TxSingle, DryRun: true}, opts)

	_, err = Config{Strategy: "direct", TxMode: "auto"}.ImportOptions()
	assert.ErrorIs(t, err, ErrInvalidOptions)

	assert.Equal(t, int64(0), Config{LastSync: 500, ForceFull: true}.Cutoff())
	assert.Equal(t, int64(500), Config{LastSync: 500}.Cutoff())
}
