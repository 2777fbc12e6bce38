package band

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-eeg/internal/testutil"
)

const fs = 256.0

func TestCatalog(t *testing.T) {
	assert.Equal(t, []Band{Delta, Theta, Alpha, Beta, Gamma}, All())

	prev := 0.0
	for _, b := range All() {
		r := b.Range()
		assert.Less(t, r.Low, r.High, b.String())
		assert.GreaterOrEqual(t, r.Low, prev, b.String())
		prev = r.Low
	}

	assert.Equal(t, Range{0.5, 4}, Delta.Range())
	assert.Equal(t, Range{30, 50}, Gamma.Range())

	b, ok := Parse("Beta")
	require.True(t, ok)
	assert.Equal(t, Beta, b)
	_, ok = Parse("beta")
	assert.False(t, ok)
	assert.Equal(t, "Band(7)", Band(7).String())
}

func TestDominantTieBreak(t *testing.T) {
	var zero Powers
	assert.Equal(t, Delta, zero.Dominant())

	p := Powers{1, 3, 3, 2, 0}
	assert.Equal(t, Theta, p.Dominant())

	p = Powers{1, 2, 3, 4, 5}
	assert.Equal(t, Gamma, p.Dominant())
}

func TestDominantName(t *testing.T) {
	assert.Equal(t, "Alpha", DominantName(map[string]float64{}))
	assert.Equal(t, "Alpha", DominantName(nil))
	assert.Equal(t, "Delta", DominantName(Powers{}.Map()))
	assert.Equal(t, "Beta", DominantName(map[string]float64{"Theta": 1, "Beta": 2, "Gamma": 2}))
	assert.Equal(t, "Theta", DominantName(map[string]float64{"Theta": 0}))
}

func TestRatios(t *testing.T) {
	m := map[string]float64{"Delta": 2, "Theta": 3, "Alpha": 4, "Beta": 8, "Gamma": 1}
	assert.Equal(t, map[string]float64{
		AlphaBeta:  0.5,
		ThetaBeta:  0.375,
		DeltaAlpha: 0.5,
	}, Ratios(m))
}

func TestRatiosZeroBeta(t *testing.T) {
	r := Ratios(map[string]float64{"Delta": 2, "Theta": 3, "Alpha": 4, "Beta": 0})
	assert.Equal(t, map[string]float64{DeltaAlpha: 0.5}, r)

	r = Ratios(map[string]float64{"Alpha": 4})
	assert.Empty(t, r)

	r = Ratios(map[string]float64{"Delta": 1, "Alpha": 0, "Theta": 1, "Beta": 2})
	assert.Equal(t, map[string]float64{AlphaBeta: 0, ThetaBeta: 0.5}, r)
}

func TestRelative(t *testing.T) {
	p := Powers{1, 1, 2, 4, 0}
	assert.Equal(t, Powers{0.125, 0.125, 0.25, 0.5, 0}, p.Relative())
	assert.Equal(t, Powers{}, Powers{}.Relative())
}

func TestPowersJSON(t *testing.T) {
	p := Powers{1, 2, 3, 4, 5}
	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Delta":1,"Theta":2,"Alpha":3,"Beta":4,"Gamma":5}`, string(b))

	var got Powers
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, p, got)

	d, err := json.Marshal(struct{ B Band }{Alpha})
	require.NoError(t, err)
	assert.JSONEq(t, `{"B":"Alpha"}`, string(d))
}

func TestExtractZeroSegment(t *testing.T) {
	res, err := Extract(testutil.Zeros(4, 10*int(fs)), fs)
	require.NoError(t, err)

	assert.Equal(t, Powers{}, res.Powers)
	assert.Equal(t, Delta, res.Dominant)
}

func TestExtractDominantBands(t *testing.T) {
	tests := []struct {
		freq float64
		want Band
	}{
		{2, Delta},
		{6, Theta},
		{10, Alpha},
		{20, Beta},
		{40, Gamma},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			seg := testutil.StaggeredChannels(4, tt.freq, fs, 10, 10*int(fs))
			for i, ch := range seg {
				testutil.AddInPlace(ch, testutil.DeterministicNoise(int64(i+1), 1, len(ch)))
			}

			res, err := Extract(seg, fs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Dominant)
			assert.InDelta(t, tt.freq, res.Spectral.PeakHz, 0.25)
			assert.Equal(t, 0.25, res.Spectral.Resolution)
			for _, b := range All() {
				assert.GreaterOrEqual(t, res.Powers.Get(b), 0.0)
			}
		})
	}
}

func TestExtractShortSegmentMissesNarrowBands(t *testing.T) {
	// 8 samples at 256 Hz give 32 Hz bins: 0, 32, 64, 96, 128.
	seg := [][]float64{testutil.DeterministicNoise(1, 1, 8)}

	res, err := Extract(seg, fs)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Powers.Get(Delta))
	assert.Equal(t, 0.0, res.Powers.Get(Theta))
	assert.Equal(t, 0.0, res.Powers.Get(Alpha))
	assert.Equal(t, 0.0, res.Powers.Get(Beta))
	assert.Greater(t, res.Powers.Get(Gamma), 0.0)
	assert.Equal(t, Gamma, res.Dominant)
}

func TestExtractGridFollowsSegmentLength(t *testing.T) {
	// 10 samples at 256 Hz give 25.6 Hz bins: nothing lands in [30, 50].
	seg := [][]float64{testutil.DeterministicNoise(2, 1, 10)}

	res, err := Extract(seg, fs)
	require.NoError(t, err)
	assert.InDelta(t, 25.6, res.Spectral.Resolution, 1e-12)
	assert.Equal(t, 0.0, res.Powers.Get(Gamma))
	assert.Equal(t, 0.0, res.Powers.Get(Alpha))
	assert.Greater(t, res.Powers.Get(Beta), 0.0)
	assert.Equal(t, Beta, res.Dominant)

	// 3 s at 256 Hz is not a power of two and keeps its native grid
	short := testutil.StaggeredChannels(2, 20, fs, 5, 3*int(fs))
	res, err = Extract(short, fs)
	require.NoError(t, err)
	assert.InDelta(t, fs/768, res.Spectral.Resolution, 1e-12)
	assert.Len(t, res.PSD.Freqs, 385)
}

func TestExtractorReuse(t *testing.T) {
	e, err := NewExtractor(fs)
	require.NoError(t, err)

	long := testutil.StaggeredChannels(2, 10, fs, 5, 10*int(fs))
	short := testutil.StaggeredChannels(2, 20, fs, 5, 3*int(fs))

	for i := 0; i < 2; i++ {
		r1, err := e.Extract(long)
		require.NoError(t, err)
		assert.Equal(t, Alpha, r1.Dominant)

		r2, err := e.Extract(short)
		require.NoError(t, err)
		assert.Equal(t, Beta, r2.Dominant)
	}
	assert.Len(t, e.est, 2)
}

func TestExtractErrors(t *testing.T) {
	_, err := Extract(nil, fs)
	require.Error(t, err)
	_, err = Extract([][]float64{{1, 2}}, 0)
	require.Error(t, err)
}
