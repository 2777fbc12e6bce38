package recording

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-eeg/eeg"
)

func eegChannels(names ...string) []Channel {
	out := make([]Channel, len(names))
	for i, n := range names {
		out[i] = Channel{Name: n, Kind: KindEEG, Unit: "uV"}
	}
	return out
}

func TestNewValid(t *testing.T) {
	rec, err := New(eegChannels("Fp1", "Fp2"), 256, [][]float64{make([]float64, 512), make([]float64, 512)})
	require.NoError(t, err)

	assert.Equal(t, 512, rec.Len())
	assert.InDelta(t, 2.0, rec.Duration(), 1e-12)
	assert.Equal(t, []string{"Fp1", "Fp2"}, rec.Names())
	assert.Equal(t, 1, rec.Index("Fp2"))
	assert.Equal(t, -1, rec.Index("Cz"))
}

func TestNewRejectsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		channels []Channel
		rate     float64
		data     [][]float64
	}{
		{name: "no channels", rate: 256},
		{name: "row mismatch", channels: eegChannels("A", "B"), rate: 256, data: [][]float64{{1}}},
		{name: "zero rate", channels: eegChannels("A"), rate: 0, data: [][]float64{{1}}},
		{name: "duplicate", channels: eegChannels("A", "A"), rate: 256, data: [][]float64{{1}, {1}}},
		{name: "empty name", channels: eegChannels(""), rate: 256, data: [][]float64{{1}}},
		{name: "ragged", channels: eegChannels("A", "B"), rate: 256, data: [][]float64{{1, 2}, {1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.channels, tt.rate, tt.data)
			require.ErrorIs(t, err, eeg.ErrDecode)
		})
	}
}

func TestMarkBad(t *testing.T) {
	rec, err := New(eegChannels("A", "B"), 100, [][]float64{{1}, {2}})
	require.NoError(t, err)

	require.NoError(t, rec.MarkBad("B"))
	assert.False(t, rec.Channels[0].Bad)
	assert.True(t, rec.Channels[1].Bad)

	require.Error(t, rec.MarkBad("A", "nope"))
	assert.False(t, rec.Channels[0].Bad, "failed MarkBad must not change channels")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "eeg", KindEEG.String())
	assert.Equal(t, "stim", KindStim.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
}
