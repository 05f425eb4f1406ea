package score

import (
	"bytes"
	"math"
	"testing"

	"github.com/Garik-/beatclock/pkg/midi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func writeSMF(t *testing.T, ticks uint16, tracks ...smf.Track) []byte {
	t.Helper()

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticks)
	for _, tr := range tracks {
		require.NoError(t, s.Add(tr))
	}

	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func parseTracks(t *testing.T, ticks uint16, tracks ...smf.Track) []Event {
	t.Helper()

	events, err := Parse(writeSMF(t, ticks, tracks...))
	require.NoError(t, err)
	return events
}

func decoderWith(ticks uint16, tracks ...[]*midi.Message) *midi.Decoder {
	d := &midi.Decoder{TimeFormat: midi.MetricalTF, TicksPerQuarterNote: ticks}
	for _, msgs := range tracks {
		d.Tracks = append(d.Tracks, &midi.Track{Messages: msgs})
	}
	return d
}

var specFile = []byte{
	0x4d, 0x54, 0x68, 0x64, 0, 0, 0, 6, 0, 1, 0, 4, 0, 0x60,
	0x4d, 0x54, 0x72, 0x6b, 0, 0, 0, 0x14,
	0, 0xff, 0x58, 4, 4, 2, 0x18, 8,
	0, 0xff, 0x51, 3, 7, 0xa1, 0x20,
	0x83, 0, 0xff, 0x2f, 0,
	0x4d, 0x54, 0x72, 0x6b, 0, 0, 0, 0x10,
	0, 0xc0, 5,
	0x81, 0x40, 0x90, 0x4c, 0x20,
	0x81, 0x40, 0x4c, 0,
	0, 0xff, 0x2f, 0,
	0x4d, 0x54, 0x72, 0x6b, 0, 0, 0, 0xf,
	0, 0xc1, 0x2e,
	0x60, 0x91, 0x43, 0x40,
	0x82, 0x20, 0x43, 0,
	0, 0xff, 0x2f, 0,
	0x4d, 0x54, 0x72, 0x6b, 0, 0, 0, 0x15,
	0, 0xc2, 0x46,
	0, 0x92, 0x30, 0x60,
	0, 0x3c, 0x60,
	0x83, 0, 0x30, 0,
	0, 0x3c, 0,
	0, 0xff, 0x2f, 0,
}

func TestParseSpecFile(t *testing.T) {
	events, err := Parse(specFile)
	require.NoError(t, err)

	expected := []Event{
		{Track: 0, Beat: 0, Channel: 0, Body: Tempo{BPM: 120}},
		{Track: 1, Beat: 0, Channel: 0, Body: ProgramChange{Program: 5}},
		{Track: 2, Beat: 0, Channel: 1, Body: ProgramChange{Program: 0x2e}},
		{Track: 3, Beat: 0, Channel: 2, Body: ProgramChange{Program: 0x46}},
		{Track: 3, Beat: 0, Channel: 2, Body: NoteOn{Key: 0x30, Velocity: 0x60 / 127.0, RawVelocity: 0x60}},
		{Track: 3, Beat: 0, Channel: 2, Body: NoteOn{Key: 0x3c, Velocity: 0x60 / 127.0, RawVelocity: 0x60}},
		{Track: 2, Beat: 1, Channel: 1, Body: NoteOn{Key: 0x43, Velocity: 0x40 / 127.0, RawVelocity: 0x40}},
		{Track: 1, Beat: 2, Channel: 0, Body: NoteOn{Key: 0x4c, Velocity: 0x20 / 127.0, RawVelocity: 0x20}},
		{Track: 1, Beat: 4, Channel: 0, Body: NoteOn{Key: 0x4c}},
		{Track: 2, Beat: 4, Channel: 1, Body: NoteOn{Key: 0x43}},
		{Track: 3, Beat: 4, Channel: 2, Body: NoteOn{Key: 0x30}},
		{Track: 3, Beat: 4, Channel: 2, Body: NoteOn{Key: 0x3c}},
	}
	assert.Equal(t, expected, events)
}

func TestBuildMonotonicBeats(t *testing.T) {
	var a, b, c smf.Track
	for i := 0; i < 20; i++ {
		a.Add(uint32(7*i%13), gomidi.NoteOn(0, uint8(40+i), 90))
		b.Add(uint32(11*i%5), gomidi.ControlChange(1, 7, uint8(i)))
		c.Add(uint32(3*i%17), gomidi.Pitchbend(2, int16(i*100)))
	}
	a.Close(0)
	b.Close(0)
	c.Close(0)

	events := parseTracks(t, 96, a, b, c)
	require.Len(t, events, 60)

	for i := 1; i < len(events); i++ {
		assert.LessOrEqual(t, events[i-1].Beat, events[i].Beat, "event %d", i)
	}
}

func TestBuildStableTieBreak(t *testing.T) {
	var first, second smf.Track
	first.Add(0, gomidi.NoteOn(0, 60, 100))
	first.Add(0, gomidi.NoteOn(0, 61, 100))
	first.Close(0)
	second.Add(0, gomidi.NoteOn(1, 70, 100))
	second.Close(0)

	events := parseTracks(t, 96, first, second)
	require.Len(t, events, 3)

	assert.Equal(t, 0, events[0].Track)
	assert.Equal(t, uint8(60), events[0].Body.(NoteOn).Key)
	assert.Equal(t, 0, events[1].Track)
	assert.Equal(t, uint8(61), events[1].Body.(NoteOn).Key)
	assert.Equal(t, 1, events[2].Track)
	assert.Equal(t, uint8(70), events[2].Body.(NoteOn).Key)
}

func TestBuildTicksToBeats(t *testing.T) {
	var tr smf.Track
	tr.Add(240, gomidi.NoteOn(0, 60, 100))
	tr.Add(720, gomidi.NoteOff(0, 60))
	tr.Close(0)

	events := parseTracks(t, 480, tr)
	require.Len(t, events, 2)
	assert.Equal(t, 0.5, events[0].Beat)
	assert.Equal(t, 2.0, events[1].Beat)
}

func TestBuildRPNGating(t *testing.T) {
	var tr smf.Track
	// data entry without RPN selected keeps the default range
	tr.Add(0, gomidi.ControlChange(0, ccDataEntry, 12))
	tr.Add(0, gomidi.Pitchbend(0, 4096))
	// select pitch bend sensitivity, then set 12 semitones
	tr.Add(1, gomidi.ControlChange(0, ccRPNMsb, 0))
	tr.Add(0, gomidi.ControlChange(0, ccRPNLsb, 0))
	tr.Add(0, gomidi.ControlChange(0, ccDataEntry, 12))
	tr.Add(0, gomidi.Pitchbend(0, 4096))
	// another channel keeps its own range
	tr.Add(0, gomidi.Pitchbend(1, 4096))
	// a different RPN leaves the range alone
	tr.Add(1, gomidi.ControlChange(0, ccRPNLsb, 1))
	tr.Add(0, gomidi.ControlChange(0, ccDataEntry, 24))
	tr.Add(0, gomidi.Pitchbend(0, -8192))
	// null RPN
	tr.Add(1, gomidi.ControlChange(0, ccRPNLsb, nullRPN))
	tr.Add(0, gomidi.ControlChange(0, ccRPNMsb, nullRPN))
	tr.Add(0, gomidi.ControlChange(0, ccDataEntry, 1))
	tr.Add(0, gomidi.Pitchbend(0, 8191))
	tr.Close(0)

	events := parseTracks(t, 96, tr)
	require.Len(t, events, 5)

	bends := make([]PitchBend, 0, len(events))
	for _, e := range events {
		bends = append(bends, e.Body.(PitchBend))
	}

	assert.InDelta(t, 1.0, bends[0].Semitones, 1e-9)
	assert.Equal(t, int16(4096), bends[0].Raw)
	assert.InDelta(t, 6.0, bends[1].Semitones, 1e-9)
	assert.InDelta(t, 1.0, bends[2].Semitones, 1e-9)
	assert.Equal(t, uint8(1), events[2].Channel)
	assert.InDelta(t, -12.0, bends[3].Semitones, 1e-9)
	assert.InDelta(t, 12*8191/8192.0, bends[4].Semitones, 1e-9)
}

func TestBuildRPNFollowsMergedOrder(t *testing.T) {
	// bends on track 0 straddle a range change made on track 1
	var bends, setup smf.Track
	bends.Add(5, gomidi.Pitchbend(3, -8192))
	bends.Add(15, gomidi.Pitchbend(3, -8192))
	bends.Close(0)
	setup.Add(10, gomidi.ControlChange(3, ccRPNMsb, 0))
	setup.Add(0, gomidi.ControlChange(3, ccRPNLsb, 0))
	setup.Add(0, gomidi.ControlChange(3, ccDataEntry, 7))
	setup.Close(0)

	events := parseTracks(t, 96, bends, setup)
	require.Len(t, events, 2)
	assert.InDelta(t, -2.0, events[0].Body.(PitchBend).Semitones, 1e-9)
	assert.InDelta(t, -7.0, events[1].Body.(PitchBend).Semitones, 1e-9)
}

func TestBuildNormalization(t *testing.T) {
	var tr smf.Track
	tr.Add(0, gomidi.ControlChange(0, ccPan, 0))
	tr.Add(0, gomidi.ControlChange(0, ccPan, 1))
	tr.Add(0, gomidi.ControlChange(0, ccPan, 64))
	tr.Add(0, gomidi.ControlChange(0, ccPan, 127))
	tr.Add(0, gomidi.ControlChange(0, ccModulation, 127))
	tr.Add(0, gomidi.ControlChange(0, ccExpression, 0))
	tr.Add(0, gomidi.NoteOffVelocity(0, 60, 127))
	tr.Add(0, smf.MetaTempo(60))
	tr.Close(0)

	events := parseTracks(t, 96, tr)
	require.Len(t, events, 8)

	assert.Equal(t, Pan{Value: -1, Raw: 0}, events[0].Body)
	assert.Equal(t, Pan{Value: -1, Raw: 1}, events[1].Body)
	assert.Equal(t, Pan{Value: 0, Raw: 64}, events[2].Body)
	assert.Equal(t, Pan{Value: 1, Raw: 127}, events[3].Body)
	assert.Equal(t, Modulation{Value: 1, Raw: 127}, events[4].Body)
	assert.Equal(t, Expression{Value: 0, Raw: 0}, events[5].Body)
	assert.Equal(t, NoteOff{Key: 60, Velocity: 1, RawVelocity: 127}, events[6].Body)
	assert.Equal(t, Tempo{BPM: 60}, events[7].Body)
}

func TestVolumeRoundTrip(t *testing.T) {
	var tr smf.Track
	for v := 0; v < 128; v++ {
		tr.Add(1, gomidi.ControlChange(4, ccVolume, uint8(v)))
	}
	tr.Close(0)

	events := parseTracks(t, 96, tr)
	require.Len(t, events, 128)

	for v, e := range events {
		vol, ok := e.Body.(Volume)
		require.True(t, ok)
		assert.Equal(t, uint8(v), vol.Raw)
		assert.Equal(t, float64(v), math.Round(vol.Value*127))
	}
}

func TestBuildDropsIrrelevantMessages(t *testing.T) {
	d := decoderWith(96, []*midi.Message{
		{Kind: midi.KindPolyAftertouch, Data1: 60, Data2: 10},
		{Kind: midi.KindChannelAftertouch, Data1: 10},
		{Kind: midi.KindSysEx},
		{Kind: midi.KindMeta, MetaType: 0x03},
		{Kind: midi.KindControlChange, Data1: 64, Data2: 127},
		{Kind: midi.KindControlChange, Data1: ccRPNLsb, Data2: 0},
		{Kind: midi.KindNoteOn, Data1: 60, Data2: 1},
	})

	events, err := Build(d)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, NoteOn{Key: 60, Velocity: 1 / 127.0, RawVelocity: 1}, events[0].Body)
}

func TestBuildTempoIsChannelZero(t *testing.T) {
	d := decoderWith(96, []*midi.Message{
		{Kind: midi.KindTempo, Channel: 9, MicrosPerQuarter: 400000},
	})

	events, err := Build(d)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint8(0), events[0].Channel)
	assert.InDelta(t, 150.0, events[0].Body.(Tempo).BPM, 1e-9)
}

func TestBuildEmpty(t *testing.T) {
	events, err := Build(decoderWith(96))
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = Build(decoderWith(96, nil, nil))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestBuildTimeCodeFailsFast(t *testing.T) {
	d := decoderWith(0, []*midi.Message{{Kind: midi.KindNoteOn, Data1: 60, Data2: 100}})
	d.TimeFormat = midi.TimeCodeTF

	events, err := Build(d)
	assert.ErrorIs(t, err, ErrUnsupportedTimingFormat)
	assert.Nil(t, events)

	data := []byte{
		0x4d, 0x54, 0x68, 0x64, 0, 0, 0, 6, 0, 0, 0, 1, 0xE7, 0x28,
		0x4d, 0x54, 0x72, 0x6b, 0, 0, 0, 8, 0, 0x90, 60, 100, 0, 0xff, 0x2f, 0,
	}
	events, err = Parse(data)
	assert.ErrorIs(t, err, ErrUnsupportedTimingFormat)
	assert.Nil(t, events)
}

func TestParseMalformed(t *testing.T) {
	events, err := Parse([]byte("MThd"))
	assert.ErrorIs(t, err, midi.ErrMalformedFile)
	assert.Nil(t, events)
}

func TestBuildZeroResolution(t *testing.T) {
	_, err := Build(decoderWith(0))
	assert.ErrorIs(t, err, midi.ErrMalformedFile)
}

func TestBuildZeroTempo(t *testing.T) {
	d := decoderWith(96, []*midi.Message{
		{Kind: midi.KindNoteOn, Data1: 60, Data2: 100},
		{Kind: midi.KindTempo, TimeDelta: 96},
	})

	events, err := Build(d)
	assert.ErrorIs(t, err, midi.ErrMalformedFile)
	assert.Nil(t, events)
}
