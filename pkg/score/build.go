package score

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Garik-/beatclock/pkg/midi"
	"go.uber.org/zap"
)

// ErrUnsupportedTimingFormat is returned for files timed in SMPTE frames.
var ErrUnsupportedTimingFormat = errors.New("timecode based timing is not supported")

type placedMessage struct {
	track int
	tick  uint64
	msg   *midi.Message
}

// Parse decodes an SMF image and builds its event sequence.
func Parse(data []byte) ([]Event, error) {
	d, err := midi.DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	return Build(d)
}

// Build merges the decoded tracks into one sequence ordered by beat. Events
// sharing a tick keep track order, then their order inside the track.
func Build(d *midi.Decoder) ([]Event, error) {
	log := scoreLog.Named("Build")

	if d.TimeFormat == midi.TimeCodeTF {
		return nil, ErrUnsupportedTimingFormat
	}
	if d.TicksPerQuarterNote == 0 {
		return nil, fmt.Errorf("%w: zero ticks per quarter note", midi.ErrMalformedFile)
	}

	merged := merge(d.Tracks)

	ticks := float64(d.TicksPerQuarterNote)
	ctl := newControllers()
	events := make([]Event, 0, len(merged))
	dropped := 0

	for _, p := range merged {
		if p.msg.Kind == midi.KindTempo && p.msg.MicrosPerQuarter == 0 {
			return nil, fmt.Errorf("%w: zero tempo on track %d at tick %d", midi.ErrMalformedFile, p.track, p.tick)
		}

		body, ok := translate(ctl, p.msg)
		if !ok {
			log.Debug("drop", zap.Int("track", p.track), zap.Uint64("tick", p.tick), zap.Stringer("kind", p.msg.Kind))
			dropped++
			continue
		}

		e := Event{
			Track: p.track,
			Beat:  float64(p.tick) / ticks,
			Body:  body,
		}
		if p.msg.Kind != midi.KindTempo {
			e.Channel = p.msg.Channel
		}
		events = append(events, e)
	}

	log.Debug("built",
		zap.Int("tracks", len(d.Tracks)),
		zap.Int("messages", len(merged)),
		zap.Int("events", len(events)),
		zap.Int("dropped", dropped))

	return events, nil
}

func merge(tracks []*midi.Track) []placedMessage {
	total := 0
	for _, track := range tracks {
		total += len(track.Messages)
	}

	out := make([]placedMessage, 0, total)
	for i, track := range tracks {
		var tick uint64
		for _, m := range track.Messages {
			tick += uint64(m.TimeDelta)
			out = append(out, placedMessage{track: i, tick: tick, msg: m})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].tick < out[j].tick
	})

	return out
}

// translate maps a raw message to an event body. ok is false for
// messages that carry no event (aftertouch, sysex, meta, RPN traffic and
// unmapped controllers).
func translate(ctl *controllers, m *midi.Message) (Body, bool) {
	switch m.Kind {
	case midi.KindNoteOn:
		return NoteOn{Key: m.Data1, Velocity: unit(m.Data2), RawVelocity: m.Data2}, true

	case midi.KindNoteOff:
		return NoteOff{Key: m.Data1, Velocity: unit(m.Data2), RawVelocity: m.Data2}, true

	case midi.KindControlChange:
		switch m.Data1 {
		case ccVolume:
			return Volume{Value: unit(m.Data2), Raw: m.Data2}, true
		case ccPan:
			return Pan{Value: math.Max((float64(m.Data2)-64)/63, -1), Raw: m.Data2}, true
		case ccModulation:
			return Modulation{Value: unit(m.Data2), Raw: m.Data2}, true
		case ccExpression:
			return Expression{Value: unit(m.Data2), Raw: m.Data2}, true
		}
		ctl.control(m.Channel, m.Data1, m.Data2)
		return nil, false

	case midi.KindPitchBend:
		return PitchBend{Semitones: ctl.bendSemitones(m.Channel, m.Bend), Raw: m.Bend}, true

	case midi.KindProgramChange:
		return ProgramChange{Program: m.Data1}, true

	case midi.KindTempo:
		return Tempo{BPM: 60000000 / float64(m.MicrosPerQuarter)}, true
	}

	return nil, false
}

func unit(v uint8) float64 {
	return float64(v) / 127
}
