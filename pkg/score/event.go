package score

import "fmt"

// Event is a decoded message placed on the global beat axis.
type Event struct {
	Track   int
	Beat    float64
	Channel uint8
	Body    Body
}

// Body is one of NoteOn, NoteOff, Volume, Pan, PitchBend, ProgramChange,
// Tempo, Modulation or Expression. The set is closed.
type Body interface {
	fmt.Stringer
	body()
}

type NoteOn struct {
	Key         uint8
	Velocity    float64 // 0..1
	RawVelocity uint8
}

type NoteOff struct {
	Key         uint8
	Velocity    float64 // 0..1
	RawVelocity uint8
}

// Volume is CC7.
type Volume struct {
	Value float64 // 0..1
	Raw   uint8
}

// Pan is CC10. Value is (raw-64)/63 clamped below at -1, so raw 127
// yields exactly 1 and raw 0 yields -1.
type Pan struct {
	Value float64
	Raw   uint8
}

// PitchBend carries the bend already scaled by the channel's
// pitch-bend range at the moment it was translated.
type PitchBend struct {
	Semitones float64
	Raw       int16 // -8192..8191
}

type ProgramChange struct {
	Program uint8
}

type Tempo struct {
	BPM float64
}

// Modulation is CC1.
type Modulation struct {
	Value float64 // 0..1
	Raw   uint8
}

// Expression is CC11.
type Expression struct {
	Value float64 // 0..1
	Raw   uint8
}

func (NoteOn) body()        {}
func (NoteOff) body()       {}
func (Volume) body()        {}
func (Pan) body()           {}
func (PitchBend) body()     {}
func (ProgramChange) body() {}
func (Tempo) body()         {}
func (Modulation) body()    {}
func (Expression) body()    {}

func (b NoteOn) String() string {
	return fmt.Sprintf("NoteOn key=%d velocity=%.3f raw=%d", b.Key, b.Velocity, b.RawVelocity)
}

func (b NoteOff) String() string {
	return fmt.Sprintf("NoteOff key=%d velocity=%.3f raw=%d", b.Key, b.Velocity, b.RawVelocity)
}

func (b Volume) String() string {
	return fmt.Sprintf("Volume value=%.3f raw=%d", b.Value, b.Raw)
}

func (b Pan) String() string {
	return fmt.Sprintf("Pan value=%.3f raw=%d", b.Value, b.Raw)
}

func (b PitchBend) String() string {
	return fmt.Sprintf("PitchBend semitones=%.3f raw=%d", b.Semitones, b.Raw)
}

func (b ProgramChange) String() string {
	return fmt.Sprintf("ProgramChange program=%d", b.Program)
}

func (b Tempo) String() string {
	return fmt.Sprintf("Tempo bpm=%.3f", b.BPM)
}

func (b Modulation) String() string {
	return fmt.Sprintf("Modulation value=%.3f raw=%d", b.Value, b.Raw)
}

func (b Expression) String() string {
	return fmt.Sprintf("Expression value=%.3f raw=%d", b.Value, b.Raw)
}

func (e Event) String() string {
	return fmt.Sprintf("track=%d beat=%.3f channel=%d %v", e.Track, e.Beat, e.Channel, e.Body)
}
