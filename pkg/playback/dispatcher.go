package playback

import "github.com/Garik-/beatclock/pkg/score"

const defaultBPM = 120.0

// Dispatched is an event placed on the wall clock.
type Dispatched struct {
	BPM   float64 // tempo in effect after the event
	Time  float64 // seconds since the start of the stream
	DTime float64 // seconds since the previous event
	Event score.Event
}

// Dispatcher converts a beat-ordered event sequence into wall-clock time
// one event at a time. It is single pass; create a new one to restart.
type Dispatcher struct {
	events   []score.Event
	i        int
	bpm      float64
	time     float64
	lastBeat float64
}

func NewDispatcher(events []score.Event) *Dispatcher {
	return &Dispatcher{
		events: events,
		bpm:    defaultBPM,
	}
}

// Next returns the next event, or false once the sequence is exhausted.
func (d *Dispatcher) Next() (Dispatched, bool) {
	if d.i >= len(d.events) {
		return Dispatched{}, false
	}

	event := d.events[d.i]
	d.i++

	dtime := (event.Beat - d.lastBeat) * 60 / d.bpm
	d.time += dtime

	switch body := event.Body.(type) {
	case score.Tempo:
		d.bpm = body.BPM
	case score.NoteOn:
		// zero velocity note on is a release
		if body.Velocity == 0 {
			event.Body = score.NoteOff(body)
		}
	}

	d.lastBeat = event.Beat

	return Dispatched{
		BPM:   d.bpm,
		Time:  d.time,
		DTime: dtime,
		Event: event,
	}, true
}
