package midi

// Kind tells which fields of a Message are meaningful.
type Kind uint8

const (
	KindNoteOff Kind = iota + 1
	KindNoteOn
	KindPolyAftertouch
	KindControlChange
	KindProgramChange
	KindChannelAftertouch
	KindPitchBend
	KindSysEx
	KindTempo
	KindMeta
)

var voiceKinds = map[uint8]Kind{
	0x8: KindNoteOff,
	0x9: KindNoteOn,
	0xA: KindPolyAftertouch,
	0xB: KindControlChange,
	0xC: KindProgramChange,
	0xD: KindChannelAftertouch,
	0xE: KindPitchBend,
}

// Message is one decoded track event.
//
//	NoteOn, NoteOff, PolyAftertouch: Data1 = key, Data2 = velocity/pressure
//	ControlChange:                   Data1 = controller, Data2 = value
//	ProgramChange:                   Data1 = program
//	ChannelAftertouch:               Data1 = pressure
//	PitchBend:                       Bend in -8192..8191
//	Tempo:                           MicrosPerQuarter
//	Meta:                            MetaType
type Message struct {
	TimeDelta        uint32
	Kind             Kind
	Channel          uint8
	Data1            uint8
	Data2            uint8
	Bend             int16
	MicrosPerQuarter uint32
	MetaType         uint8
}

func (k Kind) String() string {
	switch k {
	case KindNoteOff:
		return "NoteOff"
	case KindNoteOn:
		return "NoteOn"
	case KindPolyAftertouch:
		return "PolyAftertouch"
	case KindControlChange:
		return "ControlChange"
	case KindProgramChange:
		return "ProgramChange"
	case KindChannelAftertouch:
		return "ChannelAftertouch"
	case KindPitchBend:
		return "PitchBend"
	case KindSysEx:
		return "SysEx"
	case KindTempo:
		return "Tempo"
	case KindMeta:
		return "Meta"
	}
	return "Unknown"
}
