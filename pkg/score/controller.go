package score

const (
	ccModulation  = 1
	ccDataEntry   = 6
	ccVolume      = 7
	ccPan         = 10
	ccExpression  = 11
	ccRPNLsb      = 100
	ccRPNMsb      = 101
	numChannels   = 16
	nullRPN       = 127
	bendHalfRange = 8192.0

	defaultBendRange = 2.0
)

type channelState struct {
	bendRange float64 // semitones
	rpnLsb    uint8
	rpnMsb    uint8
}

// controllers holds the RPN context of every channel for the duration of
// one Build call.
type controllers [numChannels]channelState

func newControllers() *controllers {
	var c controllers
	for i := range c {
		c[i] = channelState{
			bendRange: defaultBendRange,
			rpnLsb:    nullRPN,
			rpnMsb:    nullRPN,
		}
	}
	return &c
}

// control applies a controller change to the channel state. Only RPN
// select and data entry on the pitch-bend sensitivity RPN have an effect.
func (c *controllers) control(channel, controller, value uint8) {
	s := &c[channel&0x0F]

	switch controller {
	case ccRPNLsb:
		s.rpnLsb = value
	case ccRPNMsb:
		s.rpnMsb = value
	case ccDataEntry:
		if s.rpnLsb == 0 && s.rpnMsb == 0 {
			s.bendRange = float64(value)
		}
	}
}

func (c *controllers) bendSemitones(channel uint8, raw int16) float64 {
	return normalizeBend(raw) * c[channel&0x0F].bendRange
}

// normalizeBend maps -8192..8191 to -1..~0.99988.
func normalizeBend(raw int16) float64 {
	return float64(raw) / bendHalfRange
}
