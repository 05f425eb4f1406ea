package roll

import (
	"strconv"
	"strings"

	"github.com/Garik-/beatclock/pkg/playback"
	"github.com/Garik-/beatclock/pkg/score"
	"github.com/charmbracelet/lipgloss"
)

const (
	numKeys     = 128
	numChannels = 16
)

// Keyboard counts sounding notes per (channel, key).
type Keyboard struct {
	sounding [numChannels][numKeys]int
	styles   [numChannels]lipgloss.Style
}

// NewKeyboard colours each channel with ANSI 256 colour channel*3+30
// through r; pass nil for the default renderer.
func NewKeyboard(r *lipgloss.Renderer) *Keyboard {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}

	k := &Keyboard{}
	for ch := range k.styles {
		k.styles[ch] = r.NewStyle().Foreground(lipgloss.Color(strconv.Itoa(ch*3 + 30)))
	}
	return k
}

func (k *Keyboard) Apply(e playback.Dispatched) {
	ch := e.Event.Channel & 0x0F

	switch b := e.Event.Body.(type) {
	case score.NoteOn:
		k.sounding[ch][b.Key&0x7F]++
	case score.NoteOff:
		if k.sounding[ch][b.Key&0x7F] > 0 {
			k.sounding[ch][b.Key&0x7F]--
		}
	}
}

// Sounding reports whether key is held on channel.
func (k *Keyboard) Sounding(channel, key uint8) bool {
	return k.sounding[channel&0x0F][key&0x7F] > 0
}

// Channel returns the lowest channel holding key.
func (k *Keyboard) Channel(key uint8) (uint8, bool) {
	for ch := 0; ch < numChannels; ch++ {
		if k.sounding[ch][key&0x7F] > 0 {
			return uint8(ch), true
		}
	}
	return 0, false
}

// Render draws one column per key.
func (k *Keyboard) Render() string {
	var sb strings.Builder
	for key := 0; key < numKeys; key++ {
		ch, ok := k.Channel(uint8(key))
		if !ok {
			sb.WriteByte(' ')
			continue
		}
		sb.WriteString(k.styles[ch].Render("|"))
	}
	return sb.String()
}
