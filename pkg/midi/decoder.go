package midi

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

type nextChunkType int

const (
	eventChunk nextChunkType = iota + 1
	trackChunk
)

type timeFormat int

const (
	MetricalTF timeFormat = iota + 1
	TimeCodeTF
)

const (
	metaEndOfTrack = 0x2F
	metaTempo      = 0x51
)

var (
	headerChunkID = [4]byte{0x4D, 0x54, 0x68, 0x64}
	trackChunkID  = [4]byte{0x4D, 0x54, 0x72, 0x6B}

	// ErrMalformedFile is wrapped by every error returned from Decode.
	ErrMalformedFile = errors.New("malformed midi file")
	// ErrFmtNotSupported is a generic error reporting an unknown format.
	ErrFmtNotSupported = errors.New("format not supported")
	// ErrUnexpectedData is a generic error reporting that the parser encountered unexpected data.
	ErrUnexpectedData = errors.New("unexpected data content")
)

type Track struct {
	Messages []*Message
}

type Decoder struct {
	r          io.ReadSeeker
	offset     int64
	chunkEnd   int64
	status     byte
	endOfTrack bool

	currentTrack *Track

	Format              uint16
	TicksPerQuarterNote uint16
	TimeFormat          timeFormat
	Tracks              []*Track
}

// DecodeBytes decodes a whole SMF held in memory.
func DecodeBytes(data []byte) (*Decoder, error) {
	d := NewDecoder(bytes.NewReader(data))
	if err := d.Decode(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Decoder) Decode() error {
	if err := d.decode(); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("%w: %w", ErrMalformedFile, err)
	}
	return nil
}

func (d *Decoder) decode() error {
	log := decoderLog.Named("Decode")

	if _, err := d.r.Seek(0, io.SeekStart); err != nil {
		return err
	}

	d.offset = 0
	d.Tracks = nil

	var code [4]byte
	if err := d.read(&code, 4); err != nil {
		return err
	}

	if code != headerChunkID {
		return fmt.Errorf("%w - %v", ErrFmtNotSupported, code)
	}

	var headerSize uint32
	if err := d.read(&headerSize, 4); err != nil {
		return err
	}

	if headerSize != 6 {
		return fmt.Errorf("%w - expected header size to be 6, was %d", ErrFmtNotSupported, headerSize)
	}

	var numTracks, division uint16
	if err := d.read(&d.Format, 2); err != nil {
		return err
	}
	if err := d.read(&numTracks, 2); err != nil {
		return err
	}
	if err := d.read(&division, 2); err != nil {
		return err
	}

	if (division & 0x8000) == 0 {
		d.TicksPerQuarterNote = division & 0x7FFF
		d.TimeFormat = MetricalTF
	} else {
		d.TimeFormat = TimeCodeTF
	}

	log.Debug("header",
		zap.Uint16("format", d.Format),
		zap.Uint16("tracks", numTracks),
		zap.Uint16("ticksPerQuarterNote", d.TicksPerQuarterNote),
		zap.Bool("timecode", d.TimeFormat == TimeCodeTF))

	nextChunk := trackChunk
	var err error
	for {
		switch nextChunk {
		case eventChunk:
			nextChunk, err = d.parseEvent()
		case trackChunk:
			nextChunk, err = d.parseTrack()
		}

		if err == io.EOF && nextChunk == trackChunk {
			break
		}
		if err != nil {
			return err
		}
	}

	if int(numTracks) != len(d.Tracks) {
		log.Debug("track count mismatch", zap.Uint16("declared", numTracks), zap.Int("found", len(d.Tracks)))
	}

	return nil
}

// parseTrack reads the next chunk header. io.EOF at a chunk boundary is
// the regular end of the file.
func (d *Decoder) parseTrack() (nextChunkType, error) {
	id, size, err := d.IDnSize()
	if err != nil {
		return trackChunk, err
	}

	if id != trackChunkID {
		decoderLog.Debug("skip alien chunk", zap.ByteString("id", id[:]), zap.Uint32("size", size))
		if err := d.skip(int64(size)); err != nil {
			return eventChunk, err
		}
		return trackChunk, nil
	}

	d.chunkEnd = d.offset + int64(size)
	d.status = 0
	d.endOfTrack = false
	d.currentTrack = new(Track)
	d.Tracks = append(d.Tracks, d.currentTrack)

	return eventChunk, nil
}

func (d *Decoder) finishTrack() (nextChunkType, error) {
	if d.offset > d.chunkEnd {
		return eventChunk, fmt.Errorf("%w - event overruns track chunk end at %d", ErrUnexpectedData, d.chunkEnd)
	}
	// trailing bytes after End of Track are ignored
	if err := d.skip(d.chunkEnd - d.offset); err != nil {
		return eventChunk, err
	}
	return trackChunk, nil
}

func (d *Decoder) parseEvent() (nextChunkType, error) {
	if d.endOfTrack || d.offset >= d.chunkEnd {
		return d.finishTrack()
	}

	timeDelta, err := d.varLen()
	if err != nil {
		return eventChunk, eofInChunk(err)
	}

	// status byte give us the msg type and channel.
	statusByte, err := d.readByte()
	if err != nil {
		return eventChunk, eofInChunk(err)
	}

	if statusByte&0x80 == 0 {
		if d.status == 0 {
			return eventChunk, fmt.Errorf("%w - data byte %#x without running status at offset %d", ErrUnexpectedData, statusByte, d.offset-1)
		}
		if err := d.unreadByte(); err != nil {
			return eventChunk, err
		}
		statusByte = d.status
	}

	m := &Message{TimeDelta: timeDelta}

	switch {
	case isVoiceMsgType(statusByte >> 4):
		d.status = statusByte
		m.Channel = statusByte & 0x0F
		if err := d.parseVoiceMsg(m, statusByte>>4); err != nil {
			return eventChunk, eofInChunk(err)
		}

	case statusByte == 0xF0 || statusByte == 0xF7:
		d.status = 0
		m.Kind = KindSysEx
		if err := d.varLenTxt(); err != nil {
			return eventChunk, eofInChunk(err)
		}

	case statusByte == 0xFF:
		d.status = 0
		if err := d.parseMetaMsg(m); err != nil {
			return eventChunk, eofInChunk(err)
		}

	default:
		return eventChunk, fmt.Errorf("%w - status %#x not allowed in a track at offset %d", ErrUnexpectedData, statusByte, d.offset-1)
	}

	d.currentTrack.Messages = append(d.currentTrack.Messages, m)

	return eventChunk, nil
}

func (d *Decoder) parseVoiceMsg(m *Message, msgType uint8) error {
	var err error

	// Extract values based on message type
	switch msgType {
	case 0x8, 0x9, 0xA, 0xB:
		if m.Data1, err = d.uint7(); err != nil {
			return err
		}
		if m.Data2, err = d.uint7(); err != nil {
			return err
		}

	case 0xC, 0xD:
		if m.Data1, err = d.uint7(); err != nil {
			return err
		}

	case 0xE:
		var lsb, msb uint8
		if lsb, err = d.uint7(); err != nil {
			return err
		}
		if msb, err = d.uint7(); err != nil {
			return err
		}
		m.Bend = int16(uint16(msb)<<7|uint16(lsb)) - 8192
	}

	m.Kind = voiceKinds[msgType]
	return nil
}

func (d *Decoder) parseMetaMsg(m *Message) error {
	var err error
	if m.MetaType, err = d.readByte(); err != nil {
		return err
	}

	switch m.MetaType {
	case metaTempo:
		l, err := d.varLen()
		if err != nil {
			return err
		}
		if l != 3 {
			return fmt.Errorf("%w - tempo meta of length %d", ErrUnexpectedData, l)
		}
		var b [3]byte
		if err := d.read(&b, 3); err != nil {
			return err
		}
		m.Kind = KindTempo
		m.MicrosPerQuarter = uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
		if m.MicrosPerQuarter == 0 {
			return fmt.Errorf("%w - zero tempo", ErrUnexpectedData)
		}

	case metaEndOfTrack:
		m.Kind = KindMeta
		d.endOfTrack = true
		return d.varLenTxt()

	default:
		m.Kind = KindMeta
		return d.varLenTxt()
	}

	return nil
}

// eofInChunk turns a clean EOF inside a declared track chunk into a
// truncation error so the main loop does not treat it as end of file.
func eofInChunk(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func (d *Decoder) read(v interface{}, size int64) error {
	if err := binary.Read(d.r, binary.BigEndian, v); err != nil {
		return err
	}
	d.offset += size
	return nil
}

func NewDecoder(r io.ReadSeeker) *Decoder {
	return &Decoder{r: r, offset: 0}
}
