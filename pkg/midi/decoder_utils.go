package midi

import (
	"encoding/binary"
	"fmt"
	"io"
)

const maxVarLenBytes = 4

// add offset
func (d *Decoder) readByte() (byte, error) {
	var b byte
	err := binary.Read(d.r, binary.BigEndian, &b)
	if err == nil {
		d.offset += 1 // read byte
	}
	return b, err
}

func (d *Decoder) unreadByte() error {
	if _, err := d.r.Seek(-1, io.SeekCurrent); err != nil {
		return err
	}
	d.offset -= 1
	return nil
}

func (d *Decoder) uint7() (uint8, error) {
	b, err := d.readByte()
	if err != nil {
		return 0, err
	}
	if b&0x80 != 0 {
		return 0, fmt.Errorf("%w - status byte %#x inside message data at offset %d", ErrUnexpectedData, b, d.offset-1)
	}
	return b, nil
}

// varLen returns the variable length value at the exact parser location.
func (d *Decoder) varLen() (uint32, error) {
	buf := make([]byte, 0, maxVarLenBytes)

	for {
		b, err := d.readByte()
		if err != nil {
			if len(buf) > 0 {
				return 0, eofInChunk(err)
			}
			return 0, err
		}
		buf = append(buf, b)
		if b&0x80 == 0 {
			break
		}
		if len(buf) == maxVarLenBytes {
			return 0, fmt.Errorf("%w - variable length quantity exceeds %d bytes at offset %d", ErrUnexpectedData, maxVarLenBytes, d.offset)
		}
	}

	val, _ := decodeVarint(buf)
	return val, nil
}

// varLenTxt skips a length-prefixed payload (sysex, meta text).
func (d *Decoder) varLenTxt() error {
	l, err := d.varLen()
	if err != nil {
		return err
	}
	return d.skip(int64(l))
}

func (d *Decoder) skip(n int64) error {
	if n == 0 {
		return nil
	}
	if _, err := d.r.Seek(n, io.SeekCurrent); err != nil {
		return err
	}
	d.offset += n
	return nil
}

func (d *Decoder) IDnSize() ([4]byte, uint32, error) {
	var ID [4]byte
	if err := d.read(&ID, 4); err != nil {
		return ID, 0, err
	}

	var size uint32
	if err := d.read(&size, 4); err != nil {
		return ID, 0, eofInChunk(err)
	}

	return ID, size, nil
}
