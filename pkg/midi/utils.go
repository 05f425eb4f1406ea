package midi

func decodeVarint(buf []byte) (x uint32, n int) {
	for _, b := range buf {
		x = x<<7 | uint32(b)&0x7F
		n++
		if b&0x80 == 0 {
			return x, n
		}
	}

	return x, n
}

func isVoiceMsgType(b byte) bool {
	return 0x8 <= b && b <= 0xE
}
