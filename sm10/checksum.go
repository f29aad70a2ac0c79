package sm10

const crcPolynomial = 0x1021

// crc16 computes the CRC-16/CCITT value over payload, starting from 0.
// The SM10 control box computes the same value over the payload it
// receives and rejects frames whose trailing bytes disagree.
func crc16(payload []byte) uint16 {
	var crc uint16
	for _, b := range payload {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// Checksum returns the big-endian byte split of the frame checksum.
func Checksum(payload []byte) (msb, lsb byte) {
	crc := crc16(payload)
	return byte(crc >> 8), byte(crc)
}
