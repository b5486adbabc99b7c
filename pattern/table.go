package pattern

// buildMatchTable lists the concrete positions after the first signature
// byte, relative to Bytes[1:]. Its length is the number of concrete bytes
// that must be verified and bounds the verification loop.
func buildMatchTable(p *Pattern) []uint16 {
	table := make([]uint16, 0, len(p.Mask))
	for i := 1; i < len(p.Mask); i++ {
		if p.Mask[i] != 1 {
			continue
		}
		table = append(table, uint16(i-1))
	}
	return table
}

// buildBlocks splits Bytes[1:] into 16 byte blocks, zero padding the last
// one. Block i covers Bytes[1+16*i : 1+16*i+16].
func buildBlocks(p *Pattern) [][vectorSize]byte {
	tail := p.Bytes[1:]
	blocks := make([][vectorSize]byte, (len(tail)+vectorSize-1)/vectorSize)
	for i := range blocks {
		copy(blocks[i][:], tail[i*vectorSize:])
	}
	return blocks
}
