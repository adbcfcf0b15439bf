package moved

// Block is a contiguous run of lines on one side of a move.
type Block struct {
	File      string `json:"file"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	CharCount int    `json:"char_count"`
}

func newBlock(line Line) Block {
	return Block{
		File:      line.file,
		Start:     line.number,
		End:       line.number,
		CharCount: len(line.trimText),
	}
}

func (b Block) LineCount() int {
	return b.End - b.Start + 1
}

// CanExtendWith reports whether line continues the block.
func (b Block) CanExtendWith(line Line) bool {
	return b.File == line.file && b.End+1 == line.number
}

func (b *Block) extend(line Line) {
	b.End++
	b.CharCount += len(line.trimText)
}
