package assembler

// Segmenter cuts buffered content into chunks. A Segmenter is stateful and
// serves exactly one stream.
type Segmenter interface {
	// Write buffers a fragment and returns any chunks it completes.
	Write(fragment string) []string
	// Boundary is called on a turn boundary event.
	Boundary() []string
	// Flush returns whatever is buffered and resets the buffer.
	Flush() []string
}

// Strategy creates a fresh Segmenter per stream.
type Strategy func() Segmenter

// DefaultChunkSize is the rune threshold used by FixedSize when n <= 0.
const DefaultChunkSize = 80

// TurnBoundary emits one chunk per non-empty turn segment.
func TurnBoundary() Strategy {
	return func() Segmenter { return &boundarySegmenter{} }
}

// FixedSize emits a chunk every n runes and ignores turn boundaries.
func FixedSize(n int) Strategy {
	if n <= 0 {
		n = DefaultChunkSize
	}
	return func() Segmenter { return &fixedSegmenter{size: n} }
}

// WholeMessage emits all content as a single chunk at the end.
func WholeMessage() Strategy {
	return func() Segmenter { return &wholeSegmenter{} }
}

type boundarySegmenter struct {
	buf []byte
}

func (s *boundarySegmenter) Write(fragment string) []string {
	s.buf = append(s.buf, fragment...)
	return nil
}

func (s *boundarySegmenter) Boundary() []string { return s.Flush() }

func (s *boundarySegmenter) Flush() []string {
	if len(s.buf) == 0 {
		return nil
	}
	out := string(s.buf)
	s.buf = s.buf[:0]
	return []string{out}
}

type fixedSegmenter struct {
	size int
	buf  []rune
}

func (s *fixedSegmenter) Write(fragment string) []string {
	s.buf = append(s.buf, []rune(fragment)...)
	var out []string
	for len(s.buf) >= s.size {
		out = append(out, string(s.buf[:s.size]))
		s.buf = append(s.buf[:0], s.buf[s.size:]...)
	}
	return out
}

func (s *fixedSegmenter) Boundary() []string { return nil }

func (s *fixedSegmenter) Flush() []string {
	if len(s.buf) == 0 {
		return nil
	}
	out := string(s.buf)
	s.buf = s.buf[:0]
	return []string{out}
}

type wholeSegmenter struct {
	boundarySegmenter
}

func (s *wholeSegmenter) Boundary() []string { return nil }

// SplitText re-segments a complete text with strategy. Turn boundaries do
// not exist after the fact, so TurnBoundary yields at most one chunk.
func SplitText(text string, strategy Strategy) []string {
	seg := strategy()
	out := seg.Write(text)
	return append(out, seg.Flush()...)
}
