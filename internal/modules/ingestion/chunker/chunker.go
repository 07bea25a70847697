package chunker

const (
	DefaultWindowSize = 500
	DefaultOverlap    = 50
)

// Chunk is one window of the source text. Ordinal is zero-based.
type Chunk struct {
	Ordinal int
	Content string
}

type options struct {
	windowSize int
	overlap    int
}

type Option func(*options)

func WithWindowSize(n int) Option {
	return func(o *options) { o.windowSize = n }
}

func WithOverlap(n int) Option {
	return func(o *options) { o.overlap = n }
}

func resolve(opts []Option) options {
	o := options{windowSize: DefaultWindowSize, overlap: DefaultOverlap}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	if o.windowSize <= 0 {
		o.windowSize = DefaultWindowSize
	}
	if o.overlap < 0 || o.overlap >= o.windowSize {
		o.overlap = DefaultOverlap
		if o.overlap >= o.windowSize {
			o.overlap = 0
		}
	}
	return o
}

// Split cuts text into windows of at most windowSize runes. Each window starts
// windowSize-overlap runes after the previous one and the last window ends at the
// end of the text. Content is never trimmed.
func Split(text string, opts ...Option) []Chunk {
	if text == "" {
		return []Chunk{}
	}
	o := resolve(opts)
	runes := []rune(text)
	n := len(runes)
	if n <= o.windowSize {
		return []Chunk{{Ordinal: 0, Content: text}}
	}

	step := o.windowSize - o.overlap
	out := make([]Chunk, 0, n/step+1)
	for start := 0; ; start += step {
		end := start + o.windowSize
		if end >= n {
			out = append(out, Chunk{Ordinal: len(out), Content: string(runes[start:n])})
			break
		}
		out = append(out, Chunk{Ordinal: len(out), Content: string(runes[start:end])})
	}
	return out
}

// Stitch rebuilds the text Split was given, using the same overlap.
func Stitch(chunks []Chunk, overlap int) string {
	if len(chunks) == 0 {
		return ""
	}
	if overlap < 0 {
		overlap = 0
	}
	buf := make([]rune, 0, len(chunks)*DefaultWindowSize)
	buf = append(buf, []rune(chunks[0].Content)...)
	for _, c := range chunks[1:] {
		r := []rune(c.Content)
		if len(r) <= overlap {
			continue
		}
		buf = append(buf, r[overlap:]...)
	}
	return string(buf)
}
