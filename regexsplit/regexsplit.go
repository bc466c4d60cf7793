// Package regexsplit implements the RegexSplit operator of spec §4.3: it
// splits each input string into a ragged list of substrings on regex
// matches, with a configurable treatment of the delimiter spans themselves.
package regexsplit

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/openvino-tokenizers/tokengraph/strtensor"
)

// Behaviour selects how delimiter (matched) spans are folded into the
// output, per spec §4.3.
type Behaviour string

const (
	Removed            Behaviour = "removed"
	Isolated           Behaviour = "isolated"
	MergedWithPrevious Behaviour = "merged_with_previous"
	MergedWithNext     Behaviour = "merged_with_next"
)

// ErrUnknownBehaviour is returned by New for a behaviour outside the four
// recognized values.
var ErrUnknownBehaviour = errors.New("regexsplit: unknown split behaviour")

var knownBehaviours = map[Behaviour]bool{
	Removed:            true,
	Isolated:           true,
	MergedWithPrevious: true,
	MergedWithNext:     true,
}

// Splitter holds a compiled pattern and the configured split semantics.
// A Splitter is immutable after New and safe for concurrent use.
type Splitter struct {
	re        *regexp.Regexp
	behaviour Behaviour
	invert    bool
}

// New compiles pattern (RE2 syntax, per spec §4.2's syntax note) and
// validates behaviour.
func New(pattern string, behaviour Behaviour, invert bool) (*Splitter, error) {
	if !knownBehaviours[behaviour] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBehaviour, behaviour)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("regexsplit: invalid pattern %q: %w", pattern, err)
	}
	return &Splitter{re: re, behaviour: behaviour, invert: invert}, nil
}

// span is a half-open byte range within one word, tagged with whether it
// came from a regex match.
type span struct {
	start, end int
	isMatch    bool
}

// segments builds the alternating nonmatch/match/nonmatch/... decomposition
// of str, always emitting a nonmatch span around every match (even when
// zero-length, so that e.g. two adjacent delimiters produce an empty
// substring between them — spec §4.3 scenario 2), then applies invert and
// the configured behaviour.
func (s *Splitter) segments(str string) []span {
	matches := s.re.FindAllStringIndex(str, -1)

	var raw []span
	cursor := 0
	for _, m := range matches {
		raw = append(raw, span{start: cursor, end: m[0], isMatch: false})
		raw = append(raw, span{start: m[0], end: m[1], isMatch: true})
		cursor = m[1]
	}
	raw = append(raw, span{start: cursor, end: len(str), isMatch: false})

	if s.invert {
		for i := range raw {
			raw[i].isMatch = !raw[i].isMatch
		}
	}

	switch s.behaviour {
	case Removed:
		out := raw[:0:0]
		for _, sp := range raw {
			if !sp.isMatch {
				out = append(out, sp)
			}
		}
		return out

	case Isolated:
		return raw

	case MergedWithPrevious:
		out := raw[:0:0]
		for _, sp := range raw {
			if sp.isMatch && len(out) > 0 {
				out[len(out)-1].end = sp.end
			} else {
				out = append(out, sp)
			}
		}
		return out

	case MergedWithNext:
		rev := make([]span, 0, len(raw))
		for i := len(raw) - 1; i >= 0; i-- {
			sp := raw[i]
			if sp.isMatch && len(rev) > 0 {
				rev[len(rev)-1].start = sp.start
			} else {
				rev = append(rev, sp)
			}
		}
		out := make([]span, len(rev))
		for i, sp := range rev {
			out[len(rev)-1-i] = sp
		}
		return out

	default:
		return raw
	}
}

// Split applies the splitter to every word of every row in in, which may
// have been promoted from a flat String via strtensor.FlatString. The
// returned chars buffer aliases in.Chars (spec §4.3's zero-copy contract);
// only begins/ends/rag_begins/rag_ends are freshly allocated.
func (s *Splitter) Split(in strtensor.RaggedString) strtensor.RaggedString {
	newRagBegins := make([]int32, in.Rows())
	newRagEnds := make([]int32, in.Rows())
	var newBegins, newEnds []int32

	offset := int32(0)
	for row := 0; row < in.Rows(); row++ {
		newRagBegins[row] = offset
		wordBegin, wordEnd := in.Row(row)
		for word := wordBegin; word < wordEnd; word++ {
			base := in.Begins[word]
			str := string(in.At(int(word)))
			for _, sp := range s.segments(str) {
				newBegins = append(newBegins, base+int32(sp.start))
				newEnds = append(newEnds, base+int32(sp.end))
				offset++
			}
		}
		newRagEnds[row] = offset
	}

	return strtensor.RaggedString{
		RagBegins: newRagBegins,
		RagEnds:   newRagEnds,
		String: strtensor.String{
			Begins: newBegins,
			Ends:   newEnds,
			Chars:  in.Chars,
		},
	}
}
