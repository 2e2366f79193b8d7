package dialect

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DefaultPreferred lists the delimiters chosen first when several fit a sample.
var DefaultPreferred = []rune{',', '\t', ';', ' ', ':'}

// HeuristicSniffer infers a dialect the way spreadsheet importers usually do:
// first from quoted fields and the characters around them, then from
// characters that occur the same number of times on most lines.
type HeuristicSniffer struct {
	// Preferred breaks ties between several plausible delimiters
	Preferred []rune

	// Delimiters restricts the accepted delimiters; empty allows any
	Delimiters []rune
}

// NewSniffer returns a HeuristicSniffer with the default preferences.
func NewSniffer() *HeuristicSniffer {
	return &HeuristicSniffer{Preferred: DefaultPreferred}
}

// Sniff implements Sniffer.
func (s *HeuristicSniffer) Sniff(sample []byte) (Dialect, error) {
	sample = bytes.TrimPrefix(sample, utf8BOM)
	text := string(sample)

	d := Dialect{
		Quote:          '"',
		DoubleQuote:    true,
		LineTerminator: detectTerminator(text),
	}

	quote, delim, skipSpace, found := s.guessQuoteAndDelimiter(text)
	if found {
		d.Quote = quote
	}
	if delim == 0 {
		delim, skipSpace = s.guessDelimiter(text, d.Quote)
	}
	if delim == 0 {
		return Dialect{}, ErrNoDelimiter
	}

	d.Delimiter = delim
	d.SkipInitialSpace = skipSpace
	return d, nil
}

// Detect reads up to sampleSize bytes from rs, sniffs the dialect and rewinds rs.
func Detect(rs io.ReadSeeker, s Sniffer, sampleSize int) (Dialect, error) {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	buf := make([]byte, sampleSize)
	n, err := io.ReadFull(rs, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Dialect{}, fmt.Errorf("reading sample: %w", err)
	}

	d, err := s.Sniff(buf[:n])
	if err != nil {
		return Dialect{}, err
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return Dialect{}, fmt.Errorf("rewinding after sample: %w", err)
	}
	return d, nil
}

func detectTerminator(text string) string {
	i := strings.IndexAny(text, "\r\n")
	switch {
	case i < 0:
		return "\n"
	case text[i] == '\n':
		return "\n"
	case i+1 < len(text) && text[i+1] == '\n':
		return "\r\n"
	case i+1 == len(text):
		// sample ends between \r and a possible \n
		return "\r\n"
	default:
		return "\r"
	}
}

// guessQuoteAndDelimiter looks for quoted fields that start a line or follow a
// delimiter, and end a line or precede a delimiter. The most frequent quote
// character and the most frequent neighbouring delimiter win.
func (s *HeuristicSniffer) guessQuoteAndDelimiter(text string) (quote, delim rune, skipSpace, found bool) {
	r := []rune(text)
	quotes := make(map[rune]int)
	delims := make(map[rune]int)
	spaces := 0

	for i := 0; i < len(r); i++ {
		q := r[i]
		if q != '"' && q != '\'' {
			continue
		}

		atLineStart := i == 0 || r[i-1] == '\n' || r[i-1] == '\r'
		var lead rune
		leadSpace := false
		switch {
		case i >= 2 && r[i-1] == ' ' && s.isCandidate(r[i-2]) && r[i-2] != ' ':
			lead, leadSpace = r[i-2], true
		case i >= 1 && s.isCandidate(r[i-1]):
			lead = r[i-1]
		}
		if !atLineStart && lead == 0 {
			continue
		}

		end := closingQuote(r, i+1, q)
		if end < 0 {
			break
		}

		var trail rune
		trailSpace := false
		next := end + 1
		atLineEnd := next >= len(r) || r[next] == '\n' || r[next] == '\r'
		if !atLineEnd {
			if !s.isCandidate(r[next]) {
				continue
			}
			trail = r[next]
			trailSpace = next+1 < len(r) && r[next+1] == ' '
		}

		quotes[q]++
		switch {
		case lead != 0:
			delims[lead]++
			if leadSpace {
				spaces++
			}
		case trail != 0:
			delims[trail]++
			if trailSpace {
				spaces++
			}
		}
		i = end
	}

	if len(quotes) == 0 {
		return 0, 0, false, false
	}

	quote = maxKey(quotes, nil)
	if len(delims) > 0 {
		delim = maxKey(delims, s.Preferred)
		skipSpace = delims[delim] == spaces
	}
	return quote, delim, skipSpace, true
}

// closingQuote returns the index of the quote ending a field opened before
// start, skipping doubled quotes, or -1 when the sample ends first.
func closingQuote(r []rune, start int, q rune) int {
	for k := start; k < len(r); k++ {
		if r[k] != q {
			continue
		}
		if k+1 < len(r) && r[k+1] == q {
			k++
			continue
		}
		return k
	}
	return -1
}

type mode struct {
	freq  int
	count int
}

// guessDelimiter picks the character whose per-line frequency is the most
// consistent, examining the sample in chunks of ten lines.
func (s *HeuristicSniffer) guessDelimiter(text string, quote rune) (rune, bool) {
	lines := sampleLines(text)
	if len(lines) == 0 {
		return 0, false
	}

	candidates := make([]rune, 0, 32)
	for c := rune(0); c < 127; c++ {
		if c == quote || !s.isCandidate(c) {
			continue
		}
		candidates = append(candidates, c)
	}

	chunk := min(10, len(lines))
	frequency := make(map[rune]map[int]int)
	delims := make(map[rune]mode)

	for start, iteration := 0, 1; start < len(lines); start, iteration = start+chunk, iteration+1 {
		end := min(start+chunk, len(lines))
		for _, line := range lines[start:end] {
			for _, c := range candidates {
				counts := frequency[c]
				if counts == nil {
					counts = make(map[int]int)
					frequency[c] = counts
				}
				counts[strings.Count(line, string(c))]++
			}
		}

		modes := make(map[rune]mode)
		for c, counts := range frequency {
			if len(counts) == 1 && counts[0] > 0 {
				continue
			}
			modes[c] = modeOf(counts)
		}

		total := float64(min(chunk*iteration, len(lines)))
		for consistency := 1.0; len(delims) == 0 && consistency >= 0.9-1e-9; consistency -= 0.01 {
			for c, m := range modes {
				if m.freq > 0 && m.count > 0 && float64(m.count)/total >= consistency {
					delims[c] = m
				}
			}
		}

		if len(delims) == 1 {
			for c := range delims {
				return c, initialSpace(lines[0], c)
			}
		}
		if len(delims) > 1 {
			break
		}
	}

	if len(delims) == 0 {
		return 0, false
	}

	for _, p := range s.Preferred {
		if _, ok := delims[p]; ok {
			return p, initialSpace(lines[0], p)
		}
	}

	keys := make([]rune, 0, len(delims))
	for c := range delims {
		keys = append(keys, c)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := delims[keys[i]], delims[keys[j]]
		if a.freq != b.freq {
			return a.freq > b.freq
		}
		if a.count != b.count {
			return a.count > b.count
		}
		return keys[i] > keys[j]
	})
	return keys[0], initialSpace(lines[0], keys[0])
}

// modeOf returns the most common frequency, its count reduced by the number
// of lines that disagree with it.
func modeOf(counts map[int]int) mode {
	best := mode{freq: -1}
	others := 0
	for freq, count := range counts {
		if count > best.count || (count == best.count && freq > best.freq) {
			best = mode{freq: freq, count: count}
		}
	}
	for freq, count := range counts {
		if freq != best.freq {
			others += count
		}
	}
	best.count -= others
	return best
}

// sampleLines splits the sample into non-empty lines, dropping a final line
// the sample may have cut short.
func sampleLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	truncated := !strings.HasSuffix(text, "\n")

	raw := strings.Split(text, "\n")
	if truncated && len(raw) > 1 {
		raw = raw[:len(raw)-1]
	}

	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func initialSpace(line string, delim rune) bool {
	n := strings.Count(line, string(delim))
	return n > 0 && n == strings.Count(line, string(delim)+" ")
}

func (s *HeuristicSniffer) isCandidate(c rune) bool {
	if c == '\n' || c == '\r' || c == '"' || c == '\'' || c == '_' {
		return false
	}
	if unicode.IsLetter(c) || unicode.IsDigit(c) {
		return false
	}
	if len(s.Delimiters) > 0 {
		for _, d := range s.Delimiters {
			if d == c {
				return true
			}
		}
		return false
	}
	return true
}

// maxKey returns the key with the highest count. Ties go to the earliest
// preferred key, then to the lowest rune.
func maxKey(m map[rune]int, preferred []rune) rune {
	rank := func(c rune) int {
		for i, p := range preferred {
			if p == c {
				return i
			}
		}
		return len(preferred)
	}

	keys := make([]rune, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		if rank(keys[i]) != rank(keys[j]) {
			return rank(keys[i]) < rank(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys[0]
}
