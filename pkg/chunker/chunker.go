// Package chunker splits extracted document text into overlapping
// fixed-size windows with positional metadata. Pure functions: the same
// input always yields the same chunks, which is what makes re-ingestion
// idempotent.
package chunker

import (
	"regexp"
	"strings"

	"ragchat/entities"
)

const (
	DefaultChunkSize = 1500
	DefaultOverlap   = 300

	// maxSnapTolerance caps how far a boundary may move to land on
	// whitespace.
	maxSnapTolerance = 50
)

var (
	multiSpaceRx = regexp.MustCompile(`\s+`)
	garbageRx    = regexp.MustCompile(`[^\w\s.,!?;:\-()\[\]"']+`)
	punctGapRx   = regexp.MustCompile(`\s+([.!?,;:])`)
)

// CleanText normalises extracted text before chunking: collapses
// whitespace runs, strips non-textual characters while keeping
// punctuation, and removes stray spaces before punctuation.
func CleanText(text string) string {
	text = multiSpaceRx.ReplaceAllString(text, " ")
	text = garbageRx.ReplaceAllString(text, "")
	text = punctGapRx.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// Chunk splits text into windows of size characters, each subsequent
// window overlapping the previous by roughly overlap characters.
// Boundaries snap to nearby whitespace so words are not cut mid-way;
// the overlap is therefore a best-effort count, not exact. Windows that
// are empty after trimming are dropped. Offsets are rune positions into
// the input text.
func Chunk(jobID, sourceFilename, text string, size, overlap int) ([]entities.Chunk, error) {
	if size <= 0 {
		return nil, &entities.ConfigError{Reason: "chunk size must be positive"}
	}
	if overlap < 0 || overlap >= size {
		return nil, &entities.ConfigError{Reason: "chunk overlap must be in [0, size)"}
	}

	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil, nil
	}

	tol := size / 10
	if tol > maxSnapTolerance {
		tol = maxSnapTolerance
	}

	step := size - overlap
	chunks := make([]entities.Chunk, 0, n/step+1)
	start := 0
	seq := 0
	for start < n {
		end := start + size
		if end >= n {
			end = n
		} else {
			end = snapToWhitespace(runes, end, start, tol)
		}

		window := string(runes[start:end])
		if strings.TrimSpace(window) != "" {
			chunks = append(chunks, entities.Chunk{
				ID:             entities.ChunkID(jobID, sourceFilename, seq),
				JobID:          jobID,
				SourceFilename: sourceFilename,
				SequenceIndex:  seq,
				Text:           window,
				CharStart:      start,
				CharEnd:        end,
			})
			seq++
		}

		if end >= n {
			break
		}
		next := end - overlap
		if next <= start {
			next = start + step
		}
		start = next
	}
	return chunks, nil
}

// snapToWhitespace moves a nominal boundary onto the nearest whitespace
// within tol runes, preferring lookback. The boundary never moves at or
// before lo, which would stall the window loop.
func snapToWhitespace(runes []rune, end, lo, tol int) int {
	if isSpace(runes[end-1]) || isSpace(runes[end]) {
		return end
	}
	for d := 1; d <= tol; d++ {
		if b := end - d; b > lo+1 && isSpace(runes[b-1]) {
			return b
		}
		if f := end + d; f < len(runes) && isSpace(runes[f-1]) {
			return f
		}
	}
	return end
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
