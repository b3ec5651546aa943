package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// TextNormalizer repairs encoding artifacts in catalog free text.
// Inventories exported through spreadsheet tools often carry UTF-8
// punctuation that was decoded as Windows-1252 and re-encoded, e.g. "â€”"
// for an em dash. Keyword matching and display both run on repaired text.
type TextNormalizer struct {
	replacer *strings.Replacer
}

// Compiled patterns for text normalization
var (
	// A UTF-8 lead byte rendered as Latin-1 followed by one or more
	// continuation bytes rendered as Windows-1252
	mojibakeRunPattern = regexp.MustCompile(
		`[\x{00C2}-\x{00F4}][\x{0080}-\x{00BF}\x{0152}\x{0153}\x{0160}\x{0161}\x{0178}\x{017D}\x{017E}\x{0192}\x{02C6}\x{02DC}\x{2013}-\x{2122}]+`,
	)

	whitespacePattern = regexp.MustCompile(`[ \t\x{00A0}]+`)
)

// knownMojibake maps the corrupted sequences seen in real inventories to
// the punctuation they started as. Longest sequences first.
var knownMojibake = []string{
	"â€\u009d", "”",
	"â€�", "”",
	"â€”", "—",
	"â€“", "–",
	"â€˜", "‘",
	"â€™", "’",
	"â€œ", "“",
	"â€¦", "…",
	"â€¢", "•",
	"Â·", "·",
	"Â\u00a0", " ",
	"\ufeff", "",
}

// NewTextNormalizer creates a text normalizer
func NewTextNormalizer() *TextNormalizer {
	return &TextNormalizer{replacer: strings.NewReplacer(knownMojibake...)}
}

// Normalize repairs known and generic mojibake and collapses whitespace
func (n *TextNormalizer) Normalize(s string) string {
	if s == "" {
		return ""
	}

	// Step 1: known sequences
	s = n.replacer.Replace(s)

	// Step 2: any remaining run that round-trips through Windows-1252 into
	// valid UTF-8 was double-encoded
	if !isASCII(s) {
		s = mojibakeRunPattern.ReplaceAllStringFunc(s, repairRun)
	}

	// Step 3: whitespace
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// repairRun re-encodes a suspected mojibake run to Windows-1252 bytes and
// keeps the result only when those bytes form valid UTF-8
func repairRun(run string) string {
	raw, err := charmap.Windows1252.NewEncoder().String(run)
	if err != nil {
		return run
	}
	if !utf8.ValidString(raw) {
		return run
	}
	return raw
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
