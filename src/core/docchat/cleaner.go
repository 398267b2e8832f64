package docchat

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reHyphenBreak        = regexp.MustCompile(`(\w+)-\s*\n\s*(\w+)`)
	reMultiSpace         = regexp.MustCompile(` +`)
	reTabs               = regexp.MustCompile(`\t+`)
	reSpaceAfterNewline  = regexp.MustCompile(`\n +`)
	reSpaceBeforeNewline = regexp.MustCompile(` +\n`)
	reExtraNewlines      = regexp.MustCompile(`\n{3,}`)
	rePageNumberLine     = regexp.MustCompile(`\n\s*\d+\s*\n`)
	reRomanNumeralLine   = regexp.MustCompile(`(?i)\n\s*[ivxlcdm]+\s*\n`)
	rePipeSpacing        = regexp.MustCompile(` +\| +`)
	reLeadingPipe        = regexp.MustCompile(`(?m)^\| +`)
	reTrailingPipe       = regexp.MustCompile(`(?m) +\|$`)
	reBulletIndent       = regexp.MustCompile(`\n +([•\-\*\+])`)
	reNumberedIndent     = regexp.MustCompile(`\n +(\d+\.)`)
	reHeaderIndent       = regexp.MustCompile(`\n +(#+)`)
	reHeaderSpacing      = regexp.MustCompile(`(#+) +([^\n]+)`)
	reDotRun             = regexp.MustCompile(`\.{3,}`)
	reDashRun            = regexp.MustCompile(`-{3,}`)
	reDoubleQuotes       = regexp.MustCompile(`[\x{201C}\x{201D}\x{201E}]`)
	reSingleQuotes       = regexp.MustCompile(`[\x{2018}\x{2019}]`)
	reZeroWidth          = regexp.MustCompile(`[\x{200B}\x{200C}\x{200D}\x{FEFF}]`)

	lineEndingReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// CleanText normalizes raw extracted page text for embedding and chunking
// while preserving markdown structure. The pass fixes hyphenation broken
// across line breaks, collapses whitespace, strips standalone page numbers
// and roman numerals, normalizes table pipes, list and header indentation,
// punctuation runs, smart quotes, and zero-width characters.
func CleanText(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	text = norm.NFKD.String(text)

	// hyphenated words broken across lines
	text = reHyphenBreak.ReplaceAllString(text, "$1$2")

	// collapse whitespace, keep line structure
	text = reMultiSpace.ReplaceAllString(text, " ")
	text = reTabs.ReplaceAllString(text, " ")
	text = reSpaceAfterNewline.ReplaceAllString(text, "\n")
	text = reSpaceBeforeNewline.ReplaceAllString(text, "\n")

	// at most one blank line between paragraphs
	text = reExtraNewlines.ReplaceAllString(text, "\n\n")
	text = lineEndingReplacer.Replace(text)

	// standalone page numbers and roman numerals from headers/footers
	text = rePageNumberLine.ReplaceAllString(text, "\n")
	text = reRomanNumeralLine.ReplaceAllString(text, "\n")

	// markdown table pipe spacing
	text = rePipeSpacing.ReplaceAllString(text, " | ")
	text = reLeadingPipe.ReplaceAllString(text, "| ")
	text = reTrailingPipe.ReplaceAllString(text, " |")

	// list and header indentation
	text = reBulletIndent.ReplaceAllString(text, "\n$1")
	text = reNumberedIndent.ReplaceAllString(text, "\n$1")
	text = reHeaderIndent.ReplaceAllString(text, "\n$1")
	text = reHeaderSpacing.ReplaceAllString(text, "$1 $2")

	// punctuation runs
	text = reDotRun.ReplaceAllString(text, "...")
	text = reDashRun.ReplaceAllString(text, "---")

	// smart quotes and invisible characters
	text = reDoubleQuotes.ReplaceAllString(text, `"`)
	text = reSingleQuotes.ReplaceAllString(text, "'")
	text = reZeroWidth.ReplaceAllString(text, "")

	text = strings.TrimSpace(text)
	return strings.Trim(text, "\n")
}
