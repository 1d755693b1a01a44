package parser

import "fmt"

// SyntaxError reports a malformed pattern. Pos is the byte offset in the
// pattern where the problem was detected.
type SyntaxError struct {
	Pattern string
	Flags   string
	Pos     int
	Msg     string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid regular expression /%s/%s: %s (at offset %d)", e.Pattern, e.Flags, e.Msg, e.Pos)
}

// Error messages. They follow the wording of the major JavaScript engines so
// users recognise them.
const (
	msgUnterminatedGroup  = "Unterminated group"
	msgUnmatchedParen     = "Unmatched ')'"
	msgUnterminatedClass  = "Unterminated character class"
	msgNothingToRepeat    = "Nothing to repeat"
	msgLoneBrackets       = "Lone quantifier brackets"
	msgOutOfOrder         = "numbers out of order in {} quantifier"
	msgRangeOutOfOrder    = "Range out of order in character class"
	msgInvalidClass       = "Invalid character class"
	msgInvalidEscape      = "Invalid escape"
	msgInvalidClassEscape = "Invalid class escape"
	msgInvalidDecimal     = "Invalid decimal escape"
	msgInvalidUnicode     = "Invalid Unicode escape"
	msgInvalidProperty    = "Invalid property name"
	msgInvalidGroup       = "Invalid group"
	msgInvalidGroupName   = "Invalid capture group name"
	msgDuplicateName      = "Duplicate capture group name"
	msgInvalidNamedRef    = "Invalid named capture referenced"
	msgInvalidNamedRefTok = "Invalid named reference"
	msgTrailingBackslash  = "\\ at end of pattern"
	msgSetOperation       = "Class set operations are not supported"
	msgUnescapedSlash     = "Unescaped '/' in regular expression literal"
	msgLineTerminator     = "Line terminator in regular expression literal"
	msgEmptyLiteral       = "Empty regular expression literal"
)
