package expr

// Metadata is a human readable title and description for a flag or token.
type Metadata struct {
	Title string `json:"title" yaml:"title"`
	Desc  string `json:"desc" yaml:"desc"`
}

// FlagMetadata describes the flags offered to users. The "empty" key is shown
// when no flag is selected.
var FlagMetadata = map[string]Metadata{
	"g": {Title: "Global", Desc: "Matches all occurrences of the pattern in a string."},
	"i": {Title: "Ignore Case", Desc: "Makes the pattern case-insensitive."},
	"m": {Title: "Multiline", Desc: "Makes the pattern match the beginning or end of each line."},
	"s": {Title: "Single Line", Desc: "Allows the dot `.` to match newline characters."},
	"u": {Title: "Unicode", Desc: "Enables support for Unicode properties."},
	"empty": {
		Title: "Set Regex Flags",
		Desc:  "Expression flags change how the expression is interpreted.",
	},
}

// TokenMetadata describes the structural tokens of a regular expression literal.
var TokenMetadata = map[string]Metadata{
	"/-open":  {Title: "Open", Desc: "Indicates the start of a regular expression."},
	"/-close": {Title: "Close", Desc: "Indicates the end of a regular expression and the start of expression flags."},
	"^":       {Title: "Start", Desc: "Indicates the start of a string."},
	"$":       {Title: "End", Desc: "Indicates the end of a string."},
	".":       {Title: "Any", Desc: "Matches any single character except the newline character."},
	"|":       {Title: "Or", Desc: "Matches any one of the patterns separated by the `|` symbol."},
	`\`:       {Title: "Escape", Desc: "Escapes a special character."},
}
