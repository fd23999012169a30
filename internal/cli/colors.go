package cli

import "fmt"

// ANSI color codes shared by every command
const (
	Reset = "\033[0m"

	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
	White  = "\033[37m"
	Gray   = "\033[90m"

	Bold = "\033[1m"
	Dim  = "\033[2m"
)

// Predefined color combinations for consistency
var (
	HeaderStyle = Cyan + Bold

	SuccessStyle = Green + Bold
	ErrorStyle   = Red + Bold
	WarningStyle = Yellow + Bold
	InfoStyle    = Blue + Bold

	LabelStyle = Cyan
	ValueStyle = White + Bold
	DimStyle   = Dim
	CountStyle = Yellow + Bold

	SecondaryStyle = Blue
	MetaStyle      = Gray
)

func FormatHeader(text string) string {
	return HeaderStyle + text + Reset
}

func FormatSuccess(text string) string {
	return SuccessStyle + text + Reset
}

func FormatError(text string) string {
	return ErrorStyle + text + Reset
}

func FormatWarning(text string) string {
	return WarningStyle + text + Reset
}

func FormatValue(text string) string {
	return ValueStyle + text + Reset
}

func FormatCount(count int) string {
	return CountStyle + fmt.Sprintf("%d", count) + Reset
}

func FormatSecondary(text string) string {
	return SecondaryStyle + text + Reset
}

func FormatMeta(text string) string {
	return MetaStyle + text + Reset
}

// FormatLabelValue formats a label-value pair
func FormatLabelValue(label, value string) string {
	return LabelStyle + label + Reset + " " + ValueStyle + value + Reset
}

// FormatRank colors a rank: green at the top, yellow in the podium, red below.
// A nil rank means the brand was not ranked.
func FormatRank(rank *float64) string {
	if rank == nil {
		return MetaStyle + "unranked" + Reset
	}
	text := fmt.Sprintf("%.1f", *rank)
	switch {
	case *rank <= 1.5:
		return SuccessStyle + text + Reset
	case *rank <= 3:
		return WarningStyle + text + Reset
	default:
		return ErrorStyle + text + Reset
	}
}

// FormatGrade colors a letter grade
func FormatGrade(grade string) string {
	switch grade {
	case "A", "B":
		return FormatSuccess(grade)
	case "C":
		return FormatWarning(grade)
	default:
		return FormatError(grade)
	}
}
