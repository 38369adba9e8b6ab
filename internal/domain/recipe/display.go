package recipe

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxHeaderLength is the longest step text that may still be read as a
// section header. Longer lines that open with a header phrase are narrative.
const MaxHeaderLength = 40

var (
	// quantityPattern captures "<ingredient> <quantity>" where the quantity is a
	// number or fraction with an optional unit and optional "/ alt" unit, or one
	// of the bare measure words.
	quantityPattern = regexp.MustCompile(`(?i)^(.+?)\s+((?:\d+/\d+|\d+\.?\d*)\s*(?:g|kg|ml|l|L|cup|cups|tsp|tbsp|oz|lb|piece|pieces|cloves?|inch|cm|mm|nos?|small|medium|large|to taste|as needed|optional|handful|bunch|sprig|sprigs|pinch)?(?:\s*/\s*(?:\d+/\d+|\d+\.?\d*)\s*(?:g|kg|ml|l|L|cup|cups|tsp|tbsp|oz|lb)?)?|pinch|to taste|as needed|optional|a few|handful|bunch)$`)

	// dashSeparator matches a hyphen, en dash or em dash between spaces.
	dashSeparator = regexp.MustCompile(` [-\x{2013}\x{2014}] `)

	numberedLine = regexp.MustCompile(`^\d+[.):\s]`)
	numberedStep = regexp.MustCompile(`^(\d+)[.):\s]+(.+)$`)

	stepHeaderPattern = regexp.MustCompile(`(?i)^(to \w+|for the|for making|making the|prepare the|preparing|assembly|finishing|decoration|garnish|serve|serving|notes?:)`)
)

// Detector is a named predicate over the non-blank lines of a text block.
type Detector struct {
	Name  string
	Match func(lines []string) bool
}

// IngredientDetectors are tried in order; the first match selects table mode.
var IngredientDetectors = []Detector{
	{Name: "dash-separated", Match: hasDashSeparator},
	{Name: "trailing-quantity", Match: hasTrailingQuantity},
}

// StepDetectors are tried in order; the first match selects table mode.
var StepDetectors = []Detector{
	{Name: "numbered", Match: hasNumberedLine},
}

func hasDashSeparator(lines []string) bool {
	for _, line := range lines {
		if dashSeparator.MatchString(line) {
			return true
		}
	}
	return false
}

func hasTrailingQuantity(lines []string) bool {
	for _, line := range lines {
		if quantityPattern.MatchString(line) {
			return true
		}
	}
	return false
}

func hasNumberedLine(lines []string) bool {
	for _, line := range lines {
		if numberedLine.MatchString(line) {
			return true
		}
	}
	return false
}

// Detect returns the name of the first detector matching lines, or "" when
// the block should be shown as plain text.
func Detect(detectors []Detector, lines []string) string {
	for _, d := range detectors {
		if d.Match(lines) {
			return d.Name
		}
	}
	return ""
}

// IngredientRow is one rendered ingredient line. Header rows span the table.
type IngredientRow struct {
	Header     bool   `json:"header,omitempty"`
	Ingredient string `json:"ingredient"`
	Quantity   string `json:"quantity,omitempty"`
}

// StepRow is one rendered step line. Header rows carry no number.
type StepRow struct {
	Header bool   `json:"header,omitempty"`
	Number string `json:"number,omitempty"`
	Text   string `json:"text"`
}

// Display is the table view of a record. A nil slice means the field is
// rendered as preformatted text.
type Display struct {
	Ingredients []IngredientRow `json:"ingredients"`
	Steps       []StepRow       `json:"steps"`
}

// Reconstruct rebuilds the table view from the stored text fields. It holds
// no state, so the same record always yields the same rows.
func Reconstruct(r Record) Display {
	return Display{
		Ingredients: ReconstructIngredients(r.Ingredients),
		Steps:       ReconstructSteps(r.Steps),
	}
}

// ReconstructIngredients splits ingredient text into rows, or returns nil
// when no detector recognises the format.
func ReconstructIngredients(text string) []IngredientRow {
	lines := splitLines(text)
	if Detect(IngredientDetectors, lines) == "" {
		return nil
	}

	rows := make([]IngredientRow, 0, len(lines))
	for _, line := range lines {
		ingredient, quantity := splitIngredient(line)
		if quantity == "" && ingredient != "" && !quantityPattern.MatchString(ingredient) {
			rows = append(rows, IngredientRow{Header: true, Ingredient: ingredient})
			continue
		}
		rows = append(rows, IngredientRow{Ingredient: ingredient, Quantity: quantity})
	}
	return rows
}

// splitIngredient splits on the last dash separator, else strips a trailing
// quantity. A line matching neither comes back whole with no quantity.
func splitIngredient(line string) (ingredient, quantity string) {
	if locs := dashSeparator.FindAllStringIndex(line, -1); len(locs) > 0 {
		last := locs[len(locs)-1]
		return strings.TrimSpace(line[:last[0]]), strings.TrimSpace(line[last[1]:])
	}
	if m := quantityPattern.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return line, ""
}

// ReconstructSteps splits step text into rows, or returns nil when the text
// is not a numbered list. Unnumbered lines that are not headers are dropped.
func ReconstructSteps(text string) []StepRow {
	lines := splitLines(text)
	if Detect(StepDetectors, lines) == "" {
		return nil
	}

	rows := make([]StepRow, 0, len(lines))
	for _, line := range lines {
		m := numberedStep.FindStringSubmatch(line)
		content := line
		if m != nil {
			content = strings.TrimSpace(m[2])
		}

		if IsStepHeader(content) {
			rows = append(rows, StepRow{Header: true, Text: content})
			continue
		}
		if m != nil {
			rows = append(rows, StepRow{Number: m[1], Text: content})
		}
	}
	return rows
}

// IsStepHeader reports whether step text reads as a section title: it must
// open with a header phrase and be no longer than MaxHeaderLength.
func IsStepHeader(text string) bool {
	return utf8.RuneCountInString(text) <= MaxHeaderLength && stepHeaderPattern.MatchString(text)
}

func splitLines(text string) []string {
	raw := strings.Split(strings.TrimSpace(text), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
