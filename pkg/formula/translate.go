package formula

import (
	"fmt"
	"strings"
)

// LabelFunc looks up the current label of a field id
type LabelFunc func(id string) (string, bool)

// LabelsFromMap adapts an id -> label map to a LabelFunc
func LabelsFromMap(labels map[string]string) LabelFunc {
	return func(id string) (string, bool) {
		l, ok := labels[id]
		return l, ok
	}
}

// ToEditable rewrites {id} placeholders of the given parents into {label}
// placeholders for editing. Parents without a label keep their id.
func ToEditable(formula string, parents []string, labelOf LabelFunc) string {
	table := make(map[string]string, len(parents))
	for _, id := range parents {
		if label, ok := labelOf(id); ok && label != "" {
			table[id] = label
		}
	}
	return rewrite(formula, table)
}

// ToStorage rewrites {label} placeholders back into {id} placeholders.
// When two parents share a label the first declared parent wins.
func ToStorage(formula string, parents []string, labelOf LabelFunc) string {
	table := make(map[string]string, len(parents))
	for _, id := range parents {
		label, ok := labelOf(id)
		if !ok || label == "" {
			continue
		}
		if _, taken := table[label]; !taken {
			table[label] = id
		}
	}
	return rewrite(formula, table)
}

func rewrite(formula string, table map[string]string) string {
	if len(table) == 0 {
		return formula
	}
	return placeholderPattern.ReplaceAllStringFunc(formula, func(match string) string {
		if to, ok := table[match[1:len(match)-1]]; ok {
			return "{" + to + "}"
		}
		return match
	})
}

// LabelError describes parent labels that cannot round-trip through the
// editable representation
type LabelError struct {
	Duplicates []string // labels shared by more than one parent
	Delimiters []string // labels containing '{' or '}'
}

func (e *LabelError) Error() string {
	var parts []string
	if len(e.Duplicates) > 0 {
		parts = append(parts, fmt.Sprintf("duplicate labels: %s", strings.Join(e.Duplicates, ", ")))
	}
	if len(e.Delimiters) > 0 {
		parts = append(parts, fmt.Sprintf("labels containing braces: %s", strings.Join(e.Delimiters, ", ")))
	}
	return "formula labels are ambiguous: " + strings.Join(parts, "; ")
}

// CheckLabels reports parent labels that make the label/id round trip lossy.
// It returns nil when every parent label is unique and brace free.
func CheckLabels(parents []string, labelOf LabelFunc) error {
	seen := make(map[string]int)
	var order []string
	var braces []string
	for _, id := range parents {
		label, ok := labelOf(id)
		if !ok {
			continue
		}
		if seen[label] == 0 {
			order = append(order, label)
		}
		seen[label]++
		if seen[label] == 1 && strings.ContainsAny(label, "{}") {
			braces = append(braces, label)
		}
	}

	var dups []string
	for _, label := range order {
		if seen[label] > 1 {
			dups = append(dups, label)
		}
	}
	if len(dups) == 0 && len(braces) == 0 {
		return nil
	}
	return &LabelError{Duplicates: dups, Delimiters: braces}
}
