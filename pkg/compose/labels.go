package compose

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"slices"
)

// Label is one class of foreground object.
type Label struct {
	ID   int    `json:"label_id"`
	Name string `json:"label_name"`
}

var variantSuffix = regexp.MustCompile(`_\d\d$`)

// LabelName returns the label a prefab is annotated with: its name without
// a trailing two-digit variant suffix such as "_01".
func LabelName(prefab string) string {
	return variantSuffix.ReplaceAllString(prefab, "")
}

// DeriveLabels assigns ids 1..N to the distinct label names of prefabs in
// sorted order.
func DeriveLabels(prefabs []string) []Label {
	var names []string
	for _, p := range prefabs {
		if n := LabelName(p); n != "" && !slices.Contains(names, n) {
			names = append(names, n)
		}
	}
	slices.Sort(names)

	labels := make([]Label, len(names))
	for i, n := range names {
		labels[i] = Label{ID: i + 1, Name: n}
	}
	return labels
}

// LoadLabels reads a JSON array of labels.
func LoadLabels(path string) ([]Label, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read label config: %w", err)
	}
	var labels []Label
	if err := json.Unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("failed to parse label config: %w", err)
	}
	return labels, nil
}

// resolveLabels returns the label of every prefab, and the prefabs that
// have none.
func resolveLabels(prefabs []string, labels []Label) ([]Label, []string) {
	byName := make(map[string]Label, len(labels))
	for _, l := range labels {
		byName[l.Name] = l
	}
	out := make([]Label, len(prefabs))
	var missing []string
	for i, p := range prefabs {
		l, ok := byName[LabelName(p)]
		if !ok {
			missing = append(missing, p)
			l = Label{Name: LabelName(p)}
		}
		out[i] = l
	}
	return out, missing
}
