package suggest

import "smart-todo/internal/model"

// Resolution is the outcome of matching a category name.
type Resolution struct {
	ID    uint
	Name  string
	Found bool
}

// Unresolved reports that no known category carries the name.
func (r Resolution) Unresolved() bool {
	return !r.Found
}

// Resolve finds the category whose name equals name exactly. Case matters
// and nothing is guessed; a miss is returned as an unresolved Resolution.
func Resolve(name string, categories []model.Category) Resolution {
	for _, category := range categories {
		if category.Name == name {
			return Resolution{ID: category.ID, Name: name, Found: true}
		}
	}
	return Resolution{Name: name}
}
