package annotation

import (
	"image/color"
)

// Category is a labeling class. Name is the join key used by shapes and
// masks, so renaming must rewrite every reference.
type Category struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Color   color.RGBA `json:"-"`
	Opacity float64    `json:"opacity"`
}

// RenameCategory rewrites every shape and mask referencing oldName to
// newName. Returns the number of references updated.
func RenameCategory(shapes []Shape, masks []SegmentationMask, oldName, newName string) int {
	if oldName == newName {
		return 0
	}
	updated := 0
	for i := range shapes {
		if shapes[i].Category == oldName {
			shapes[i].Category = newName
			updated++
		}
	}
	for i := range masks {
		if masks[i].Category == oldName {
			masks[i].Category = newName
			updated++
		}
	}
	return updated
}
