package app

import (
	"fmt"
	"image/color"
	"time"

	"ocr-labeler/internal/annotation"
	"ocr-labeler/pkg/colorutil"
)

// FlashDuration is how long a category's masks render at doubled opacity
// after being flashed from the category list.
const FlashDuration = 200 * time.Millisecond

// defaultOpacity is the fill opacity a new category starts with.
const defaultOpacity = 0.45

// Categories returns the labeling classes.
func (s *State) Categories() []annotation.Category {
	return s.categories
}

// CategoryByName looks a category up by its join key.
func (s *State) CategoryByName(name string) (annotation.Category, bool) {
	for _, c := range s.categories {
		if c.Name == name {
			return c, true
		}
	}
	return annotation.Category{}, false
}

// AddCategory creates a category with the next palette color.
func (s *State) AddCategory(name string) (annotation.Category, error) {
	if name == "" {
		return annotation.Category{}, fmt.Errorf("empty category name")
	}
	if _, ok := s.CategoryByName(name); ok {
		return annotation.Category{}, fmt.Errorf("category %q already exists", name)
	}
	c := annotation.Category{
		ID:      fmt.Sprintf("c%d", len(s.categories)+1),
		Name:    name,
		Color:   colorutil.PaletteColor(len(s.categories)),
		Opacity: defaultOpacity,
	}
	s.categories = append(s.categories, c)
	s.Emit(EventCategoriesChanged, s.categories)
	return c, nil
}

// RenameCategory renames a category and rewrites every shape and mask
// reference across all images.
func (s *State) RenameCategory(oldName, newName string) error {
	if newName == "" {
		return fmt.Errorf("empty category name")
	}
	if oldName == newName {
		return nil
	}
	if _, ok := s.CategoryByName(newName); ok {
		return fmt.Errorf("category %q already exists", newName)
	}
	found := false
	for i := range s.categories {
		if s.categories[i].Name == oldName {
			s.categories[i].Name = newName
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("unknown category %q", oldName)
	}

	for imageID := range s.shapes {
		annotation.RenameCategory(s.shapes[imageID], s.masks[imageID], oldName, newName)
	}
	for imageID := range s.masks {
		if _, ok := s.shapes[imageID]; !ok {
			annotation.RenameCategory(nil, s.masks[imageID], oldName, newName)
		}
	}
	if s.flashing[oldName] {
		delete(s.flashing, oldName)
		s.flashing[newName] = true
	}

	s.Editor.SetShapes(annotation.CloneShapes(s.shapes[s.imageID]))
	s.Emit(EventCategoriesChanged, s.categories)
	s.Emit(EventShapesChanged, s.Shapes())
	s.reloadMasks()
	return nil
}

// RemoveCategory drops a category. Shapes keep their now-dangling name;
// masks of the category are removed.
func (s *State) RemoveCategory(name string) {
	kept := s.categories[:0]
	for _, c := range s.categories {
		if c.Name != name {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(s.categories) {
		return
	}
	s.categories = kept
	for imageID, masks := range s.masks {
		m := masks[:0]
		for _, mask := range masks {
			if mask.Category != name {
				m = append(m, mask)
			}
		}
		s.masks[imageID] = m
	}
	delete(s.flashing, name)
	s.Emit(EventCategoriesChanged, s.categories)
	s.reloadMasks()
}

// SetCategoryOpacity adjusts a category's fill opacity, clamped to [0, 1].
func (s *State) SetCategoryOpacity(name string, opacity float64) {
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}
	for i := range s.categories {
		if s.categories[i].Name == name {
			s.categories[i].Opacity = opacity
			s.Emit(EventCategoriesChanged, s.categories)
			s.reloadMasks()
			return
		}
	}
}

// SetCategoryColor changes a category's display color.
func (s *State) SetCategoryColor(name string, c color.RGBA) {
	for i := range s.categories {
		if s.categories[i].Name == name {
			s.categories[i].Color = c
			s.Emit(EventCategoriesChanged, s.categories)
			s.reloadMasks()
			return
		}
	}
}

// FlashCategory renders the category's masks at doubled opacity for
// FlashDuration, then reverts.
func (s *State) FlashCategory(name string) {
	if _, ok := s.CategoryByName(name); !ok {
		return
	}
	s.flashing[name] = true
	s.reloadMasks()
	time.AfterFunc(FlashDuration, func() {
		s.RunOnUI(func() {
			if !s.flashing[name] {
				return
			}
			delete(s.flashing, name)
			s.reloadMasks()
		})
	})
}
