package models

import (
	"time"

	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
)

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#0ea5e9"

// Category is a user-defined income or expense bucket. Type never changes
// after creation.
type Category struct {
	ID        id.CategoryID
	UserID    id.UserID
	Name      string
	Type      Kind
	Color     string
	Icon      *string
	CreatedAt time.Time
}

func NewCategory(categoryID id.CategoryID, owner id.UserID, name string, kind Kind, color string, icon *string, now time.Time) (*Category, error) {
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "category owner is required")
	}
	if !kind.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "type must be one of income, expense")
	}
	c := &Category{
		ID:        categoryID,
		UserID:    owner,
		Type:      kind,
		Color:     DefaultCategoryColor,
		CreatedAt: now,
	}
	patch := CategoryPatch{Name: &name, Icon: icon}
	if color != "" {
		patch.Color = &color
	}
	if err := c.Apply(patch); err != nil {
		return nil, err
	}
	return c, nil
}

// CategoryPatch lists the mutable category fields; nil means unchanged.
type CategoryPatch struct {
	Name  *string
	Color *string
	Icon  *string
}

// Apply validates and merges p into c. On error c is left unchanged.
func (c *Category) Apply(p CategoryPatch) error {
	next := *c
	if p.Name != nil {
		name, err := requiredName(*p.Name, "name")
		if err != nil {
			return err
		}
		next.Name = name
	}
	if p.Color != nil {
		color, err := optionalText(p.Color, "color", maxColorLength)
		if err != nil {
			return err
		}
		if color == nil {
			next.Color = DefaultCategoryColor
		} else {
			next.Color = *color
		}
	}
	if p.Icon != nil {
		icon, err := optionalText(p.Icon, "icon", maxShortText)
		if err != nil {
			return err
		}
		next.Icon = icon
	}
	*c = next
	return nil
}
