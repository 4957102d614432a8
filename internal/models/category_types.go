package models

import "time"

// Category defines the struct for the 'categories' table.
// The tree is a self-referencing adjacency list; products attach only
// to leaf categories (ParentID != nil).
type Category struct {
	ID        int64     `json:"id" db:"category_id"`
	Name      string    `json:"name" db:"category_name"`
	ParentID  *int64    `json:"parentId,omitempty" db:"parent_id"` // Pointer for NULL
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// Children is populated when returning the full tree.
	Children []Category `json:"children,omitempty" db:"-"`
}

// IsLeaf reports whether the category may hold products.
func (c *Category) IsLeaf() bool {
	return c.ParentID != nil
}

type CreateCategoryInput struct {
	Name     string `json:"name" binding:"required"`
	ParentID *int64 `json:"parentId"`
}
