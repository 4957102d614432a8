package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mekelletech/recycle-golang/internal/models"
)

// --- Category Handlers ---

// CreateCategory is the handler for POST /v1/categories.
// A category with a parent is a leaf and may hold products; a category
// without one is a top-level group.
func (h *Handlers) CreateCategory(c *gin.Context) {
	var input models.CreateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.ParentID != nil {
		// The parent must exist and itself be a root. Products attach to
		// leaf categories, so the tree stays exactly two levels deep.
		var parentOfParent sql.NullInt64
		err := h.DB.QueryRow("SELECT parent_id FROM categories WHERE category_id = ?", *input.ParentID).
			Scan(&parentOfParent)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Parent category does not exist"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if parentOfParent.Valid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parent must be a top-level category"})
			return
		}
	}

	res, err := h.DB.Exec("INSERT INTO categories (category_name, parent_id) VALUES (?, ?)",
		input.Name, input.ParentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	id, _ := res.LastInsertId()
	newCat := models.Category{ID: id, Name: input.Name, ParentID: input.ParentID}
	c.JSON(http.StatusCreated, gin.H{"message": "Category created", "category": newCat})
}

// GetAllCategories is the handler for GET /v1/categories.
// Returns the full tree, children nested under their parents.
func (h *Handlers) GetAllCategories(c *gin.Context) {
	rows, err := h.DB.Query("SELECT category_id, category_name, parent_id FROM categories ORDER BY category_name ASC")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	var allCats []models.Category
	for rows.Next() {
		var cat models.Category
		var parentID sql.NullInt64
		cat.Children = []models.Category{}
		if err := rows.Scan(&cat.ID, &cat.Name, &parentID); err != nil {
			continue
		}
		if parentID.Valid {
			cat.ParentID = &parentID.Int64
		}
		allCats = append(allCats, cat)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// Build the tree: index by id, then assemble depth-first so no node
	// is copied into its parent before its own children are attached.
	catMap := make(map[int64]*models.Category, len(allCats))
	childIDs := make(map[int64][]int64)
	for i := range allCats {
		catMap[allCats[i].ID] = &allCats[i]
		if allCats[i].ParentID != nil {
			childIDs[*allCats[i].ParentID] = append(childIDs[*allCats[i].ParentID], allCats[i].ID)
		}
	}

	var build func(id int64) models.Category
	build = func(id int64) models.Category {
		cat := *catMap[id]
		cat.Children = []models.Category{}
		for _, childID := range childIDs[id] {
			cat.Children = append(cat.Children, build(childID))
		}
		return cat
	}

	rootCats := []models.Category{}
	for _, cat := range allCats {
		if cat.ParentID == nil {
			rootCats = append(rootCats, build(cat.ID))
		}
	}

	c.JSON(http.StatusOK, gin.H{"categories": rootCats})
}

// GetLeafCategories is the handler for GET /v1/categories/leaves, the
// flat list the product forms and catalog filter use.
func (h *Handlers) GetLeafCategories(c *gin.Context) {
	rows, err := h.DB.Query(`
		SELECT c.category_id, c.category_name, c.parent_id, p.category_name AS parent_name
		FROM categories c
		JOIN categories p ON c.parent_id = p.category_id
		ORDER BY c.category_name ASC`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	type leaf struct {
		models.Category
		ParentName string `json:"parentName"`
	}
	leaves := []leaf{}
	for rows.Next() {
		var l leaf
		var parentID int64
		if err := rows.Scan(&l.ID, &l.Name, &parentID, &l.ParentName); err != nil {
			continue
		}
		l.ParentID = &parentID
		leaves = append(leaves, l)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": leaves})
}

// leafCategoryExists reports whether id names a category that may hold
// products, i.e. one with a non-null parent.
func (h *Handlers) leafCategoryExists(id int64) (bool, error) {
	var parentID sql.NullInt64
	err := h.DB.QueryRow("SELECT parent_id FROM categories WHERE category_id = ?", id).Scan(&parentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return parentID.Valid, nil
}
