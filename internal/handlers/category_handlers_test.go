package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mekelletech/recycle-golang/internal/auth"
	"github.com/mekelletech/recycle-golang/internal/models"
)

func TestCreateCategoryRejectsLeafParent(t *testing.T) {
	// A leaf already holds products; letting it parent another category
	// would grow the tree past two levels.
	ident := auth.Identity{UserID: sellerID, Role: "seller"}
	body := `{"name": "Smartphones", "parentId": 5}`
	c, rec, mock, h := newTestContext(t, ident, http.MethodPost, "/v1/seller/categories", body)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT parent_id FROM categories")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"parent_id"}).AddRow(int64(1)))

	h.CreateCategory(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "top-level")
	// No INSERT may follow the rejected parent check.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCategoryAcceptsRootParent(t *testing.T) {
	ident := auth.Identity{UserID: sellerID, Role: "seller"}
	body := `{"name": "Phones", "parentId": 1}`
	c, rec, mock, h := newTestContext(t, ident, http.MethodPost, "/v1/seller/categories", body)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT parent_id FROM categories")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"parent_id"}).AddRow(nil))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO categories")).
		WithArgs("Phones", int64(1)).
		WillReturnResult(sqlmock.NewResult(2, 1))

	h.CreateCategory(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllCategoriesNestsGrandchildren(t *testing.T) {
	// Rows arrive sorted by name, so a mid-tier node can be reached
	// before its own children; the assembled tree must still carry every
	// descendant.
	ident := auth.Identity{UserID: 7, Role: "buyer"}
	c, rec, mock, h := newTestContext(t, ident, http.MethodGet, "/v1/categories", "")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT category_id, category_name, parent_id FROM categories")).
		WillReturnRows(sqlmock.NewRows([]string{"category_id", "category_name", "parent_id"}).
			AddRow(int64(1), "Electronics", nil).
			AddRow(int64(2), "Phones", int64(1)).
			AddRow(int64(3), "Smartphones", int64(2)))

	h.GetAllCategories(c)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Categories []models.Category `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Categories, 1)
	require.Len(t, resp.Categories[0].Children, 1)
	phones := resp.Categories[0].Children[0]
	assert.Equal(t, "Phones", phones.Name)
	require.Len(t, phones.Children, 1)
	assert.Equal(t, "Smartphones", phones.Children[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
