package handlers_test

import (
	"net/http"
	"testing"

	"github.com/okothmichael/tutor_marketplace/models"
	"github.com/okothmichael/tutor_marketplace/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryEndpoints(t *testing.T) {
	db := testutil.SetupDB(t)
	app := testutil.NewApp()

	t.Run("Admin creates, updates and deletes a category", func(t *testing.T) {
		testutil.TruncateAll(t, db)
		admin := testutil.CreateUser(t, db, "Ada Admin", "ada@example.com", "secret123", models.RoleAdmin)
		adminToken := testutil.MintToken(t, admin.ID, models.RoleAdmin)

		resp := testutil.DoJSON(t, app, http.MethodPost, "/api/categories", adminToken, map[string]interface{}{
			"name": "Mathematics",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var category models.Category
		testutil.DecodeBody(t, resp, &category)
		assert.Equal(t, "Mathematics", category.Name)

		resp = testutil.DoJSON(t, app, http.MethodPut, "/api/categories/"+category.ID.String(), adminToken, map[string]interface{}{
			"name":        "Applied Mathematics",
			"description": "Calculus, statistics and beyond",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		testutil.DecodeBody(t, resp, &category)
		assert.Equal(t, "Applied Mathematics", category.Name)

		resp = testutil.DoJSON(t, app, http.MethodDelete, "/api/categories/"+category.ID.String(), adminToken, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = testutil.DoJSON(t, app, http.MethodDelete, "/api/categories/"+category.ID.String(), adminToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Duplicate name conflicts", func(t *testing.T) {
		testutil.TruncateAll(t, db)
		admin := testutil.CreateUser(t, db, "Ada Admin", "ada@example.com", "secret123", models.RoleAdmin)
		adminToken := testutil.MintToken(t, admin.ID, models.RoleAdmin)

		body := map[string]interface{}{"name": "Physics"}
		resp := testutil.DoJSON(t, app, http.MethodPost, "/api/categories", adminToken, body)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = testutil.DoJSON(t, app, http.MethodPost, "/api/categories", adminToken, body)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("Listing is public and sorted by name", func(t *testing.T) {
		testutil.TruncateAll(t, db)
		for _, name := range []string{"Physics", "Chemistry", "Biology"} {
			require.NoError(t, db.Create(&models.Category{Name: name}).Error)
		}

		resp := testutil.DoJSON(t, app, http.MethodGet, "/api/categories", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var categories []models.Category
		testutil.DecodeBody(t, resp, &categories)
		require.Len(t, categories, 3)
		assert.Equal(t, "Biology", categories[0].Name)
		assert.Equal(t, "Physics", categories[2].Name)
	})

	t.Run("Mutations require the admin role", func(t *testing.T) {
		testutil.TruncateAll(t, db)
		student := testutil.CreateUser(t, db, "Sam Student", "sam@example.com", "secret123", models.RoleStudent)
		studentToken := testutil.MintToken(t, student.ID, models.RoleStudent)

		resp := testutil.DoJSON(t, app, http.MethodPost, "/api/categories", studentToken, map[string]interface{}{
			"name": "Music",
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = testutil.DoJSON(t, app, http.MethodPost, "/api/categories", "", map[string]interface{}{
			"name": "Music",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
