package services

import (
	"testing"

	"gastos/internal/models"
	"gastos/internal/testutil"
)

func seedGlobals(t *testing.T, svc CategoryServicer) {
	t.Helper()
	testutil.AssertNoError(t, svc.EnsureDefaultCategories())
}

func TestResolveUserCategories(t *testing.T) {
	t.Run("own_and_globals_ordered_by_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		seedGlobals(t, svc)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestNamedCategory(t, db, &user.ID, "Gimnasio")

		categories, err := svc.ResolveUserCategories(user.ID)
		testutil.AssertNoError(t, err)

		if len(categories) != 7 {
			t.Fatalf("expected 7 categories, got %d", len(categories))
		}
		for i := 1; i < len(categories); i++ {
			if categories[i-1].Name > categories[i].Name {
				t.Errorf("categories not ordered by name: %s before %s", categories[i-1].Name, categories[i].Name)
			}
		}
	})

	t.Run("own_category_shadows_global_with_same_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		seedGlobals(t, svc)
		user := testutil.CreateTestUser(t, db)
		own := testutil.CreateTestNamedCategory(t, db, &user.ID, "Salud")

		categories, err := svc.ResolveUserCategories(user.ID)
		testutil.AssertNoError(t, err)

		if len(categories) != 6 {
			t.Fatalf("expected 6 categories, got %d", len(categories))
		}
		seen := map[string]bool{}
		for _, c := range categories {
			if seen[c.Name] {
				t.Errorf("duplicate name %q in resolved set", c.Name)
			}
			seen[c.Name] = true
			if c.Name == "Salud" && c.ID != own.ID {
				t.Error("expected the user's own Salud to win over the global one")
			}
		}
	})

	t.Run("other_users_categories_are_hidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		testutil.CreateTestNamedCategory(t, db, &other.ID, "Privada")
		testutil.CreateTestGlobalCategory(t, db, "Global")

		categories, err := svc.ResolveUserCategories(user.ID)
		testutil.AssertNoError(t, err)

		if len(categories) != 1 || categories[0].Name != "Global" {
			t.Errorf("expected only the global category, got %+v", categories)
		}
	})

	t.Run("shadowing_is_per_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		global := testutil.CreateTestGlobalCategory(t, db, "Salud")
		testutil.CreateTestNamedCategory(t, db, &other.ID, "Salud")

		categories, err := svc.ResolveUserCategories(user.ID)
		testutil.AssertNoError(t, err)

		if len(categories) != 1 || categories[0].ID != global.ID {
			t.Errorf("expected the global Salud, got %+v", categories)
		}
	})
}

func TestGetVisibleCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	own := testutil.CreateTestCategory(t, db, user.ID)
	global := testutil.CreateTestGlobalCategory(t, db, "Global")
	foreign := testutil.CreateTestCategory(t, db, other.ID)

	_, err := svc.GetVisibleCategory(user.ID, own.ID)
	testutil.AssertNoError(t, err)

	_, err = svc.GetVisibleCategory(user.ID, global.ID)
	testutil.AssertNoError(t, err)

	_, err = svc.GetVisibleCategory(user.ID, foreign.ID)
	testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
}

func TestCreateCategory(t *testing.T) {
	t.Run("valid_with_default_color", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		cat, err := svc.CreateCategory(user.ID, "  Mascotas ", "")
		testutil.AssertNoError(t, err)

		if cat.Name != "Mascotas" {
			t.Errorf("expected trimmed name, got %q", cat.Name)
		}
		if cat.Color != models.DefaultCategoryColor {
			t.Errorf("expected default color, got %s", cat.Color)
		}
		if cat.UserID == nil || *cat.UserID != user.ID {
			t.Error("category should be owned by the caller")
		}
		if cat.IsDefault {
			t.Error("user categories are never default")
		}
	})

	t.Run("duplicate_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "Comida", "#ff0000")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(user.ID, "Comida", "#00ff00")
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("duplicate_name_different_users_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user1.ID, "Sueldo", "")
		testutil.AssertNoError(t, err)
		_, err = svc.CreateCategory(user2.ID, "Sueldo", "")
		testutil.AssertNoError(t, err)
	})

	t.Run("same_name_as_global_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		seedGlobals(t, svc)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "Transporte", "")
		testutil.AssertNoError(t, err)
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "   ", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestUpdateCategory(t *testing.T) {
	t.Run("own_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		name, color := "Renombrada", "#123456"
		updated, err := svc.UpdateCategory(user.ID, cat.ID, &name, &color)
		testutil.AssertNoError(t, err)

		if updated.Name != name || updated.Color != color {
			t.Errorf("unexpected category after update: %+v", updated)
		}
	})

	t.Run("global_category_is_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		global := testutil.CreateTestGlobalCategory(t, db, "Salud")

		name := "Mía"
		_, err := svc.UpdateCategory(user.ID, global.ID, &name, nil)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("other_users_category_is_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, other.ID)

		name := "Robada"
		_, err := svc.UpdateCategory(user.ID, cat.ID, &name, nil)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("rename_to_existing_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestNamedCategory(t, db, &user.ID, "A")
		b := testutil.CreateTestNamedCategory(t, db, &user.ID, "B")

		name := "A"
		_, err := svc.UpdateCategory(user.ID, b.ID, &name, nil)
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("unreferenced_category_is_deleted", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		testutil.AssertNoError(t, svc.DeleteCategory(user.ID, cat.ID))

		var count int64
		db.Model(&models.Category{}).Where("id = ?", cat.ID).Count(&count)
		if count != 0 {
			t.Error("expected category to be deleted")
		}
	})

	t.Run("referenced_category_is_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)
		testutil.CreateTestMovement(t, db, user.ID, cat.ID, models.MovementTypeExpense, "10.00", testutil.Date(2024, 1, 1))

		err := svc.DeleteCategory(user.ID, cat.ID)
		testutil.AssertAppError(t, err, "CATEGORY_IN_USE")

		var count int64
		db.Model(&models.Category{}).Where("id = ?", cat.ID).Count(&count)
		if count != 1 {
			t.Error("category must survive a rejected delete")
		}
	})

	t.Run("budgets_are_removed_with_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)
		testutil.CreateTestBudget(t, db, user.ID, cat.ID, "2024-01")

		testutil.AssertNoError(t, svc.DeleteCategory(user.ID, cat.ID))

		var count int64
		db.Model(&models.Budget{}).Where("category_id = ?", cat.ID).Count(&count)
		if count != 0 {
			t.Errorf("expected budgets to cascade, found %d", count)
		}
	})

	t.Run("global_category_is_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		global := testutil.CreateTestGlobalCategory(t, db, "Salud")

		err := svc.DeleteCategory(user.ID, global.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestGlobalCategories(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestCategory(t, db, user.ID)

	created, err := svc.CreateGlobalCategory("Viajes", "#0ea5e9")
	testutil.AssertNoError(t, err)
	if !created.IsGlobal() {
		t.Fatal("expected a global category")
	}

	_, err = svc.CreateGlobalCategory("Viajes", "")
	testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")

	list, err := svc.ListGlobalCategories()
	testutil.AssertNoError(t, err)
	if len(list) != 1 {
		t.Fatalf("expected 1 global category, got %d", len(list))
	}

	color := "#000000"
	updated, err := svc.UpdateGlobalCategory(created.ID, nil, &color)
	testutil.AssertNoError(t, err)
	if updated.Color != color {
		t.Errorf("expected color %s, got %s", color, updated.Color)
	}

	testutil.CreateTestMovement(t, db, user.ID, created.ID, models.MovementTypeExpense, "5.00", testutil.Date(2024, 1, 1))
	testutil.AssertAppError(t, svc.DeleteGlobalCategory(created.ID), "CATEGORY_IN_USE")
}

func TestEnsureDefaultCategories_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)

	for i := 0; i < 3; i++ {
		testutil.AssertNoError(t, svc.EnsureDefaultCategories())
	}

	var count int64
	db.Model(&models.Category{}).Where("user_id IS NULL").Count(&count)
	if count != 6 {
		t.Errorf("expected 6 global categories, got %d", count)
	}
}
