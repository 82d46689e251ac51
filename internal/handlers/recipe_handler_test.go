package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chameleon/server/internal/kv"
	custommw "github.com/chameleon/server/internal/middleware"
	"github.com/chameleon/server/internal/models"
	"github.com/chameleon/server/internal/repository"
	"github.com/chameleon/server/internal/services"
)

type staticGenerator struct{ url string }

func (g staticGenerator) Generate(ctx context.Context, recipe *models.Recipe, themeStyle string) (string, error) {
	return g.url, nil
}

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	store := kv.NewMemoryStore()

	recipeRepo := repository.NewRecipeRepository(store)
	groupRepo := repository.NewGroupRepository(store)
	userRepo := repository.NewUserRepository(store)

	groupService := services.NewGroupService(groupRepo, userRepo, nil)
	recipeService := services.NewRecipeService(recipeRepo, groupService, staticGenerator{url: "https://images.example/static.jpg"}, nil)
	ingestionService := services.NewIngestionService(0)

	r := chi.NewRouter()
	r.Use(custommw.UserAuth(userRepo, []string{"/health", "/api/health"}))

	healthHandler := NewHealthHandler()
	r.Get("/api/health", healthHandler.HealthCheck)

	userHandler := NewUserHandler(userRepo)
	r.Get("/api/users", userHandler.ListUsers)
	r.Get("/api/users/{id}", userHandler.GetUser)

	themeHandler := NewThemeHandler()
	r.Get("/api/themes", themeHandler.ListThemes)

	recipeHandler := NewRecipeHandler(recipeService)
	r.Route("/api/recipes", func(r chi.Router) {
		r.Get("/", recipeHandler.ListRecipes)
		r.Post("/", recipeHandler.SaveRecipe)
		r.Get("/{id}", recipeHandler.GetRecipe)
		r.Delete("/{id}", recipeHandler.DeleteRecipe)
		r.Post("/{id}/share", recipeHandler.ShareRecipe)
		r.Post("/{id}/unshare", recipeHandler.UnshareRecipe)
		r.Post("/{id}/image", recipeHandler.GenerateImage)
	})

	groupHandler := NewGroupHandler(groupService)
	r.Route("/api/groups", func(r chi.Router) {
		r.Get("/", groupHandler.ListGroups)
		r.Post("/", groupHandler.CreateGroup)
		r.Delete("/{id}", groupHandler.DeleteGroup)
		r.Post("/{id}/members", groupHandler.AddMember)
		r.Delete("/{id}/members/{userId}", groupHandler.RemoveMember)
	})

	ingestionHandler := NewIngestionHandler(ingestionService)
	r.Post("/api/ingest/url", ingestionHandler.ParseURL)
	r.Post("/api/ingest/scan", ingestionHandler.ParseScan)

	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set(custommw.UserIDHeader, userID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRecipeEndpoints(t *testing.T) {
	router := newTestRouter(t)

	t.Run("listing requires authentication", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/recipes", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("owner sees the starter recipes", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/recipes", "user_1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		list := decode[models.RecipeListResponse](t, rec)
		require.Len(t, list.Recipes, 2)
		assert.Equal(t, "Classic Chocolate Chip Cookies", list.Recipes[0].Title)
	})

	t.Run("other users see nothing until shared", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/recipes", "user_2", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		list := decode[models.RecipeListResponse](t, rec)
		assert.Empty(t, list.Recipes)
	})

	t.Run("create then fetch", func(t *testing.T) {
		title := "Garlic Bread"
		rec := doJSON(t, router, http.MethodPost, "/api/recipes", "user_2", models.SaveRecipeRequest{Title: &title})
		require.Equal(t, http.StatusCreated, rec.Code)

		created := decode[models.Recipe](t, rec)
		assert.Equal(t, "user_2", created.OwnerID)

		rec = doJSON(t, router, http.MethodGet, "/api/recipes/"+created.ID, "user_2", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		t.Run("hidden from other users", func(t *testing.T) {
			rec := doJSON(t, router, http.MethodGet, "/api/recipes/"+created.ID, "user_3", nil)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})

		t.Run("visible after sharing", func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/recipes/"+created.ID+"/share", "user_2",
				models.ShareRequest{TargetType: "user", TargetID: "user_3"})
			require.Equal(t, http.StatusOK, rec.Code)

			rec = doJSON(t, router, http.MethodGet, "/api/recipes/"+created.ID, "user_3", nil)
			assert.Equal(t, http.StatusOK, rec.Code)
		})

		t.Run("unshare revokes access", func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/recipes/"+created.ID+"/unshare", "user_2",
				models.ShareRequest{TargetType: "user", TargetID: "user_3"})
			require.Equal(t, http.StatusOK, rec.Code)

			rec = doJSON(t, router, http.MethodGet, "/api/recipes/"+created.ID, "user_3", nil)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	})

	t.Run("unknown recipe is 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/recipes/nope", "user_1", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid share target is 400", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/recipes/1/share", "user_1",
			models.ShareRequest{TargetType: "team", TargetID: "x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("non-owner cannot delete", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodDelete, "/api/recipes/1", "user_2", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestGenerateImageEndpoint(t *testing.T) {
	router := newTestRouter(t)

	t.Run("invalid theme is 400", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/recipes/1/image", "user_1",
			models.GenerateImageRequest{ThemeStyle: "theme-vaporwave"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("first call generates, later calls return the same image", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/recipes/1/image", "user_1",
			models.GenerateImageRequest{ThemeStyle: models.ThemeRustic})
		require.Equal(t, http.StatusOK, rec.Code)

		first := decode[models.Recipe](t, rec)
		require.NotNil(t, first.GeneratedImage)
		require.NotNil(t, first.ThemeStyleAtCreation)
		assert.Equal(t, models.ThemeRustic, *first.ThemeStyleAtCreation)

		rec = doJSON(t, router, http.MethodPost, "/api/recipes/1/image", "user_1",
			models.GenerateImageRequest{ThemeStyle: models.ThemeZen})
		require.Equal(t, http.StatusOK, rec.Code)

		second := decode[models.Recipe](t, rec)
		assert.Equal(t, *first.GeneratedImage, *second.GeneratedImage)
		assert.Equal(t, models.ThemeRustic, *second.ThemeStyleAtCreation)
	})

	t.Run("viewers without access get 403", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/recipes/2/image", "user_4",
			models.GenerateImageRequest{ThemeStyle: models.ThemeRustic})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestGroupEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/groups", "user_1", models.CreateGroupRequest{Name: "Family"})
	require.Equal(t, http.StatusCreated, rec.Code)
	group := decode[models.Group](t, rec)
	assert.Equal(t, []string{"user_1"}, group.Members)

	t.Run("empty name is 400", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/groups", "user_1", models.CreateGroupRequest{Name: ""})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("add and remove member", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/groups/"+group.ID+"/members", "user_1",
			models.AddMemberRequest{UserID: "user_2"})
		require.Equal(t, http.StatusOK, rec.Code)
		updated := decode[models.Group](t, rec)
		assert.Contains(t, updated.Members, "user_2")

		rec = doJSON(t, router, http.MethodDelete, "/api/groups/"+group.ID+"/members/user_2", "user_1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		updated = decode[models.Group](t, rec)
		assert.NotContains(t, updated.Members, "user_2")
	})

	t.Run("member changes on unknown group are 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/groups/missing/members", "user_1",
			models.AddMemberRequest{UserID: "user_2"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("listing shows only the caller's groups", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/groups", "user_3", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		list := decode[models.GroupListResponse](t, rec)
		assert.Empty(t, list.Groups)
	})

	t.Run("delete", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodDelete, "/api/groups/"+group.ID, "user_1", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestDirectoryEndpoints(t *testing.T) {
	router := newTestRouter(t)

	t.Run("users", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/users", "user_1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		list := decode[models.UserListResponse](t, rec)
		assert.Len(t, list.Users, 4)
	})

	t.Run("single user", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/users/user_3", "user_1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		user := decode[models.User](t, rec)
		assert.Equal(t, "Roommate", user.Name)
	})

	t.Run("themes", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/themes", "user_1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		list := decode[models.ThemeListResponse](t, rec)
		assert.Len(t, list.Themes, 5)
	})
}

func TestIngestionEndpoints(t *testing.T) {
	router := newTestRouter(t)

	t.Run("url parsing", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/ingest/url", "user_1",
			models.IngestURLRequest{URL: "https://example.com/pie"})
		require.Equal(t, http.StatusOK, rec.Code)
		draft := decode[models.ParsedRecipe](t, rec)
		assert.Equal(t, "https://example.com/pie", draft.OriginalSource)
	})

	t.Run("bad url is 400", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/ingest/url", "user_1",
			models.IngestURLRequest{URL: "nope"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("scan parsing", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/ingest/scan", "user_1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		draft := decode[models.ParsedRecipe](t, rec)
		assert.Equal(t, "Scanned Recipe", draft.Title)
	})
}
