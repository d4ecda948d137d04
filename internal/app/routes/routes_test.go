package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/curriculum/planner/internal/app/controllers"
	"github.com/curriculum/planner/internal/app/models/dto"
	"github.com/curriculum/planner/internal/app/repositories/repotest"
	"github.com/curriculum/planner/internal/app/services"
	"github.com/curriculum/planner/internal/importer"
	"github.com/curriculum/planner/internal/middleware"
	"github.com/curriculum/planner/internal/pkg/auth"
	"github.com/curriculum/planner/internal/pkg/filestorage"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appAuth "github.com/curriculum/planner/internal/app/auth"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	auth.BcryptCost = bcrypt.MinCost
	if err := middleware.RegisterValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	store  *repotest.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := repotest.NewStore()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "router-test-secret",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "curriculum-test",
	})
	stores := services.Stores{Users: store, Programs: store, Courses: store, Prerequisites: store, Progress: store}
	svc := services.NewServices(stores, jwtService, zerolog.Nop())

	uploads, err := filestorage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	router := gin.New()
	SetupRouter(router,
		controllers.NewControllers(svc, nil, importer.New(store, zerolog.Nop()), uploads, zerolog.Nop()),
		middleware.NewAuthMiddleware(svc.AuthService, appAuth.NewAuthorizationService(store)),
	)
	return &testAPI{t: t, router: router, store: store}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (a *testAPI) login(email, role string) dto.TokenResponse {
	a.t.Helper()
	w := a.do(http.MethodPost, "/auth/register", "", gin.H{"email": email, "password": "password123", "role": role})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/auth/login", "", gin.H{"email": email, "password": "password123"})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return decode[dto.TokenResponse](a.t, w)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[dto.HealthResponse](t, w).Status)
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t)

	tokens := api.login("alice@example.com", "student")
	assert.Equal(t, "bearer", tokens.TokenType)

	w := api.do(http.MethodGet, "/auth/me", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[dto.UserResponse](t, w)
	assert.Equal(t, "alice@example.com", me.Email)
	assert.EqualValues(t, "student", me.Role)

	w = api.do(http.MethodPost, "/auth/logout", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logged out", decode[dto.MessageResponse](t, w).Message)

	w = api.do(http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegister_Errors(t *testing.T) {
	api := newTestAPI(t)
	api.login("dup@example.com", "advisor")

	w := api.do(http.MethodPost, "/auth/register", "", gin.H{"email": "dup@example.com", "password": "password123", "role": "student"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeDuplicateEmail, decode[dto.ErrorResponse](t, w).Error.Code)

	w = api.do(http.MethodPost, "/auth/register", "", gin.H{"email": "not-an-email", "password": "password123", "role": "student"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeValidationFailed, decode[dto.ErrorResponse](t, w).Error.Code)

	w = api.do(http.MethodPost, "/auth/register", "", gin.H{"email": "x@example.com", "password": "short", "role": "student"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/auth/register", "", gin.H{"email": "x@example.com", "password": "password123", "role": "dean"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/auth/login", "", gin.H{"email": "dup@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeInvalidCredentials, decode[dto.ErrorResponse](t, w).Error.Code)
}

func TestRefreshRevokesOldAccessToken(t *testing.T) {
	api := newTestAPI(t)
	first := api.login("bob@example.com", "student")

	w := api.do(http.MethodPost, "/auth/refresh", "", gin.H{"refresh_token": first.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	second := decode[dto.TokenResponse](t, w)

	w = api.do(http.MethodGet, "/auth/me", first.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeRevokedToken, decode[dto.ErrorResponse](t, w).Error.Code)

	w = api.do(http.MethodGet, "/auth/me", second.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// An access token is not accepted where a refresh token is expected, and vice versa.
	w = api.do(http.MethodPost, "/auth/refresh", "", gin.H{"refresh_token": second.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeWrongTokenType, decode[dto.ErrorResponse](t, w).Error.Code)

	w = api.do(http.MethodGet, "/auth/me", second.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminOnly(t *testing.T) {
	api := newTestAPI(t)
	student := api.login("stu@example.com", "student")
	admin := api.login("boss@example.com", "admin")

	w := api.do(http.MethodGet, "/admin/only", student.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/admin/only", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello admin boss@example.com", decode[dto.AdminGreetingResponse](t, w).Msg)

	w = api.do(http.MethodGet, "/admin/only", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCatalogAndGraph(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin@example.com", "admin")
	student := api.login("stu@example.com", "student")

	w := api.do(http.MethodPost, "/programs", student.AccessToken, gin.H{"name": "BS CS"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPost, "/programs", admin.AccessToken, gin.H{"name": "BS CS"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	program := decode[dto.ProgramResponse](t, w)

	w = api.do(http.MethodPost, "/programs", admin.AccessToken, gin.H{"name": "BS CS"})
	assert.Equal(t, http.StatusConflict, w.Code)

	graphPath := fmt.Sprintf("/graph/%d", program.ID)
	w = api.do(http.MethodGet, graphPath, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	coursesPath := fmt.Sprintf("/programs/%d/courses", program.ID)
	w = api.do(http.MethodPost, coursesPath, admin.AccessToken, gin.H{"code": "AB101", "name": "Course A", "credits": 4})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	a := decode[dto.CourseResponse](t, w)

	w = api.do(http.MethodPost, coursesPath, admin.AccessToken, gin.H{"code": "BC101", "name": "Course B"})
	require.Equal(t, http.StatusCreated, w.Code)
	b := decode[dto.CourseResponse](t, w)

	w = api.do(http.MethodPost, coursesPath, admin.AccessToken, gin.H{"code": "bad code", "name": "Nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, fmt.Sprintf("/courses/%d/prerequisites", b.ID), admin.AccessToken, gin.H{"prereqCourseId": a.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodPost, fmt.Sprintf("/courses/%d/prerequisites", b.ID), admin.AccessToken, gin.H{"prereqCourseId": b.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, graphPath, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	graph := decode[dto.GraphResponse](t, w)
	assert.Equal(t, []dto.GraphNode{
		{Data: dto.GraphNodeData{ID: "AB101", Label: "Course A"}},
		{Data: dto.GraphNodeData{ID: "BC101", Label: "Course B"}},
	}, graph.Nodes)
	assert.Equal(t, []dto.GraphEdge{{Data: dto.GraphEdgeData{Source: "AB101", Target: "BC101"}}}, graph.Edges)

	w = api.do(http.MethodGet, "/graph/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, coursesPath+"?page=1&size=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[dto.CourseListResponse](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(2), page.Pagination.TotalItems)
}

func TestPrerequisiteGroupsAndEligibility(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin@example.com", "admin")
	student := api.login("stu@example.com", "student")
	advisor := api.login("adv@example.com", "advisor")

	w := api.do(http.MethodPost, "/programs", admin.AccessToken, gin.H{"name": "BS Bio"})
	require.Equal(t, http.StatusCreated, w.Code)
	program := decode[dto.ProgramResponse](t, w)

	ids := map[string]int64{}
	for _, code := range []string{"XX101", "YY101", "ZZ101", "CC201"} {
		w := api.do(http.MethodPost, fmt.Sprintf("/programs/%d/courses", program.ID), admin.AccessToken, gin.H{"code": code, "name": code})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		ids[code] = decode[dto.CourseResponse](t, w).ID
	}

	groupsPath := fmt.Sprintf("/courses/%d/prerequisite-groups", ids["CC201"])
	w = api.do(http.MethodPost, groupsPath, admin.AccessToken, gin.H{"kind": "OR", "memberCourseIds": []int64{ids["XX101"], ids["YY101"]}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = api.do(http.MethodPost, groupsPath, admin.AccessToken, gin.H{"kind": "AND", "memberCourseIds": []int64{ids["ZZ101"]}})
	require.Equal(t, http.StatusCreated, w.Code)
	w = api.do(http.MethodPost, groupsPath, admin.AccessToken, gin.H{"kind": "MAYBE", "memberCourseIds": []int64{ids["ZZ101"]}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, fmt.Sprintf("/courses/%d/prerequisites", ids["CC201"]), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	req := decode[dto.RequirementResponse](t, w)
	require.Len(t, req.Groups, 2)
	assert.EqualValues(t, "OR", req.Groups[0].Kind)

	// (X OR Y) AND Z renders as three plain edges.
	w = api.do(http.MethodGet, fmt.Sprintf("/graph/%d", program.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	graph := decode[dto.GraphResponse](t, w)
	assert.Equal(t, []dto.GraphEdge{
		{Data: dto.GraphEdgeData{Source: "XX101", Target: "CC201"}},
		{Data: dto.GraphEdgeData{Source: "YY101", Target: "CC201"}},
		{Data: dto.GraphEdgeData{Source: "ZZ101", Target: "CC201"}},
	}, graph.Edges)

	for _, code := range []string{"YY101", "ZZ101"} {
		w := api.do(http.MethodPut, fmt.Sprintf("/progress/%d", ids[code]), student.AccessToken, gin.H{"status": "completed"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	w = api.do(http.MethodPut, fmt.Sprintf("/progress/%d", ids["XX101"]), student.AccessToken, gin.H{"status": "finished"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, fmt.Sprintf("/programs/%d/eligible", program.ID), student.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	eligible := decode[[]dto.CourseResponse](t, w)
	codes := []string{}
	for _, c := range eligible {
		codes = append(codes, c.Code)
	}
	assert.Equal(t, []string{"XX101", "CC201"}, codes)

	w = api.do(http.MethodGet, "/progress", student.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]dto.ProgressResponse](t, w), 2)

	me := decode[dto.UserResponse](t, api.do(http.MethodGet, "/auth/me", student.AccessToken, nil))
	userProgress := fmt.Sprintf("/users/%d/progress", me.ID)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, userProgress, advisor.AccessToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, userProgress, student.AccessToken, nil).Code)

	w = api.do(http.MethodDelete, fmt.Sprintf("/progress/%d", ids["ZZ101"]), student.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func (a *testAPI) upload(path, token, filename, content string) *httptest.ResponseRecorder {
	a.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(a.t, err)
	_, err = part.Write([]byte(content))
	require.NoError(a.t, err)
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestAdminImport(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin@example.com", "admin")
	student := api.login("stu@example.com", "student")

	catalog := "program,course_code,course_name,credits,prerequisites\n" +
		"BS Bio,BIO252,Cell Biology,4,\n" +
		"BS Bio,BIO253,Genetics,4,\n" +
		"BS Bio,BIO300,Advanced Biology,4,BIO252 OR BIO253\n" +
		"BS Bio,oops,Broken,4,\n"

	w := api.upload("/admin/import", student.AccessToken, "catalog.csv", catalog)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.upload("/admin/import", admin.AccessToken, "catalog.txt", catalog)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.upload("/admin/import?dryRun=true", admin.AccessToken, "catalog.csv", catalog)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	dry := decode[dto.ImportResponse](t, w)
	assert.True(t, dry.DryRun)
	assert.Equal(t, 4, dry.Rows)
	require.Len(t, dry.Errors, 1)
	assert.Equal(t, 5, dry.Errors[0].Row)
	programs, err := api.store.GetAllPrograms(context.Background())
	require.NoError(t, err)
	assert.Empty(t, programs)

	w = api.upload("/admin/import", admin.AccessToken, "catalog.csv", catalog)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[dto.ImportResponse](t, w)
	assert.Equal(t, "catalog.csv", result.OriginalName)
	assert.Equal(t, 1, result.ProgramsCreated)
	assert.Equal(t, 3, result.CoursesCreated)
	assert.Equal(t, 1, result.Groups)
	assert.Equal(t, 1, result.Skipped)

	programs, err = api.store.GetAllPrograms(context.Background())
	require.NoError(t, err)
	require.Len(t, programs, 1)
	w = api.do(http.MethodGet, fmt.Sprintf("/graph/%d", programs[0].ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[dto.GraphResponse](t, w).Edges, 2)
}
