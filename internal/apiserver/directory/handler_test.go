package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kudos-admin/internal/apiserver/auth"
	"kudos-admin/internal/shared/model"
	sqlitedriver "kudos-admin/internal/shared/storage/driver/sqlite"
	"kudos-admin/internal/shared/storage/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	db, err := sqlitedriver.Open(":memory:")
	require.NoError(t, err)
	dialect := sqlitedriver.NewDialect()
	require.NoError(t, dialect.AutoMigrate(db))
	store := repository.NewStore(db, dialect)
	t.Cleanup(func() { store.Close() })

	mux := http.NewServeMux()
	NewHandler(store).RegisterRoutes(mux)
	return mux
}

func doRequest(mux *http.ServeMux, role, method, path, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if role != "" {
		ctx := auth.WithAuthUser(context.Background(), &auth.AuthUser{ID: "usr-actor", Role: role})
		r = r.WithContext(ctx)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	return w
}

func TestCreateTeamRequiresAdmin(t *testing.T) {
	mux := newTestMux(t)

	w := doRequest(mux, "manager", "POST", "/api/v1/teams", `{"name":"Platform"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(mux, "admin", "POST", "/api/v1/teams", `{"name":"Platform","description":"infra"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var team model.Team
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &team))
	assert.Equal(t, "Platform", team.Name)
	assert.True(t, strings.HasPrefix(team.ID, "team-"))
}

func TestCreateUserAndMembers(t *testing.T) {
	mux := newTestMux(t)

	w := doRequest(mux, "admin", "POST", "/api/v1/teams", `{"name":"Platform"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var team model.Team
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &team))

	// 非管理员不能建用户
	w = doRequest(mux, "hr", "POST", "/api/v1/users", `{}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(mux, "admin", "POST", "/api/v1/users",
		`{"email":"alice@example.com","display_name":"Alice","password":"password123","role":"manager","team_id":"`+team.ID+`"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var user model.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, model.UserRoleManager, user.Role)
	// 密码哈希永不出现在响应中
	assert.NotContains(t, w.Body.String(), "password_hash")

	// 重复邮箱
	w = doRequest(mux, "admin", "POST", "/api/v1/users",
		`{"email":"alice@example.com","display_name":"Alice2","password":"password123"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	// 未知角色
	w = doRequest(mux, "admin", "POST", "/api/v1/users",
		`{"email":"bob@example.com","display_name":"Bob","password":"password123","role":"superuser"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 不存在的团队
	w = doRequest(mux, "admin", "POST", "/api/v1/users",
		`{"email":"bob@example.com","display_name":"Bob","password":"password123","team_id":"team-missing"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 成员列表
	w = doRequest(mux, "employee", "GET", "/api/v1/teams/"+team.ID+"/members", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)

	// 不存在团队的成员列表
	w = doRequest(mux, "employee", "GET", "/api/v1/teams/team-missing/members", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
