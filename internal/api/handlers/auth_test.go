package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Xingwd/xadmin/internal/auth"
	"github.com/Xingwd/xadmin/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		SecretKey: "test-secret-key",
		ExpiresIn: 60,
		Issuer:    "xadmin-test",
	}
}

func loginRequest(t *testing.T, body string) (*httptest.ResponseRecorder, *gin.Context) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest("POST", "/api/v1/login/access-token", strings.NewReader(body))
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return w, c
}

func TestLoginSuccess(t *testing.T) {
	gdb, mock := newMockDB(t)

	hashed, err := auth.HashPassword("admin123456")
	assert.NoError(t, err)

	userRows := sqlmock.NewRows([]string{"id", "username", "hashed_password", "is_active", "is_superuser"}).
		AddRow(1, "admin", hashed, true, true)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WillReturnRows(userRows)
	// 预加载角色及其权限
	mock.ExpectQuery(`SELECT \* FROM "user_roles"`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "role_id"}))
	// 更新最近登录时间
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w, c := loginRequest(t, `{"username":"admin","password":"admin123456"}`)
	handler := NewAuthHandler(gdb, testJWTConfig())
	handler.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Code int `json:"code"`
		Data struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
		} `json:"data"`
	}
	err = json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, 200, response.Code)
	assert.Equal(t, "bearer", response.Data.TokenType)

	// 令牌可被解析回原始声明
	claims, err := auth.ParseToken(response.Data.AccessToken, testJWTConfig())
	assert.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginWrongPassword(t *testing.T) {
	gdb, mock := newMockDB(t)

	hashed, err := auth.HashPassword("admin123456")
	assert.NoError(t, err)

	userRows := sqlmock.NewRows([]string{"id", "username", "hashed_password", "is_active"}).
		AddRow(1, "admin", hashed, true)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WillReturnRows(userRows)
	mock.ExpectQuery(`SELECT \* FROM "user_roles"`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "role_id"}))

	w, c := loginRequest(t, `{"username":"admin","password":"wrong-password"}`)
	handler := NewAuthHandler(gdb, testJWTConfig())
	handler.Login(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginUserNotFound(t *testing.T) {
	gdb, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}))

	w, c := loginRequest(t, `{"username":"ghost","password":"whatever123"}`)
	handler := NewAuthHandler(gdb, testJWTConfig())
	handler.Login(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginInactiveUser(t *testing.T) {
	gdb, mock := newMockDB(t)

	hashed, err := auth.HashPassword("admin123456")
	assert.NoError(t, err)

	userRows := sqlmock.NewRows([]string{"id", "username", "hashed_password", "is_active"}).
		AddRow(1, "admin", hashed, false)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WillReturnRows(userRows)
	mock.ExpectQuery(`SELECT \* FROM "user_roles"`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "role_id"}))

	w, c := loginRequest(t, `{"username":"admin","password":"admin123456"}`)
	handler := NewAuthHandler(gdb, testJWTConfig())
	handler.Login(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginMissingParams(t *testing.T) {
	gdb, _ := newMockDB(t)

	w, c := loginRequest(t, `{"username":"admin"}`)
	handler := NewAuthHandler(gdb, testJWTConfig())
	handler.Login(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
