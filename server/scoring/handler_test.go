package scoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calicore/server/session"
)

// newTestRouter 组装带假登录态的路由（team 7）
func newTestRouter(t *testing.T, engine *Engine, flashes *session.FlashStore) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// 审计日志按需放行
	mock.MatchExpectationsInOrder(false)
	mock.ExpectExec("INSERT INTO system_logs").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO system_logs").WillReturnResult(sqlmock.NewResult(2, 1))

	r := gin.New()
	authed := func(c *gin.Context) {
		c.Set("userID", int64(7))
		c.Set("username", "team7")
	}
	r.POST("/api/flags/submit", authed, func(c *gin.Context) {
		HandleSubmitFlag(c, db, engine, flashes)
	})
	r.GET("/api/dashboard", authed, func(c *gin.Context) {
		HandleDashboard(c, engine, flashes)
	})
	return r, mock
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	var reqBody *strings.Reader
	if body == "" {
		reqBody = strings.NewReader("")
	} else {
		reqBody = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w.Code, parsed
}

func TestHandleSubmitFlag_CreditedThenDashboardFlash(t *testing.T) {
	ledger := newFakeLedger()
	hints := &fakeHints{hints: map[int64]string{1: "creds=username:password"}}
	engine := newTestEngine(ledger, hints)
	flashes := session.NewFlashStore()
	r, _ := newTestRouter(t, engine, flashes)

	code, resp := doJSON(t, r, http.MethodPost, "/api/flags/submit", `{"flag":"{{R7tQ4mPz}}"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["correct"])
	assert.Equal(t, "Congratulations! Flag found.", resp["message"])
	assert.Equal(t, float64(100), resp["points"])

	// 提交后的dashboard渲染：一次性flash + 解锁提示
	code, resp = doJSON(t, r, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "team7", resp["username"])
	flash, ok := resp["flash"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "success", flash["class"])
	reveals, ok := resp["reveals"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{"creds=username:password"}, reveals)

	// 再次渲染：flash和提示都已被消费
	code, resp = doJSON(t, r, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, resp, "flash")
	assert.NotContains(t, resp, "reveals")
}

func TestHandleSubmitFlag_InvalidFlagFlash(t *testing.T) {
	engine := newTestEngine(newFakeLedger(), nil)
	flashes := session.NewFlashStore()
	r, _ := newTestRouter(t, engine, flashes)

	code, resp := doJSON(t, r, http.MethodPost, "/api/flags/submit", `{"flag":"wrongflag"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, resp["correct"])
	assert.Equal(t, "That's not the right flag. Keep trying!", resp["message"])
	assert.Equal(t, "error", resp["class"])

	_, resp = doJSON(t, r, http.MethodGet, "/api/dashboard", "")
	flash, ok := resp["flash"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "error", flash["class"])
}

func TestHandleSubmitFlag_MissingBody(t *testing.T) {
	engine := newTestEngine(newFakeLedger(), nil)
	r, _ := newTestRouter(t, engine, session.NewFlashStore())

	code, resp := doJSON(t, r, http.MethodPost, "/api/flags/submit", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_REQUEST", resp["error"])
}

func TestHandleSubmitFlag_StorageErrorHidesDetail(t *testing.T) {
	ledger := newFakeLedger()
	ledger.failWith = assert.AnError
	engine := newTestEngine(ledger, nil)
	r, _ := newTestRouter(t, engine, session.NewFlashStore())

	code, resp := doJSON(t, r, http.MethodPost, "/api/flags/submit", `{"flag":"{{R7tQ4mPz}}"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "STORAGE_ERROR", resp["error"])
	// 通用文案，不带底层错误内容
	assert.Equal(t, "A database error occurred. Please try again.", resp["message"])
}
