//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCirculation 书架 → 图书 → 预约 → 借阅 → 归还 的完整流程
func TestCirculation(t *testing.T) {
	base := baseURL(t)
	admin := AdminToken(t, base)
	_, librarian := CreateUser(t, base, admin, "ROLE_LIBRARIAN")
	readerID, reader := CreateUser(t, base, admin, "ROLE_USER")
	_, other := CreateUser(t, base, admin, "ROLE_USER")

	var shelf struct {
		ID uint `json:"id"`
	}
	resp := Do(t, http.MethodPost, base+"/shelves", map[string]any{
		"name":     UniqueEmail("shelf"),
		"capacity": 10,
	}, librarian)
	require.Equal(t, http.StatusCreated, resp.Status, resp.Message)
	resp.Decode(t, &shelf)

	var book struct {
		ID             uint `json:"id"`
		AvailableCount int  `json:"available_count"`
	}
	resp = Do(t, http.MethodPost, base+"/books", map[string]any{
		"isbn":        UniqueISBN(),
		"title":       "集成测试用书",
		"author":      "测试作者",
		"total_count": 1,
		"shelf_id":    shelf.ID,
	}, librarian)
	require.Equal(t, http.StatusCreated, resp.Status, resp.Message)
	resp.Decode(t, &book)
	assert.Equal(t, 1, book.AvailableCount)

	t.Run("唯一副本被预约后拒绝他人预约同一天", func(t *testing.T) {
		date := time.Now().AddDate(0, 0, 5).Format("2006-01-02")
		resp := Do(t, http.MethodPost, fmt.Sprintf("%s/reservations/books/%d", base, book.ID), map[string]string{"date": date}, reader)
		require.Equal(t, http.StatusCreated, resp.Status, resp.Message)

		resp = Do(t, http.MethodPost, fmt.Sprintf("%s/reservations/books/%d", base, book.ID), map[string]string{"date": date}, other)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Status, resp.Message)
	})

	t.Run("预约人可以借走，借出后修正任务更新可借数", func(t *testing.T) {
		resp := Do(t, http.MethodPost, base+"/lend/transactions", map[string]any{
			"book_id": book.ID,
			"user_id": readerID,
		}, librarian)
		require.Equal(t, http.StatusCreated, resp.Status, resp.Message)

		var tx struct {
			ID string `json:"id"`
		}
		resp.Decode(t, &tx)

		// 修正任务异步执行
		require.Eventually(t, func() bool {
			resp := Do(t, http.MethodGet, fmt.Sprintf("%s/books/%d", base, book.ID), nil, "")
			var got struct {
				AvailableCount int `json:"available_count"`
			}
			resp.Decode(t, &got)
			return got.AvailableCount == 0
		}, 5*time.Second, 100*time.Millisecond)

		resp = Do(t, http.MethodPut, base+"/lend/transactions/"+tx.ID+"/return", nil, librarian)
		require.Equal(t, http.StatusOK, resp.Status, resp.Message)

		require.Eventually(t, func() bool {
			resp := Do(t, http.MethodGet, fmt.Sprintf("%s/books/%d", base, book.ID), nil, "")
			var got struct {
				AvailableCount int `json:"available_count"`
			}
			resp.Decode(t, &got)
			return got.AvailableCount == 1
		}, 5*time.Second, 100*time.Millisecond)
	})
}

// TestUserAccess 注册、登录、登出与权限
func TestUserAccess(t *testing.T) {
	base := baseURL(t)

	email := UniqueEmail("reader")
	resp := Do(t, http.MethodPost, base+"/users/register", map[string]string{
		"email":    email,
		"password": testPassword,
		"nickname": "读者",
	}, "")
	require.Equal(t, http.StatusCreated, resp.Status, resp.Message)

	resp = Do(t, http.MethodPost, base+"/users/register", map[string]string{
		"email":    email,
		"password": testPassword,
		"nickname": "读者",
	}, "")
	assert.Equal(t, http.StatusConflict, resp.Status)

	token := Login(t, base, email, testPassword)

	resp = Do(t, http.MethodPost, base+"/shelves", map[string]any{"name": "x", "capacity": 1}, token)
	assert.Equal(t, http.StatusForbidden, resp.Status)

	resp = Do(t, http.MethodPost, base+"/users/logout", nil, token)
	require.Equal(t, http.StatusOK, resp.Status)

	resp = Do(t, http.MethodGet, base+"/profile", nil, token)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
}
