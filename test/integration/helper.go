//go:build integration

// Package integration 针对运行中服务的端到端测试
//
// 运行方式（需要先启动服务并配置初始管理员）：
//
//	LIBRARY_BASE_URL=http://localhost:8080/api/v1 \
//	LIBRARY_ADMIN_EMAIL=admin@library.local LIBRARY_ADMIN_PASSWORD=Admin1234 \
//	go test -tags integration ./test/integration/...
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Timeout HTTP请求超时时间
const Timeout = 10 * time.Second

const testPassword = "Test1234"

var seq atomic.Int64

// Response 统一响应结构
type Response struct {
	Status  int             `json:"-"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Decode 解析data字段
func (r *Response) Decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, v), "解析data失败: %s", string(r.Data))
}

// baseURL 未设置LIBRARY_BASE_URL时跳过
func baseURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("LIBRARY_BASE_URL")
	if url == "" {
		t.Skip("未设置LIBRARY_BASE_URL，跳过集成测试")
	}
	return url
}

// Do 发送请求并解析统一响应
func Do(t *testing.T, method, url string, body any, token string) *Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err, "JSON序列化失败")
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err, "创建HTTP请求失败")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	result := Response{Status: resp.StatusCode}
	require.NoError(t, json.Unmarshal(raw, &result), "解析JSON响应失败: %s", string(raw))
	return &result
}

// UniqueEmail 生成唯一的测试邮箱
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%d_%d@test.com", prefix, time.Now().UnixNano(), seq.Add(1))
}

// UniqueISBN 生成唯一的13位ISBN
func UniqueISBN() string {
	return fmt.Sprintf("978%010d", (time.Now().UnixNano()+seq.Add(1))%10000000000)
}

// Login 登录并返回Access Token
func Login(t *testing.T, base, email, password string) string {
	t.Helper()
	resp := Do(t, http.MethodPost, base+"/users/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, 0, resp.Code, "登录失败: %s", resp.Message)

	var data struct {
		AccessToken string `json:"access_token"`
	}
	resp.Decode(t, &data)
	return data.AccessToken
}

// AdminToken 使用配置的初始管理员登录
func AdminToken(t *testing.T, base string) string {
	t.Helper()
	email, password := os.Getenv("LIBRARY_ADMIN_EMAIL"), os.Getenv("LIBRARY_ADMIN_PASSWORD")
	if email == "" || password == "" {
		t.Skip("未设置LIBRARY_ADMIN_EMAIL/LIBRARY_ADMIN_PASSWORD")
	}
	return Login(t, base, email, password)
}

// CreateUser 管理员创建账号，返回用户ID与Token
func CreateUser(t *testing.T, base, adminToken, role string) (uint, string) {
	t.Helper()
	email := UniqueEmail(role)
	resp := Do(t, http.MethodPost, base+"/users", map[string]string{
		"email":    email,
		"password": testPassword,
		"nickname": "测试" + role[5:],
		"role":     role,
	}, adminToken)
	require.Equal(t, http.StatusCreated, resp.Status, "创建账号失败: %s", resp.Message)

	var data struct {
		ID uint `json:"id"`
	}
	resp.Decode(t, &data)
	return data.ID, Login(t, base, email, testPassword)
}
