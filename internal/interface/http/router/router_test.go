package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/application/apptest"
	appbook "github.com/xiebiao/library/internal/application/book"
	applending "github.com/xiebiao/library/internal/application/lending"
	appreservation "github.com/xiebiao/library/internal/application/reservation"
	appsettings "github.com/xiebiao/library/internal/application/settings"
	appshelf "github.com/xiebiao/library/internal/application/shelf"
	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/domain/calendar"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/logger"
)

type server struct {
	env    *apptest.Env
	engine *gin.Engine
	tokens *jwt.Manager
}

func newServer(t *testing.T) *server {
	t.Helper()
	env := apptest.New(t)
	log := logger.Discard()
	tokens := jwt.NewManager("router-test", time.Hour, 24*time.Hour)
	sessions := memory.NewSessionStore()
	userService := user.NewService(env.Users)
	pub := env.Events

	listBooks := appbook.NewListBooksUseCase(env.Books)
	h := Handlers{
		User: handler.NewUserHandler(
			appuser.NewRegisterUseCase(userService),
			appuser.NewLoginUseCase(userService, tokens, sessions, log),
			appuser.NewLogoutUseCase(sessions, tokens),
			appuser.NewGetUserUseCase(env.Users),
			appuser.NewListUsersUseCase(env.Users),
			appuser.NewDeleteUserUseCase(env.Users, env.Tx),
		),
		Shelf: handler.NewShelfHandler(
			appshelf.NewCreateShelfUseCase(env.Shelves),
			appshelf.NewUpdateShelfUseCase(env.Shelves, env.Books, env.Tx, pub),
			appshelf.NewDeleteShelfUseCase(env.Shelves, env.Books, env.Tx),
			appshelf.NewGetShelfUseCase(env.Shelves),
			appshelf.NewListShelvesUseCase(env.Shelves),
			listBooks,
		),
		Book: handler.NewBookHandler(
			appbook.NewCreateBookUseCase(env.Books, env.Shelves, env.Tx, pub),
			appbook.NewUpdateBookUseCase(env.Books, env.Lending, env.Tx, pub),
			appbook.NewMoveBookUseCase(env.Books, env.Shelves, env.Tx, pub),
			appbook.NewDeleteBookUseCase(env.Books, env.Lending, env.Tx, pub),
			appbook.NewGetBookUseCase(env.Books),
			listBooks,
		),
		Lending: handler.NewLendingHandler(
			applending.NewLendBookUseCase(env.Books, env.Users, env.Lending, env.Reservations, env.Settings, env.Tx, pub),
			applending.NewReturnBookUseCase(env.Lending, env.Settings, env.Tx, pub),
			applending.NewPayLateFeeUseCase(env.Lending, env.Settings, env.Tx),
			applending.NewGetLateFeeUseCase(env.Lending, env.Settings),
			applending.NewListTransactionsUseCase(env.Lending),
		),
		Reservation: handler.NewReservationHandler(
			appreservation.NewReserveBookUseCase(env.Books, env.Users, env.Lending, env.Reservations, env.Tx),
			appreservation.NewUpdateReservationUseCase(env.Books, env.Lending, env.Reservations, env.Tx),
			appreservation.NewCancelReservationUseCase(env.Reservations, env.Tx),
			appreservation.NewListReservationsUseCase(env.Reservations),
		),
		Settings: handler.NewSettingsHandler(
			appsettings.NewGetSettingsUseCase(env.Settings),
			appsettings.NewUpdateLateFeeUseCase(env.Settings),
			appsettings.NewUpdateLendDayUseCase(env.Settings),
		),
	}

	engine := New(gin.TestMode, h, middleware.NewAuthMiddleware(tokens, sessions), log)
	return &server{env: env, engine: engine, tokens: tokens}
}

// tokenFor 直接签发Token，跳过登录
func (s *server) tokenFor(t *testing.T, u *user.User) string {
	t.Helper()
	pair, err := s.tokens.GenerateToken(jwt.Identity{
		UserID: u.ID,
		Email:  u.Email,
		Roles:  u.Role.Implied(),
	})
	require.NoError(t, err)
	return pair.AccessToken
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *server) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestPing(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
}

func TestRequestID_Propagated(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middleware.HeaderRequestID, "req-123")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(middleware.HeaderRequestID))
}

func TestRegisterLoginProfileLogout(t *testing.T) {
	s := newServer(t)

	status, resp := s.do(t, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"email": "reader@example.com", "password": "passw0rd1", "nickname": "读者",
	})
	require.Equal(t, http.StatusCreated, status, resp.Message)
	registered := decode[appuser.UserResponse](t, resp.Data)
	assert.Equal(t, user.RoleUser, registered.Role)

	status, resp = s.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"email": "reader@example.com", "password": "passw0rd1",
	})
	require.Equal(t, http.StatusOK, status, resp.Message)
	login := decode[appuser.LoginResponse](t, resp.Data)
	require.NotEmpty(t, login.AccessToken)

	status, resp = s.do(t, http.MethodGet, "/api/v1/profile", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(resp.Data), "reader@example.com")

	status, _ = s.do(t, http.MethodPost, "/api/v1/users/logout", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)

	status, resp = s.do(t, http.MethodGet, "/api/v1/profile", login.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, apperrors.ErrCodeTokenExpired, resp.Code)
}

func TestAuthAndRoles(t *testing.T) {
	s := newServer(t)
	reader := s.env.User(t, "reader@example.com", user.RoleUser)
	librarian := s.env.User(t, "lib@example.com", user.RoleLibrarian)

	status, resp := s.do(t, http.MethodPost, "/api/v1/shelves", "", map[string]any{"name": "A", "capacity": 5})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, resp.Code)

	status, _ = s.do(t, http.MethodPost, "/api/v1/shelves", "not-a-token", map[string]any{"name": "A", "capacity": 5})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, resp = s.do(t, http.MethodPost, "/api/v1/shelves", s.tokenFor(t, reader), map[string]any{"name": "A", "capacity": 5})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, apperrors.ErrCodeForbidden, resp.Code)

	status, _ = s.do(t, http.MethodPost, "/api/v1/shelves", s.tokenFor(t, librarian), map[string]any{"name": "A", "capacity": 5})
	assert.Equal(t, http.StatusCreated, status)

	// 馆员不能修改设置
	status, _ = s.do(t, http.MethodPut, "/api/v1/settings/lend-day", s.tokenFor(t, librarian), map[string]any{"lend_day": 7})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestBindErrors(t *testing.T) {
	s := newServer(t)
	librarian := s.tokenFor(t, s.env.User(t, "lib@example.com", user.RoleLibrarian))

	status, resp := s.do(t, http.MethodPost, "/api/v1/shelves", librarian, map[string]any{"name": "A", "capacity": 0})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperrors.ErrCodeBindError, resp.Code)

	status, resp = s.do(t, http.MethodGet, "/api/v1/books/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperrors.ErrCodeInvalidParams, resp.Code)
}

func TestCirculationOverHTTP(t *testing.T) {
	s := newServer(t)
	librarian := s.tokenFor(t, s.env.User(t, "lib@example.com", user.RoleLibrarian))
	readerUser := s.env.User(t, "reader@example.com", user.RoleUser)
	reader := s.tokenFor(t, readerUser)

	status, resp := s.do(t, http.MethodPost, "/api/v1/shelves", librarian, map[string]any{"name": "A-01", "capacity": 1})
	require.Equal(t, http.StatusCreated, status, resp.Message)
	sh := decode[appshelf.ShelfResponse](t, resp.Data)

	status, resp = s.do(t, http.MethodPost, "/api/v1/books", librarian, map[string]any{
		"isbn": "9787115428028", "title": "Go语言实战", "author": "威廉", "total_count": 2, "shelf_id": sh.ID,
	})
	require.Equal(t, http.StatusCreated, status, resp.Message)
	bk := decode[appbook.BookResponse](t, resp.Data)
	assert.Equal(t, 2, bk.AvailableCount)

	// 书架只有一个位置
	status, resp = s.do(t, http.MethodPost, "/api/v1/books", librarian, map[string]any{
		"isbn": "9787115428029", "title": "另一本", "author": "某人", "total_count": 1, "shelf_id": sh.ID,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, apperrors.ErrCodeShelfFull, resp.Code)

	// 公开查询
	status, resp = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/shelves/%d/books", sh.ID), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(resp.Data), `"total":1`)

	// 预约
	date := calendar.Of(time.Now()).AddDays(7)
	status, resp = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/reservations/books/%d", bk.ID), reader, map[string]any{"date": date.String()})
	require.Equal(t, http.StatusCreated, status, resp.Message)
	r := decode[appreservation.ReservationResponse](t, resp.Data)
	assert.Equal(t, readerUser.ID, r.UserID)

	status, resp = s.do(t, http.MethodGet, "/api/v1/reservations", reader, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(resp.Data), `"total":1`)

	// 借书
	status, resp = s.do(t, http.MethodPost, "/api/v1/lend/transactions", librarian, map[string]any{"book_id": bk.ID, "user_id": readerUser.ID})
	require.Equal(t, http.StatusCreated, status, resp.Message)
	tx := decode[applending.TransactionResponse](t, resp.Data)
	assert.False(t, tx.Returned)

	status, resp = s.do(t, http.MethodPost, "/api/v1/lend/transactions", librarian, map[string]any{"book_id": bk.ID, "user_id": readerUser.ID})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, apperrors.ErrCodeAlreadyLent, resp.Code)

	status, resp = s.do(t, http.MethodGet, "/api/v1/lend/transactions/me", reader, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(resp.Data), `"total":1`)

	status, resp = s.do(t, http.MethodGet, "/api/v1/lend/transactions/"+tx.ID+"/late-fee", reader, nil)
	require.Equal(t, http.StatusOK, status)
	fee := decode[applending.LateFeeResponse](t, resp.Data)
	assert.True(t, fee.LateFee.IsZero())

	// 未逾期时不能缴费
	status, resp = s.do(t, http.MethodPut, "/api/v1/lend/transactions/"+tx.ID+"/late-fee", reader, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, apperrors.ErrCodeNoLateFeeToPay, resp.Code)

	status, resp = s.do(t, http.MethodPut, "/api/v1/lend/transactions/"+tx.ID+"/return", librarian, nil)
	require.Equal(t, http.StatusOK, status, resp.Message)
	assert.True(t, decode[applending.TransactionResponse](t, resp.Data).Returned)

	status, resp = s.do(t, http.MethodGet, "/api/v1/lend/transactions?returned=true", librarian, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(resp.Data), `"total":1`)
}

func TestReservationOwnership(t *testing.T) {
	s := newServer(t)
	sh := s.env.Shelf(t, "A", 10)
	b := s.env.Book(t, sh.ID, "9787115428028", 3)
	alice := s.env.User(t, "alice@example.com", user.RoleUser)
	bob := s.env.User(t, "bob@example.com", user.RoleUser)
	librarian := s.env.User(t, "lib@example.com", user.RoleLibrarian)

	date := calendar.Of(time.Now()).AddDays(3)
	r := s.env.Reservation(t, b.ID, alice.ID, date, time.Now().Add(-48*time.Hour))
	path := fmt.Sprintf("/api/v1/reservations/%d", r.ID)

	status, resp := s.do(t, http.MethodPut, path, s.tokenFor(t, bob), map[string]any{"date": date.AddDays(1).String()})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, apperrors.ErrCodeForbidden, resp.Code)

	// 读者查询列表时user_id参数被忽略
	status, resp = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/reservations?user_id=%d", alice.ID), s.tokenFor(t, bob), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(resp.Data), `"total":0`)

	status, _ = s.do(t, http.MethodDelete, path, s.tokenFor(t, librarian), nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestSettingsOverHTTP(t *testing.T) {
	s := newServer(t)
	admin := s.tokenFor(t, s.env.User(t, "admin@example.com", user.RoleAdmin))

	status, resp := s.do(t, http.MethodPut, "/api/v1/settings/late-fee", admin, map[string]any{"late_fee": "1.25"})
	require.Equal(t, http.StatusOK, status, resp.Message)
	got := decode[appsettings.SettingsResponse](t, resp.Data)
	assert.Equal(t, "1.25", got.LateFeePerDay.StringFixed(2))

	status, resp = s.do(t, http.MethodPut, "/api/v1/settings/late-fee", admin, map[string]any{"late_fee": "-1"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperrors.ErrCodeInvalidParams, resp.Code)

	status, resp = s.do(t, http.MethodPut, "/api/v1/settings/lend-day", admin, map[string]any{"lend_day": 21})
	require.Equal(t, http.StatusOK, status, resp.Message)
	assert.Equal(t, 21, decode[appsettings.SettingsResponse](t, resp.Data).LendDay)
}

func TestDeleteUser_LibrarianCannotDeleteStaff(t *testing.T) {
	s := newServer(t)
	librarian := s.env.User(t, "lib@example.com", user.RoleLibrarian)
	other := s.env.User(t, "lib2@example.com", user.RoleLibrarian)
	reader := s.env.User(t, "reader@example.com", user.RoleUser)
	admin := s.env.User(t, "admin@example.com", user.RoleAdmin)

	status, _ := s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", other.ID), s.tokenFor(t, librarian), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", reader.ID), s.tokenFor(t, librarian), nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", other.ID), s.tokenFor(t, admin), nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", other.ID), s.tokenFor(t, admin), nil)
	assert.Equal(t, http.StatusNotFound, status)
}
