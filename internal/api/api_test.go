package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskboard/internal/advice"
	"taskboard/internal/api/handlers"
	"taskboard/internal/auth"
	"taskboard/internal/cache"
	"taskboard/internal/models"
	"taskboard/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	auth.BcryptCost = bcrypt.MinCost
}

type stubAdvisor struct {
	suggestion  advice.Suggestion
	err         error
	gotText     string
	gotAssignee string
}

func (s *stubAdvisor) Suggest(_ context.Context, text, assigneeID string) (advice.Suggestion, error) {
	s.gotText, s.gotAssignee = text, assigneeID
	if s.err != nil {
		return advice.Suggestion{}, s.err
	}
	out := s.suggestion
	if assigneeID != "" {
		out.AssignedTo = assigneeID
	}
	return out, nil
}

type testEnv struct {
	app     *fiber.App
	store   *repository.Memory
	advisor *stubAdvisor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	mem := repository.NewMemory()
	adv := &stubAdvisor{suggestion: advice.Suggestion{
		Title:    "Fix login bug",
		Labels:   []string{"backend"},
		Priority: models.PriorityHigh,
	}}
	h := handlers.New(cache.New(mem, client, time.Minute), adv, nil, auth.NewIssuer("test-secret", time.Hour), "session")
	h.Checks["db"] = mem.Ping
	h.Checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }

	return &testEnv{app: NewApp(h, "*", 0), store: mem, advisor: adv}
}

type envelope struct {
	Message string          `json:"message"`
	Success bool            `json:"success"`
	Status  int             `json:"status"`
	Errors  string          `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp, env
}

func decode(t *testing.T, env envelope, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

// signup mendaftarkan user lalu login dan mengembalikan id serta token.
func (e *testEnv) signup(t *testing.T, name, email string) (uuid.UUID, string) {
	t.Helper()
	resp, _ := e.do(t, http.MethodPost, "/api/auth/signup", "", fiber.Map{"name": name, "email": email, "password": "pw1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env := e.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{"email": email, "password": "pw1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		ID    uuid.UUID `json:"id"`
		Token string    `json:"token"`
	}
	decode(t, env, &out)
	return out.ID, out.Token
}

func (e *testEnv) createBoard(t *testing.T, token, title string) models.Board {
	t.Helper()
	resp, env := e.do(t, http.MethodPost, "/api/boards", token, fiber.Map{"title": title})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var board models.Board
	decode(t, env, &board)
	return board
}

func (e *testEnv) createTask(t *testing.T, token string, boardID uuid.UUID, body fiber.Map) models.Task {
	t.Helper()
	resp, env := e.do(t, http.MethodPost, "/api/boards/"+boardID.String()+"/task", token, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var task models.Task
	decode(t, env, &task)
	return task
}

func (e *testEnv) membership(t *testing.T, token string, boardID uuid.UUID, action string, userID uuid.UUID) (*http.Response, envelope) {
	t.Helper()
	return e.do(t, http.MethodPatch, "/api/boards/"+boardID.String(), token, fiber.Map{"action": action, "userId": userID})
}

func TestSignupDuplicateEmailConflict(t *testing.T) {
	e := newTestEnv(t)

	resp, env := e.do(t, http.MethodPost, "/api/auth/signup", "", fiber.Map{"name": "A", "email": "a@x.com", "password": "pw1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, env.Success)
	var created struct {
		ID uuid.UUID `json:"id"`
	}
	decode(t, env, &created)
	assert.NotEqual(t, uuid.Nil, created.ID)

	resp, env = e.do(t, http.MethodPost, "/api/auth/signup", "", fiber.Map{"name": "A2", "email": "A@x.com", "password": "other"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.False(t, env.Success)
	assert.Equal(t, http.StatusConflict, env.Status)

	user, err := e.store.GetUserByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "A", user.Name)
}

func TestSignupValidation(t *testing.T) {
	e := newTestEnv(t)

	resp, env := e.do(t, http.MethodPost, "/api/auth/signup", "", fiber.Map{"email": "not-an-email", "password": "pw1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation error", env.Message)
	assert.NotEmpty(t, env.Errors)

	// bcrypt hanya menerima 72 byte; lebih dari itu harus 400, bukan 500.
	resp, env = e.do(t, http.MethodPost, "/api/auth/signup", "",
		fiber.Map{"name": "A", "email": "a@x.com", "password": strings.Repeat("p", 73)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation error", env.Message)

	resp, _ = e.do(t, http.MethodPost, "/api/auth/signup", "",
		fiber.Map{"name": strings.Repeat("n", 256), "email": "a@x.com", "password": "pw1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, err := e.store.GetUserByEmail(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	resp, _ = e.do(t, http.MethodPost, "/api/auth/signup", "",
		fiber.Map{"name": "A", "email": "a@x.com", "password": strings.Repeat("p", 72)})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestOversizedTitlesAreRejected(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.signup(t, "U", "u@x.com")
	board := e.createBoard(t, token, "Sprint1")
	task := e.createTask(t, token, board.ID, fiber.Map{"title": "Write docs"})
	long := strings.Repeat("x", 300)

	resp, _ := e.do(t, http.MethodPost, "/api/boards", token, fiber.Map{"title": long})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	taskPath := "/api/boards/" + board.ID.String() + "/task"
	resp, _ = e.do(t, http.MethodPost, taskPath, token, fiber.Map{"title": long})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPatch, taskPath, token, fiber.Map{"taskId": task.ID, "title": long})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPatch, "/api/tasks/"+task.ID.String(), token, fiber.Map{"title": long})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// 255 karakter multibyte masih muat di VARCHAR(255).
	resp, _ = e.do(t, http.MethodPatch, "/api/tasks/"+task.ID.String(), token, fiber.Map{"title": strings.Repeat("é", 255)})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginWrongPasswordIsUnauthorized(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t, "A", "a@x.com")

	resp, env := e.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{"email": "a@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", env.Message)

	resp, _ = e.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{"email": "nobody@x.com", "password": "pw1"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t, "A", "a@x.com")

	resp, env := e.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{"email": "a@x.com", "password": "pw1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		ID    uuid.UUID `json:"id"`
		Token string    `json:"token"`
	}
	decode(t, env, &out)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, out.Token, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: cookie.Value})
	sessResp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, sessResp.StatusCode)
}

func TestRoutesRequireSession(t *testing.T) {
	e := newTestEnv(t)

	resp, env := e.do(t, http.MethodGet, "/api/boards", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, env.Success)

	resp, _ = e.do(t, http.MethodGet, "/api/boards", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateBoardCreatorIsSoleMember(t *testing.T) {
	e := newTestEnv(t)
	u, token := e.signup(t, "U", "u@x.com")

	board := e.createBoard(t, token, "Sprint1")
	assert.Equal(t, "Sprint1", board.Title)
	assert.Equal(t, u, board.CreatedBy)
	assert.Equal(t, []uuid.UUID{u}, board.Members)

	resp, env := e.do(t, http.MethodGet, "/api/boards", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var boards []models.Board
	decode(t, env, &boards)
	require.Len(t, boards, 1)
	assert.Equal(t, board.ID, boards[0].ID)

	resp, _ = e.do(t, http.MethodPost, "/api/boards", token, fiber.Map{"title": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRemovingCreatorFails(t *testing.T) {
	e := newTestEnv(t)
	u, uToken := e.signup(t, "U", "u@x.com")
	v, _ := e.signup(t, "V", "v@x.com")
	board := e.createBoard(t, uToken, "Sprint1")

	resp, _ := e.membership(t, uToken, board.ID, "add_member", v)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := e.membership(t, uToken, board.ID, "remove_member", u)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Cannot remove the board creator", env.Message)

	resp, env = e.do(t, http.MethodGet, "/api/boards/"+board.ID.String(), uToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail models.BoardDetail
	decode(t, env, &detail)
	assert.Equal(t, []uuid.UUID{u, v}, detail.Members)
	require.Len(t, detail.MemberSummaries, 2)
	assert.Equal(t, "U", detail.MemberSummaries[0].Name)
	assert.Equal(t, "V", detail.MemberSummaries[1].Name)
}

func TestAddMemberIsIdempotent(t *testing.T) {
	e := newTestEnv(t)
	_, uToken := e.signup(t, "U", "u@x.com")
	v, _ := e.signup(t, "V", "v@x.com")
	board := e.createBoard(t, uToken, "Sprint1")

	for i := 0; i < 2; i++ {
		resp, env := e.membership(t, uToken, board.ID, "add_member", v)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var updated models.Board
		decode(t, env, &updated)
		assert.Len(t, updated.Members, 2)
	}
}

func TestMembershipRules(t *testing.T) {
	e := newTestEnv(t)
	_, uToken := e.signup(t, "U", "u@x.com")
	v, vToken := e.signup(t, "V", "v@x.com")
	w, wToken := e.signup(t, "W", "w@x.com")
	board := e.createBoard(t, uToken, "Sprint1")

	// Bukan anggota tidak boleh menambah orang lain.
	resp, _ := e.membership(t, vToken, board.ID, "add_member", w)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Tetapi boleh bergabung sendiri.
	resp, _ = e.membership(t, vToken, board.ID, "add_member", v)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Bukan anggota tidak boleh mengeluarkan anggota.
	resp, _ = e.membership(t, wToken, board.ID, "remove_member", v)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Anggota boleh keluar sendiri.
	resp, env := e.membership(t, vToken, board.ID, "remove_member", v)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Board
	decode(t, env, &updated)
	assert.NotContains(t, updated.Members, v)

	resp, _ = e.membership(t, uToken, board.ID, "rename", v)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = e.membership(t, uToken, board.ID, "add_member", uuid.New())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBoardAccessAndDelete(t *testing.T) {
	e := newTestEnv(t)
	_, uToken := e.signup(t, "U", "u@x.com")
	v, vToken := e.signup(t, "V", "v@x.com")
	board := e.createBoard(t, uToken, "Sprint1")
	task := e.createTask(t, uToken, board.ID, fiber.Map{"title": "Write docs"})
	path := "/api/boards/" + board.ID.String()

	resp, _ := e.do(t, http.MethodGet, path, vToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = e.do(t, http.MethodGet, path+"/task", vToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = e.do(t, http.MethodGet, "/api/tasks/"+task.ID.String(), vToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	e.membership(t, uToken, board.ID, "add_member", v)
	resp, _ = e.do(t, http.MethodDelete, path, vToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, env := e.do(t, http.MethodDelete, path, uToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		DeletedTasks int64 `json:"deletedTasks"`
	}
	decode(t, env, &out)
	assert.Equal(t, int64(1), out.DeletedTasks)

	resp, _ = e.do(t, http.MethodGet, path, uToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = e.do(t, http.MethodGet, "/api/tasks/"+task.ID.String(), uToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/api/boards/not-a-uuid", uToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateTaskDefaultsAndInvalidStatus(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.signup(t, "U", "u@x.com")
	board := e.createBoard(t, token, "Sprint1")

	task := e.createTask(t, token, board.ID, fiber.Map{
		"title":   "Write docs",
		"labels":  []string{"docs", " "},
		"dueDate": "2025-06-10",
	})
	assert.Equal(t, models.StatusNotStarted, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, []string{"docs"}, task.Labels)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2025-06-10", task.DueDate.Format("2006-01-02"))

	path := "/api/boards/" + board.ID.String() + "/task"
	resp, _ := e.do(t, http.MethodPost, path, token, fiber.Map{"title": "Bad", "status": "done"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = e.do(t, http.MethodPost, path, token, fiber.Map{"title": "Bad", "priority": "Urgent"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = e.do(t, http.MethodPost, path, token, fiber.Map{"description": "no title"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = e.do(t, http.MethodPost, path, token, fiber.Map{"title": "Ghost", "assignedTo": uuid.New()})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env := e.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tasks []models.Task
	decode(t, env, &tasks)
	assert.Len(t, tasks, 1)
}

func TestCreateTaskFromFreeText(t *testing.T) {
	e := newTestEnv(t)
	u, token := e.signup(t, "U", "u@x.com")
	board := e.createBoard(t, token, "Sprint1")

	task := e.createTask(t, token, board.ID, fiber.Map{
		"task":       "Fix login bug, due Friday, high priority",
		"assignedTo": u.String(),
	})
	assert.NotEmpty(t, task.Title)
	assert.True(t, task.Priority.Valid())
	assert.Equal(t, models.StatusNotStarted, task.Status)
	require.NotNil(t, task.AssignedTo)
	assert.Equal(t, u, *task.AssignedTo)
	assert.Equal(t, "Fix login bug, due Friday, high priority", e.advisor.gotText)
	assert.Equal(t, u.String(), e.advisor.gotAssignee)
}

func TestCreateTaskAdviceFailure(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.signup(t, "U", "u@x.com")
	board := e.createBoard(t, token, "Sprint1")
	e.advisor.err = advice.ErrAdvice

	resp, env := e.do(t, http.MethodPost, "/api/boards/"+board.ID.String()+"/task", token, fiber.Map{"task": "something"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.False(t, env.Success)

	resp, _ = e.do(t, http.MethodPost, "/api/advice", token, fiber.Map{"task": "something"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestAdvicePreview(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.signup(t, "U", "u@x.com")

	resp, env := e.do(t, http.MethodPost, "/api/advice", token, fiber.Map{"task": "Fix login bug"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Advice advice.Suggestion `json:"advice"`
	}
	decode(t, env, &out)
	assert.Equal(t, "Fix login bug", out.Advice.Title)
	assert.Equal(t, models.PriorityHigh, out.Advice.Priority)

	resp, _ = e.do(t, http.MethodPost, "/api/advice", token, fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateTaskPermissionsAndFields(t *testing.T) {
	e := newTestEnv(t)
	_, uToken := e.signup(t, "U", "u@x.com")
	v, vToken := e.signup(t, "V", "v@x.com")
	board := e.createBoard(t, uToken, "Sprint1")
	e.membership(t, uToken, board.ID, "add_member", v)
	task := e.createTask(t, uToken, board.ID, fiber.Map{"title": "Write docs", "dueDate": "2025-06-10"})
	path := "/api/tasks/" + task.ID.String()

	// V anggota, tetapi bukan pembuat task maupun board.
	resp, _ := e.do(t, http.MethodPatch, path, vToken, fiber.Map{"status": "inProgress"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = e.do(t, http.MethodDelete, path, vToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, env := e.do(t, http.MethodPatch, path, uToken, fiber.Map{"status": "inProgress", "assignedTo": v, "dueDate": nil})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var updated models.Task
	decode(t, env, &updated)
	assert.Equal(t, models.StatusInProgress, updated.Status)
	assert.Equal(t, "Write docs", updated.Title)
	assert.Nil(t, updated.DueDate)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, v, *updated.AssignedTo)

	// Status boleh kembali ke kolom mana pun.
	resp, _ = e.do(t, http.MethodPatch, path, uToken, fiber.Map{"status": "notStarted"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPatch, path, uToken, fiber.Map{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env = e.do(t, http.MethodPatch, path, uToken, fiber.Map{"color": "red"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No valid fields provided to update", env.Message)

	resp, _ = e.do(t, http.MethodPatch, path, uToken, fiber.Map{"assignedTo": uuid.New()})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env = e.do(t, http.MethodGet, path, vToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Task
	decode(t, env, &fetched)
	assert.Equal(t, models.StatusNotStarted, fetched.Status)

	resp, _ = e.do(t, http.MethodDelete, path, uToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = e.do(t, http.MethodGet, path, uToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateBoardTaskScopedToBoard(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.signup(t, "U", "u@x.com")
	board := e.createBoard(t, token, "Sprint1")
	other := e.createBoard(t, token, "Sprint2")
	task := e.createTask(t, token, board.ID, fiber.Map{"title": "Write docs"})

	resp, env := e.do(t, http.MethodPatch, "/api/boards/"+board.ID.String()+"/task", token,
		fiber.Map{"taskId": task.ID, "priority": "High", "labels": []string{"docs"}})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var updated models.Task
	decode(t, env, &updated)
	assert.Equal(t, models.PriorityHigh, updated.Priority)
	assert.Equal(t, []string{"docs"}, updated.Labels)

	resp, _ = e.do(t, http.MethodPatch, "/api/boards/"+other.ID.String()+"/task", token,
		fiber.Map{"taskId": task.ID, "priority": "Low"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPatch, "/api/boards/"+board.ID.String()+"/task", token,
		fiber.Map{"priority": "Low"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Body harus dikirim sebagai JSON seperti endpoint lainnya.
	req := httptest.NewRequest(http.MethodPatch, "/api/boards/"+board.ID.String()+"/task",
		strings.NewReader(`{"taskId":"`+task.ID.String()+`","priority":"Low"}`))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", "Bearer "+token)
	plainResp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, plainResp.StatusCode)
}

func TestUsersAndDiscoveryFeed(t *testing.T) {
	e := newTestEnv(t)
	_, uToken := e.signup(t, "U", "u@x.com")
	v, vToken := e.signup(t, "V", "v@x.com")
	board := e.createBoard(t, uToken, "Sprint1")

	feed := func() []models.Board {
		resp, env := e.do(t, http.MethodGet, "/api/users/"+v.String()+"/boards", vToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var boards []models.Board
		decode(t, env, &boards)
		return boards
	}
	require.Len(t, feed(), 1)
	assert.Equal(t, board.ID, feed()[0].ID)

	e.membership(t, vToken, board.ID, "add_member", v)
	assert.Empty(t, feed())

	resp, env := e.do(t, http.MethodGet, "/api/users/"+v.String(), uToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(env.Data), "password")
	var user models.User
	decode(t, env, &user)
	assert.Equal(t, "V", user.Name)
	assert.Equal(t, []uuid.UUID{board.ID}, user.Boards)

	resp, _ = e.do(t, http.MethodGet, "/api/users/"+uuid.New().String(), uToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	e := newTestEnv(t)

	resp, env := e.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(env.Data), `"redis":"ok"`))
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.signup(t, "U", "u@x.com")
	board := e.createBoard(t, token, "Sprint1")

	req := httptest.NewRequest(http.MethodGet, "/ws/boards/"+board.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}
