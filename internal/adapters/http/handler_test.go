package httpadapter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	httpadapter "github.com/williskipsjr/SoulSync-Beta/internal/adapters/http"
	"github.com/williskipsjr/SoulSync-Beta/internal/adapters/storage/memory"
	"github.com/williskipsjr/SoulSync-Beta/internal/app/account"
	"github.com/williskipsjr/SoulSync-Beta/internal/app/classifier"
	"github.com/williskipsjr/SoulSync-Beta/internal/app/conversation"
	"github.com/williskipsjr/SoulSync-Beta/internal/app/emergency"
	"github.com/williskipsjr/SoulSync-Beta/internal/app/mood"
	"github.com/williskipsjr/SoulSync-Beta/internal/app/records"
	"github.com/williskipsjr/SoulSync-Beta/internal/app/status"
	"github.com/williskipsjr/SoulSync-Beta/internal/auth"
	"github.com/williskipsjr/SoulSync-Beta/internal/domain"
)

type recordingNotifier struct {
	chatIDs []string
}

func (n *recordingNotifier) Configured() bool { return true }

func (n *recordingNotifier) Notify(_ context.Context, chatID, _ string) error {
	n.chatIDs = append(n.chatIDs, chatID)
	return nil
}

type testServer struct {
	handler  http.Handler
	notifier *recordingNotifier
	backend  *memory.Backend
}

func newTestServer(t *testing.T, requireAuth bool) *testServer {
	t.Helper()

	backend := memory.NewBackend()
	users := records.New[domain.User](backend, domain.CollectionUsers)
	accounts := account.NewService(users).WithHashCost(bcrypt.MinCost)

	notifier := &recordingNotifier{}
	relay := emergency.NewService(accounts, notifier)

	tokens, err := auth.NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	h := httpadapter.NewServer(httpadapter.Deps{
		Accounts:      accounts,
		Conversations: conversation.NewService(records.New[domain.Conversation](backend, domain.CollectionConversations), nil, relay),
		Mood:          mood.NewService(records.New[domain.MoodEntry](backend, domain.CollectionMoodEntries)),
		Emergency:     relay,
		Status:        status.NewService(records.New[domain.StatusCheck](backend, domain.CollectionStatusChecks)),
		Tokens:        tokens,
		RequireAuth:   requireAuth,
		CORSOrigins:   []string{"*"},
	})

	return &testServer{handler: h, notifier: notifier, backend: backend}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

type authBody struct {
	User  map[string]any `json:"user"`
	Token string         `json:"token"`
}

func register(t *testing.T, ts *testServer, email string) authBody {
	t.Helper()

	w := ts.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": email, "name": "Test", "password": "pw",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d, body=%s", w.Code, w.Body.String())
	}
	return decodeBody[authBody](t, w)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do(t, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestRootHello(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do(t, http.MethodGet, "/api/", nil)
	if got := decodeBody[map[string]string](t, w); got["message"] != "Hello World" {
		t.Fatalf("unexpected body %v", got)
	}
}

func TestRegisterLoginAndConflict(t *testing.T) {
	ts := newTestServer(t, false)

	reg := register(t, ts, "a@b.c")
	if reg.Token == "" {
		t.Fatalf("expected token")
	}
	if _, ok := reg.User["password_hash"]; ok {
		t.Fatalf("password hash leaked: %v", reg.User)
	}

	w := ts.do(t, http.MethodPost, "/api/auth/register", map[string]string{"email": "A@B.C", "password": "x"})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", w.Code)
	}

	w = ts.do(t, http.MethodPost, "/api/auth/register", map[string]string{"email": "long@b.c", "password": strings.Repeat("x", 73)})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("oversized password: expected 400, got %d, body=%s", w.Code, w.Body.String())
	}

	w = ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@b.c", "password": "pw"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	w = ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@b.c", "password": "nope"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", w.Code)
	}
}

func TestInvalidJSON(t *testing.T) {
	ts := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader([]byte(`{not json`)))
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestPatchAndGetUser(t *testing.T) {
	ts := newTestServer(t, false)
	id := register(t, ts, "a@b.c").User["id"].(string)

	w := ts.do(t, http.MethodPatch, "/api/users/"+id, map[string]any{
		"emergency_contact":    map[string]string{"telegram_chat_id": "777"},
		"onboarding_completed": true,
		"email":                "ignored@x.y",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	w = ts.do(t, http.MethodGet, "/api/users/"+id, nil)
	got := decodeBody[map[string]any](t, w)
	if got["email"] != "a@b.c" || got["onboarding_completed"] != true {
		t.Fatalf("unexpected user %v", got)
	}

	if w := ts.do(t, http.MethodPatch, "/api/users/"+id, map[string]any{}); w.Code != http.StatusBadRequest {
		t.Fatalf("empty patch: expected 400, got %d", w.Code)
	}
	if w := ts.do(t, http.MethodGet, "/api/users/missing", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing user: expected 404, got %d", w.Code)
	}
}

func TestChatFlow(t *testing.T) {
	ts := newTestServer(t, false)
	id := register(t, ts, "a@b.c").User["id"].(string)

	w := ts.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "I feel anxious", "user_id": id})
	if w.Code != http.StatusOK {
		t.Fatalf("chat: expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
	first := decodeBody[map[string]any](t, w)
	if first["response"] != classifier.AnxietyResponse || first["crisis_detected"] != false {
		t.Fatalf("unexpected chat reply %v", first)
	}
	convID := first["conversation_id"].(string)

	w = ts.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "thanks", "user_id": id, "conversation_id": convID})
	if w.Code != http.StatusOK {
		t.Fatalf("second chat: %d", w.Code)
	}

	w = ts.do(t, http.MethodGet, "/api/conversations/"+id+"/"+convID, nil)
	conv := decodeBody[domain.Conversation](t, w)
	if len(conv.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(conv.Messages))
	}

	w = ts.do(t, http.MethodPatch, "/api/conversations/"+id+"/"+convID, map[string]string{"title": "Renamed"})
	if got := decodeBody[domain.Conversation](t, w); got.Title != "Renamed" {
		t.Fatalf("rename: %v", got.Title)
	}

	w = ts.do(t, http.MethodGet, "/api/conversations/"+id, nil)
	if list := decodeBody[[]domain.Conversation](t, w); len(list) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(list))
	}

	for i := 0; i < 2; i++ {
		if w := ts.do(t, http.MethodDelete, "/api/conversations/"+id+"/"+convID, nil); w.Code != http.StatusOK {
			t.Fatalf("delete #%d: expected 200, got %d", i, w.Code)
		}
	}
	if w := ts.do(t, http.MethodGet, "/api/conversations/"+id+"/"+convID, nil); w.Code != http.StatusNotFound {
		t.Fatalf("deleted conversation: expected 404, got %d", w.Code)
	}
}

func TestChatWithoutUserIsNotPersisted(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "hello", "conversation_id": "abc"})
	got := decodeBody[map[string]any](t, w)
	if got["conversation_id"] != "abc" || got["response"] != classifier.FallbackResponse {
		t.Fatalf("unexpected reply %v", got)
	}

	data, _ := ts.backend.ReadCollection(context.Background(), domain.CollectionConversations)
	if data != nil {
		t.Fatalf("conversation persisted without user: %s", data)
	}

	if w := ts.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "   "}); w.Code != http.StatusBadRequest {
		t.Fatalf("blank message: expected 400, got %d", w.Code)
	}
}

func TestCrisisChatNotifiesContact(t *testing.T) {
	ts := newTestServer(t, false)
	id := register(t, ts, "a@b.c").User["id"].(string)
	ts.do(t, http.MethodPatch, "/api/users/"+id, map[string]any{
		"emergency_contact": map[string]string{"telegram_chat_id": "555"},
	})

	w := ts.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "I want to die", "user_id": id})
	got := decodeBody[map[string]any](t, w)
	if got["crisis_detected"] != true || got["emergency_notified"] != true {
		t.Fatalf("unexpected reply %v", got)
	}
	if len(ts.notifier.chatIDs) != 1 || ts.notifier.chatIDs[0] != "555" {
		t.Fatalf("notifier calls = %v", ts.notifier.chatIDs)
	}
}

func TestMoodEndpoints(t *testing.T) {
	ts := newTestServer(t, false)

	for _, score := range []int{2, 4, 6} {
		w := ts.do(t, http.MethodPost, "/api/mood", map[string]any{
			"user_id": "u1", "mood_score": score, "emotions": []string{"calm"},
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("create mood: expected 201, got %d, body=%s", w.Code, w.Body.String())
		}
	}

	w := ts.do(t, http.MethodGet, "/api/mood/u1?limit=2", nil)
	if list := decodeBody[[]domain.MoodEntry](t, w); len(list) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(list))
	}

	w = ts.do(t, http.MethodGet, "/api/mood/u1/stats", nil)
	stats := decodeBody[domain.MoodStats](t, w)
	if stats.AverageMood != 4.0 || stats.TotalEntries != 3 || len(stats.CommonEmotions) != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	if w := ts.do(t, http.MethodGet, "/api/mood/u1?limit=abc", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: expected 400, got %d", w.Code)
	}
	if w := ts.do(t, http.MethodPost, "/api/mood", map[string]any{"user_id": "u1", "mood_score": 11}); w.Code != http.StatusBadRequest {
		t.Fatalf("out of range score: expected 400, got %d", w.Code)
	}
}

func TestEmergencyNotifyWithoutContact(t *testing.T) {
	ts := newTestServer(t, false)
	id := register(t, ts, "a@b.c").User["id"].(string)

	w := ts.do(t, http.MethodPost, "/api/emergency/notify", map[string]string{"user_id": id})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := decodeBody[emergency.Result](t, w); got.Success {
		t.Fatalf("expected success=false, got %+v", got)
	}
}

func TestStatusEndpoints(t *testing.T) {
	ts := newTestServer(t, false)

	if w := ts.do(t, http.MethodPost, "/api/status", map[string]string{"client_name": "web"}); w.Code != http.StatusOK {
		t.Fatalf("create status: %d", w.Code)
	}
	w := ts.do(t, http.MethodGet, "/api/status", nil)
	if list := decodeBody[[]domain.StatusCheck](t, w); len(list) != 1 || list[0].ClientName != "web" {
		t.Fatalf("unexpected status list %v", list)
	}
}

func TestRequireAuth(t *testing.T) {
	ts := newTestServer(t, true)
	reg := register(t, ts, "a@b.c")
	id := reg.User["id"].(string)

	if w := ts.do(t, http.MethodGet, "/api/users/"+id, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", w.Code)
	}
	if w := ts.do(t, http.MethodGet, "/api/users/"+id, nil, "Authorization", "Bearer "+reg.Token); w.Code != http.StatusOK {
		t.Fatalf("own token: expected 200, got %d", w.Code)
	}

	other := register(t, ts, "x@y.z")
	if w := ts.do(t, http.MethodGet, "/api/users/"+id, nil, "Authorization", "Bearer "+other.Token); w.Code != http.StatusUnauthorized {
		t.Fatalf("foreign token: expected 401, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do(t, http.MethodOptions, "/api/chat", nil, "Origin", "http://localhost:3000")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
}
