package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "abasto_session", "test-secret", time.Hour, false)
}

func commitAndCookie(t *testing.T, sm *SessionManager, r *http.Request, sess *Session) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), rec, r, sess))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func TestFlashSurvivesCommitUntilPopped(t *testing.T) {
	sm := newTestManager(t)

	first := httptest.NewRequest("POST", "/deudas", nil)
	sess, err := sm.Load(context.Background(), first)
	require.NoError(t, err)
	sess.AddFlash(FlashMessage{Kind: "success", Message: "Abono registrado"})
	cookie := commitAndCookie(t, sm, first, sess)

	second := httptest.NewRequest("GET", "/deudas", nil)
	second.AddCookie(cookie)
	loaded, err := sm.Load(context.Background(), second)
	require.NoError(t, err)

	flash := loaded.PopFlash()
	require.NotNil(t, flash)
	require.Equal(t, "success", flash.Kind)
	require.Equal(t, "Abono registrado", flash.Message)
	require.Nil(t, loaded.PopFlash())

	// Popping marks the session dirty, so the next commit drops the flash.
	cookie = commitAndCookie(t, sm, second, loaded)

	third := httptest.NewRequest("GET", "/deudas", nil)
	third.AddCookie(cookie)
	reloaded, err := sm.Load(context.Background(), third)
	require.NoError(t, err)
	require.Nil(t, reloaded.PopFlash())
}

func TestSessionValuesAndUserRoundTrip(t *testing.T) {
	sm := newTestManager(t)

	first := httptest.NewRequest("GET", "/", nil)
	sess, err := sm.Load(context.Background(), first)
	require.NoError(t, err)
	sess.Set("theme", "claro")
	sess.SetUser("user-42")
	cookie := commitAndCookie(t, sm, first, sess)

	second := httptest.NewRequest("GET", "/", nil)
	second.AddCookie(cookie)
	loaded, err := sm.Load(context.Background(), second)
	require.NoError(t, err)
	require.Equal(t, "claro", loaded.Get("theme"))
	require.Equal(t, "user-42", loaded.User())
}
