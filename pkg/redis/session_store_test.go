package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestNewSessionStoreValidation(t *testing.T) {
	_, err := NewSessionStore("zz")
	assert.Error(t, err)

	_, err = NewSessionStore("0011")
	assert.Error(t, err)

	store, err := NewSessionStore("0000000000000000000000000000000000000000000000000000000000000000")
	assert.NoError(t, err)
	assert.NotNil(t, store)
}

func TestSessionStoreEncryptDecrypt(t *testing.T) {
	store, err := NewSessionStore("0000000000000000000000000000000000000000000000000000000000000000")
	assert.NoError(t, err)

	enc, err := store.encrypt([]byte(`{"x":1}`))
	assert.NoError(t, err)
	assert.NotEmpty(t, enc)

	dec, err := store.decrypt(enc)
	assert.NoError(t, err)
	assert.Contains(t, string(dec), `"x":1`)

	_, err = store.decrypt("00") // too short ciphertext
	assert.Error(t, err)

	_, err = store.decrypt("zz-not-hex")
	assert.Error(t, err)
}

func TestSessionStoreCreateGetDeleteSuccess(t *testing.T) {
	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("skip: miniredis unavailable in this environment: %v", err)
	}
	defer srv.Close()

	cli := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	SetClient(cli)
	defer cli.Close()

	store, err := NewSessionStore("0000000000000000000000000000000000000000000000000000000000000000")
	assert.NoError(t, err)

	ctx := context.Background()
	err = store.CreateSession(ctx, "sid-ok", &SessionTokens{AccessToken: "a-ok", RefreshToken: "r-ok"}, time.Minute)
	assert.NoError(t, err)

	tokens, err := store.GetSession(ctx, "sid-ok")
	assert.NoError(t, err)
	assert.Equal(t, "a-ok", tokens.AccessToken)
	assert.Equal(t, "r-ok", tokens.RefreshToken)

	err = store.DeleteSession(ctx, "sid-ok")
	assert.NoError(t, err)

	_, err = store.GetSession(ctx, "sid-ok")
	assert.Error(t, err)
}

func TestSessionStore_GetSessionInvalidJSONPayload(t *testing.T) {
	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("skip: miniredis unavailable in this environment: %v", err)
	}
	defer srv.Close()

	cli := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	SetClient(cli)
	defer cli.Close()

	store, err := NewSessionStore("0000000000000000000000000000000000000000000000000000000000000000")
	assert.NoError(t, err)

	// Encrypt non-JSON plaintext to force the json.Unmarshal branch.
	enc, err := store.encrypt([]byte("plain-text"))
	assert.NoError(t, err)

	ctx := context.Background()
	err = Set(ctx, "session:sid-bad-json", enc, time.Minute)
	assert.NoError(t, err)

	_, err = store.GetSession(ctx, "sid-bad-json")
	assert.Error(t, err)
}

func TestSessionStore_OperationHooks(t *testing.T) {
	store, err := NewSessionStore("0000000000000000000000000000000000000000000000000000000000000000")
	assert.NoError(t, err)

	origSet := setSessionValue
	origGet := getSessionValue
	origDel := delSessionValue
	t.Cleanup(func() {
		setSessionValue = origSet
		getSessionValue = origGet
		delSessionValue = origDel
	})

	setSessionValue = func(_ context.Context, _ string, _ interface{}, _ time.Duration) error {
		return errors.New("set failed")
	}
	err = store.CreateSession(context.Background(), "sid-hook", &SessionTokens{AccessToken: "a", RefreshToken: "r"}, time.Minute)
	assert.Error(t, err)

	setSessionValue = func(_ context.Context, _ string, _ interface{}, _ time.Duration) error { return nil }
	err = store.CreateSession(context.Background(), "sid-hook", &SessionTokens{AccessToken: "a", RefreshToken: "r"}, time.Minute)
	assert.NoError(t, err)

	getSessionValue = func(_ context.Context, _ string) (string, error) {
		return "", errors.New("not found")
	}
	_, err = store.GetSession(context.Background(), "sid-hook")
	assert.Error(t, err)

	enc, err := store.encrypt([]byte(`{"accessToken":"ok","refreshToken":"ok2"}`))
	assert.NoError(t, err)
	getSessionValue = func(_ context.Context, _ string) (string, error) {
		return enc, nil
	}
	tokens, err := store.GetSession(context.Background(), "sid-hook")
	assert.NoError(t, err)
	assert.Equal(t, "ok", tokens.AccessToken)
	assert.Equal(t, "ok2", tokens.RefreshToken)

	delSessionValue = func(_ context.Context, _ string) error { return errors.New("delete failed") }
	err = store.DeleteSession(context.Background(), "sid-hook")
	assert.Error(t, err)

	delSessionValue = func(_ context.Context, _ string) error { return nil }
	err = store.DeleteSession(context.Background(), "sid-hook")
	assert.NoError(t, err)
}
