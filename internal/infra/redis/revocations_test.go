package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type fakeCommands struct {
	setKey    string
	setTTL    time.Duration
	sets      int
	existsKey string
	exists    int64
	err       error
}

func (f *fakeCommands) Set(_ context.Context, key string, _ any, expiration time.Duration) *goredis.StatusCmd {
	f.sets++
	f.setKey = key
	f.setTTL = expiration
	return goredis.NewStatusResult("OK", f.err)
}

func (f *fakeCommands) Exists(_ context.Context, keys ...string) *goredis.IntCmd {
	f.existsKey = keys[0]
	return goredis.NewIntResult(f.exists, f.err)
}

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestRevocations(cmds *fakeCommands) *Revocations {
	r := NewRevocations(cmds, "quizroom:")
	r.now = func() time.Time { return now }
	return r
}

func TestRevokeStoresRemainingLifetime(t *testing.T) {
	cmds := &fakeCommands{}
	r := newTestRevocations(cmds)

	if err := r.Revoke(context.Background(), "jti-1", now.Add(90*time.Second)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if cmds.setKey != "quizroom:revoked:jti-1" {
		t.Fatalf("unexpected key: got=%q", cmds.setKey)
	}
	if cmds.setTTL != 90*time.Second {
		t.Fatalf("unexpected ttl: got=%v want=%v", cmds.setTTL, 90*time.Second)
	}
}

func TestRevokeSkipsExpiredTokens(t *testing.T) {
	cmds := &fakeCommands{}
	r := newTestRevocations(cmds)

	if err := r.Revoke(context.Background(), "jti-1", now.Add(-time.Second)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if cmds.sets != 0 {
		t.Fatalf("unexpected set calls: got=%d want=0", cmds.sets)
	}
}

func TestIsRevoked(t *testing.T) {
	cmds := &fakeCommands{exists: 1}
	r := newTestRevocations(cmds)

	revoked, err := r.IsRevoked(context.Background(), "jti-1")
	if err != nil || !revoked {
		t.Fatalf("unexpected result: revoked=%v err=%v", revoked, err)
	}
	if cmds.existsKey != "quizroom:revoked:jti-1" {
		t.Fatalf("unexpected key: got=%q", cmds.existsKey)
	}

	cmds.exists = 0
	if revoked, _ := r.IsRevoked(context.Background(), "jti-2"); revoked {
		t.Fatalf("token should not be revoked")
	}
}

func TestCommandErrorsAreWrapped(t *testing.T) {
	boom := errors.New("connection refused")
	r := newTestRevocations(&fakeCommands{err: boom})

	if err := r.Revoke(context.Background(), "jti-1", now.Add(time.Minute)); !errors.Is(err, boom) {
		t.Fatalf("unexpected revoke error: got=%v want=%v", err, boom)
	}
	if _, err := r.IsRevoked(context.Background(), "jti-1"); !errors.Is(err, boom) {
		t.Fatalf("unexpected check error: got=%v want=%v", err, boom)
	}
}
