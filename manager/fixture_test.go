package manager_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/remuskit/netbuf"
	"github.com/remuskit/netbuf/config"
	"github.com/remuskit/netbuf/manager"
	"github.com/remuskit/netbuf/store"
	"github.com/remuskit/netbuf/store/memory"
)

// testLogger returns a logger for tests. By default it discards all
// output. Set NETBUF_TEST_VERBOSE=1 to enable logging.
func testLogger() *slog.Logger {
	if os.Getenv("NETBUF_TEST_VERBOSE") != "" {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testFixture provides access to all components for verification.
type testFixture struct {
	Manager *manager.Manager
	Net     *fakeNet
	Store   *memory.Store
	Dirs    config.RuntimeDirs
	t       *testing.T
}

// newTestFixture creates a manager wired against a fake kernel surface
// with the given device pool, an in-memory store and a lock file in a
// per-test directory.
func newTestFixture(t *testing.T, pool ...string) *testFixture {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Lock.AcquireTimeout = config.Duration(2 * time.Second)

	dirs, err := config.NewRuntimeDirs(t.TempDir())
	require.NoError(t, err, "failed to create runtime dirs")

	st := memory.New()
	net := newFakeNet(pool...)
	mgr := manager.New(cfg, dirs, st, net, testLogger())

	return &testFixture{
		Manager: mgr,
		Net:     net,
		Store:   st,
		Dirs:    dirs,
		t:       t,
	}
}

// Claim returns the claim record value for storePath, or "" if none.
func (f *testFixture) Claim(storePath string) string {
	f.t.Helper()
	v, err := f.Store.Read(context.Background(), netbuf.ClaimKey(storePath))
	if err != nil {
		require.ErrorIs(f.t, err, store.ErrNotFound)
		return ""
	}
	return v
}

// Status returns the hotplug status value for storePath, or "".
func (f *testFixture) Status(storePath string) string {
	f.t.Helper()
	v, err := f.Store.Read(context.Background(), netbuf.StatusKey(storePath))
	if err != nil {
		require.ErrorIs(f.t, err, store.ErrNotFound)
		return ""
	}
	return v
}

// ErrorValue returns the hotplug error value for storePath, or "".
func (f *testFixture) ErrorValue(storePath string) string {
	f.t.Helper()
	v, err := f.Store.Read(context.Background(), netbuf.ErrorKey(storePath))
	if err != nil {
		require.ErrorIs(f.t, err, store.ErrNotFound)
		return ""
	}
	return v
}
