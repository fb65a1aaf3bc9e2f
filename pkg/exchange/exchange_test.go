package exchange

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rooklift/disorderbook/pkg/util"
)

func newTestRegistry(t *testing.T, max int) *Registry {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	clock := util.NewManualClock(time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC))
	return NewRegistry(ctx, max, clock, zap.NewNop().Sugar())
}

func TestRegistryLazyCreation(t *testing.T) {
	r := newTestRegistry(t, 10)

	_, ok := r.Lookup("TESTEX", "FOOBAR")
	require.False(t, ok)
	require.False(t, r.HasVenue("TESTEX"))

	e1, err := r.GetOrCreate("TESTEX", "FOOBAR")
	require.NoError(t, err)
	require.Equal(t, 1, r.Count())

	e2, err := r.GetOrCreate("TESTEX", "FOOBAR")
	require.NoError(t, err)
	require.Same(t, e1, e2, "same book must return the same engine")

	got, ok := r.Lookup("TESTEX", "FOOBAR")
	require.True(t, ok)
	require.Same(t, e1, got)
	require.True(t, r.HasVenue("TESTEX"))
}

func TestRegistryCap(t *testing.T) {
	r := newTestRegistry(t, 2)

	_, err := r.GetOrCreate("V1", "S1")
	require.NoError(t, err)
	_, err = r.GetOrCreate("V1", "S2")
	require.NoError(t, err)

	_, err = r.GetOrCreate("V1", "S3")
	require.ErrorIs(t, err, ErrTooManyBooks)

	// Existing books are still reachable at the cap.
	_, err = r.GetOrCreate("V1", "S1")
	require.NoError(t, err)
}

func TestRegistryListings(t *testing.T) {
	r := newTestRegistry(t, 10)

	for _, bk := range [][2]string{{"ZEX", "AAA"}, {"AEX", "ZZZ"}, {"AEX", "BBB"}} {
		_, err := r.GetOrCreate(bk[0], bk[1])
		require.NoError(t, err)
	}

	require.Equal(t, []string{"AEX", "ZEX"}, r.Venues())

	syms, ok := r.Symbols("AEX")
	require.True(t, ok)
	require.Equal(t, []string{"BBB", "ZZZ"}, syms)

	_, ok = r.Symbols("NOPE")
	require.False(t, ok)
}

func TestAccountInterning(t *testing.T) {
	a := NewAccounts()

	id1, err := a.ID("ALICE")
	require.NoError(t, err)
	require.Equal(t, 0, id1)

	id2, err := a.ID("BOB")
	require.NoError(t, err)
	require.Equal(t, 1, id2)

	again, err := a.ID("ALICE")
	require.NoError(t, err)
	require.Equal(t, id1, again)

	require.True(t, a.Known("ALICE"))
	require.False(t, a.Known("CAROL"))
	require.Equal(t, 2, a.Len())
}

func TestAccountCap(t *testing.T) {
	a := NewAccounts()
	for i := 0; i < MaxAccounts; i++ {
		_, err := a.ID(fmt.Sprintf("ACC%d", i))
		require.NoError(t, err)
	}
	_, err := a.ID("ONE_TOO_MANY")
	require.ErrorIs(t, err, ErrTooManyAccounts)

	// Known accounts keep resolving at the cap.
	id, err := a.ID("ACC0")
	require.NoError(t, err)
	require.Equal(t, 0, id)
}

func TestKeyringLoadAndCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"ALICE": "key1", "BOB": "key2", "JUNK": 42}`), 0644))

	k, err := LoadKeyring(path)
	require.NoError(t, err)
	require.True(t, k.Enabled())

	require.True(t, k.Check("ALICE", "key1"))
	require.False(t, k.Check("ALICE", "key2"))
	require.False(t, k.Check("ALICE", ""))
	require.False(t, k.Check("NOBODY", "key1"))
	require.False(t, k.Check("JUNK", "42"))
}

func TestKeyringErrors(t *testing.T) {
	_, err := LoadKeyring(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0644))
	_, err = LoadKeyring(bad)
	require.Error(t, err)
}

func TestNilKeyringPassesEverything(t *testing.T) {
	var k *Keyring
	require.False(t, k.Enabled())
	require.True(t, k.Check("ANYONE", "anything"))
}

func TestValidName(t *testing.T) {
	valid := []string{"A", "FOOBAR", "TEST_EX", "abc123", "aaaaaaaaaaaaaaaaaaa"}
	for _, s := range valid {
		require.True(t, ValidName(s), s)
	}
	invalid := []string{"", "has space", "has-dash", "aaaaaaaaaaaaaaaaaaaa", "héllo", "dot.com"}
	for _, s := range invalid {
		require.False(t, ValidName(s), s)
	}
}
