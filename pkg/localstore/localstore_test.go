package localstore

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRoundTripString(t *testing.T) {
	store := openTestStore(t)

	Set(store, KeyEditorContent, "# Hello\n\nworld")
	got := Get(store, KeyEditorContent, "")
	if got != "# Hello\n\nworld" {
		t.Fatalf("unexpected value: %q", got)
	}
}

func TestRoundTripBool(t *testing.T) {
	store := openTestStore(t)

	Set(store, KeyDarkMode, false)
	if got := Get(store, KeyDarkMode, DefaultDarkMode); got != false {
		t.Fatalf("expected stored false, got %v", got)
	}
}

func TestGetMissingKeyReturnsDefault(t *testing.T) {
	store := openTestStore(t)

	if got := Get(store, KeyDarkMode, DefaultDarkMode); got != true {
		t.Fatalf("expected default dark mode true, got %v", got)
	}
	if got := Get(store, "never-set", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestGetCorruptValueFallsBack(t *testing.T) {
	store := openTestStore(t)

	// 绕过 Set 写入非 JSON 内容，模拟存储被破坏
	if err := store.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(KeyDarkMode), []byte("{not json"))
	}); err != nil {
		t.Fatalf("inject corrupt value: %v", err)
	}

	if got := Get(store, KeyDarkMode, DefaultDarkMode); got != DefaultDarkMode {
		t.Fatalf("expected default on corrupt value, got %v", got)
	}
}

func TestValuesSurviveReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	Set(store, KeyEditorContent, "persisted")
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()

	if got := Get(reopened, KeyEditorContent, ""); got != "persisted" {
		t.Fatalf("expected value to survive reopen, got %q", got)
	}
}
