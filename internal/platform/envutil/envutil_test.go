package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	t.Setenv("SCANDINE_TEST_DURATION", "")
	if got := Duration("SCANDINE_TEST_DURATION", time.Minute); got != time.Minute {
		t.Fatalf("empty: want=1m got=%s", got)
	}
	t.Setenv("SCANDINE_TEST_DURATION", "90s")
	if got := Duration("SCANDINE_TEST_DURATION", time.Minute); got != 90*time.Second {
		t.Fatalf("go duration: want=90s got=%s", got)
	}
	t.Setenv("SCANDINE_TEST_DURATION", "3600")
	if got := Duration("SCANDINE_TEST_DURATION", time.Minute); got != time.Hour {
		t.Fatalf("seconds: want=1h got=%s", got)
	}
	t.Setenv("SCANDINE_TEST_DURATION", "soon")
	if got := Duration("SCANDINE_TEST_DURATION", time.Minute); got != time.Minute {
		t.Fatalf("garbage: want=1m got=%s", got)
	}
}

func TestBoolAndInt(t *testing.T) {
	t.Setenv("SCANDINE_TEST_BOOL", "on")
	if !Bool("SCANDINE_TEST_BOOL", false) {
		t.Fatalf("Bool(on): want true")
	}
	t.Setenv("SCANDINE_TEST_BOOL", "maybe")
	if !Bool("SCANDINE_TEST_BOOL", true) {
		t.Fatalf("Bool(maybe): want default true")
	}
	t.Setenv("SCANDINE_TEST_INT", "x")
	if got := Int("SCANDINE_TEST_INT", 7); got != 7 {
		t.Fatalf("Int(x): want=7 got=%d", got)
	}
}

func TestList(t *testing.T) {
	t.Setenv("SCANDINE_TEST_LIST", " http://a , ,http://b")
	got := List("SCANDINE_TEST_LIST", nil)
	if len(got) != 2 || got[0] != "http://a" || got[1] != "http://b" {
		t.Fatalf("List: got %v", got)
	}
}
