package keypool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

// fakeBackend scripts a per-key outcome and records every dispatch in order.
type fakeBackend struct {
	outcomes map[string]error // nil means success
	calls    []string         // keys in dispatch order
	built    []string         // keys passed to the build func
}

type fakeClient struct {
	key     string
	backend *fakeBackend
}

func (c *fakeClient) Complete(_ context.Context, _ string) (string, error) {
	c.backend.calls = append(c.backend.calls, c.key)
	if err := c.backend.outcomes[c.key]; err != nil {
		return "", err
	}
	return "ok from " + c.key, nil
}

func (b *fakeBackend) build(key string) Dispatcher {
	b.built = append(b.built, key)
	return &fakeClient{key: key, backend: b}
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestManager(t *testing.T, backend *fakeBackend, keys []string, perKey int) *Manager {
	t.Helper()
	m, err := New(Options{
		Keys:             keys,
		Build:            backend.build,
		MaxRetriesPerKey: perKey,
		Logger:           quietLogger(),
	})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return m
}

func TestNew_NoKeys(t *testing.T) {
	_, err := New(Options{Build: (&fakeBackend{}).build, Logger: quietLogger()})
	if !errors.Is(err, ErrNoAPIKeys) {
		t.Fatalf("error = %v, want ErrNoAPIKeys", err)
	}

	_, err = New(Options{
		Keys:   []string{"", "   "},
		Build:  (&fakeBackend{}).build,
		Logger: quietLogger(),
	})
	if !errors.Is(err, ErrNoAPIKeys) {
		t.Fatalf("error = %v, want ErrNoAPIKeys for blank keys", err)
	}
}

func TestNew_DedupesAndBindsFirstKey(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestManager(t, backend, []string{" gsk_a ", "gsk_b", "gsk_a"}, 0)

	if m.Size() != 2 {
		t.Errorf("Size = %d, want 2", m.Size())
	}
	if len(backend.built) != 1 || backend.built[0] != "gsk_a" {
		t.Errorf("built = %v, want eager bind to gsk_a", backend.built)
	}
	if m.Label() != "key 1 of 2" {
		t.Errorf("Label = %q", m.Label())
	}
}

func TestInvoke_FirstSuccess(t *testing.T) {
	backend := &fakeBackend{outcomes: map[string]error{}}
	m := newTestManager(t, backend, []string{"a", "b"}, 1)

	got, err := m.Invoke(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Invoke error: %v", err)
	}
	if got != "ok from a" {
		t.Errorf("Invoke = %q", got)
	}
	if len(backend.calls) != 1 {
		t.Errorf("calls = %v, want exactly one attempt", backend.calls)
	}
	if m.Index() != 0 {
		t.Errorf("Index = %d, want 0", m.Index())
	}
}

func TestInvoke_NonRateLimitPropagatesUnchanged(t *testing.T) {
	authErr := errors.New("authentication error: invalid api key")
	backend := &fakeBackend{outcomes: map[string]error{"a": authErr}}
	m := newTestManager(t, backend, []string{"a", "b"}, 0)

	_, err := m.Invoke(context.Background(), "prompt")
	if err != authErr {
		t.Fatalf("error = %v, want the original error unchanged", err)
	}
	if len(backend.calls) != 1 {
		t.Errorf("calls = %v, want exactly one attempt", backend.calls)
	}
	if m.Index() != 0 {
		t.Errorf("Index = %d, want no rotation", m.Index())
	}
}

func TestInvoke_RotatesInOrderAndExhausts(t *testing.T) {
	lastErr := errors.New("429 too many requests on c")
	backend := &fakeBackend{outcomes: map[string]error{
		"a": errors.New("429 too many requests on a"),
		"b": errors.New("429 too many requests on b"),
		"c": lastErr,
	}}
	m := newTestManager(t, backend, []string{"a", "b", "c"}, 0)

	_, err := m.Invoke(context.Background(), "prompt")

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("error = %v, want *ExhaustedError", err)
	}
	if exhausted.Keys != 3 {
		t.Errorf("Keys = %d, want 3", exhausted.Keys)
	}
	if !errors.Is(err, lastErr) {
		t.Errorf("exhaustion should chain the last rate-limit error, got cause %v", exhausted.Cause)
	}
	// Budget 3*(0+1) = 3 attempts, one per key, in pool order.
	want := []string{"a", "b", "c"}
	if fmt.Sprint(backend.calls) != fmt.Sprint(want) {
		t.Errorf("calls = %v, want %v", backend.calls, want)
	}
}

func TestInvoke_RotatesOnFirstRateLimit(t *testing.T) {
	// With MaxRetriesPerKey=1 the budget is 2*(1+1)=4, but a rate-limited
	// key is never retried in place: the first 429 on "a" must rotate
	// straight to "b".
	backend := &fakeBackend{outcomes: map[string]error{
		"a": errors.New("rate limit reached"),
	}}
	m := newTestManager(t, backend, []string{"a", "b"}, 1)

	got, err := m.Invoke(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Invoke error: %v", err)
	}
	if got != "ok from b" {
		t.Errorf("Invoke = %q", got)
	}
	want := []string{"a", "b"}
	if fmt.Sprint(backend.calls) != fmt.Sprint(want) {
		t.Errorf("calls = %v, want %v (no same-key retry)", backend.calls, want)
	}
}

func TestInvoke_AttemptsWithinBudget(t *testing.T) {
	backend := &fakeBackend{outcomes: map[string]error{
		"a": errors.New("429"),
		"b": errors.New("429"),
		"c": errors.New("429"),
	}}
	m := newTestManager(t, backend, []string{"a", "b", "c"}, 2)

	_, err := m.Invoke(context.Background(), "prompt")
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("error = %v, want *ExhaustedError", err)
	}
	// Exhaustion fires when the last key rate-limits, well before the
	// 3*(2+1)=9 ceiling.
	if len(backend.calls) != 3 {
		t.Errorf("attempts = %d, want 3", len(backend.calls))
	}
	if budget := m.Size() * (2 + 1); len(backend.calls) > budget {
		t.Errorf("attempts = %d exceeds budget %d", len(backend.calls), budget)
	}
}

func TestInvoke_SucceedsAfterRotation(t *testing.T) {
	backend := &fakeBackend{outcomes: map[string]error{
		"a": errors.New("too many requests"),
	}}
	m := newTestManager(t, backend, []string{"a", "b", "c"}, 0)

	got, err := m.Invoke(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Invoke error: %v", err)
	}
	if got != "ok from b" {
		t.Errorf("Invoke = %q, want success from b without touching c", got)
	}
	if m.Index() != 1 {
		t.Errorf("Index = %d, want 1", m.Index())
	}
}

func TestReset(t *testing.T) {
	backend := &fakeBackend{outcomes: map[string]error{
		"a": errors.New("429"),
	}}
	m := newTestManager(t, backend, []string{"a", "b"}, 0)

	if _, err := m.Invoke(context.Background(), "prompt"); err != nil {
		t.Fatalf("Invoke error: %v", err)
	}
	if m.Index() != 1 {
		t.Fatalf("Index = %d after rotation, want 1", m.Index())
	}

	m.Reset()
	if m.Index() != 0 {
		t.Errorf("Index = %d after Reset, want 0", m.Index())
	}

	// The next call starts from the first key again.
	backend.outcomes = map[string]error{}
	got, err := m.Invoke(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Invoke error after Reset: %v", err)
	}
	if got != "ok from a" {
		t.Errorf("Invoke = %q, want dispatch through the first key", got)
	}
}

func TestInvoke_CooldownRespectsContext(t *testing.T) {
	backend := &fakeBackend{outcomes: map[string]error{
		"a": errors.New("429"),
	}}
	m, err := New(Options{
		Keys:     []string{"a", "b"},
		Build:    backend.build,
		Cooldown: time.Minute,
		Logger:   quietLogger(),
	})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = m.Invoke(ctx, "prompt")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled during cooldown", err)
	}
}

func TestExhaustedError_SafetyNetMessage(t *testing.T) {
	e := &ExhaustedError{}
	if e.Error() == "" {
		t.Error("empty message for cause-less exhaustion")
	}
	if e.Unwrap() != nil {
		t.Error("Unwrap should be nil without a cause")
	}
}
