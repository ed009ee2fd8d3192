package keypool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNoAPIKeys is returned by New when the credential pool is empty.
var ErrNoAPIKeys = errors.New("no Groq API keys found: expected GROQ_API_KEY, GROQ_API_KEY_0, GROQ_API_KEY_1, ...")

// ExhaustedError is the terminal failure for one Invoke call: every key in
// the pool was rate-limited. Cause holds the rate-limit error that hit the
// last key, exposed through Unwrap for diagnostics.
type ExhaustedError struct {
	Keys  int
	Cause error
}

func (e *ExhaustedError) Error() string {
	if e.Cause == nil {
		return "maximum retry attempts exceeded across all API keys"
	}
	return fmt.Sprintf("all %d Groq API keys have been rate-limited, wait and try again later", e.Keys)
}

func (e *ExhaustedError) Unwrap() error { return e.Cause }

// Dispatcher executes one prompt against the upstream LLM. *groq.Client is
// the production implementation; tests inject fakes.
type Dispatcher interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// BuildFunc constructs a Dispatcher bound to a single API key. The Manager
// calls it once at construction and once per rotation or reset.
type BuildFunc func(apiKey string) Dispatcher

// Options configures a Manager.
type Options struct {
	// Keys is the credential pool in rotation order. Blanks and duplicates
	// are dropped; an empty result makes New fail with ErrNoAPIKeys.
	Keys []string

	// Build creates the key-bound client. Required.
	Build BuildFunc

	// MaxRetriesPerKey widens the attempt budget to len(keys)*(n+1). It does
	// NOT make the Manager retry the same key before rotating: rotation
	// happens on the first rate-limit detection for a key.
	MaxRetriesPerKey int

	// Cooldown is the wait between a detected rate limit and the next
	// attempt on the freshly rotated key.
	Cooldown time.Duration

	// Logger for rotation and rate-limit events. Defaults to the standard
	// logrus logger.
	Logger *logrus.Logger
}

// Manager owns a pool of API keys and a cursor into it, and executes prompts
// against the currently active key, rotating forward on rate limits.
//
// A Manager is meant for single-goroutine use: the cursor and the active
// client are mutated without locking, so concurrent Invoke or Reset calls on
// one instance must be serialized by the caller.
type Manager struct {
	keys     []string
	build    BuildFunc
	perKey   int
	cooldown time.Duration
	log      *logrus.Logger

	index  int
	client Dispatcher
}

// New creates a Manager and eagerly binds a client to the first key.
func New(opts Options) (*Manager, error) {
	if opts.Build == nil {
		return nil, errors.New("keypool: Build is required")
	}
	if opts.MaxRetriesPerKey < 0 {
		return nil, fmt.Errorf("keypool: MaxRetriesPerKey must be >= 0, got %d", opts.MaxRetriesPerKey)
	}
	if opts.Cooldown < 0 {
		return nil, fmt.Errorf("keypool: Cooldown must be >= 0, got %s", opts.Cooldown)
	}

	var keys []string
	seen := make(map[string]bool)
	for _, k := range opts.Keys {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		keys = append(keys, k)
		seen[k] = true
	}
	if len(keys) == 0 {
		return nil, ErrNoAPIKeys
	}

	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	m := &Manager{
		keys:     keys,
		build:    opts.Build,
		perKey:   opts.MaxRetriesPerKey,
		cooldown: opts.Cooldown,
		log:      log,
	}
	m.client = m.build(m.keys[0])

	log.Infof("key pool initialised with %d API key(s)", len(keys))
	return m, nil
}

// Size returns the number of keys in the pool.
func (m *Manager) Size() int { return len(m.keys) }

// Index returns the zero-based position of the active key.
func (m *Manager) Index() int { return m.index }

// Label describes the active key for logging, e.g. "key 2 of 5".
func (m *Manager) Label() string {
	return fmt.Sprintf("key %d of %d", m.index+1, len(m.keys))
}

// rotate advances the cursor by one key and rebuilds the bound client.
// It returns false when the cursor is already at the last key.
func (m *Manager) rotate() bool {
	next := m.index + 1
	if next >= len(m.keys) {
		return false
	}
	m.index = next
	m.client = m.build(m.keys[m.index])
	m.log.Infof("rotated to %s", m.Label())
	return true
}

// Reset returns the cursor to the first key and rebuilds the bound client,
// starting a fresh rotation cycle for a new batch of work.
func (m *Manager) Reset() {
	m.index = 0
	m.client = m.build(m.keys[0])
}

// Invoke executes the prompt against the active key. Rate-limited attempts
// rotate to the next key after the cooldown; any other error is returned
// unchanged immediately. When a rate limit hits the last key, Invoke returns
// an *ExhaustedError wrapping that rate-limit error.
func (m *Manager) Invoke(ctx context.Context, prompt string) (string, error) {
	attempts := 0
	budget := len(m.keys) * (m.perKey + 1)

	for attempts < budget {
		text, err := m.client.Complete(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if !isRateLimit(err) {
			// Not a rate-limit problem: propagate immediately.
			return "", err
		}

		attempts++
		m.log.WithFields(logrus.Fields{
			"key":     m.Label(),
			"attempt": attempts,
			"budget":  budget,
		}).Warnf("rate limit hit: %v", err)

		if !m.rotate() {
			m.log.Infof("all %d API keys exhausted", len(m.keys))
			return "", &ExhaustedError{Keys: len(m.keys), Cause: err}
		}

		if m.cooldown > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(m.cooldown):
			}
		}
	}

	// Safety net: the rotate failure above should always fire first.
	return "", &ExhaustedError{Keys: len(m.keys)}
}
