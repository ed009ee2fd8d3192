package config

import (
	"reflect"
	"testing"
)

func TestDiscoverKeys_Ordering(t *testing.T) {
	environ := []string{
		"GROQ_API_KEY_1=gsk_bbb",
		"PATH=/usr/bin",
		"GROQ_API_KEY=gsk_aaa",
		"GROQ_API_KEY_0=gsk_zzz",
	}

	got := DiscoverKeys(environ)
	// Lexicographic by variable name: GROQ_API_KEY, _0, _1.
	want := []string{"gsk_aaa", "gsk_zzz", "gsk_bbb"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DiscoverKeys = %v, want %v", got, want)
	}
}

func TestDiscoverKeys_LexicographicSuffixes(t *testing.T) {
	environ := []string{
		"GROQ_API_KEY_2=two",
		"GROQ_API_KEY_10=ten",
	}

	got := DiscoverKeys(environ)
	// _10 sorts before _2: ordering is by name, not numerically.
	want := []string{"ten", "two"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DiscoverKeys = %v, want %v", got, want)
	}
}

func TestDiscoverKeys_TrimsAndDedupes(t *testing.T) {
	environ := []string{
		`GROQ_API_KEY=  "gsk_one"  `,
		"GROQ_API_KEY_0='gsk_one'",
		"GROQ_API_KEY_1=",
		"GROQ_API_KEY_2=   ",
		"GROQ_API_KEY_3=gsk_two",
	}

	got := DiscoverKeys(environ)
	want := []string{"gsk_one", "gsk_two"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DiscoverKeys = %v, want %v", got, want)
	}
}

func TestDiscoverKeys_IgnoresNonMatchingNames(t *testing.T) {
	environ := []string{
		"GROQ_API_KEYS=nope",
		"GROQ_API_KEY_X=nope",
		"MY_GROQ_API_KEY=nope",
	}

	if got := DiscoverKeys(environ); len(got) != 0 {
		t.Errorf("DiscoverKeys = %v, want none", got)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Model != "openai/gpt-oss-20b" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.MaxRetriesPerKey != 1 {
		t.Errorf("MaxRetriesPerKey = %d, want 1", cfg.MaxRetriesPerKey)
	}
	if cfg.CooldownSeconds != 5 {
		t.Errorf("CooldownSeconds = %v, want 5", cfg.CooldownSeconds)
	}
	if cfg.Addr != ":8000" {
		t.Errorf("Addr = %q, want :8000", cfg.Addr)
	}
}

func TestMergeEnv_SkipFolders(t *testing.T) {
	t.Setenv("SKIP_FOLDERS", "venv, node_modules , ,dist")

	cfg := Default()
	mergeEnv(&cfg)

	want := []string{"venv", "node_modules", "dist"}
	if !reflect.DeepEqual(cfg.SkipFolders, want) {
		t.Errorf("SkipFolders = %v, want %v", cfg.SkipFolders, want)
	}
}

func TestMergeOverrides_Extensions(t *testing.T) {
	cfg := Default()
	mergeOverrides(&cfg, map[string]string{"extensions": "go, .sql"})

	want := []string{".go", ".sql"}
	if !reflect.DeepEqual(cfg.Extensions, want) {
		t.Errorf("Extensions = %v, want %v", cfg.Extensions, want)
	}
}

func TestMergeFile(t *testing.T) {
	cfg := Default()
	mergeFile(&cfg, Config{Model: "llama-3.3-70b-versatile", HistoryLimit: 10})

	if cfg.Model != "llama-3.3-70b-versatile" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.HistoryLimit != 10 {
		t.Errorf("HistoryLimit = %d, want 10", cfg.HistoryLimit)
	}
	// Untouched fields keep their defaults.
	if cfg.Addr != ":8000" {
		t.Errorf("Addr = %q, want :8000", cfg.Addr)
	}
}
