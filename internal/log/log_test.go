package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupLogDir(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	SetDir(tmp)
	t.Cleanup(func() { Close(); SetDir(""); SetDebug(false) })
	return tmp
}

func TestResolveDirFlag(t *testing.T) {
	got, err := ResolveDir("/tmp/mylog", "/home/x")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/mylog" {
		t.Errorf("got %q, want /tmp/mylog", got)
	}
}

func TestResolveDirFlagRelative(t *testing.T) {
	got, err := ResolveDir("logs", "")
	if err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(wd, "logs")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveDirEnv(t *testing.T) {
	t.Setenv("STREAMSCRIBE_LOG_DIR", "/tmp/streamscribe-env-log")
	got, err := ResolveDir("", "/home/x")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/streamscribe-env-log" {
		t.Errorf("got %q, want /tmp/streamscribe-env-log", got)
	}
}

func TestResolveDirDefault(t *testing.T) {
	t.Setenv("STREAMSCRIBE_LOG_DIR", "")
	got, err := ResolveDir("", "/home/x/.streamscribe")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/home/x/.streamscribe/logs" {
		t.Errorf("got %q", got)
	}
}

func TestInitCreatesFile(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(tmp, FileName)); err != nil {
		t.Errorf("%s not created: %v", FileName, err)
	}
}

func TestWritesAfterInit(t *testing.T) {
	tmp := setupLogDir(t)
	SetDebug(true)
	if err := Init(); err != nil {
		t.Fatal(err)
	}

	Info("hello diagnostics")
	StateChange("Connecting", "Error", "timeout")
	Frame("transcription", 3, true)
	Close()

	data, err := os.ReadFile(filepath.Join(tmp, FileName))
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	for _, want := range []string{"hello diagnostics", "cause=timeout", "event=transcription"} {
		if !strings.Contains(content, want) {
			t.Errorf("log missing %q:\n%s", want, content)
		}
	}
}

func TestNoopBeforeInit(t *testing.T) {
	setupLogDir(t)
	Info("dropped")
	Errorf("dropped %d", 1)
}
