package history

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAddAndPersist(t *testing.T) {
	dir := t.TempDir()
	s := Open(dir)
	s.Add("echo one")
	s.Add("echo two")

	reloaded := Open(dir)
	if reloaded.Len() != 2 {
		t.Fatalf("reloaded entries = %d, want 2", reloaded.Len())
	}
	recent := reloaded.Recent(10)
	if recent[0].Command != "echo two" {
		t.Errorf("newest = %q, want %q", recent[0].Command, "echo two")
	}
}

func TestAddSkipsBlanksAndDuplicates(t *testing.T) {
	s := Open(t.TempDir())
	s.Add("   ")
	s.Add("ls")
	s.Add("ls")
	s.Add("ls -l")
	s.Add("ls")
	if s.Len() != 3 {
		t.Errorf("entries = %d, want 3 (blank and consecutive dup skipped)", s.Len())
	}
}

func TestSensitiveCommandsNeverPersisted(t *testing.T) {
	cases := []string{
		"mysql -u root --password=hunter2",
		"export API_KEY=abc123",
		"curl -H 'Authorization: token xyz'",
		"ssh-add ~/.ssh/id_ed25519",
		"SECRET=shh ./run",
	}
	for _, cmd := range cases {
		if !IsSensitive(cmd) {
			t.Errorf("IsSensitive(%q) = false, want true", cmd)
		}
	}
	if IsSensitive("ls -la /tmp") {
		t.Error("plain command flagged as sensitive")
	}

	dir := t.TempDir()
	s := Open(dir)
	s.Add("export API_KEY=abc123")
	s.Add("ls")
	data, _ := os.ReadFile(filepath.Join(dir, "history"))
	if strings.Contains(string(data), "abc123") {
		t.Error("sensitive command leaked to the history file")
	}
}

func TestFIFOCap(t *testing.T) {
	s := Open(t.TempDir())
	s.limit = 5
	for i := 0; i < 10; i++ {
		s.Add("cmd" + string(rune('0'+i)))
	}
	if s.Len() != 5 {
		t.Fatalf("entries = %d, want cap 5", s.Len())
	}
	oldest := s.Recent(5)[4].Command
	if oldest != "cmd5" {
		t.Errorf("oldest retained = %q, want cmd5 (FIFO eviction)", oldest)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	s := Open(t.TempDir())
	s.Add("Git Status")
	s.Add("git push")
	s.Add("make build")
	hits := s.Search("GIT")
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(hits))
	}
	if hits[0].Command != "git push" {
		t.Error("search results should be newest first")
	}
}

func TestStripPrompt(t *testing.T) {
	cases := []struct{ in, want string }{
		{`C:\Users\me>dir /w`, "dir /w"},
		{`PS C:\work> Get-ChildItem`, "Get-ChildItem"},
		{"user@host:~/src$ make test", "make test"},
		{"# systemctl restart foo", "systemctl restart foo"},
		{">>> print(1)", "print(1)"},
		{"no prompt here", "no prompt here"},
	}
	for _, c := range cases {
		if got := StripPrompt(c.in); got != c.want {
			t.Errorf("StripPrompt(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSelectorFilterAndSelect(t *testing.T) {
	s := Open(t.TempDir())
	s.Add("make build")
	s.Add("make test")
	s.Add("git push")
	sel := NewSelector(s)
	sel.Show()
	if !sel.Visible {
		t.Fatal("selector should be visible after Show")
	}
	if len(sel.Results) != 3 {
		t.Fatalf("initial results = %d, want 3", len(sel.Results))
	}

	for _, r := range "make" {
		sel.Input(r)
	}
	if len(sel.Results) != 2 {
		t.Fatalf("filtered results = %d, want 2", len(sel.Results))
	}
	sel.Down()
	cmd, ok := sel.Confirm()
	if !ok || cmd != "make build" {
		t.Errorf("confirmed %q, want %q", cmd, "make build")
	}
	if sel.Visible {
		t.Error("confirm should hide the selector")
	}
}

func TestSelectorNumberSelect(t *testing.T) {
	s := Open(t.TempDir())
	s.Add("first")
	s.Add("second")
	sel := NewSelector(s)
	sel.Show()
	cmd, ok := sel.SelectNumber(2)
	if !ok || cmd != "first" {
		t.Errorf("number 2 = %q, want %q (newest first)", cmd, "first")
	}
}

func TestSelectorDeduplicates(t *testing.T) {
	s := Open(t.TempDir())
	s.Add("ls")
	s.Add("pwd")
	s.Add("ls")
	sel := NewSelector(s)
	sel.Show()
	if len(sel.Results) != 2 {
		t.Errorf("results = %d, want 2 after dedup", len(sel.Results))
	}
}
