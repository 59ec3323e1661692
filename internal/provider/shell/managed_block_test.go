package shell

import (
	"strings"
	"testing"
)

func TestReadManagedBlock_Found(t *testing.T) {
	content := "# user content\n\n" +
		"# >>> provision env >>>\n" +
		"export EDITOR=\"nvim\"\n" +
		"# <<< provision env <<<\n"

	block := ReadManagedBlock(content, "env")
	if block != "export EDITOR=\"nvim\"\n" {
		t.Errorf("ReadManagedBlock() = %q", block)
	}
}

func TestReadManagedBlock_NotFound(t *testing.T) {
	if got := ReadManagedBlock("# just a profile\n", "env"); got != "" {
		t.Errorf("ReadManagedBlock() = %q, want empty", got)
	}
}

func TestReadManagedBlock_NoEndMarker(t *testing.T) {
	content := "# >>> provision env >>>\nexport FOO=\"bar\"\n"
	if got := ReadManagedBlock(content, "env"); got != "" {
		t.Errorf("ReadManagedBlock() = %q, want empty for malformed block", got)
	}
}

func TestWriteManagedBlock_AppendToEmpty(t *testing.T) {
	result := WriteManagedBlock("", "env", "export FOO=\"bar\"\n")

	want := "\n# >>> provision env >>>\n" +
		"export FOO=\"bar\"\n" +
		"# <<< provision env <<<\n"
	if result != want {
		t.Errorf("WriteManagedBlock() = %q, want %q", result, want)
	}
}

func TestWriteManagedBlock_AppendKeepsUserContent(t *testing.T) {
	content := "# my profile\nalias g=git"

	result := WriteManagedBlock(content, "env", "export FOO=\"bar\"\n")

	if !strings.HasPrefix(result, "# my profile\nalias g=git\n") {
		t.Errorf("user content lost: %q", result)
	}
	if !strings.Contains(result, "# >>> provision env >>>\nexport FOO=\"bar\"\n# <<< provision env <<<\n") {
		t.Errorf("block missing: %q", result)
	}
}

func TestWriteManagedBlock_ReplacesExisting(t *testing.T) {
	content := "# before\n" +
		"# >>> provision env >>>\n" +
		"export OLD=\"stale\"\n" +
		"# <<< provision env <<<\n" +
		"# after\n"

	result := WriteManagedBlock(content, "env", "export NEW=\"fresh\"\n")

	if strings.Contains(result, "OLD") {
		t.Errorf("stale block content kept: %q", result)
	}
	if !strings.Contains(result, "export NEW=\"fresh\"\n") {
		t.Errorf("new block content missing: %q", result)
	}
	if !strings.HasPrefix(result, "# before\n") || !strings.HasSuffix(result, "# after\n") {
		t.Errorf("surrounding content not preserved: %q", result)
	}
}

func TestWriteManagedBlock_RepairsMissingEndMarker(t *testing.T) {
	content := "# before\n" +
		"# >>> provision env >>>\n" +
		"export OLD=\"stale\"\n"

	result := WriteManagedBlock(content, "env", "export NEW=\"fresh\"\n")

	if strings.Contains(result, "OLD") {
		t.Errorf("stale content kept: %q", result)
	}
	if !strings.HasSuffix(result, "# <<< provision env <<<\n") {
		t.Errorf("end marker not restored: %q", result)
	}
}

func TestWriteManagedBlock_Idempotent(t *testing.T) {
	block := "export FOO=\"bar\"\n"
	once := WriteManagedBlock("# profile\n", "env", block)
	twice := WriteManagedBlock(once, "env", block)

	if once != twice {
		t.Errorf("rewriting the same block changed the file:\nonce:  %q\ntwice: %q", once, twice)
	}
}

func TestRenderEnvBlock_SortedAndQuoted(t *testing.T) {
	block := renderEnvBlock(map[string]string{
		"SHELL":  "/bin/zsh",
		"EDITOR": "nvim",
	})

	want := "export EDITOR=\"nvim\"\nexport SHELL=\"/bin/zsh\"\n"
	if block != want {
		t.Errorf("renderEnvBlock() = %q, want %q", block, want)
	}
}

func TestRenderEnvBlock_Empty(t *testing.T) {
	if got := renderEnvBlock(nil); got != "" {
		t.Errorf("renderEnvBlock(nil) = %q, want empty", got)
	}
}
