package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/jspec"
	"github.com/reoring/jspec/i18n"
)

const specDoc = `
root:
  type: object
  fields:
    name: {type: string, required: true, length: [1, 8]}
    tags:
      type: array
      items: string
      default: []
    "a.b": int32
`

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	t.Cleanup(func() { i18n.SetLanguage("en") })
	var out, errOut bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_ValidateAndPrint(t *testing.T) {
	dir := t.TempDir()
	sp := writeFile(t, dir, "spec.yaml", specDoc)
	doc := writeFile(t, dir, "ok.json", `{"name":"x"}`)

	for _, driver := range []string{"builtin", "gojson"} {
		code, out, stderr := runCLI(t, "", "validate", "-spec", sp, "-driver", driver, "-print", doc)
		if code != exitOK {
			t.Fatalf("%s: exit %d: %s", driver, code, stderr)
		}
		if out != "{\"name\":\"x\",\"tags\":[]}\n" {
			t.Fatalf("%s: stdout %q", driver, out)
		}
	}
}

func TestRun_ValidateReportsFirstViolation(t *testing.T) {
	dir := t.TempDir()
	sp := writeFile(t, dir, "spec.yaml", specDoc)
	code, out, stderr := runCLI(t, `{"name":"","a.b":"x"}`, "validate", "-spec", sp)
	if code != exitInvalid {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if !strings.HasPrefix(out, "-: /name: ") || strings.Count(out, "\n") != 1 {
		t.Fatalf("stdout %q", out)
	}
	for _, want := range []string{`"code":"string_too_short"`, `"offset":8`, `"fragment":"\"\""`} {
		if !strings.Contains(stderr, want) {
			t.Fatalf("log lacks %s:\n%s", want, stderr)
		}
	}
}

func TestRun_TestReportsEveryViolation(t *testing.T) {
	dir := t.TempDir()
	sp := writeFile(t, dir, "spec.yaml", specDoc)
	code, out, _ := runCLI(t, `{"name":"","a.b":"x"}`, "test", "-spec", sp, "-lang", "ja")
	if code != exitInvalid {
		t.Fatalf("exit %d", code)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "-: /a.b: ") {
		t.Fatalf("stdout %q", out)
	}
}

func TestRun_Schema(t *testing.T) {
	dir := t.TempDir()
	sp := writeFile(t, dir, "spec.yaml", specDoc)
	code, out, stderr := runCLI(t, "", "schema", "-spec", sp)
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if !strings.Contains(out, `"$schema": "https://json-schema.org/draft/2020-12/schema"`) {
		t.Fatalf("stdout %s", out)
	}
}

func TestRun_Usage(t *testing.T) {
	if code, _, _ := runCLI(t, "", "bogus"); code != exitUsage {
		t.Fatalf("exit %d", code)
	}
	if code, _, _ := runCLI(t, "", "validate"); code != exitUsage {
		t.Fatalf("exit %d", code)
	}
}

func TestGJSONPath(t *testing.T) {
	p := jspec.Root().Key("a.b").Index(2).Key("c*")
	if diff := cmp.Diff(`a\.b.2.c\*`, gjsonPath(p)); diff != "" {
		t.Fatalf("path (-want +got):\n%s", diff)
	}
	if got := fragment([]byte(`{"a.b":[0,1,{"c*":[true]}]}`), p); got != "[true]" {
		t.Fatalf("fragment %q", got)
	}
}
