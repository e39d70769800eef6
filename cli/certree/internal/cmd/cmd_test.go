package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func init() {
	color.NoColor = true
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return out.String(), err
}

func TestIssueAndVerify(t *testing.T) {
	dir := t.TempDir()
	if _, err := execute(t, "init", "--dir", dir, "--encoding", "toml"); err != nil {
		t.Fatal(err)
	}
	config := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(config); err != nil {
		t.Fatal(err)
	}

	csvPath := filepath.Join(dir, "participants.csv")
	csv := "nft_id,name,course,issuer\nc-1,Ana,Go 101,Klever\nc-2,Bruno,Go 101,Klever\n"
	if err := os.WriteFile(csvPath, []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "issue", "-c", config, csvPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Issued 2 certificates") {
		t.Fatal("Expect issue summary, got", out)
	}

	out, err = execute(t, "list", "-c", config)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "c-1\t") || !strings.Contains(out, "c-2\t") {
		t.Fatal("Expect both records listed, got", out)
	}

	out, err = execute(t, "verify", "-c", config, "--metadata=", "c-1", "course", "Go 101")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "VERIFIED") {
		t.Fatal("Expect verified claim, got", out)
	}

	out, err = execute(t, "verify", "-c", config, "--metadata=", "c-1", "course", "Go 102")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "NOT VERIFIED") {
		t.Fatal("Expect rejected claim, got", out)
	}

	sidecar := filepath.Join(dir, "certificates", "c-2.meta.json")
	out, err = execute(t, "extract", sidecar)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Bruno") || !strings.Contains(out, "matches the embedded root") {
		t.Fatal("Expect extracted fields, got", out)
	}

	out, err = execute(t, "verify", "-c", config, "--metadata", sidecar, "name", "Bruno")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "VERIFIED") {
		t.Fatal("Expect verified claim from metadata, got", out)
	}
}

func TestIssueDuplicateRun(t *testing.T) {
	dir := t.TempDir()
	if _, err := execute(t, "init", "--dir", dir, "--encoding", "yaml"); err != nil {
		t.Fatal(err)
	}
	config := filepath.Join(dir, "config.yaml")
	csvPath := filepath.Join(dir, "participants.csv")
	if err := os.WriteFile(csvPath, []byte("nft_id,name\nd-1,Ana\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "issue", "-c", config, csvPath); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "issue", "-c", config, csvPath); err == nil {
		t.Fatal("Expect reissuing a record to fail")
	}
}
