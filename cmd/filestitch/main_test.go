package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// run executes the root command with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&logs)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "none.yaml")))
	err := rootCmd.Execute()
	return out.String(), err
}

// writeStack writes img_z1.png..img_zN.png, each a 2x2 plane filled with 10*z.
func writeStack(t *testing.T, dir string, n int) {
	t.Helper()
	for z := 1; z <= n; z++ {
		img := image.NewGray(image.Rect(0, 0, 2, 2))
		for i := range img.Pix {
			img.Pix[i] = uint8(10 * z)
		}
		f, err := os.Create(filepath.Join(dir, "img_z"+string(rune('0'+z))+".png"))
		if err != nil {
			t.Fatal(err)
		}
		if err := png.Encode(f, img); err != nil {
			t.Fatal(err)
		}
		f.Close()
	}
}

func TestPatternAndExpand(t *testing.T) {
	dir := t.TempDir()
	writeStack(t, dir, 3)

	out, err := run(t, "pattern", filepath.Join(dir, "img_z2.png"), "--format", "text")
	if err != nil {
		t.Fatalf("pattern failed: %v", err)
	}
	want := filepath.Join(dir, "img_z<1-3>.png")
	if strings.TrimSpace(out) != want {
		t.Errorf("expected %q, got %q", want, out)
	}

	out, err = run(t, "expand", want, "--format", "text")
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	lines := strings.Fields(out)
	if len(lines) != 3 || lines[2] != filepath.Join(dir, "img_z3.png") {
		t.Errorf("unexpected expansion %v", lines)
	}

	if _, err := run(t, "expand", "img_<3.png", "--format", "text"); err == nil {
		t.Error("expected an invalid pattern to fail")
	}
}

func TestGuessJSON(t *testing.T) {
	out, err := run(t, "guess", "cell_z<1-4>_t<1-2>.tif", "--format", "json")
	if err != nil {
		t.Fatalf("guess failed: %v", err)
	}
	var report guessReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(report.Blocks) != 2 || report.Blocks[0].Axis != "Z" || report.Blocks[1].Axis != "T" {
		t.Errorf("unexpected blocks %+v", report.Blocks)
	}
	if report.Blocks[0].Elements != 4 {
		t.Errorf("expected 4 Z elements, got %d", report.Blocks[0].Elements)
	}
}

func TestInfoStats(t *testing.T) {
	dir := t.TempDir()
	writeStack(t, dir, 3)

	out, err := run(t, "info", filepath.Join(dir, "img_z1.png"), "--stats", "--format", "json")
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	var report infoReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if report.SizeZ != 3 || report.ImageCount != 3 || report.SizeX != 2 {
		t.Errorf("unexpected geometry %+v", report)
	}
	if report.Pattern != filepath.Join(dir, "img_z<1-3>.png") {
		t.Errorf("expected the inferred pattern, got %q", report.Pattern)
	}
	if len(report.Channels) != 1 {
		t.Fatalf("expected one channel, got %d", len(report.Channels))
	}
	c := report.Channels[0]
	if c.Min != 10 || c.Max != 30 || c.Mean != 20 {
		t.Errorf("expected min 10 max 30 mean 20, got %+v", c)
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	writeStack(t, dir, 3)
	outDir := filepath.Join(t.TempDir(), "planes")

	if _, err := run(t, "export", filepath.Join(dir, "img_z<1-3>.png"), outDir, "--format", "text"); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("expected 3 planes, got %d", len(entries))
	}
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filestitch.yaml")
	if _, err := run(t, "init-config", path); err != nil {
		t.Fatalf("init-config failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
	if _, err := run(t, "init-config", path); err == nil {
		t.Error("expected an existing file to be refused")
	}
}
