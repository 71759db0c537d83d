package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&bytes.Buffer{})
	err := rootCmd.Execute()
	return stdout.String(), err
}

func writeDeckFixture(t *testing.T, dir string) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "photo.png"), buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	yaml := `title: Quarterly Review
subtitle: Team A
slides:
  - type: text
    heading: Agenda
    content: |-
      Intro
      Numbers
  - type: Image
    heading: Office
    image: photo.png
  - type: chart
    heading: Sales
`
	path := filepath.Join(dir, "deck.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "version flag", args: []string{"--version"}},
		{name: "help flag", args: []string{"--help"}},
		{name: "unknown command", args: []string{"unknown"}, wantErr: true},
		{name: "build without file", args: []string{"build"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDeckFile(t *testing.T) {
	dir := t.TempDir()
	_, deck, err := loadDeckFile(writeDeckFixture(t, dir))
	if err != nil {
		t.Fatalf("loadDeckFile() error = %v", err)
	}

	if deck.Title != "Quarterly Review" || len(deck.Slides) != 3 {
		t.Fatalf("unexpected deck: %+v", deck)
	}
	if got := deck.Slides[0].Points; len(got) != 2 || got[1] != "Numbers" {
		t.Errorf("points = %q", got)
	}
	if want := filepath.Join(dir, "photo.png"); deck.Slides[1].ImagePath != want {
		t.Errorf("image path = %q, want %q", deck.Slides[1].ImagePath, want)
	}
}

func TestLoadDeckFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "bad type", content: "slides:\n  - type: video\n", wantErr: "slides[0]"},
		{name: "image without path", content: "slides:\n  - type: image\n", wantErr: "image"},
		{name: "invalid yaml", content: "slides: [", wantErr: "YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "deck.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, _, err := loadDeckFile(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("loadDeckFile() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestBuildCommand(t *testing.T) {
	dir := t.TempDir()
	deckPath := writeDeckFixture(t, dir)
	out := filepath.Join(dir, "out", "deck.pptx")
	workDir := filepath.Join(dir, "work")

	stdout, err := executeCommand(t, "build", deckPath, "-o", out, "--work-dir", workDir)
	if err != nil {
		t.Fatalf("build error = %v", err)
	}
	if !strings.Contains(stdout, "4 slides") {
		t.Errorf("stdout = %q", stdout)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Error("output is not a zip container")
	}
	if _, err := os.Stat(filepath.Join(workDir, "chart.png")); err != nil {
		t.Errorf("chart.png not rendered: %v", err)
	}
}

func TestBuildCommandMissingImage(t *testing.T) {
	dir := t.TempDir()
	deckPath := writeDeckFixture(t, dir)
	if err := os.Remove(filepath.Join(dir, "photo.png")); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "deck.pptx")

	if _, err := executeCommand(t, "build", deckPath, "-o", out, "--work-dir", ""); err == nil {
		t.Fatal("expected error for missing image")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("no output should be written when export fails")
	}
}

func TestPreviewCommand(t *testing.T) {
	deckPath := writeDeckFixture(t, t.TempDir())

	stdout, err := executeCommand(t, "preview", deckPath)
	if err != nil {
		t.Fatalf("preview error = %v", err)
	}
	for _, want := range []string{"Quarterly Review", "Agenda", "• Intro", "Office", "photo.png", "Chart", "Sales"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("preview output missing %q:\n%s", want, stdout)
		}
	}
}

func TestChartCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "charts", "sample.png")

	if _, err := executeCommand(t, "chart", "-o", out); err != nil {
		t.Fatalf("chart error = %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("chart not written: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("not a PNG: %v", err)
	}
	if cfg.Width != 640 || cfg.Height != 480 {
		t.Errorf("chart size = %dx%d", cfg.Width, cfg.Height)
	}
}
