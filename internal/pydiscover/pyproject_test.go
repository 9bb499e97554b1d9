package pydiscover

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadProjectConfigFindsTable(t *testing.T) {
	dir := t.TempDir()
	contents := "[tool.pyinstall]\npython = \"3.12\"\ncatalog-url = \"https://example.com/catalog.json\"\n"
	if err := os.WriteFile(filepath.Join(dir, ProjectConfigFileName), []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, ok, err := ReadProjectConfig(dir)
	if err != nil {
		t.Fatalf("ReadProjectConfig: %v", err)
	}
	if !ok {
		t.Fatal("ReadProjectConfig() ok = false, want true")
	}
	if cfg.Python != "3.12" {
		t.Errorf("Python = %q, want %q", cfg.Python, "3.12")
	}
	if cfg.CatalogURL != "https://example.com/catalog.json" {
		t.Errorf("CatalogURL = %q, want %q", cfg.CatalogURL, "https://example.com/catalog.json")
	}
}

func TestReadProjectConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	contents := "[tool.pyinstall]\npython = \"3.11\"\n"
	if err := os.WriteFile(filepath.Join(root, ProjectConfigFileName), []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	cfg, ok, err := ReadProjectConfig(nested)
	if err != nil {
		t.Fatalf("ReadProjectConfig: %v", err)
	}
	if !ok || cfg.Python != "3.11" {
		t.Errorf("ReadProjectConfig(nested) = %+v, %v, want python=3.11, true", cfg, ok)
	}
}

func TestReadProjectConfigNoneFound(t *testing.T) {
	dir := t.TempDir()
	_, ok, err := ReadProjectConfig(dir)
	if err != nil {
		t.Fatalf("ReadProjectConfig: %v", err)
	}
	if ok {
		t.Error("ReadProjectConfig() ok = true, want false")
	}
}

func TestRequestFromProjectOrPinOrDefaultPrefersPin(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, PinFileName), []byte("3.10.8\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ProjectConfigFileName), []byte("[tool.pyinstall]\npython = \"3.12\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	req, err := RequestFromProjectOrPinOrDefault(dir)
	if err != nil {
		t.Fatalf("RequestFromProjectOrPinOrDefault: %v", err)
	}
	if req.Kind != RequestVersion || req.VersionConstraint != "3.10.8" {
		t.Errorf("req = %+v, want pin file's 3.10.8 to win over pyproject.toml", req)
	}
}

func TestRequestFromProjectOrPinOrDefaultFallsBackToProject(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ProjectConfigFileName), []byte("[tool.pyinstall]\npython = \"3.12\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	req, err := RequestFromProjectOrPinOrDefault(dir)
	if err != nil {
		t.Fatalf("RequestFromProjectOrPinOrDefault: %v", err)
	}
	if req.Kind != RequestVersion || req.VersionConstraint != "3.12" {
		t.Errorf("req = %+v, want pyproject.toml's 3.12", req)
	}
}

func TestRequestFromProjectOrPinOrDefaultFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	req, err := RequestFromProjectOrPinOrDefault(dir)
	if err != nil {
		t.Fatalf("RequestFromProjectOrPinOrDefault: %v", err)
	}
	if req.Kind != RequestDefault {
		t.Errorf("req.Kind = %v, want RequestDefault", req.Kind)
	}
}
