package processing

import (
	"os"
	"path/filepath"
	"testing"
)

const validRecipe = `
name: base
substitutions:
  app_name: acme
steps:
  - type: remove
    path: README.rdoc
    missingOk: true
`

func writeRecipe(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, RecipeFilename), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func setupDiscoverTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeRecipe(t, root, validRecipe)
	writeRecipe(t, filepath.Join(root, "rails"), validRecipe)
	writeRecipe(t, filepath.Join(root, "rails", "devise"), validRecipe)

	// A recipe file inside a template tree is content, not a recipe.
	writeRecipe(t, filepath.Join(root, "rails", "templates"), "{{invalid")

	return root
}

func TestDiscoverRecipes_Unlimited(t *testing.T) {
	root := setupDiscoverTree(t)

	recipes, err := DiscoverRecipes(root, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(recipes) != 3 {
		t.Fatalf("expected 3 recipes, got %d", len(recipes))
	}

	// Should be sorted by depth (root first)
	if recipes[0].Dir != root {
		t.Errorf("expected first recipe at root %q, got %q", root, recipes[0].Dir)
	}
	if recipes[2].Dir != filepath.Join(root, "rails", "devise") {
		t.Errorf("expected deepest recipe last, got %q", recipes[2].Dir)
	}
}

func TestDiscoverRecipes_MaxDepth(t *testing.T) {
	root := setupDiscoverTree(t)

	tests := []struct {
		depth int
		want  int
	}{
		{0, 1},
		{1, 2},
		{2, 3},
	}

	for _, tt := range tests {
		recipes, err := DiscoverRecipes(root, tt.depth)
		if err != nil {
			t.Fatalf("depth %d: unexpected error: %v", tt.depth, err)
		}
		if len(recipes) != tt.want {
			t.Errorf("depth %d: expected %d recipes, got %d", tt.depth, tt.want, len(recipes))
		}
	}
}

func TestDiscoverRecipes_None(t *testing.T) {
	recipes, err := DiscoverRecipes(t.TempDir(), -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recipes) != 0 {
		t.Fatalf("expected 0 recipes, got %d", len(recipes))
	}
}

func TestDiscoverRecipes_InvalidRecipe(t *testing.T) {
	root := t.TempDir()
	writeRecipe(t, root, "{{invalid")

	if _, err := DiscoverRecipes(root, -1); err == nil {
		t.Fatal("expected error for invalid recipe")
	}
}

func TestResolveRecipePath(t *testing.T) {
	if got := ResolveRecipePath("recipes/rails", true); got != filepath.Join("recipes/rails", RecipeFilename) {
		t.Errorf("directory: got %q", got)
	}
	if got := ResolveRecipePath("rails.yaml", false); got != "rails.yaml" {
		t.Errorf("file: got %q", got)
	}
}

func TestPathDepth(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{".", 0},
		{"a", 1},
		{"a/b", 2},
		{"a/b/c", 3},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := pathDepth(tt.path)
			if got != tt.want {
				t.Errorf("pathDepth(%q) = %d, want %d", tt.path, got, tt.want)
			}
		})
	}
}
