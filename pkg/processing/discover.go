package processing

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/systemstart/many-scaffold/pkg/api"
)

// RecipeFilename is the file a recipe directory holds its recipe in.
const RecipeFilename = "recipe.yaml"

// ResolveRecipePath returns the recipe file for p, which may be the file
// itself or a directory containing RecipeFilename.
func ResolveRecipePath(p string, isDir bool) string {
	if isDir {
		return filepath.Join(p, RecipeFilename)
	}
	return p
}

// DiscoverRecipes walks root looking for recipe.yaml files up to maxDepth.
// A maxDepth of -1 means unlimited. 0 means only root itself.
// Results are sorted by path depth (parents before children), then by path.
func DiscoverRecipes(root string, maxDepth int) ([]*api.Recipe, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root path: %w", err)
	}

	paths, err := collectRecipePaths(absRoot, maxDepth)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(paths, func(a, b string) int {
		if d := pathDepth(a) - pathDepth(b); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})

	return loadAll(paths)
}

func collectRecipePaths(absRoot string, maxDepth int) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk error at %s: %w", path, err)
		}

		if d.IsDir() {
			rel, relErr := filepath.Rel(absRoot, path)
			if relErr != nil {
				return fmt.Errorf("computing relative path for %s: %w", path, relErr)
			}
			if maxDepth >= 0 && pathDepth(rel) > maxDepth {
				return filepath.SkipDir
			}
			// Template trees may contain files of the same name.
			if d.Name() == api.DefaultTemplatesDir && rel != "." {
				return filepath.SkipDir
			}
		}

		if !d.IsDir() && d.Name() == RecipeFilename {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory tree: %w", err)
	}
	return paths, nil
}

func loadAll(paths []string) ([]*api.Recipe, error) {
	recipes := make([]*api.Recipe, 0, len(paths))
	for _, p := range paths {
		r, err := api.LoadRecipe(p)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", p, err)
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}

func pathDepth(p string) int {
	if p == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(p), "/") + 1
}
