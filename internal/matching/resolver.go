package matching

import (
	"strconv"
	"strings"

	"alfredoptarigan/talent-matcher/internal/models"
)

// Resolve reads a dot-separated path out of a candidate document. Lists
// fan out over their items, so "experience.title" collects the title of
// every experience entry; a numeric segment indexes into a list.
// Blank strings are dropped. One leaf comes back as-is, several as a list,
// none as null.
func Resolve(doc map[string]any, path string) models.Value {
	path = strings.TrimSpace(path)
	if doc == nil || path == "" {
		return models.Null()
	}

	var leaves []models.Value
	walk(doc, strings.Split(path, "."), &leaves)

	switch len(leaves) {
	case 0:
		return models.Null()
	case 1:
		return leaves[0]
	default:
		return models.List(leaves...)
	}
}

func walk(node any, keys []string, out *[]models.Value) {
	if len(keys) == 0 {
		collect(node, out)
		return
	}

	switch n := node.(type) {
	case map[string]any:
		next, ok := n[keys[0]]
		if !ok || next == nil {
			return
		}
		walk(next, keys[1:], out)
	case []any:
		if idx, err := strconv.Atoi(keys[0]); err == nil {
			if idx >= 0 && idx < len(n) {
				walk(n[idx], keys[1:], out)
			}
			return
		}
		for _, item := range n {
			walk(item, keys, out)
		}
	case []map[string]any:
		for _, item := range n {
			walk(item, keys, out)
		}
	}
}

func collect(node any, out *[]models.Value) {
	switch n := node.(type) {
	case nil:
	case []any:
		for _, item := range n {
			collect(item, out)
		}
	case []string:
		for _, item := range n {
			collect(item, out)
		}
	default:
		v := models.FromAny(n)
		if v.IsEmpty() {
			return
		}
		*out = append(*out, v)
	}
}

// ProfileText flattens every text of a profile document into one string,
// used when a profile has no stored resume text.
func ProfileText(doc map[string]any) string {
	if len(doc) == 0 {
		return ""
	}
	return models.FromAny(doc).Text()
}
