// Package reference is a read-only glossary of regular expression tokens,
// grouped into categories.
package reference

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/tidwall/btree"
	"gopkg.in/yaml.v3"
)

// AllTokens is the key of the category that holds every item.
const AllTokens = "allTokens"

//go:embed references.yaml
var data []byte

// Item explains one token.
type Item struct {
	Label       string `yaml:"label" json:"label"`
	Token       string `yaml:"token" json:"token"`
	Explanation string `yaml:"explanation" json:"explanation"`
}

// Category is a named group of items.
type Category struct {
	Key   string `yaml:"key" json:"key"`
	Label string `yaml:"label" json:"label"`
	Icon  string `yaml:"icon" json:"icon"`
	Items []Item `yaml:"items" json:"items"`
}

type glossary struct {
	Categories []Category `yaml:"categories"`
}

var load = sync.OnceValues(func() ([]Category, error) {
	return parse(data)
})

func parse(b []byte) ([]Category, error) {
	var g glossary
	if err := yaml.Unmarshal(b, &g); err != nil {
		return nil, fmt.Errorf("parse glossary: %w", err)
	}
	all := Category{Key: AllTokens, Label: "All Tokens", Icon: "brickwall"}
	for _, c := range g.Categories {
		if c.Key == "" || c.Key == AllTokens {
			return nil, fmt.Errorf("parse glossary: invalid category key %q", c.Key)
		}
		all.Items = append(all.Items, c.Items...)
	}
	return append([]Category{all}, g.Categories...), nil
}

func mustLoad() []Category {
	cats, err := load()
	if err != nil {
		// The glossary is embedded; a parse failure is a build defect.
		panic(err)
	}
	return cats
}

// Categories returns every category, starting with AllTokens.
func Categories() []Category {
	cats := mustLoad()
	out := make([]Category, len(cats))
	copy(out, cats)
	return out
}

// Get returns the category with the given key.
func Get(key string) (Category, bool) {
	for _, c := range mustLoad() {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// Lookup returns the items whose token is exactly token, in category order.
// Items repeated across categories are returned once.
func Lookup(token string) []Item {
	var out []Item
	seen := make(map[Item]bool)
	for _, c := range mustLoad()[1:] {
		for _, it := range c.Items {
			if it.Token == token && !seen[it] {
				seen[it] = true
				out = append(out, it)
			}
		}
	}
	return out
}

// Search returns the items of a category whose label, token or explanation
// contains query, ignoring case. An empty key searches every category.
func Search(key, query string) []Item {
	if key == "" {
		key = AllTokens
	}
	c, ok := Get(key)
	if !ok {
		return nil
	}
	q := strings.ToLower(query)
	var out []Item
	for _, it := range c.Items {
		if strings.Contains(strings.ToLower(it.Label), q) ||
			strings.Contains(strings.ToLower(it.Token), q) ||
			strings.Contains(strings.ToLower(it.Explanation), q) {
			out = append(out, it)
		}
	}
	return out
}

// tokens indexes every distinct item by token, in token order.
var tokens = sync.OnceValue(func() *btree.Map[string, []Item] {
	index := new(btree.Map[string, []Item])
	for _, it := range mustLoad()[0].Items {
		items, _ := index.Get(it.Token)
		if !slices.Contains(items, it) {
			index.Set(it.Token, append(items, it))
		}
	}
	return index
})

// Prefix returns the items whose token starts with prefix, ordered by token.
// It backs token completion in editors.
func Prefix(prefix string) []Item {
	var out []Item
	iter := tokens().Iter()
	for ok := iter.Seek(prefix); ok && strings.HasPrefix(iter.Key(), prefix); ok = iter.Next() {
		out = append(out, iter.Value()...)
	}
	return out
}

// Tokens returns every distinct token in order.
func Tokens() []string {
	return tokens().Keys()
}
