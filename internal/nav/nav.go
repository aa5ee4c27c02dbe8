// Package nav describes the site header navigation and breadcrumbs.
package nav

import (
	"path"
	"strings"
)

// Item is a top-level navigation entry.
type Item struct {
	Path     string
	LabelKey string
}

// RenderedItem is the template view of an Item.
type RenderedItem struct {
	Href     string
	LabelKey string
	Active   bool
}

// Crumb is a breadcrumb entry.
type Crumb struct {
	Href     string
	LabelKey string
	Active   bool
}

// Main is the header navigation.
var Main = []Item{
	{Path: "/", LabelKey: "nav.home"},
	{Path: "/menu", LabelKey: "nav.menu"},
	{Path: "/intake-calculator", LabelKey: "nav.intake"},
}

// Build marks the item matching currentPath as active.
func Build(currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Href:     it.Path,
			LabelKey: it.LabelKey,
			Active:   isActive(it.Path, currentPath),
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

// Breadcrumbs returns Home followed by the section of currentPath when it is a known
// navigation item. Unknown sections yield Home only.
func Breadcrumbs(currentPath string) []Crumb {
	clean := path.Clean("/" + currentPath)
	crumbs := []Crumb{{Href: "/", LabelKey: "nav.home", Active: clean == "/"}}
	if clean == "/" {
		return crumbs
	}
	top := "/" + strings.SplitN(strings.TrimPrefix(clean, "/"), "/", 2)[0]
	for _, it := range Main {
		if it.Path == top {
			crumbs = append(crumbs, Crumb{Href: it.Path, LabelKey: it.LabelKey, Active: true})
			break
		}
	}
	return crumbs
}
