package homepage

import "gopkg.in/yaml.v3"

// File is the common shape of Homepage services.yaml and bookmarks.yaml:
// a list of groups, each holding a list of single-key maps from entry name to
// its properties. The properties are a mapping for services and a list with
// one mapping for bookmarks, so they are decoded lazily.
type File []map[string][]map[string]yaml.Node

// ServiceProps are the services.yaml fields a link can use.
type ServiceProps struct {
	Href        string `yaml:"href"`
	Icon        string `yaml:"icon,omitempty"`
	Description string `yaml:"description,omitempty"`
	Target      string `yaml:"target,omitempty"`
}

// BookmarkEntry is one bookmarks.yaml entry.
type BookmarkEntry struct {
	Icon        string `yaml:"icon"`
	Abbr        string `yaml:"abbr"`
	Href        string `yaml:"href"`
	Description string `yaml:"description,omitempty"`
}
