package importfile

// Entry represents a single bookmark entry in the YAML
type Entry struct {
	Icon        string `yaml:"icon"`
	Abbr        string `yaml:"abbr"`
	Href        string `yaml:"href"`
	Description string `yaml:"description"`
}

// Category represents a category with its bookmarks
// The YAML structure is: - CategoryName: { - BookmarkName: [{ icon, abbr, href, description }] }
// Each bookmark name maps to a list with a single entry containing the properties
type Category map[string][]map[string][]Entry

// File is the root structure of an import file (Homepage bookmarks.yaml layout)
type File []Category
