package importfile

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/doodl/internal/domain"
)

// Mapper converts an import file to bookmark creations
type Mapper struct{}

// NewMapper creates a new mapper
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapBookmarks flattens every category into domain.NewBookmark values.
// Entries without a usable href are skipped; the first occurrence of a URL wins.
func (m *Mapper) MapBookmarks(file File) ([]domain.NewBookmark, error) {
	bookmarks := make([]domain.NewBookmark, 0)
	seen := make(map[string]bool)

	for _, category := range file {
		for categoryName, bookmarkList := range category {
			tag := domain.NormalizeTag(categoryName)

			for _, bookmarkMap := range bookmarkList {
				for bookmarkName, entryList := range bookmarkMap {
					if len(entryList) == 0 {
						continue
					}
					entry := entryList[0]

					href := domain.EnsureScheme(entry.Href)
					if !validURL(href) || seen[href] {
						continue
					}
					seen[href] = true

					title := strings.TrimSpace(bookmarkName)
					if title == "" {
						title = strings.TrimSpace(entry.Abbr)
					}

					nb := domain.NewBookmark{
						URL:         href,
						Title:       title,
						Description: strings.TrimSpace(entry.Description),
					}
					if tag != "" {
						nb.Tags = []string{tag}
					}
					if validURL(entry.Icon) {
						nb.Favicon = entry.Icon
					}

					bookmarks = append(bookmarks, nb)
				}
			}
		}
	}

	if len(bookmarks) == 0 {
		return nil, fmt.Errorf("no valid bookmarks found in import file")
	}

	return bookmarks, nil
}

// validURL reports whether raw is an absolute http(s) URL with a host.
func validURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
