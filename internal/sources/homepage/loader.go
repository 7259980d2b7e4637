package homepage

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
)

var templateVariable = regexp.MustCompile(`\{\{[^}]+\}\}`)

// Loader reads one Homepage services.yaml or bookmarks.yaml file.
type Loader struct {
	filePath string
	mapper   *Mapper
}

func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
		mapper:   NewMapper(),
	}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string {
	return l.filePath
}

// Load reads the file and converts its entries to links.
func (l *Loader) Load() ([]domain.Link, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read homepage file: %w", err)
	}

	file, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return l.mapper.MapLinks(file)
}

// Parse decodes a Homepage YAML document.
func Parse(data []byte) (File, error) {
	// Homepage substitutes {{HOMEPAGE_VAR_...}} at runtime; the values are not
	// available here.
	data = stripTemplateVariables(data)

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse homepage yaml: %w", err)
	}
	return file, nil
}

// stripTemplateVariables replaces {{...}} with an empty YAML string.
func stripTemplateVariables(data []byte) []byte {
	return templateVariable.ReplaceAll(data, []byte(`""`))
}
