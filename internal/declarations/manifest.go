package declarations

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"dmadmin/pkg/types"

	"gopkg.in/yaml.v3"
)

//go:embed manifests/*.yml
var manifestFS embed.FS

type QuestionType string

const (
	QuestionText         QuestionType = "text"
	QuestionTextboxLarge QuestionType = "textbox_large"
	QuestionRadios       QuestionType = "radios"
	QuestionBoolean      QuestionType = "boolean"
	QuestionNumber       QuestionType = "number"
	QuestionCheckboxes   QuestionType = "checkboxes"
	QuestionList         QuestionType = "list"
)

type Option struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

type Question struct {
	ID       string       `yaml:"id"`
	Question string       `yaml:"question"`
	Hint     string       `yaml:"hint,omitempty"`
	Type     QuestionType `yaml:"type"`
	Optional bool         `yaml:"optional,omitempty"`
	Options  []Option     `yaml:"options,omitempty"`
}

type Section struct {
	Slug      string     `yaml:"slug"`
	Name      string     `yaml:"name"`
	Questions []Question `yaml:"questions"`
}

// Manifest describes the declaration questionnaire of one framework.
type Manifest struct {
	Framework string    `yaml:"framework"`
	Sections  []Section `yaml:"sections"`
}

func (m *Manifest) Section(slug string) (*Section, bool) {
	for i := range m.Sections {
		if m.Sections[i].Slug == slug {
			return &m.Sections[i], true
		}
	}
	return nil, false
}

func (m *Manifest) validate() error {
	sections := make(map[string]bool, len(m.Sections))
	questions := make(map[string]string)
	for _, section := range m.Sections {
		if section.Slug == "" {
			return fmt.Errorf("section %q has no slug", section.Name)
		}
		if sections[section.Slug] {
			return fmt.Errorf("duplicate section %s", section.Slug)
		}
		sections[section.Slug] = true

		for _, q := range section.Questions {
			if q.ID == "" {
				return fmt.Errorf("section %s has a question without an id", section.Slug)
			}
			if other, ok := questions[q.ID]; ok {
				return fmt.Errorf("question %s appears in sections %s and %s", q.ID, other, section.Slug)
			}
			questions[q.ID] = section.Slug

			switch q.Type {
			case QuestionText, QuestionTextboxLarge, QuestionRadios, QuestionBoolean,
				QuestionNumber, QuestionCheckboxes, QuestionList:
			default:
				return fmt.Errorf("question %s has unknown type %q", q.ID, q.Type)
			}
		}
	}
	return nil
}

// Catalog holds the declaration manifests keyed by framework slug.
type Catalog struct {
	manifests map[string]*Manifest
}

// LoadCatalog reads every *.yml manifest in dir, or the embedded manifests
// when dir is empty. A manifest's framework defaults to its file name.
func LoadCatalog(dir string) (*Catalog, error) {
	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(manifestFS, "manifests")
		if err != nil {
			return nil, fmt.Errorf("failed to open embedded manifests: %w", err)
		}
		fsys = sub
	} else {
		fsys = os.DirFS(dir)
	}

	return loadCatalog(fsys)
}

func loadCatalog(fsys fs.FS) (*Catalog, error) {
	names, err := fs.Glob(fsys, "*.yml")
	if err != nil {
		return nil, fmt.Errorf("failed to list manifests: %w", err)
	}

	c := &Catalog{manifests: make(map[string]*Manifest, len(names))}
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest %s: %w", name, err)
		}

		m := new(Manifest)
		if err := yaml.Unmarshal(data, m); err != nil {
			return nil, fmt.Errorf("failed to parse manifest %s: %w", name, err)
		}
		if m.Framework == "" {
			m.Framework = strings.TrimSuffix(name, path.Ext(name))
		}
		if err := m.validate(); err != nil {
			return nil, fmt.Errorf("invalid manifest %s: %w", name, err)
		}

		c.manifests[m.Framework] = m
	}

	return c, nil
}

// Manifest returns the declaration manifest for a framework.
func (c *Catalog) Manifest(frameworkSlug string) (*Manifest, error) {
	m, ok := c.manifests[frameworkSlug]
	if !ok {
		return nil, fmt.Errorf("declaration manifest for %s: %w", frameworkSlug, types.ErrNotFound)
	}
	return m, nil
}

func (c *Catalog) Frameworks() []string {
	slugs := make([]string, 0, len(c.manifests))
	for slug := range c.manifests {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}
