package fs

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/notebox/pkg/core"
)

// frontmatter is the YAML header of an exported note.
type frontmatter struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Tags        []string `yaml:"tags,omitempty"`
	Notebook    string   `yaml:"notebook,omitempty"`
	LastUpdated int64    `yaml:"lastUpdated,omitempty"`
}

// MarkdownNote is a note read from a markdown file. Notebook is the notebook
// name, resolved to an id by the caller.
type MarkdownNote struct {
	Note     core.Note
	Notebook string
	Path     string
}

var unsafeName = regexp.MustCompile(`[^\p{L}\p{N}._ -]+`)

// DirName maps a notebook name to a directory name.
func DirName(name string) string {
	clean := strings.TrimSpace(unsafeName.ReplaceAllString(name, "_"))
	if clean == "" || clean == "." || clean == ".." {
		return "_"
	}
	return clean
}

// MarshalMarkdown renders a note as YAML frontmatter followed by its content.
func MarshalMarkdown(n core.Note, notebook string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(frontmatter{
		ID:          n.ID,
		Title:       n.Title,
		Tags:        n.Tags,
		Notebook:    notebook,
		LastUpdated: n.LastUpdated,
	}); err != nil {
		return nil, err
	}
	encoder.Close()
	buf.WriteString("---\n")
	buf.WriteString(n.Content)
	return buf.Bytes(), nil
}

// UnmarshalMarkdown parses a note file. A file without frontmatter is all
// content; its title is taken from fallbackTitle.
func UnmarshalMarkdown(data []byte, fallbackTitle string) (MarkdownNote, error) {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(data, []byte("---\n")) {
		return MarkdownNote{Note: core.Note{Title: fallbackTitle, Content: string(data)}}, nil
	}

	parts := bytes.SplitN(data[4:], []byte("\n---\n"), 2)
	var header, body []byte
	switch {
	case len(parts) == 2:
		header, body = parts[0], parts[1]
	case bytes.HasSuffix(parts[0], []byte("\n---")):
		header = bytes.TrimSuffix(parts[0], []byte("\n---"))
	default:
		return MarkdownNote{}, errors.New("frontmatter started but no closing delimiter found")
	}

	var fm frontmatter
	if err := yaml.Unmarshal(header, &fm); err != nil {
		return MarkdownNote{}, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	if fm.Title == "" {
		fm.Title = fallbackTitle
	}
	return MarkdownNote{
		Note: core.Note{
			ID:          fm.ID,
			Title:       fm.Title,
			Content:     string(body),
			Tags:        fm.Tags,
			LastUpdated: fm.LastUpdated,
		},
		Notebook: fm.Notebook,
	}, nil
}

// ExportMarkdown writes one <dir>/<notebook>/<id>.md file per note and
// returns the number of files written. notebookNames maps ids to names.
func ExportMarkdown(dir string, notes []core.Note, notebookNames map[string]string) (int, error) {
	for i, n := range notes {
		name := notebookNames[n.NotebookID]
		if name == "" {
			name = n.NotebookID
		}
		sub := filepath.Join(dir, DirName(name))
		if err := os.MkdirAll(sub, 0755); err != nil {
			return i, fmt.Errorf("failed to create %s: %w", sub, err)
		}
		data, err := MarshalMarkdown(n, name)
		if err != nil {
			return i, fmt.Errorf("failed to render note %s: %w", n.ID, err)
		}
		if err := writeFileAtomic(filepath.Join(sub, DirName(n.ID)+".md"), data, 0644); err != nil {
			return i, err
		}
	}
	return len(notes), nil
}

// ImportMarkdown reads every *.md file under dir. Files without a notebook in
// their frontmatter take the name of their parent directory, except at the
// top level.
func ImportMarkdown(dir string) ([]MarkdownNote, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.md")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	out := make([]MarkdownNote, 0, len(matches))
	for _, rel := range matches {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		data, err := os.ReadFile(path)
		if err != nil {
			return out, fmt.Errorf("failed to read %s: %w", path, err)
		}
		title := strings.TrimSuffix(filepath.Base(rel), ".md")
		mn, err := UnmarshalMarkdown(data, title)
		if err != nil {
			return out, fmt.Errorf("%s: %w", path, err)
		}
		if mn.Notebook == "" {
			if parent := filepath.Dir(filepath.FromSlash(rel)); parent != "." {
				mn.Notebook = filepath.Base(parent)
			}
		}
		mn.Path = path
		out = append(out, mn)
	}
	return out, nil
}
