package calendar

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Set is an unordered collection of calendar identifiers.
type Set map[string]struct{}

func NewSet(identifiers ...string) Set {
	s := make(Set, len(identifiers))
	for _, id := range identifiers {
		s.Add(id)
	}
	return s
}

// Add cleans the identifier like a calendar file line and keeps it if
// anything is left.
func (s Set) Add(identifier string) {
	if cleaned := cleanLine(identifier); cleaned != "" {
		s[cleaned] = struct{}{}
	}
}

func (s Set) Has(identifier string) bool {
	_, ok := s[identifier]
	return ok
}

func (s Set) Union(other Set) {
	for id := range other {
		s[id] = struct{}{}
	}
}

func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

type yamlCalendarFile struct {
	Calendars []string `yaml:"calendars"`
}

// ReadCalendars reads one identifier per line. '#' starts a comment;
// blank and comment-only lines are skipped.
func ReadCalendars(r io.Reader) (Set, error) {
	set := make(Set)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		set.Add(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read calendars: %w", err)
	}
	return set, nil
}

// LoadCalendarFile reads a plain calendar file, or a YAML one
// ("calendars:" list) when the extension is .yml or .yaml.
func LoadCalendarFile(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open calendar file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return readYAMLCalendars(f)
	default:
		return ReadCalendars(f)
	}
}

func readYAMLCalendars(r io.Reader) (Set, error) {
	var file yamlCalendarFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return NewSet(file.Calendars...), nil
}

func cleanLine(line string) string {
	line, _, _ = strings.Cut(strings.TrimSpace(line), "#")
	return strings.TrimSpace(line)
}
