package csvmerge

import (
	"fmt"
	"strconv"
	"strings"
)

// SourceSpec identifies one input file and the chapter it represents.
type SourceSpec struct {
	Name    string
	Path    string
	Chapter int
}

func (s SourceSpec) String() string {
	return fmt.Sprintf("%s|%s|%d", s.Name, s.Path, s.Chapter)
}

// DescriptorError reports a malformed name|path|chapter entry.
type DescriptorError struct {
	Entry  string
	Reason string
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("invalid source descriptor %q: %s (expected name|path|chapter)", e.Entry, e.Reason)
}

// ParseSourceSpec parses a single name|path|chapter entry.
func ParseSourceSpec(entry string) (SourceSpec, error) {
	trimmed := strings.TrimSpace(entry)
	parts := strings.Split(trimmed, "|")
	if len(parts) != 3 {
		return SourceSpec{}, &DescriptorError{Entry: entry, Reason: fmt.Sprintf("got %d fields", len(parts))}
	}
	name := strings.TrimSpace(parts[0])
	path := strings.TrimSpace(parts[1])
	if name == "" {
		return SourceSpec{}, &DescriptorError{Entry: entry, Reason: "empty name"}
	}
	if path == "" {
		return SourceSpec{}, &DescriptorError{Entry: entry, Reason: "empty path"}
	}
	chapter, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return SourceSpec{}, &DescriptorError{Entry: entry, Reason: "chapter is not an integer"}
	}
	return SourceSpec{Name: name, Path: path, Chapter: chapter}, nil
}

// ParseSourceSpecs parses a comma separated descriptor list. Malformed
// entries are returned as errors and left out of the result.
func ParseSourceSpecs(descriptor string) ([]SourceSpec, []error) {
	return ParseEntries(strings.Split(descriptor, ","))
}

// ParseEntries parses already split descriptor entries. Blank entries are ignored.
func ParseEntries(entries []string) ([]SourceSpec, []error) {
	var (
		specs []SourceSpec
		errs  []error
	)
	for _, entry := range entries {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		spec, err := ParseSourceSpec(entry)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		specs = append(specs, spec)
	}
	return specs, errs
}
