package exclusion

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// DefaultSeparator splits "name<sep>id" lines in a VM list source.
const DefaultSeparator = ','

// VMRule excludes restore points whose machine name equals Name and, when
// HasID is set, whose machine identifier equals ID.
type VMRule struct {
	Name  string
	ID    string
	HasID bool
}

// Options holds the raw inputs for Build. Nil readers are treated as empty
// list sources.
type Options struct {
	VMPattern  string
	VMList     io.Reader
	JobPattern string
	JobList    io.Reader
	Separator  rune // 0 means DefaultSeparator
}

// Index answers exclusion questions in O(1) for list rules plus one
// substring test per pattern. It is immutable after Build and safe to share
// between goroutines.
type Index struct {
	vms        map[string]VMRule   // lowercased name -> first rule seen
	jobs       map[string]struct{} // lowercased job name
	vmPattern  Pattern
	jobPattern Pattern
}

// Build parses both list sources and both patterns.
func Build(opts Options) (*Index, error) {
	sep := opts.Separator
	if sep == 0 {
		sep = DefaultSeparator
	}

	idx := &Index{
		vms:        make(map[string]VMRule),
		jobs:       make(map[string]struct{}),
		vmPattern:  ParsePattern(opts.VMPattern),
		jobPattern: ParsePattern(opts.JobPattern),
	}

	if opts.VMList != nil {
		err := scanLines(opts.VMList, func(line string) {
			rule, ok := parseVMRule(line, sep)
			if !ok {
				return
			}
			key := strings.ToLower(rule.Name)
			if _, dup := idx.vms[key]; dup {
				return
			}
			idx.vms[key] = rule
		})
		if err != nil {
			return nil, fmt.Errorf("read vm exclusion list: %w", err)
		}
	}

	if opts.JobList != nil {
		err := scanLines(opts.JobList, func(line string) {
			name := strings.TrimSpace(line)
			if name == "" {
				return
			}
			idx.jobs[strings.ToLower(name)] = struct{}{}
		})
		if err != nil {
			return nil, fmt.Errorf("read job exclusion list: %w", err)
		}
	}

	return idx, nil
}

// parseVMRule splits a "name" or "name<sep>id" line. Whitespace-only names
// are rejected.
func parseVMRule(line string, sep rune) (VMRule, bool) {
	name, id, hasID := strings.Cut(line, string(sep))
	name = strings.TrimSpace(name)
	if name == "" {
		return VMRule{}, false
	}
	id = strings.TrimSpace(id)
	return VMRule{Name: name, ID: id, HasID: hasID && id != ""}, true
}

// scanLines feeds every non-blank, non-comment line of r to fn.
func scanLines(r io.Reader, fn func(string)) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fn(line)
	}
	return sc.Err()
}

// JobExcludedByName reports whether name is on the job exclusion list.
func (idx *Index) JobExcludedByName(name string) bool {
	_, ok := idx.jobs[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// VMExcluded reports whether a list rule matches the machine. A rule without
// an ID matches every machine of that name.
func (idx *Index) VMExcluded(name, id string) bool {
	rule, ok := idx.vms[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return false
	}
	return !rule.HasID || strings.EqualFold(rule.ID, strings.TrimSpace(id))
}

// ExcludesVM combines the list rule and the VM pattern.
func (idx *Index) ExcludesVM(name, id string) bool {
	return idx.VMExcluded(name, id) || idx.vmPattern.Matches(name)
}

// ExcludesJob combines the job list (by name) and the job pattern (by
// description). An empty description never matches the pattern.
func (idx *Index) ExcludesJob(name, description string) bool {
	return idx.JobExcludedByName(name) || idx.jobPattern.Matches(description)
}

// VMPattern returns the parsed VM wildcard pattern.
func (idx *Index) VMPattern() Pattern { return idx.vmPattern }

// JobPattern returns the parsed job wildcard pattern.
func (idx *Index) JobPattern() Pattern { return idx.jobPattern }

// VMRuleCount returns the number of distinct VM rules.
func (idx *Index) VMRuleCount() int { return len(idx.vms) }

// JobRuleCount returns the number of distinct excluded job names.
func (idx *Index) JobRuleCount() int { return len(idx.jobs) }

// LoadFile reads a list source from path. An empty path yields nil. A
// missing or unreadable file is logged and treated as an empty list.
func LoadFile(path string, log *zap.Logger) io.Reader {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("exclusion list unavailable, continuing without it",
			zap.String("path", path), zap.Error(err))
		return nil
	}
	return bytes.NewReader(data)
}
