package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

	// Migrations run against postgres in production and sqlite in local mode and tests, so
	// constructs only one of them understands are rejected.
	nonPortableRe = map[string]*regexp.Regexp{
		"SERIAL":            regexp.MustCompile(`(?i)\b(big)?serial\b`),
		"TIMESTAMPTZ":       regexp.MustCompile(`(?i)\btimestamptz\b`),
		"gen_random_uuid()": regexp.MustCompile(`(?i)\bgen_random_uuid\s*\(`),
		"now()":             regexp.MustCompile(`(?i)\bnow\s*\(\s*\)`),
		"CREATE EXTENSION":  regexp.MustCompile(`(?i)\bcreate\s+extension\b`),
		"AUTOINCREMENT":     regexp.MustCompile(`(?i)\bautoincrement\b`),
	}
)

// ValidateDir checks migration filenames, version uniqueness, the goose Up/Down markers and
// that every statement stays portable between postgres and sqlite.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		version := m[1]
		if prev, ok := seen[version]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", version, prev, name)
		}
		seen[version] = name

		full := filepath.Join(dir, name)
		b, err := os.ReadFile(full)
		if err != nil {
			return fmt.Errorf("read file %q: %w", full, err)
		}
		if err := validateContent(name, string(b)); err != nil {
			return err
		}
	}

	return nil
}

func validateContent(name, txt string) error {
	upIdx := strings.Index(txt, "-- +goose Up")
	if upIdx < 0 {
		return fmt.Errorf("migration %q missing \"-- +goose Up\"", name)
	}
	downIdx := strings.Index(txt, "-- +goose Down")
	if downIdx < 0 {
		return fmt.Errorf("migration %q missing \"-- +goose Down\"", name)
	}
	if downIdx < upIdx {
		return fmt.Errorf("migration %q has Down before Up", name)
	}
	for construct, re := range nonPortableRe {
		if re.MatchString(stripComments(txt)) {
			return fmt.Errorf("migration %q uses %s, which does not run on both postgres and sqlite", name, construct)
		}
	}
	return nil
}

func stripComments(txt string) string {
	lines := strings.Split(txt, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
