package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/clipperhouse/uax29/v2/graphemes"
)

// Length limits, counted in grapheme clusters
const (
	MaxNameLength        = 50
	MaxDescriptionLength = 140
)

// Issue messages
const (
	MsgNameMissing         = `No "name" property set`
	MsgNameInvalid         = `Name must be character, can contain digits, dots, dashes, "@" or spaces`
	MsgNameTooLong         = `The "name" is too long, the limit is 50 characters`
	MsgNameNotRecommended  = `The "name" is recommended to be character, can contain digits, dots, dashes`
	MsgNameLeadingDot      = `The "name" cannot start with dot or dash`
	MsgNameTrailingDot     = `The "name" cannot end with dot or dash`
	MsgDescriptionTooLong  = `The "description" is too long, the limit is 140 characters`
	MsgMainWrongType       = `The "main" field has to be either an Array or a String`
	MsgMainNonString       = `The "main" Array has to contain only Strings`
	MsgMainGlob            = `The "main" field cannot contain globs (example: "*.js")`
	MsgMainMinified        = `The "main" field cannot contain minified files`
	MsgMainAsset           = `The "main" field cannot contain font, image, audio, or video files`
	msgMainDuplicateFormat = `The "main" field has to contain only 1 file per filetype; found multiple %s files: %s`
)

var (
	// namePattern is the pattern a name must match
	namePattern = regexp.MustCompile(`^[a-zA-Z0-9_@][a-zA-Z0-9_@.\- /]*$`)

	// recommendedNamePattern is stricter: no "@", no spaces, no slashes
	recommendedNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_.\-]*$`)

	leadingDotPattern  = regexp.MustCompile(`^[.-]`)
	trailingDotPattern = regexp.MustCompile(`[.-]$`)
	minifiedPattern    = regexp.MustCompile(`[.]min[.][^/]+$`)
)

// GetIssues runs every validation rule against m and reports blocking errors
// and advisory warnings separately. It never fails and never modifies m.
func GetIssues(m Manifest) Issues {
	var issues Issues

	checkName(m, &issues)
	checkDescription(m, &issues)
	checkMain(m, &issues)

	return issues
}

// Validate fails with a CodeInvalid error carrying the first error reported
// by GetIssues. Warnings never cause a failure.
func Validate(m Manifest) error {
	issues := GetIssues(m)
	if len(issues.Errors) > 0 {
		return newInvalidError(issues.Errors[0])
	}
	return nil
}

func checkName(m Manifest, issues *Issues) {
	raw, ok := m["name"]
	if !ok || isEmptyValue(raw) {
		issues.Errors = append(issues.Errors, MsgNameMissing)
		return
	}

	name, ok := raw.(string)
	if !ok {
		issues.Errors = append(issues.Errors, MsgNameInvalid)
		return
	}

	if !namePattern.MatchString(name) {
		issues.Errors = append(issues.Errors, MsgNameInvalid)
	}
	if textLength(name) > MaxNameLength {
		issues.Warnings = append(issues.Warnings, MsgNameTooLong)
	}
	if !recommendedNamePattern.MatchString(name) {
		issues.Warnings = append(issues.Warnings, MsgNameNotRecommended)
	}
	if leadingDotPattern.MatchString(name) {
		issues.Warnings = append(issues.Warnings, MsgNameLeadingDot)
	}
	if trailingDotPattern.MatchString(name) {
		issues.Warnings = append(issues.Warnings, MsgNameTrailingDot)
	}
}

func checkDescription(m Manifest, issues *Issues) {
	description, ok := m["description"].(string)
	if ok && textLength(description) > MaxDescriptionLength {
		issues.Warnings = append(issues.Warnings, MsgDescriptionTooLong)
	}
}

func checkMain(m Manifest, issues *Issues) {
	raw, ok := m["main"]
	if !ok {
		return
	}

	entries, ok := mainEntries(raw)
	if !ok {
		issues.Errors = append(issues.Errors, MsgMainWrongType)
		return
	}

	// Extensions in first-seen order so warnings are stable
	var exts []string
	filesByExt := make(map[string][]string)

	for _, entry := range entries {
		file, ok := entry.(string)
		if !ok {
			issues.Errors = append(issues.Errors, MsgMainNonString)
			continue
		}

		if strings.Contains(file, "*") {
			issues.Warnings = append(issues.Warnings, MsgMainGlob)
		}
		if minifiedPattern.MatchString(file) {
			issues.Warnings = append(issues.Warnings, MsgMainMinified)
		}
		if IsAsset(file) {
			issues.Warnings = append(issues.Warnings, MsgMainAsset)
		}

		ext := extname(file)
		if len(ext) < 2 {
			continue
		}
		if _, seen := filesByExt[ext]; !seen {
			exts = append(exts, ext)
		}
		filesByExt[ext] = append(filesByExt[ext], file)
	}

	for _, ext := range exts {
		files := filesByExt[ext]
		if len(files) > 1 {
			issues.Warnings = append(issues.Warnings, duplicateExtWarning(ext, files))
		}
	}
}

// mainEntries returns the entries of a main value that is a string or an
// array. The boolean is false for any other shape.
func mainEntries(v any) ([]any, bool) {
	switch main := v.(type) {
	case string:
		return []any{main}, true
	case []any:
		return main, true
	case []string:
		entries := make([]any, len(main))
		for i, s := range main {
			entries[i] = s
		}
		return entries, true
	}
	return nil, false
}

func duplicateExtWarning(ext string, files []string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a []string cannot fail
	_ = enc.Encode(files)
	return fmt.Sprintf(msgMainDuplicateFormat, ext, strings.TrimSuffix(buf.String(), "\n"))
}

// extname returns the extension of the last path element, ignoring leading
// dots so that ".eslintrc" has no extension
func extname(file string) string {
	base := file
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimLeft(base, ".")
	if base == "" {
		return ""
	}
	return path.Ext(base)
}

// textLength counts user-perceived characters rather than bytes
func textLength(s string) int {
	n := 0
	iter := graphemes.FromString(s)
	for iter.Next() {
		n++
	}
	return n
}

// isEmptyValue reports values that count as an unset name
func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case json.Number:
		f, err := val.Float64()
		return err == nil && f == 0
	case float64:
		return val == 0
	case int:
		return val == 0
	}
	return false
}
