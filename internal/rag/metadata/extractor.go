package metadata

import (
	"path/filepath"
	"regexp"
	"strings"

	"scholarag/internal/rag/schema"
)

var yearPattern = regexp.MustCompile(`20\d{2}`)

// Extract derives the semantic tags of a document from its path. It is a
// pure function of the path string: no I/O, no state. The content argument
// is accepted for interface symmetry with the extraction pipeline but the
// current rules do not consult it.
func Extract(filePath, content string) schema.Metadata {
	_ = content

	fileName := filepath.Base(filePath)
	lowerName := strings.ToLower(fileName)

	md := schema.Metadata{
		Source:       filePath,
		FileName:     fileName,
		FileType:     strings.ToLower(filepath.Ext(filePath)),
		DocumentType: documentType(filePath, lowerName),
		Difficulty:   difficulty(lowerName),
	}

	md.Company = company(filePath, lowerName)
	md.Subject = subject(lowerName)

	if year := yearPattern.FindString(fileName); year != "" {
		md.Year = year
	}

	return md
}

// documentType classifies the file: an organization directory anywhere on
// the path wins, then test indicators in the file name, then the default.
func documentType(filePath, lowerName string) schema.DocumentType {
	for _, dir := range ancestorDirs(filePath) {
		for _, org := range Organizations {
			if strings.EqualFold(dir, org) {
				return schema.PlacementPaper
			}
		}
	}
	for _, token := range TestIndicators {
		if strings.Contains(lowerName, token) {
			return schema.MockTest
		}
	}
	return schema.LearningMaterial
}

// company scans the immediate parent directory and then the file name
// against the ordered organization list; the first hit is stored
// title-cased.
func company(filePath, lowerName string) string {
	parent := strings.ToLower(filepath.Base(filepath.Dir(filePath)))
	for _, org := range Organizations {
		if strings.Contains(parent, org) || strings.Contains(lowerName, org) {
			return titleCase(org)
		}
	}
	return ""
}

// subject matches the whitespace-stripped file name against the ordered
// keyword table.
func subject(lowerName string) string {
	stripped := strings.ReplaceAll(lowerName, " ", "")
	for _, rule := range SubjectRules {
		if strings.Contains(stripped, rule.Keyword) {
			return rule.Label
		}
	}
	return ""
}

func difficulty(lowerName string) schema.Difficulty {
	for _, token := range EasyIndicators {
		if strings.Contains(lowerName, token) {
			return schema.Easy
		}
	}
	for _, token := range HardIndicators {
		if strings.Contains(lowerName, token) {
			return schema.Hard
		}
	}
	return schema.Medium
}

// ancestorDirs returns every directory name on the path, nearest first,
// excluding the file name itself.
func ancestorDirs(filePath string) []string {
	var dirs []string
	dir := filepath.Dir(filePath)
	for {
		base := filepath.Base(dir)
		if base == "." || base == string(filepath.Separator) || base == dir {
			break
		}
		dirs = append(dirs, base)
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return dirs
}

// titleCase capitalizes the first letter of an ASCII token. The organization
// tokens are plain lowercase ASCII, so this is all the casing they need.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
