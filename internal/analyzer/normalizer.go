package analyzer

import "strings"

// variantToCanonical is the inverted synonym table, built once at init
var variantToCanonical = func() map[string]string {
	m := make(map[string]string, len(skillSynonyms)*3)
	for canonical, variants := range skillSynonyms {
		m[canonical] = canonical
		for _, v := range variants {
			m[v] = canonical
		}
	}
	return m
}()

// NormalizeSkill lower-cases, trims and folds a skill name onto its
// canonical form. Unknown skills pass through lower-cased.
func NormalizeSkill(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := variantToCanonical[key]; ok {
		return canonical
	}
	return key
}

// ExpandSkill returns the canonical form plus all known variants, for
// matching against free text
func ExpandSkill(name string) []string {
	canonical := NormalizeSkill(name)
	variants, ok := skillSynonyms[canonical]
	if !ok {
		return []string{canonical}
	}
	out := make([]string, 0, len(variants)+1)
	out = append(out, canonical)
	out = append(out, variants...)
	return out
}

// IsCriticalSkill reports whether a skill carries domain-critical weight
func IsCriticalSkill(name string) bool {
	return criticalSkills[NormalizeSkill(name)]
}
