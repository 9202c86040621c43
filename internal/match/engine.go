package match

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"jobscout/internal/analyzer"
	"jobscout/internal/config"
	"jobscout/pkg/models"
)

// Options parametrizes scoring. The defaults are the reference
// heuristics; none of the weights are tuned optima.
type Options struct {
	Weights            config.MatchWeights
	CriticalMultiplier float64
}

// DefaultOptions returns the reference weights
func DefaultOptions() Options {
	return Options{
		Weights: config.MatchWeights{
			Skills:         0.30,
			Location:       0.18,
			Salary:         0.10,
			Seniority:      0.12,
			EmploymentType: 0.06,
			CompanySize:    0.05,
			Remote:         0.04,
			Education:      0.08,
			Experience:     0.07,
		},
		CriticalMultiplier: 2.0,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Weights == (config.MatchWeights{}) {
		o.Weights = d.Weights
	}
	if o.CriticalMultiplier <= 0 {
		o.CriticalMultiplier = d.CriticalMultiplier
	}
	return o
}

// ScoreJob computes the weighted multi-factor match between a profile
// and a listing. Pure function: no state survives between calls.
func ScoreJob(profile *models.CandidateProfile, listing models.JobListing, opts Options) models.JobMatchResult {
	opts = opts.withDefaults()

	skills, matched, missing := scoreSkills(profile, listing, opts.CriticalMultiplier)

	breakdown := models.MatchScoreBreakdown{
		Skills:         skills,
		Location:       scoreLocation(profile, listing),
		Salary:         scoreSalary(profile, listing),
		Seniority:      scoreSeniority(profile, listing),
		EmploymentType: scoreEmploymentType(profile, listing),
		CompanySize:    scoreCompanySize(profile, listing),
		Remote:         scoreRemote(profile, listing),
		Education:      scoreEducation(profile, listing),
		Experience:     scoreExperience(profile, listing),
	}

	w := opts.Weights
	overall := breakdown.Skills*w.Skills +
		breakdown.Location*w.Location +
		breakdown.Salary*w.Salary +
		breakdown.Seniority*w.Seniority +
		breakdown.EmploymentType*w.EmploymentType +
		breakdown.CompanySize*w.CompanySize +
		breakdown.Remote*w.Remote +
		breakdown.Education*w.Education +
		breakdown.Experience*w.Experience

	overall = clamp(math.Round(overall*10) / 10)

	result := models.JobMatchResult{
		JobID:         listing.ID,
		Score:         overall,
		Breakdown:     breakdown,
		MatchedSkills: matched,
		MissingSkills: missing,
	}
	result.Highlights, result.Concerns = deriveNotes(breakdown, listing)
	return result
}

// scoreSkills extracts the listing's skill demands from its tech stack
// and text, then matches them against the synonym-expanded profile
// skill set. Critical skills weigh double.
func scoreSkills(profile *models.CandidateProfile, listing models.JobListing, criticalMultiplier float64) (float64, []string, []string) {
	listingSkills := extractListingSkills(listing, profile)
	if len(listingSkills) == 0 {
		// Nothing extractable: neutral default
		return 70, nil, nil
	}

	profileSkills := make(map[string]bool)
	for _, s := range profile.Skills.Technical {
		for _, variant := range analyzer.ExpandSkill(s.Name) {
			profileSkills[variant] = true
		}
	}

	var matchedWeight, totalWeight float64
	var matched, missing []string
	for _, skill := range listingSkills {
		weight := 1.0
		if analyzer.IsCriticalSkill(skill) {
			weight = criticalMultiplier
		}
		totalWeight += weight
		if profileSkills[analyzer.NormalizeSkill(skill)] {
			matchedWeight += weight
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}

	return clamp(matchedWeight / totalWeight * 100), matched, missing
}

// extractListingSkills collects the listing's tech stack plus any
// profile skill (or variant) mentioned in the requirements/description
// text
func extractListingSkills(listing models.JobListing, profile *models.CandidateProfile) []string {
	seen := make(map[string]bool)
	var skills []string

	add := func(raw string) {
		normalized := analyzer.NormalizeSkill(raw)
		if normalized == "" || seen[normalized] {
			return
		}
		seen[normalized] = true
		skills = append(skills, normalized)
	}

	for _, s := range listing.TechStack {
		add(s)
	}

	text := strings.ToLower(listing.Description + " " + strings.Join(listing.Requirements, " "))
	for _, s := range profile.Skills.Technical {
		for _, variant := range analyzer.ExpandSkill(s.Name) {
			if containsWord(text, variant) {
				add(variant)
				break
			}
		}
	}

	sort.Strings(skills)
	return skills
}

// scoreLocation walks the preference ladder from best match down
func scoreLocation(profile *models.CandidateProfile, listing models.JobListing) float64 {
	location := strings.ToLower(strings.TrimSpace(listing.Location))
	remote := listing.RemotePolicy == models.RemoteFull || strings.Contains(location, "remote")

	if location == "" {
		if remote {
			return 85
		}
		return 50 // unknown
	}

	for _, preferred := range profile.Preferences.Locations {
		p := strings.ToLower(strings.TrimSpace(preferred))
		if p != "" && (strings.Contains(location, p) || strings.Contains(p, location)) {
			return 100
		}
	}

	for _, city := range homeRegionCities {
		if strings.Contains(location, city) {
			return 95
		}
	}

	if city := strings.ToLower(profile.PersonalInfo.Location.City); city != "" && strings.Contains(location, city) {
		return 90
	}

	if remote {
		return 85
	}

	for _, region := range profile.Preferences.AcceptableRegions {
		r := strings.ToLower(strings.TrimSpace(region))
		if r != "" && strings.Contains(location, r) {
			return 70
		}
	}

	return 40
}

// scoreSalary compares the annualized listing salary with the
// candidate's expectation band
func scoreSalary(profile *models.CandidateProfile, listing models.JobListing) float64 {
	annual := float64(listing.Salary.Annualized())
	if annual == 0 {
		return 70 // unknown salary
	}

	expectation := profile.Preferences.Salary
	minWant := float64(expectation.Minimum)
	target := float64(expectation.Target)
	if minWant == 0 && target == 0 {
		return 80 // no stated preference
	}
	if target == 0 {
		target = minWant
	}
	if minWant == 0 {
		minWant = target
	}

	switch {
	case annual >= target:
		return 100
	case annual >= minWant:
		if target == minWant {
			return 100
		}
		// 80..100 linearly between minimum and target
		return 80 + 20*(annual-minWant)/(target-minWant)
	default:
		// linearly decreasing below minimum, floored
		score := 80 * annual / minWant
		return math.Max(20, score)
	}
}

// InferSeniority reads the listing's level from title keywords, then a
// years-of-experience figure in the description, defaulting to mid
func InferSeniority(listing models.JobListing) models.SeniorityLevel {
	title := strings.ToLower(listing.Title)
	for _, entry := range seniorityTitleKeywords {
		for _, kw := range entry.Keywords {
			if strings.Contains(title, kw) {
				return entry.Level
			}
		}
	}

	if years, ok := extractRequiredYears(listing.Description + " " + strings.Join(listing.Requirements, " ")); ok {
		return yearsToLevel(years)
	}
	return models.SeniorityMid
}

func scoreSeniority(profile *models.CandidateProfile, listing models.JobListing) float64 {
	level := InferSeniority(listing)
	levelPos, ok := seniorityOrder[level]
	if !ok {
		levelPos = seniorityOrder[models.SeniorityMid]
	}

	acceptable := profile.Advanced.SeniorityLevels
	if len(acceptable) == 0 {
		// No declared preference: score against the level implied by
		// the candidate's own experience
		acceptable = []models.SeniorityLevel{yearsToLevel(totalExperienceYears(profile))}
	}

	best := seniorityDecay[len(seniorityDecay)-1]
	for _, a := range acceptable {
		pos, ok := seniorityOrder[a]
		if !ok {
			continue
		}
		distance := levelPos - pos
		if distance < 0 {
			distance = -distance
		}
		if distance >= len(seniorityDecay) {
			distance = len(seniorityDecay) - 1
		}
		if s := seniorityDecay[distance]; s > best {
			best = s
		}
	}
	return best
}

func scoreEmploymentType(profile *models.CandidateProfile, listing models.JobListing) float64 {
	if listing.EmploymentType == "" {
		return 70
	}

	prefs := profile.Preferences.EmploymentTypes
	if len(prefs) == 0 {
		if score, ok := employmentDefaultScores[listing.EmploymentType]; ok {
			return score
		}
		return 70
	}

	for _, p := range prefs {
		if p == listing.EmploymentType {
			return 100
		}
	}
	if listing.EmploymentType == models.EmploymentFullTime {
		return 60 // full-time is broadly tolerable even when not preferred
	}
	return 40
}

// InferCompanySize guesses the employer's size bucket from listing text
func InferCompanySize(listing models.JobListing) models.CompanySize {
	text := strings.ToLower(listing.Description)
	for _, entry := range companySizeKeywords {
		for _, kw := range entry.Keywords {
			if strings.Contains(text, kw) {
				return entry.Size
			}
		}
	}
	return ""
}

func scoreCompanySize(profile *models.CandidateProfile, listing models.JobListing) float64 {
	size := InferCompanySize(listing)
	if size == "" {
		return 70
	}

	prefs := profile.Advanced.CompanySizes
	if len(prefs) == 0 {
		if score, ok := companySizeDefaultScores[size]; ok {
			return score
		}
		return 70
	}

	sizePos := companySizeOrder[size]
	best := 50.0
	for _, p := range prefs {
		distance := sizePos - companySizeOrder[p]
		if distance < 0 {
			distance = -distance
		}
		switch distance {
		case 0:
			return 100
		case 1:
			if best < 70 {
				best = 70
			}
		}
	}
	return best
}

func scoreRemote(profile *models.CandidateProfile, listing models.JobListing) float64 {
	policy := listing.RemotePolicy
	if policy == "" {
		if strings.Contains(strings.ToLower(listing.Location), "remote") {
			policy = models.RemoteFull
		} else {
			return 70
		}
	}

	pref := profile.Preferences.RemotePolicy
	if pref == "" {
		if score, ok := remoteDefaultScores[policy]; ok {
			return score
		}
		return 70
	}

	if table, ok := remotePreferenceScores[pref]; ok {
		if score, ok := table[policy]; ok {
			return score
		}
	}
	return 70
}

func scoreEducation(profile *models.CandidateProfile, listing models.JobListing) float64 {
	text := strings.ToLower(listing.Description + " " + strings.Join(listing.Requirements, " "))

	var required models.DegreeType
	for _, entry := range degreeKeywords {
		for _, kw := range entry.Keywords {
			if strings.Contains(text, kw) {
				required = entry.Degree
				break
			}
		}
		if required != "" {
			break
		}
	}

	if required == "" {
		return 85 // no stated requirement
	}

	candidateRank := models.DegreeRank(profile.HighestDegree())
	requiredRank := models.DegreeRank(required)

	var score float64
	switch {
	case candidateRank >= requiredRank:
		score = 100
	case requiredRank-candidateRank == 1:
		score = 60
	default:
		score = 30
	}

	// Small bonus for highly-regarded institutions on competitive roles
	if score < 100 && competitiveListingPattern.MatchString(text) {
		for _, edu := range profile.Education {
			inst := strings.ToLower(edu.Institution)
			for _, top := range topInstitutions {
				if strings.Contains(inst, top) {
					return clamp(score + 10)
				}
			}
		}
	}
	return score
}

func scoreExperience(profile *models.CandidateProfile, listing models.JobListing) float64 {
	text := listing.Description + " " + strings.Join(listing.Requirements, " ")

	required, ok := extractRequiredYears(text)
	if !ok {
		// Fall back to the level implied by the title
		required = experienceByLevel[InferSeniority(listing)]
	}

	candidate := totalExperienceYears(profile)
	if candidate >= required {
		return 100
	}

	gap := required - candidate
	switch {
	case gap <= 1:
		return 85
	case gap <= 2:
		return 65
	default:
		return math.Max(25, 65-10*(gap-2))
	}
}

// extractRequiredYears pulls a required-years figure out of listing
// text, preferring the more specific patterns
func extractRequiredYears(text string) (float64, bool) {
	if m := rangedYearsPattern.FindStringSubmatch(text); m != nil {
		low, err := strconv.Atoi(m[1])
		if err == nil {
			return float64(low), true
		}
	}
	if m := minimumYearsPattern.FindStringSubmatch(text); m != nil {
		years, err := strconv.Atoi(m[1])
		if err == nil {
			return float64(years), true
		}
	}
	if m := plainYearsPattern.FindStringSubmatch(text); m != nil {
		years, err := strconv.Atoi(m[1])
		if err == nil && years < 40 { // figures beyond a career span are noise
			return float64(years), true
		}
	}
	return 0, false
}

// totalExperienceYears sums work history durations; internships count
// half, ongoing roles run to now
func totalExperienceYears(profile *models.CandidateProfile) float64 {
	var total float64
	now := time.Now()
	for _, exp := range profile.WorkExperience {
		start, err := parseProfileDate(exp.StartDate)
		if err != nil {
			continue
		}
		end := now
		if !exp.IsCurrent && exp.EndDate != "" {
			if parsed, err := parseProfileDate(exp.EndDate); err == nil {
				end = parsed
			}
		}
		if end.Before(start) {
			continue
		}
		years := end.Sub(start).Hours() / (24 * 365.25)
		if exp.EmploymentType == models.EmploymentInternship {
			years *= 0.5
		}
		total += years
	}
	return total
}

func parseProfileDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// deriveNotes produces the short human-readable highlight/concern
// strings from threshold checks on the breakdown
func deriveNotes(b models.MatchScoreBreakdown, listing models.JobListing) ([]string, []string) {
	var highlights, concerns []string

	if b.Skills >= 80 {
		highlights = append(highlights, "Strong skills match")
	} else if b.Skills < 40 {
		concerns = append(concerns, "Significant skill gaps")
	}

	remote := listing.RemotePolicy == models.RemoteFull
	if b.Location >= 90 {
		highlights = append(highlights, "Location is a great fit")
	} else if b.Location < 50 && !remote {
		concerns = append(concerns, "Location not ideal")
	}

	if b.Salary >= 90 {
		highlights = append(highlights, "Salary meets expectations")
	} else if b.Salary < 50 {
		concerns = append(concerns, "Salary below expectations")
	}

	if b.Seniority < 50 {
		concerns = append(concerns, "Seniority level mismatch")
	}
	if b.Experience < 50 {
		concerns = append(concerns, "Experience requirement may be out of reach")
	}

	return highlights, concerns
}

// containsWord reports a whole-word occurrence of needle in haystack
// (both lower-cased by the caller)
func containsWord(haystack, needle string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], needle)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(needle)
		beforeOK := start == 0 || !isWordChar(haystack[start-1])
		afterOK := end == len(haystack) || !isWordChar(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
