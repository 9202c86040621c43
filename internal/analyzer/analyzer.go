package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"jobscout/internal/scraper/boards"
	"jobscout/pkg/models"
)

const maxTopSkills = 15

// Analyze derives search queries, board priorities, ranked skills,
// target titles and locations from a candidate profile. It is a pure
// function of the profile; nothing is cached between runs.
func Analyze(profile *models.CandidateProfile) *models.ProfileAnalysis {
	topSkills := rankSkills(profile.Skills.Technical)
	specialized := hasSpecializedSkills(topSkills)
	targetTitles := deriveTargetTitles(profile, specialized)
	locations := deriveLocations(profile)
	region := primaryRegion(profile)

	analysis := &models.ProfileAnalysis{
		TopSkills:     topSkills,
		TargetTitles:  targetTitles,
		Locations:     locations,
		PrimaryRegion: region,
	}

	if len(profile.SearchKeywords) > 0 {
		analysis.Queries = keywordQueries(profile.SearchKeywords, locations)
	} else {
		analysis.Queries = fallbackQueries(targetTitles, topSkills, locations, specialized)
	}

	// Stable sort keeps insertion order within a priority band
	sort.SliceStable(analysis.Queries, func(i, j int) bool {
		return analysis.Queries[i].Priority > analysis.Queries[j].Priority
	})

	analysis.BoardPriorities = prioritizeBoards(region, specialized)

	return analysis
}

// rankSkills normalizes, deduplicates and ranks technical skills by
// proficiency weight, ties broken by years descending. Top 15 retained.
func rankSkills(technical []models.TechnicalSkill) []models.RankedSkill {
	byName := make(map[string]models.RankedSkill)
	order := make([]string, 0, len(technical))

	for _, s := range technical {
		name := NormalizeSkill(s.Name)
		if name == "" {
			continue
		}
		weight, ok := proficiencyWeights[string(s.Proficiency)]
		if !ok {
			weight = defaultProficiencyWeight
		}
		ranked := models.RankedSkill{
			Name:     name,
			Weight:   weight,
			Years:    s.YearsOfExperience,
			Critical: IsCriticalSkill(name),
		}
		existing, seen := byName[name]
		if !seen {
			order = append(order, name)
			byName[name] = ranked
			continue
		}
		// Keep the stronger claim when a skill appears twice
		if ranked.Weight > existing.Weight || (ranked.Weight == existing.Weight && ranked.Years > existing.Years) {
			byName[name] = ranked
		}
	}

	skills := make([]models.RankedSkill, 0, len(order))
	for _, name := range order {
		skills = append(skills, byName[name])
	}

	sort.SliceStable(skills, func(i, j int) bool {
		if skills[i].Weight != skills[j].Weight {
			return skills[i].Weight > skills[j].Weight
		}
		return skills[i].Years > skills[j].Years
	})

	if len(skills) > maxTopSkills {
		skills = skills[:maxTopSkills]
	}
	return skills
}

func hasSpecializedSkills(skills []models.RankedSkill) bool {
	for _, s := range skills {
		if s.Critical {
			return true
		}
	}
	return false
}

// deriveTargetTitles guarantees a non-empty title list: explicit
// preferences, then recent work history, then a fixed fallback.
func deriveTargetTitles(profile *models.CandidateProfile, specialized bool) []string {
	if len(profile.Preferences.Titles) > 0 {
		return dedupeStrings(profile.Preferences.Titles)
	}

	var titles []string
	for i, exp := range profile.WorkExperience {
		if i >= 3 {
			break
		}
		if strings.TrimSpace(exp.Title) != "" {
			titles = append(titles, exp.Title)
		}
	}
	if len(titles) > 0 {
		return dedupeStrings(titles)
	}

	if specialized {
		return append([]string(nil), mlFallbackTitles...)
	}
	return append([]string(nil), generalFallbackTitles...)
}

// deriveLocations guarantees a non-empty location list
func deriveLocations(profile *models.CandidateProfile) []string {
	var locations []string
	locations = append(locations, profile.Preferences.Locations...)

	loc := profile.PersonalInfo.Location
	if loc.City != "" && loc.Country != "" {
		locations = append(locations, fmt.Sprintf("%s, %s", loc.City, loc.Country))
	} else if loc.Country != "" {
		locations = append(locations, loc.Country)
	}

	locations = dedupeStrings(locations)
	if len(locations) == 0 {
		locations = append(locations, defaultLocations...)
	}
	return locations
}

func primaryRegion(profile *models.CandidateProfile) string {
	country := strings.ToLower(strings.TrimSpace(profile.PersonalInfo.Location.Country))
	if region, ok := countryRegions[country]; ok {
		return region
	}
	return "global"
}

// keywordQueries turns pre-generated keywords into queries: every
// keyword location-bound at priority 10, the first few location-free at
// 9 and as remote variants at 8.
func keywordQueries(keywords []string, locations []string) []models.SearchQuery {
	location := ""
	if len(locations) > 0 {
		location = locations[0]
	}

	var queries []models.SearchQuery
	for _, kw := range dedupeStrings(keywords) {
		queries = append(queries, models.SearchQuery{
			Query:    kw,
			Location: location,
			Priority: 10,
			Category: models.CategoryKeyword,
		})
	}

	for i, kw := range dedupeStrings(keywords) {
		if i >= 3 {
			break
		}
		queries = append(queries, models.SearchQuery{
			Query:    kw,
			Priority: 9,
			Category: models.CategoryKeyword,
		})
	}

	for i, kw := range dedupeStrings(keywords) {
		if i >= 2 {
			break
		}
		queries = append(queries, models.SearchQuery{
			Query:    kw + " remote",
			Remote:   true,
			Priority: 8,
			Category: models.CategoryRemote,
		})
	}

	return queries
}

// fallbackQueries is the generator used when the profile carries no
// pre-generated keywords
func fallbackQueries(titles []string, skills []models.RankedSkill, locations []string, specialized bool) []models.SearchQuery {
	location := ""
	if len(locations) > 0 {
		location = locations[0]
	}

	var queries []models.SearchQuery

	for _, title := range titles {
		queries = append(queries, models.SearchQuery{
			Query:    title,
			Location: location,
			Priority: 10,
			Category: models.CategoryTitle,
		})
	}

	for i, s := range skills {
		if i >= 3 {
			break
		}
		queries = append(queries, models.SearchQuery{
			Query:    s.Name + " developer",
			Location: location,
			Priority: 8,
			Category: models.CategoryPrimarySkill,
		})
	}

	// Title + strongest framework combination
	if len(titles) > 0 && len(skills) > 0 {
		queries = append(queries, models.SearchQuery{
			Query:    titles[0] + " " + skills[0].Name,
			Location: location,
			Priority: 9,
			Category: models.CategoryCombination,
		})
	}

	if specialized {
		for _, q := range specializedQueries {
			queries = append(queries, models.SearchQuery{
				Query:    q,
				Location: location,
				Priority: 9,
				Category: models.CategorySpecialized,
			})
		}
	}

	for i, title := range titles {
		if i >= 2 {
			break
		}
		queries = append(queries, models.SearchQuery{
			Query:    title + " remote",
			Remote:   true,
			Priority: 7,
			Category: models.CategoryRemote,
		})
	}

	for i, s := range skills {
		if i < 3 || i >= 6 {
			continue
		}
		queries = append(queries, models.SearchQuery{
			Query:    s.Name,
			Location: location,
			Priority: 5,
			Category: models.CategorySecondarySkill,
		})
	}

	return queries
}

// prioritizeBoards ranks supported boards for this run. Region-matched
// boards win; specialization adds on top for specialized profiles.
func prioritizeBoards(region string, specialized bool) []models.BoardPriority {
	var priorities []models.BoardPriority
	for _, b := range boards.All() {
		if !b.Supported() {
			continue
		}

		priority := 5
		reason := "general board"

		if b.Region == region {
			priority += 3
			reason = "matches candidate region"
			if b.Specialized && specialized {
				priority += 2
				reason = "region match, specialized for candidate domain"
			}
		} else if b.Region == "global" {
			if region == "global" {
				priority += 2
				reason = "global board for a global search"
			} else {
				reason = "global board supplementing a regional search"
			}
			if b.Specialized && specialized {
				priority++
				reason += ", specialized"
			}
		}

		priorities = append(priorities, models.BoardPriority{
			Board:    b.ID,
			Priority: priority,
			Reason:   reason,
		})
	}

	sort.SliceStable(priorities, func(i, j int) bool {
		return priorities[i].Priority > priorities[j].Priority
	})
	return priorities
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
