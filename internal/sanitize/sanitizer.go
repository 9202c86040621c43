package sanitize

import (
	"net"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"jobscout/internal/logging"
	"jobscout/pkg/models"
)

// RedactionMarker replaces any span that matches an injection pattern.
// The marker itself never re-matches a pattern, keeping sanitization
// idempotent.
const RedactionMarker = "[removed]"

// Limits caps field sizes and list lengths. Zero values mean the
// reference defaults.
type Limits struct {
	MaxTitleLen       int
	MaxCompanyLen     int
	MaxLocationLen    int
	MaxDescriptionLen int
	MaxItemLen        int
	MaxURLLen         int
	MaxRequirements   int
	MaxTechStack      int
	MaxListings       int
	SalaryCeiling     int // annualized
}

// DefaultLimits returns the reference caps
func DefaultLimits() Limits {
	return Limits{
		MaxTitleLen:       200,
		MaxCompanyLen:     150,
		MaxLocationLen:    150,
		MaxDescriptionLen: 5000,
		MaxItemLen:        500,
		MaxURLLen:         2048,
		MaxRequirements:   30,
		MaxTechStack:      50,
		MaxListings:       100,
		SalaryCeiling:     5_000_000,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxTitleLen <= 0 {
		l.MaxTitleLen = d.MaxTitleLen
	}
	if l.MaxCompanyLen <= 0 {
		l.MaxCompanyLen = d.MaxCompanyLen
	}
	if l.MaxLocationLen <= 0 {
		l.MaxLocationLen = d.MaxLocationLen
	}
	if l.MaxDescriptionLen <= 0 {
		l.MaxDescriptionLen = d.MaxDescriptionLen
	}
	if l.MaxItemLen <= 0 {
		l.MaxItemLen = d.MaxItemLen
	}
	if l.MaxURLLen <= 0 {
		l.MaxURLLen = d.MaxURLLen
	}
	if l.MaxRequirements <= 0 {
		l.MaxRequirements = d.MaxRequirements
	}
	if l.MaxTechStack <= 0 {
		l.MaxTechStack = d.MaxTechStack
	}
	if l.MaxListings <= 0 {
		l.MaxListings = d.MaxListings
	}
	if l.SalaryCeiling <= 0 {
		l.SalaryCeiling = d.SalaryCeiling
	}
	return l
}

// Injection pattern families. Matched spans are replaced with the
// redaction marker, not silently deleted, so downstream consumers can
// see that content was removed.
var injectionPatterns = []*regexp.Regexp{
	// instruction override
	regexp.MustCompile(`(?i)(ignore|disregard|forget)\s+(all\s+|any\s+)?(previous|prior|above|earlier)\s+(instructions?|prompts?|rules?|context)`),
	// role switch
	regexp.MustCompile(`(?i)(you\s+are\s+now\s+|act\s+as\s+(a|an)\s+|pretend\s+(to\s+be|you\s+are)\s+)[a-z]\w*`),
	regexp.MustCompile(`(?i)(system\s+prompt|assistant\s*:|\bas\s+an\s+ai\b)`),
	// code execution
	regexp.MustCompile(`(?i)(execute|run)\s+(the\s+following|this)\s+(code|command|script)`),
	regexp.MustCompile(`(?i)(<script[^>]*>|</script>|\beval\s*\(|\bexec\s*\()`),
	// credential exfiltration
	regexp.MustCompile(`(?i)(send|share|reveal|post|forward)\s+(your\s+|the\s+|all\s+)?(password|api[\s_-]?key|secret|token|credential)s?`),
	// delimiter injection
	regexp.MustCompile(`\[INST\]|\[/INST\]|<\|im_start\|>|<\|im_end\|>|<\|endoftext\|>`),
}

var (
	controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
	multiSpace   = regexp.MustCompile(`\s+`)
)

// Sanitizer cleans and validates scraped listings before they enter
// the pipeline
type Sanitizer struct {
	limits Limits
	logger logging.Logger
}

// New builds a sanitizer with the given limits
func New(limits Limits) *Sanitizer {
	return &Sanitizer{
		limits: limits.withDefaults(),
		logger: logging.GetGlobalLogger(),
	}
}

// SanitizeListings cleans every listing and drops the malformed ones.
// Rejections are logged, never raised. The accepted set is capped to
// bound downstream cost.
func (s *Sanitizer) SanitizeListings(listings []models.JobListing) []models.JobListing {
	accepted := make([]models.JobListing, 0, len(listings))
	for _, listing := range listings {
		if len(accepted) >= s.limits.MaxListings {
			s.logger.Warn("listing cap reached, dropping remainder", map[string]interface{}{
				"cap":     s.limits.MaxListings,
				"dropped": len(listings) - len(accepted),
			})
			break
		}
		clean, reason := s.SanitizeListing(listing)
		if reason != "" {
			s.logger.Debug("listing rejected by sanitizer", map[string]interface{}{
				"title":  listing.Title,
				"source": listing.SourceSite,
				"reason": reason,
			})
			continue
		}
		accepted = append(accepted, clean)
	}
	return accepted
}

// SanitizeListing cleans one listing. A non-empty reason means the
// record was rejected.
func (s *Sanitizer) SanitizeListing(listing models.JobListing) (models.JobListing, string) {
	listing.Title = s.CleanText(listing.Title, s.limits.MaxTitleLen)
	listing.Company = s.CleanText(listing.Company, s.limits.MaxCompanyLen)
	listing.Location = s.CleanText(listing.Location, s.limits.MaxLocationLen)
	listing.Description = s.CleanText(listing.Description, s.limits.MaxDescriptionLen)

	if !plausibleField(listing.Title) {
		return listing, "implausible title"
	}
	if !plausibleField(listing.Company) {
		return listing, "implausible company"
	}

	listing.Requirements = s.cleanList(listing.Requirements, s.limits.MaxRequirements)
	listing.TechStack = s.cleanList(listing.TechStack, s.limits.MaxTechStack)

	listing.ApplicationURL = s.cleanURL(listing.ApplicationURL)

	if !s.salarySane(listing.Salary) {
		// Drop to unknown rather than rejecting the whole record
		listing.Salary = models.SalaryRange{}
	}

	return listing, ""
}

// CleanText strips control characters and HTML, collapses whitespace,
// redacts injection patterns and hard-truncates. Idempotent: cleaning
// already-clean text is a no-op.
func (s *Sanitizer) CleanText(text string, maxLen int) string {
	text = controlChars.ReplaceAllString(text, "")
	text = stripHTML(text)
	for _, pattern := range injectionPatterns {
		text = pattern.ReplaceAllString(text, RedactionMarker)
	}
	text = multiSpace.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	if maxLen > 0 && len(text) > maxLen {
		// Back up to a rune boundary so truncation never splits a
		// multi-byte character
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = strings.TrimSpace(text[:cut])
	}
	return text
}

func (s *Sanitizer) cleanList(items []string, maxItems int) []string {
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		clean := s.CleanText(item, s.limits.MaxItemLen)
		if clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

// cleanURL keeps only http/https URLs pointing at public hosts
func (s *Sanitizer) cleanURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > s.limits.MaxURLLen {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	if !publicHostname(parsed.Hostname()) {
		return ""
	}
	return raw
}

func (s *Sanitizer) salarySane(salary models.SalaryRange) bool {
	if salary.Min < 0 || salary.Max < 0 {
		return false
	}
	return salary.Annualized() <= s.limits.SalaryCeiling
}

// plausibleField requires minimum length, at least one letter and a
// special-character ratio below 30%
func plausibleField(s string) bool {
	if len(s) < 2 {
		return false
	}
	letters, special := 0, 0
	total := 0
	for _, r := range s {
		total++
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r) || unicode.IsSpace(r):
		default:
			special++
		}
	}
	if letters == 0 {
		return false
	}
	return float64(special)/float64(total) < 0.3
}

// stripHTML extracts the text content of any markup in the string.
// Plain text passes through unchanged.
func stripHTML(text string) string {
	if !strings.ContainsAny(text, "<>") {
		return text
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}
	return doc.Text()
}

// publicHostname rejects localhost, private ranges and link-local
// addresses
func publicHostname(host string) bool {
	if host == "" {
		return false
	}
	lower := strings.ToLower(host)
	if lower == "localhost" || strings.HasSuffix(lower, ".local") || strings.HasSuffix(lower, ".internal") {
		return false
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
			return false
		}
	}
	return true
}
