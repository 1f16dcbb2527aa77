package scraper

import (
	"regexp"
	"strings"
)

// Gate kinds reported by GateDetector
const (
	GateAge     = "age_gate"
	GateCaptcha = "captcha"
	GateBotWall = "bot_wall"
	GateHTTP    = "http_error"
)

// GateDetector recognizes pages that hide the menu: age verification
// prompts, bot walls and CAPTCHAs
type GateDetector struct {
	agePatterns     []*regexp.Regexp
	botPatterns     []*regexp.Regexp
	captchaPatterns []*regexp.Regexp
	blockPatterns   []*regexp.Regexp
}

// NewGateDetector creates a new gate detector
func NewGateDetector() *GateDetector {
	return &GateDetector{
		agePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)are you (?:over |at least )?(?:21|18)`),
			regexp.MustCompile(`(?i)age verification`),
			regexp.MustCompile(`(?i)verify (?:your|that you are of legal) age`),
			regexp.MustCompile(`(?i)must be (?:21|18)\+? (?:years|or older)`),
			regexp.MustCompile(`(?i)do you have a (?:valid )?medical (?:card|marijuana card)`),
			regexp.MustCompile(`(?i)i am (?:21|18)\+? or older`),
		},
		botPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)access denied`),
			regexp.MustCompile(`(?i)bot detected`),
			regexp.MustCompile(`(?i)security check`),
			regexp.MustCompile(`(?i)checking your browser`),
			regexp.MustCompile(`(?i)ddos protection`),
			regexp.MustCompile(`(?i)attention required`),
			regexp.MustCompile(`(?i)too many requests`),
		},
		captchaPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)captcha`),
			regexp.MustCompile(`(?i)verify you are human`),
			regexp.MustCompile(`(?i)press (?:and|&) hold`),
			regexp.MustCompile(`(?i)select all images`),
			regexp.MustCompile(`(?i)click the checkbox`),
		},
		blockPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)403 forbidden`),
			regexp.MustCompile(`(?i)429 too many requests`),
			regexp.MustCompile(`(?i)503 service unavailable`),
			regexp.MustCompile(`(?i)site temporarily unavailable`),
		},
	}
}

// Detect reports whether the page is gated. It is meant for pages where no
// listing was found; a full menu mentioning "21+" is not a gate.
func (gd *GateDetector) Detect(pageText, pageTitle string) (bool, string, string) {
	content := strings.ToLower(pageTitle + " " + pageText)

	if r := firstMatch(gd.captchaPatterns, content); r != "" {
		return true, GateCaptcha, "CAPTCHA detected: " + r
	}
	if r := firstMatch(gd.blockPatterns, content); r != "" {
		return true, GateHTTP, "HTTP error: " + r
	}
	if r := firstMatch(gd.agePatterns, content); r != "" {
		return true, GateAge, "age verification: " + r
	}

	score := 0.0
	var reasons []string
	for _, pattern := range gd.botPatterns {
		if pattern.MatchString(content) {
			score += 0.3
			reasons = append(reasons, pattern.String())
		}
	}
	if len(content) < 1000 && score > 0 {
		score += 0.2
		reasons = append(reasons, "very short content with bot indicators")
	}
	if score > 0.3 {
		return true, GateBotWall, strings.Join(reasons, "; ")
	}
	return false, "", ""
}

func firstMatch(patterns []*regexp.Regexp, content string) string {
	for _, p := range patterns {
		if p.MatchString(content) {
			return p.String()
		}
	}
	return ""
}
