// Package extract turns raw research text into structured owner and
// personality data. The primary path prompts Claude for JSON; when no model
// answers, regex-based fallbacks recover what they can so enrichment still
// produces a contact without an API key.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/sourcing-cli/internal/completion"
	"github.com/sells-group/sourcing-cli/internal/model"
)

// Owner extracts the principal decision-maker from research text. In
// fallback mode the prompt targets the most senior person available rather
// than insisting on an owner. Empty research returns the zero value without
// touching the model.
func Owner(
	ctx context.Context,
	completer completion.Completer,
	companyName, location, website string,
	research map[string]string,
	fallbackMode bool,
) model.OwnerInfo {
	researchText := formatSections(research)
	if researchText == "" {
		return model.OwnerInfo{}
	}

	prompt := ownerPrompt(companyName, location, website, researchText, fallbackMode)
	raw := completer.Complete(ctx, prompt, 500)

	if obj := firstJSONObject(raw); obj != "" {
		var info model.OwnerInfo
		if err := json.Unmarshal([]byte(obj), &info); err == nil {
			return info
		}
		zap.L().Warn("owner extraction returned unparseable JSON",
			zap.String("company", companyName))
	}

	zap.L().Info("falling back to rule-based owner extraction",
		zap.String("company", companyName))
	return ruleBasedOwner(research)
}

func ownerPrompt(companyName, location, website, researchText string, fallbackMode bool) string {
	var target string
	if fallbackMode {
		target = "the MOST SENIOR decision-maker available. Prioritize in this order: " +
			"CEO/Owner/President/Founder > COO/CFO/Managing Director > " +
			"VP/Senior Director > Director > Senior Manager. " +
			"Set the title field to their ACTUAL title, not 'Owner' if they're a VP."
	} else {
		target = "the PRINCIPAL OWNER, CEO, PRESIDENT, or FOUNDER of this specific company. " +
			"Only include information you are confident about from the research."
	}

	if len(researchText) > 8000 {
		researchText = researchText[:8000]
	}

	return fmt.Sprintf(`You are a research analyst. Extract contact information for %s

COMPANY: %s
LOCATION: %s
WEBSITE: %s

RESEARCH DATA:
%s

Do not guess or fabricate. Return ONLY a JSON object:
{
  "name": "Full Name",
  "title": "Their actual title (CEO, Owner, VP Operations, etc.)",
  "email": "their@email.com",
  "phone": "phone number",
  "linkedin_url": "https://linkedin.com/in/...",
  "facebook_url": "https://facebook.com/...",
  "confidence": "high|medium|low",
  "other_contacts": [
    {"name": "Other Person Name", "title": "Their Title", "linkedin_url": "url if found"}
  ]
}

Use null for unknown fields. The other_contacts array should list any OTHER senior people
you noticed in the research (up to 3). Return ONLY the JSON. No other text.`,
		target, companyName, location, website, researchText)
}

// formatSections renders research keyed by search type into labeled blocks.
// Keys are sorted so the same research always produces the same prompt.
func formatSections(research map[string]string) string {
	keys := make([]string, 0, len(research))
	for k, v := range research {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%s]\n%s", strings.ToUpper(k), research[k])
	}
	return b.String()
}

var (
	emailRe    = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	linkedinRe = regexp.MustCompile(`https?://(?:www\.)?linkedin\.com/in/[a-zA-Z0-9\-_%]+`)
	facebookRe = regexp.MustCompile(`https?://(?:www\.)?facebook\.com/[a-zA-Z0-9.\-_]+`)
	phoneRe    = regexp.MustCompile(`(?:\+?1[\-.\s]?)?\(?\d{3}\)?[\-.\s]?\d{3}[\-.\s]?\d{4}`)

	titleKeywords = `(?:CEO|Chief Executive Officer|Owner|President|Founder|Managing Partner|Principal|Director|Vice President|VP|COO|CFO|Managing Director)`
	personName    = `([A-Z][a-z]+ (?:[A-Z]\.? )?[A-Z][a-z]+)`

	nameBeforeTitleRe = regexp.MustCompile(personName + `[\s,\-]+(?:is |as )?` + titleKeywords)
	nameAfterTitleRe  = regexp.MustCompile(titleKeywords + `[\s:,\-]+` + personName)
	titleRe           = regexp.MustCompile(titleKeywords)
)

// genericEmailPrefixes are role addresses, not a person's inbox.
var genericEmailPrefixes = []string{
	"info@", "contact@", "support@", "hello@", "admin@", "sales@",
	"office@", "mail@", "noreply@", "webmaster@", "help@",
}

// ruleBasedOwner recovers contact fields from research text with regexes.
// Less accurate than the model but needs no API key.
func ruleBasedOwner(research map[string]string) model.OwnerInfo {
	keys := make([]string, 0, len(research))
	for k := range research {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, research[k])
	}
	combined := strings.Join(parts, " ")
	if combined == "" {
		return model.OwnerInfo{}
	}

	var info model.OwnerInfo

	for _, e := range emailRe.FindAllString(combined, -1) {
		if !isGenericEmail(e) {
			info.Email = e
			break
		}
	}
	info.LinkedInURL = linkedinRe.FindString(combined)
	info.FacebookURL = facebookRe.FindString(combined)
	info.Phone = phoneRe.FindString(combined)

	if m := nameBeforeTitleRe.FindStringSubmatch(combined); m != nil {
		info.Name = strings.TrimSpace(m[1])
		info.Title = titleRe.FindString(combined)
	} else if m := nameAfterTitleRe.FindStringSubmatch(combined); m != nil {
		info.Name = strings.TrimSpace(m[1])
		info.Title = titleRe.FindString(combined)
	}

	return info
}

func isGenericEmail(email string) bool {
	lower := strings.ToLower(email)
	for _, g := range genericEmailPrefixes {
		if strings.HasPrefix(lower, g) {
			return true
		}
	}
	return false
}
