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

// ExtractPersonality analyzes scraped social and web content about a person.
// Empty input returns the zero value without touching the model.
func ExtractPersonality(
	ctx context.Context,
	completer completion.Completer,
	personName, companyName string,
	social map[string]string,
) model.Personality {
	socialText := formatSections(social)
	if socialText == "" {
		return model.Personality{}
	}

	prompt := personalityPrompt(personName, companyName, socialText)
	raw := completer.Complete(ctx, prompt, 600)

	if obj := firstJSONObject(raw); obj != "" {
		var p model.Personality
		if err := json.Unmarshal([]byte(obj), &p); err == nil {
			return p
		}
		zap.L().Warn("personality extraction returned unparseable JSON",
			zap.String("person", personName))
	}

	return ruleBasedPersonality(social)
}

func personalityPrompt(personName, companyName, socialText string) string {
	if len(socialText) > 6000 {
		socialText = socialText[:6000]
	}

	return fmt.Sprintf(`You are a personality analyst helping a private equity partner craft personalized outreach.
Analyze the following social media and web content about %s at %s.

SOCIAL MEDIA & WEB CONTENT:
%s

Extract a personality and context profile that will help write a compelling, personalized cold
outreach email. Focus on actionable insights, not generic observations.

Only include information you can OBSERVE in the provided content. Do not guess or infer details
that aren't supported by the text.

Return ONLY a JSON object:
{
  "professional_background": "2-3 sentences about their career path, education, key achievements",
  "interests_and_passions": ["list", "of", "specific", "interests", "hobbies", "causes they care about"],
  "communication_style": "formal OR conversational OR technical OR inspirational, based on how they write/speak",
  "values_and_priorities": ["list", "of", "values", "they seem to care about"],
  "personal_details": "Any notable tidbits: alma mater, hometown, military service, awards, board memberships, family mentions",
  "ice_breakers": ["2-3 specific conversation starters based on their content"],
  "outreach_angle": "1-2 sentences suggesting the best angle for cold outreach based on what matters to this person"
}

Return ONLY the JSON. No other text.`, personName, companyName, socialText)
}

var (
	educationRe = regexp.MustCompile(`(?i)(?:University of \w+(?:\s\w+)?|\w+ University|\w+ College|MBA|Bachelor|Master|PhD|Doctorate|Harvard|Stanford|MIT|Yale|Princeton|Wharton|Columbia|Berkeley|UCLA|NYU)`)
	careerRe    = regexp.MustCompile(`(?i)(?:years? (?:of )?experience|founded|launched|grew|scaled|built|managed|led|transformed|acquired|invested|partnership)`)
	interestRe  = regexp.MustCompile(`(?i)(?:passionate about|interested in|loves? |enjoys? |advocate for|committed to) ([^.]{5,60})`)
)

// ruleBasedPersonality pulls what it can from social text without a model.
func ruleBasedPersonality(social map[string]string) model.Personality {
	keys := make([]string, 0, len(social))
	for k := range social {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, social[k])
	}
	combined := strings.Join(parts, " ")
	if len(combined) < 50 {
		return model.Personality{}
	}

	var p model.Personality

	if education := dedupeStrings(educationRe.FindAllString(combined, 3)); len(education) > 0 {
		p.PersonalDetails = "Education: " + strings.Join(education, ", ")
	}

	if keywords := dedupeStrings(lowerAll(careerRe.FindAllString(combined, 5))); len(keywords) > 0 {
		p.ProfessionalBackground = "Keywords found: " + strings.Join(keywords, ", ")
	}

	for _, m := range interestRe.FindAllStringSubmatch(combined, 3) {
		p.Interests = append(p.Interests, strings.TrimSpace(m[1]))
	}

	return p
}

func lowerAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}

func dedupeStrings(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	var out []string
	for _, s := range ss {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
