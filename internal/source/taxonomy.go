package source

import "strings"

// taxonomyEntry keys a sector/keyword phrase to NPPES taxonomy_description
// search terms. The registry does partial matching, so terms stay broad.
type taxonomyEntry struct {
	key   string
	terms []string
}

// nppesTaxonomyMap maps healthcare phrases to taxonomy terms. Ordered so
// multi-match lookups produce stable term lists.
var nppesTaxonomyMap = []taxonomyEntry{
	// fertility / reproductive
	{"ivf", []string{"reproductive endocrinology", "reproductive medicine", "fertility"}},
	{"fertility", []string{"reproductive endocrinology", "reproductive medicine", "fertility"}},
	{"reproductive", []string{"reproductive endocrinology", "reproductive medicine"}},
	{"infertility", []string{"reproductive endocrinology", "fertility"}},

	// mental health / behavioral
	{"mental health", []string{"psychiatry", "psychology", "counseling", "behavioral health"}},
	{"therapy", []string{"counseling", "psychology", "behavioral health", "marriage and family"}},
	{"psychiatry", []string{"psychiatry"}},
	{"psychology", []string{"psychology"}},
	{"addiction", []string{"addiction medicine", "substance abuse"}},
	{"counseling", []string{"counseling", "behavioral health"}},

	// dental
	{"dental", []string{"dentistry", "orthodontics", "oral surgery"}},
	{"dentistry", []string{"dentistry"}},
	{"orthodontics", []string{"orthodontics"}},

	// eye / vision
	{"optometry", []string{"optometry"}},
	{"ophthalmology", []string{"ophthalmology"}},
	{"vision", []string{"optometry", "ophthalmology"}},

	// primary care / general
	{"primary care", []string{"family medicine", "internal medicine", "general practice"}},
	{"family medicine", []string{"family medicine"}},
	{"internal medicine", []string{"internal medicine"}},
	{"pediatrics", []string{"pediatrics"}},
	{"pediatric", []string{"pediatrics"}},

	// physical
	{"physical therapy", []string{"physical therapy", "physiotherapy"}},
	{"chiropractic", []string{"chiropractic"}},
	{"dermatology", []string{"dermatology"}},

	// specialty
	{"oncology", []string{"oncology", "hematology"}},
	{"cardiology", []string{"cardiology"}},
	{"neurology", []string{"neurology"}},
	{"orthopedic", []string{"orthopedic surgery"}},
	{"radiology", []string{"radiology"}},
	{"pharmacy", []string{"pharmacy"}},
	{"urgent care", []string{"urgent care"}},
	{"home health", []string{"home health", "hospice", "skilled nursing"}},

	// behavioral / autism
	{"aba", []string{"applied behavior analysis"}},
	{"autism", []string{"applied behavior analysis", "developmental pediatrics"}},

	// veterinary
	{"veterinary", []string{"veterinary medicine"}},
	{"vet", []string{"veterinary medicine"}},

	// broad healthcare categories
	{"healthcare", []string{"family medicine", "internal medicine", "general practice", "clinic"}},
	{"health care", []string{"family medicine", "internal medicine", "clinic"}},
	{"ambulatory", []string{"ambulatory surgical", "ambulatory care"}},
	{"ambulatory services", []string{"ambulatory surgical", "ambulatory care"}},
	{"surgical center", []string{"ambulatory surgical"}},
	{"surgery center", []string{"ambulatory surgical"}},
	{"asc", []string{"ambulatory surgical"}},
	{"clinic", []string{"clinic", "general practice", "family medicine"}},
	{"medical", []string{"family medicine", "internal medicine", "general practice"}},
	{"hospital", []string{"hospital", "general acute care"}},
	{"nursing", []string{"skilled nursing", "nursing"}},
	{"skilled nursing", []string{"skilled nursing"}},
	{"rehab", []string{"rehabilitation", "physical therapy"}},
	{"rehabilitation", []string{"rehabilitation", "physical therapy"}},
	{"imaging", []string{"radiology", "diagnostic radiology"}},
	{"diagnostic", []string{"diagnostic radiology", "clinical medical laboratory"}},
	{"lab", []string{"clinical medical laboratory"}},
	{"laboratory", []string{"clinical medical laboratory"}},
	{"pain", []string{"pain medicine", "interventional pain"}},
	{"pain management", []string{"pain medicine", "interventional pain"}},
	{"weight loss", []string{"obesity medicine", "bariatric"}},
	{"bariatric", []string{"bariatric", "obesity medicine"}},
	{"plastic surgery", []string{"plastic surgery"}},
	{"cosmetic", []string{"plastic surgery", "dermatology"}},
	{"med spa", []string{"dermatology", "plastic surgery"}},
	{"allergy", []string{"allergy", "immunology"}},
	{"gastro", []string{"gastroenterology"}},
	{"gastroenterology", []string{"gastroenterology"}},
	{"urology", []string{"urology"}},
	{"pulmonary", []string{"pulmonary disease"}},
	{"podiatry", []string{"podiatry"}},
	{"sleep", []string{"sleep medicine"}},
	{"dialysis", []string{"dialysis"}},
	{"hospice", []string{"hospice", "palliative care"}},
	{"palliative", []string{"palliative care", "hospice"}},
	{"occupational therapy", []string{"occupational therapy"}},
	{"speech", []string{"speech-language pathology"}},
	{"speech therapy", []string{"speech-language pathology"}},
	{"ent", []string{"otolaryngology"}},
	{"ear nose throat", []string{"otolaryngology"}},
	{"ob/gyn", []string{"obstetrics", "gynecology"}},
	{"obstetrics", []string{"obstetrics", "gynecology"}},
	{"gynecology", []string{"gynecology"}},
	{"neonatal", []string{"neonatology"}},
	{"endocrinology", []string{"endocrinology"}},
	{"rheumatology", []string{"rheumatology"}},
	{"nephrology", []string{"nephrology"}},
	{"anesthesia", []string{"anesthesiology"}},
	{"pathology", []string{"pathology"}},
	{"wound care", []string{"wound care"}},
	{"home care", []string{"home health", "home care"}},
	{"durable medical", []string{"durable medical equipment"}},
	{"dme", []string{"durable medical equipment"}},
}

// taxonomiesFor returns taxonomy_description search terms for a sector and
// keyword combination. Unmapped phrases fall back to the raw inputs, since
// the registry partial-matches taxonomy descriptions anyway.
func taxonomiesFor(sector, keywords string) []string {
	combined := strings.ToLower(strings.TrimSpace(sector + " " + keywords))

	var terms []string
	seen := make(map[string]bool)
	for _, entry := range nppesTaxonomyMap {
		if !strings.Contains(combined, entry.key) {
			continue
		}
		for _, t := range entry.terms {
			if !seen[t] {
				seen[t] = true
				terms = append(terms, t)
			}
		}
	}
	if len(terms) > 0 {
		return terms
	}

	var raw []string
	if kw := strings.ToLower(strings.TrimSpace(keywords)); kw != "" {
		raw = append(raw, kw)
	}
	if s := strings.ToLower(strings.TrimSpace(sector)); s != "" && s != "other" {
		raw = append(raw, s)
	}
	return raw
}
