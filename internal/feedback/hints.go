package feedback

import (
	"strings"

	"github.com/roach88/deckcheck/internal/validate"
)

// hint is a fix instruction attached to a matching finding.
type hint struct {
	template string // "" matches any template
	match    func(finding string) bool
	lines    []string
}

func hintFor(template, finding string) (hint, bool) {
	for _, h := range hints {
		if h.template != "" && h.template != template {
			continue
		}
		if h.match(finding) {
			return h, true
		}
	}
	return hint{}, false
}

func contains(sub string) func(string) bool {
	return func(s string) bool { return strings.Contains(s, sub) }
}

var hints = []hint{
	{
		template: validate.TemplateBuyerProfiles,
		match:    contains(validate.MsgMissingContentIRKey),
		lines: []string{
			"      FIX: Add 'content_ir_key': 'strategic_buyers' or 'content_ir_key': 'financial_buyers' to the slide object (not in data section)",
			"      EXAMPLE:",
			"      {",
			"        'template': 'buyer_profiles',",
			"        'content_ir_key': 'strategic_buyers',",
			"        'data': {",
			"          'title': 'Strategic Buyers - Global Healthcare Leaders',",
			"          'table_headers': ['Buyer Profile', 'Strategic Rationale', 'Fit']",
			"        }",
			"      }",
		},
	},
	{
		match: func(s string) bool { return strings.HasPrefix(s, "Missing ") && strings.HasSuffix(s, "(title)") },
		lines: []string{
			"      FIX: Add 'title' field to the slide data",
			"      EXAMPLE: 'title': 'Historical Financial Performance'",
		},
	},
	{
		template: "historical_financial_performance",
		match:    contains("(chart"),
		lines: []string{
			"      FIX: Add complete chart data referencing facts from Content IR",
			"      EXAMPLE:",
			"      'chart': {",
			"        'categories': ['2020', '2021', '2022', '2023', '2024E'],",
			"        'revenue': [120, 145, 180, 210, 240],",
			"        'ebitda': [18, 24, 31, 40, 47]",
			"      }",
		},
	},
	{
		template: "competitive_positioning",
		match:    contains("(assessment)"),
		lines: []string{
			"      FIX: Add complete competitive assessment table (header row first, one row per company)",
			"      EXAMPLE:",
			"      'assessment': [",
			"        ['Company', 'Market Position', 'Technology', 'Customer Base'],",
			"        ['Our Company', 'Leader', 'Advanced', 'Premium'],",
			"        ['Competitor A', 'Challenger', 'Moderate', 'Mixed']",
			"      ]",
		},
	},
	{
		template: "margin_cost_resilience",
		match:    contains("(cost_management.items"),
		lines: []string{
			"      FIX: Add complete cost management items with title and description",
			"      EXAMPLE:",
			"      'cost_management': {",
			"        'items': [",
			"          {'title': 'Operational Efficiency', 'description': 'Streamlined processes reducing costs by 15%'},",
			"          {'title': 'Technology Investment', 'description': 'Automation tools reducing manual work by 30%'}",
			"        ]",
			"      }",
		},
	},
}

var factsBlock = []string{
	"\n🚨 CRITICAL: You MUST include the 'facts' section in Content IR for financial slides!",
	"Add this to your Content IR:",
	`"facts": {`,
	`  "years": ["2020", "2021", "2022", "2023", "2024E"],`,
	`  "revenue_usd_m": [120, 145, 180, 210, 240],`,
	`  "ebitda_usd_m": [18, 24, 31, 40, 47],`,
	`  "ebitda_margins": [15.0, 16.6, 17.2, 19.0, 19.6]`,
	`}`,
}

var structureRequirements = []string{
	"\n📋 STRUCTURE REQUIREMENTS:",
	"  Content IR must include these key sections:",
	"    - entities: {company: {name: 'Company Name'}}",
	"    - management_team: {left_column_profiles: [...], right_column_profiles: [...]}",
	"    - strategic_buyers: [{buyer_name, strategic_rationale, fit}, ...]",
	"    - financial_buyers: [{buyer_name, strategic_rationale, fit}, ...]",
	"\n  Each management profile must have:",
	"    - role_title: 'Chief Executive Officer'",
	"    - experience_bullets: ['bullet 1', 'bullet 2', ...]",
	"\n  Each buyer must have:",
	"    - buyer_name: 'Company Name'",
	"    - strategic_rationale: 'reason for acquisition'",
	"    - fit: 'High (9/10)' or similar",
}

var buyerProfilesBlock = []string{
	"\n🔧 BUYER_PROFILES SLIDE FIX INSTRUCTIONS:",
	"CRITICAL: buyer_profiles slides must reference buyer data using content_ir_key",
	"\nCORRECT EXAMPLE - Strategic Buyers:",
	`{`,
	`  "template": "buyer_profiles",`,
	`  "content_ir_key": "strategic_buyers",`,
	`  "data": {`,
	`    "title": "Strategic Buyers - Global Healthcare Leaders",`,
	`    "table_headers": ["Buyer Profile", "Strategic Rationale", "Key Synergies", "Fit"]`,
	`  }`,
	`}`,
	"\nCORRECT EXAMPLE - Financial Buyers:",
	`{`,
	`  "template": "buyer_profiles",`,
	`  "content_ir_key": "financial_buyers",`,
	`  "data": {`,
	`    "title": "Financial Buyers - Global Private Equity",`,
	`    "table_headers": ["Fund Profile", "Healthcare Strategy", "Fit"]`,
	`  }`,
	`}`,
	"\nThe Content IR must have matching arrays:",
	`"strategic_buyers": [`,
	`  {`,
	`    "buyer_name": "UnitedHealth / Optum",`,
	`    "strategic_rationale": "SEA market entry with established platform",`,
	`    "key_synergies": "Data analytics, technology platform",`,
	`    "fit": "High (9/10)"`,
	`  }`,
	`]`,
}
