package legal

// Embedded default law book. Seed files can extend or override any entry.
// Statute texts are summaries for orientation, not legal advice.
var defaultEntries = []Guidance{
	// === India ===
	{
		Jurisdiction: "india",
		Category:     "harassment",
		Statutes: []string{
			"IPC 354A: sexual harassment, punishable up to 3 years",
			"IT Act 66E: violation of privacy, punishable up to 3 years",
		},
		FilingSteps: []string{
			"File a complaint at the National Cyber Crime Reporting Portal (cybercrime.gov.in)",
			"File an FIR at the nearest police station; zero-FIR can be filed anywhere",
			"Preserve screenshots with URLs and timestamps before reporting",
		},
		Contact: "Women Helpline 181 / Cyber Crime Helpline 1930",
		Rights: []string{
			"Right to file a zero-FIR at any police station regardless of jurisdiction",
			"Right to a female officer recording the statement",
		},
	},
	{
		Jurisdiction: "india",
		Category:     "stalking",
		Statutes: []string{
			"IPC 354D: stalking including electronic monitoring, up to 3 years for first offence",
		},
		FilingSteps: []string{
			"Document each incident with date, time, and place",
			"File an FIR citing IPC 354D; cyber-stalking also goes to cybercrime.gov.in",
		},
		Contact: "Women Helpline 181",
		Rights: []string{
			"Right to protection orders against the stalker",
		},
	},
	{
		Jurisdiction: "india",
		Category:     "blackmail",
		Statutes: []string{
			"IPC 503: criminal intimidation",
			"IPC 506: punishment for criminal intimidation, up to 7 years when threat is of death or grievous hurt",
			"IT Act 66E: privacy violation for captured or transmitted private images",
		},
		FilingSteps: []string{
			"Do not pay or comply; extortion rarely stops after payment",
			"Preserve the full conversation and any payment demands",
			"Report at cybercrime.gov.in and file an FIR",
		},
		Contact: "Cyber Crime Helpline 1930",
		Rights: []string{
			"Right to request takedown of leaked intimate images from intermediaries",
		},
	},
	{
		Jurisdiction: "india",
		Category:     "violence",
		Statutes: []string{
			"IPC 503/506: criminal intimidation and threats",
			"IPC 354C: voyeurism where applicable",
		},
		FilingSteps: []string{
			"Call 112 if danger is immediate",
			"File an FIR; threats to life must be registered",
		},
		Contact: "Emergency 112 / Women Helpline 181",
		Rights: []string{
			"Right to police protection on credible threat to life",
		},
	},
	{
		Jurisdiction: "india",
		Category:     "other",
		Statutes:     []string{"IPC and IT Act provisions apply depending on the conduct"},
		FilingSteps: []string{
			"Preserve evidence and consult the cybercrime portal for the applicable offence",
		},
		Contact: "Cyber Crime Helpline 1930",
	},

	// === USA ===
	{
		Jurisdiction: "usa",
		Category:     "stalking",
		Statutes: []string{
			"18 U.S.C. 2261A: federal interstate stalking including electronic means",
			"State anti-stalking statutes apply in parallel",
		},
		FilingSteps: []string{
			"Report to local police; request an incident number",
			"For interstate or online stalking, file with the FBI at ic3.gov",
			"Consider a protective/restraining order",
		},
		Contact: "911 (emergency) / FBI IC3 (ic3.gov)",
		Rights: []string{
			"Right to petition for a protective order",
			"Victim notification rights under federal law",
		},
	},
	{
		Jurisdiction: "usa",
		Category:     "blackmail",
		Statutes: []string{
			"18 U.S.C. 873: blackmail",
			"18 U.S.C. 875: interstate threats including extortionate ones",
		},
		FilingSteps: []string{
			"Do not pay; preserve all communications",
			"Report to the FBI at ic3.gov, especially for sextortion",
		},
		Contact: "FBI IC3 (ic3.gov)",
	},
	{
		Jurisdiction: "usa",
		Category:     "harassment",
		Statutes: []string{
			"47 U.S.C. 223: harassing telecommunications",
			"State cyber-harassment statutes apply",
		},
		FilingSteps: []string{
			"Document and report to the platform, then to local police",
		},
		Contact: "911 (emergency) / local police non-emergency line",
	},
	{
		Jurisdiction: "usa",
		Category:     "other",
		Statutes:     []string{"Federal and state statutes apply depending on the conduct"},
		FilingSteps:  []string{"Report online crime at ic3.gov; call 911 for immediate danger"},
		Contact:      "911 / ic3.gov",
	},

	// === UK ===
	{
		Jurisdiction: "uk",
		Category:     "stalking",
		Statutes: []string{
			"Protection from Harassment Act 1997 sections 2A/4A: stalking offences",
		},
		FilingSteps: []string{
			"Report to police via 101, or 999 in an emergency",
			"Keep a log of every incident",
		},
		Contact: "999 (emergency) / 101 / National Stalking Helpline 0808 802 0300",
		Rights: []string{
			"Right to apply for a Stalking Protection Order",
		},
	},
	{
		Jurisdiction: "uk",
		Category:     "harassment",
		Statutes: []string{
			"Protection from Harassment Act 1997 sections 1-2",
			"Malicious Communications Act 1988 section 1",
		},
		FilingSteps: []string{
			"Report to police via 101 with preserved messages",
		},
		Contact: "101 / Victim Support 0808 168 9111",
	},
	{
		Jurisdiction: "uk",
		Category:     "blackmail",
		Statutes: []string{
			"Theft Act 1968 section 21: blackmail, up to 14 years",
		},
		FilingSteps: []string{
			"Do not pay; report to Action Fraud or the police",
		},
		Contact: "Action Fraud 0300 123 2040",
	},
	{
		Jurisdiction: "uk",
		Category:     "other",
		Statutes:     []string{"Harassment, communications, and fraud statutes apply depending on the conduct"},
		FilingSteps:  []string{"Report via 101, or 999 in an emergency"},
		Contact:      "101 / 999",
	},

	// === Generic fallback ===
	{
		Jurisdiction: "generic",
		Category:     "violence",
		FilingSteps: []string{
			"Contact local emergency services immediately",
			"Preserve all messages; do not delete the conversation",
			"Tell someone you trust where you are",
		},
		Contact: "Local emergency number",
		Rights: []string{
			"Threats of violence are criminal offences in nearly all jurisdictions",
		},
	},
	{
		Jurisdiction: "generic",
		Category:     "blackmail",
		FilingSteps: []string{
			"Do not pay or comply with demands",
			"Preserve the full conversation with timestamps",
			"Report to your local cybercrime unit",
		},
		Contact: "Local police / national cybercrime portal",
	},
	{
		Jurisdiction: "generic",
		Category:     "other",
		FilingSteps: []string{
			"Preserve evidence: screenshots, URLs, timestamps",
			"Report to the platform and to local police if threats continue",
		},
		Contact: "Local police non-emergency line",
		Rights: []string{
			"Most jurisdictions criminalize online harassment and threats",
		},
	},
}
