package patterns

// Recommended actions attached to pattern matches. Kept as plain strings so
// they can surface directly on verdicts and in API responses.
const (
	actionEmergency = "Contact emergency services immediately and move to a safe location"
	actionPreserve  = "Do not pay or respond; preserve evidence and report to cybercrime authorities"
	actionDocument  = "Document every incident with timestamps and inform someone you trust"
	actionReport    = "Report and block the sender; save screenshots before blocking"
	actionDistance  = "Limit contact and talk to a trusted adult or counselor"
	actionBoundary  = "Set a firm boundary; consider whether this relationship is safe"
)

func (r *Registry) registerViolencePatterns() {
	r.register("direct_kill_threat",
		`(?i)\b(i('ll| will| am going to)?\s*(kill|murder|end)\s+(you|u|her|him)|you('re| are)?\s*(dead|a dead))\b`,
		CategoryViolence, 5, actionEmergency,
		"Direct threat to kill")
	r.register("physical_harm_threat",
		`(?i)\b(i('ll| will)?\s*(hurt|beat|hit|break|strangle|stab|shoot)\s+(you|u)|make you (suffer|bleed|regret))\b`,
		CategoryViolence, 5, actionEmergency,
		"Threat of physical harm")
	r.register("weapon_mention",
		`(?i)\b(knife|gun|pistol|acid|blade|weapon)\b.{0,40}\b(you|use|bring|have)\b`,
		CategoryViolence, 4, actionEmergency,
		"Weapon referenced in a threatening context")
	r.register("acid_attack",
		`(?i)\b(throw|splash)\b.{0,20}\bacid\b`,
		CategoryViolence, 5, actionEmergency,
		"Acid attack threat")
	r.register("harm_family",
		`(?i)\b(hurt|kill|harm)\b.{0,30}\b(your (family|mother|father|sister|brother|parents|kids?))\b`,
		CategoryViolence, 5, actionEmergency,
		"Threat against family members")
}

func (r *Registry) registerBlackmailPatterns() {
	r.register("photo_leak_threat",
		`(?i)\b(leak|post|share|upload|send|release)\b.{0,40}\b(photos?|pics?|pictures?|videos?|screenshots?|nudes?)\b`,
		CategoryBlackmail, 5, actionPreserve,
		"Threat to publish private media")
	r.register("viral_exposure",
		`(?i)\b(make|go(ing)?)\b.{0,20}\bviral\b|\bexpose you\b`,
		CategoryBlackmail, 4, actionPreserve,
		"Threat of public exposure")
	r.register("payment_demand",
		`(?i)\b(pay|send|transfer)\b.{0,30}\b(money|rs\.?|rupees|dollars|\$|bitcoin|crypto)\b.{0,40}\b(or|otherwise|else)\b`,
		CategoryBlackmail, 5, actionPreserve,
		"Payment demand with a threat attached")
	r.register("secret_leverage",
		`(?i)\b(i know what you did|tell everyone (about|what)|your (boss|family|husband|parents) will (see|know|find out))\b`,
		CategoryBlackmail, 4, actionPreserve,
		"Using a secret as leverage")
}

func (r *Registry) registerStalkingPatterns() {
	r.register("location_knowledge",
		`(?i)\b(i know where you (live|work|stay|study)|i know your (address|house|school|office|routine))\b`,
		CategoryStalking, 4, actionDocument,
		"Claims knowledge of the target's location")
	r.register("watching_claim",
		`(?i)\b(i('m| am)?\s*(watching|following)\s+(you|u)|i (saw|see) you (at|in|near|today|yesterday))\b`,
		CategoryStalking, 4, actionDocument,
		"Claims to be watching or following")
	r.register("persistent_presence",
		`(?i)\b(you can('t|not) (hide|escape|get away)|wherever you go|i('ll| will) find you)\b`,
		CategoryStalking, 5, actionEmergency,
		"Inescapability claim")
	r.register("outfit_detail",
		`(?i)\b(you (were|are) wearing|nice (dress|outfit|top) (today|yesterday))\b`,
		CategoryStalking, 3, actionDocument,
		"Unprompted detail about appearance that implies surveillance")
}

func (r *Registry) registerHarassmentPatterns() {
	r.register("explicit_demand",
		`(?i)\b(send (me )?(nudes?|pics?|photos?)|show me your)\b`,
		CategoryHarassment, 4, actionReport,
		"Demand for explicit material")
	r.register("sexual_remark",
		`(?i)\b(sexy|hot)\b.{0,20}\b(body|photo|pic)\b|\bwhat are you wearing\b`,
		CategoryHarassment, 3, actionReport,
		"Unwanted sexual remark")
	r.register("repeated_contact",
		`(?i)\b(why (aren't|are not|wont|won't) you repl(y|ying)|answer me now|i('ve| have) (called|messaged|texted) you \d+)\b`,
		CategoryHarassment, 2, actionReport,
		"Pressure over unanswered contact")
	r.register("degrading_slur",
		`(?i)\byou('re| are)?\s*(a\s+)?(slut|whore|worthless|pathetic|ugly)\b`,
		CategoryHarassment, 3, actionReport,
		"Degrading or abusive language")
}

func (r *Registry) registerGroomingPatterns() {
	r.register("secrecy_request",
		`(?i)\b((it's|its|this is) our (little )?secret|don('t|t) tell (anyone|your (parents|mom|dad|friends)))\b`,
		CategoryGrooming, 4, actionDistance,
		"Request to keep the relationship secret")
	r.register("maturity_flattery",
		`(?i)\byou('re| are)?\s*(so|very)?\s*mature for your age\b`,
		CategoryGrooming, 4, actionDistance,
		"Age-targeted flattery")
	r.register("gift_offer",
		`(?i)\b(i('ll| will) (buy|get|send) you|special (gift|present|surprise))\b.{0,40}\b(meet|alone|secret|phone)\b`,
		CategoryGrooming, 3, actionDistance,
		"Gifts tied to secrecy or meeting alone")
	r.register("isolation_push",
		`(?i)\b(your (parents|friends) (don't|dont|wouldn't) understand (you|us)|only i understand you)\b`,
		CategoryGrooming, 3, actionDistance,
		"Isolating the target from their support network")
}

func (r *Registry) registerManipulationPatterns() {
	r.register("gaslighting",
		`(?i)\b(you('re| are)?\s*(crazy|imagining|overreacting|too sensitive)|that never happened|you('re| are) remembering (it )?wrong)\b`,
		CategoryManipulation, 3, actionBoundary,
		"Gaslighting language")
	r.register("guilt_trip",
		`(?i)\b(if you (really )?loved me|after (all|everything) i('ve| have)? done for you|you made me do (this|it))\b`,
		CategoryManipulation, 3, actionBoundary,
		"Guilt-tripping")
	r.register("credibility_attack",
		`(?i)\b(nobody|no one) (will|would) (believe|listen to) you\b`,
		CategoryManipulation, 4, actionDocument,
		"Undermining the target's credibility")
	r.register("love_bombing",
		`(?i)\b(you('re| are) my (everything|soulmate|destiny)|i can('t|not) live without you)\b.{0,60}\b(money|send|pay|prove|photo)\b`,
		CategoryManipulation, 3, actionBoundary,
		"Intense affection used as leverage")
	r.register("self_harm_leverage",
		`(?i)\bi('ll| will) (kill|hurt) myself\b.{0,40}\b(if|unless)\b`,
		CategoryManipulation, 4, actionBoundary,
		"Self-harm threat used as leverage")
}

func (r *Registry) registerPanicTriggerPatterns() {
	r.register("distress_call",
		`(?i)\b(help( me)?|sos|emergency|danger(ous)?|panic)\b`,
		CategoryPanicTrigger, 5, actionEmergency,
		"Explicit distress call")
	r.register("being_followed",
		`(?i)\b(someone('s| is)? following me|being followed|he('s| is) (behind|after) me)\b`,
		CategoryPanicTrigger, 5, actionEmergency,
		"Reports being followed right now")
	r.register("fear_statement",
		`(?i)\b(i('m| am) (so )?(scared|afraid|terrified)|i (don't|dont) feel safe|unsafe)\b`,
		CategoryPanicTrigger, 4, actionEmergency,
		"Immediate fear for safety")
	r.register("distress_multilingual",
		`(?i)\b(bachao|madad|ayuda|socorro|peligro|aidez[- ]moi)\b`,
		CategoryPanicTrigger, 5, actionEmergency,
		"Distress call in Hindi, Spanish, Portuguese, or French")
}
