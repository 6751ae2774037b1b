package sentiment

var defaultNegators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "n't": {}, "n’t": {}, "without": {}, "neither": {}, "nor": {},
}

var defaultIntensifiers = map[string]float64{
	"very": 1.3, "extremely": 1.5, "highly": 1.3, "sharply": 1.4, "strongly": 1.3,
	"slightly": 0.6, "somewhat": 0.7, "barely": 0.5,
}

var defaultWords = map[string]float64{
	// positive
	"good": 0.7, "great": 0.8, "excellent": 1.0, "strong": 0.4, "stronger": 0.5,
	"growth": 0.4, "grow": 0.3, "grew": 0.3, "gain": 0.4, "gains": 0.4, "gained": 0.4,
	"rally": 0.5, "rallied": 0.5, "rallies": 0.5, "rise": 0.3, "rose": 0.3, "rising": 0.3,
	"surge": 0.6, "surged": 0.6, "soar": 0.7, "soared": 0.7, "record": 0.3,
	"profit": 0.5, "profits": 0.5, "profitable": 0.6, "beat": 0.4, "beats": 0.4,
	"improve": 0.4, "improved": 0.4, "improvement": 0.4, "recovery": 0.4, "recover": 0.4,
	"positive": 0.5, "optimistic": 0.6, "optimism": 0.6, "confidence": 0.4, "confident": 0.5,
	"success": 0.7, "successful": 0.7, "win": 0.6, "wins": 0.6, "won": 0.6,
	"boost": 0.5, "boosted": 0.5, "upgrade": 0.5, "upgraded": 0.5, "innovative": 0.5,
	"innovation": 0.4, "promising": 0.5, "significant": 0.2, "happy": 0.8, "best": 1.0,
	"better": 0.5, "benefit": 0.4, "benefits": 0.4, "stable": 0.3, "outperform": 0.5,
	// negative
	"bad": -0.7, "poor": -0.6, "weak": -0.4, "weaker": -0.5, "loss": -0.5, "losses": -0.5,
	"lost": -0.4, "fall": -0.3, "fell": -0.3, "falling": -0.3, "drop": -0.4, "dropped": -0.4,
	"decline": -0.4, "declined": -0.4, "slump": -0.6, "plunge": -0.7, "plunged": -0.7,
	"crash": -0.8, "crashed": -0.8, "crisis": -0.7, "recession": -0.7, "risk": -0.3,
	"risks": -0.3, "concern": -0.3, "concerns": -0.3, "worry": -0.4, "worries": -0.4,
	"fear": -0.5, "fears": -0.5, "negative": -0.5, "pessimistic": -0.6, "downgrade": -0.5,
	"downgraded": -0.5, "miss": -0.4, "missed": -0.4, "fail": -0.6, "failed": -0.6,
	"failure": -0.7, "lawsuit": -0.5, "fraud": -0.8, "layoffs": -0.6, "bankruptcy": -0.9,
	"shortage": -0.4, "shortages": -0.4, "disruption": -0.4, "disruptions": -0.4,
	"volatile": -0.3, "volatility": -0.3, "worst": -1.0, "worse": -0.6, "challenges": -0.3,
	"uncertainty": -0.4, "inflation": -0.2, "sanctions": -0.4, "war": -0.7, "strike": -0.3,
}
