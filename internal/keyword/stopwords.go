package keyword

// Japanese particles, auxiliaries, and common English function words.
// Terms are matched after lowercasing.
var stopwords = map[string]struct{}{
	// Japanese particles and single-character function words
	"の": {}, "は": {}, "が": {}, "を": {}, "に": {}, "へ": {}, "と": {},
	"で": {}, "も": {}, "や": {}, "か": {}, "な": {}, "ね": {}, "よ": {},
	// Japanese auxiliaries and frequent function words
	"です": {}, "ます": {}, "する": {}, "した": {}, "して": {}, "される": {},
	"ください": {}, "について": {}, "とは": {}, "これ": {}, "それ": {},
	"こと": {}, "もの": {}, "ため": {}, "よう": {}, "など": {}, "から": {},
	"まで": {}, "また": {}, "および": {}, "ある": {}, "いる": {}, "ない": {},
	"何": {}, "どう": {}, "教えて": {},
	// English
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "of": {}, "to": {}, "in": {}, "on": {}, "for": {}, "and": {},
	"or": {}, "not": {}, "with": {}, "about": {}, "what": {}, "how": {},
	"please": {}, "tell": {}, "me": {},
}

// IsStopword reports whether term is a stopword. Term must already be
// lowercased.
func IsStopword(term string) bool {
	_, ok := stopwords[term]
	return ok
}
