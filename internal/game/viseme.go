package game

import "strings"

// FartType is one of the six vent key categories a player can press.
type FartType int

const (
	FartT FartType = iota
	FartP
	FartK
	FartF
	FartR
	FartZ

	fartTypeCount = 6
)

// Letter returns the lowercase keyboard letter bound to this category.
func (t FartType) Letter() string {
	switch t {
	case FartT:
		return "t"
	case FartP:
		return "p"
	case FartK:
		return "k"
	case FartF:
		return "f"
	case FartR:
		return "r"
	case FartZ:
		return "z"
	default:
		return "?"
	}
}

func (t FartType) String() string {
	return t.Letter()
}

// FartTypeFromLetter resolves a pressed key letter (case-insensitive) to its
// category. Returns false for letters that are not vent keys.
func FartTypeFromLetter(s string) (FartType, bool) {
	switch strings.ToLower(s) {
	case "t":
		return FartT, true
	case "p":
		return FartP, true
	case "k":
		return FartK, true
	case "f":
		return FartF, true
	case "r":
		return FartR, true
	case "z":
		return FartZ, true
	default:
		return 0, false
	}
}

// visemeKeyTable maps Polly-style viseme symbols to vent key categories.
// Several consonant clusters share a category; vowels have no entry because a
// mouth held open produces no vent opportunity.
var visemeKeyTable = map[string]FartType{
	// t group: tongue-tip stops and dental fricatives.
	"t": FartT,
	"d": FartT,
	"n": FartT,
	"T": FartT, // th (thin)
	"D": FartT, // th (then)

	// p group: lips closed.
	"p": FartP,
	"b": FartP,
	"m": FartP,

	// k group: back-of-tongue stops.
	"k": FartK,
	"g": FartK,
	"N": FartK, // ng

	// f group: lip-teeth fricatives.
	"f": FartF,
	"v": FartF,

	// r group: liquids.
	"r": FartR,
	"l": FartR,

	// z group: sibilants and affricates.
	"s": FartZ,
	"z": FartZ,
	"S": FartZ, // sh
	"Z": FartZ, // zh
	"J": FartZ, // dzh (judge)
	"C": FartZ, // tsh (church)
}

// MapVisemeToKey maps a phonetic viseme symbol to its vent key category.
// Vowels and unknown symbols return ok=false; they are silently excluded
// from opportunity generation.
func MapVisemeToKey(symbol string) (FartType, bool) {
	t, ok := visemeKeyTable[symbol]
	return t, ok
}

// VowelBucket is one of the five vowel categories used by the safe-zone scheme.
type VowelBucket int

const (
	BucketA VowelBucket = iota
	BucketE
	BucketI
	BucketO
	BucketU

	vowelBucketCount = 5
)

// Letter returns the lowercase keyboard letter bound to this bucket.
func (b VowelBucket) Letter() string {
	switch b {
	case BucketA:
		return "a"
	case BucketE:
		return "e"
	case BucketI:
		return "i"
	case BucketO:
		return "o"
	case BucketU:
		return "u"
	default:
		return "?"
	}
}

func (b VowelBucket) String() string {
	return b.Letter()
}

// fallbackBuckets is the round-robin order used when a sampled viseme is not a
// vowel. Ordered by English vowel frequency so easy levels lean on common keys.
var fallbackBuckets = [vowelBucketCount]VowelBucket{BucketE, BucketA, BucketO, BucketI, BucketU}

// vowelBucketOf classifies a viseme symbol by its first IPA character.
// Non-vowel symbols return ok=false and take the round-robin fallback.
func vowelBucketOf(symbol string) (VowelBucket, bool) {
	if symbol == "" {
		return 0, false
	}
	switch strings.ToLower(symbol[:1]) {
	case "a":
		return BucketA, true
	case "e":
		return BucketE, true
	case "i":
		return BucketI, true
	case "o":
		return BucketO, true
	case "u":
		return BucketU, true
	default:
		return 0, false
	}
}
