package game

import (
	"math"
	"sort"
)

const (
	// pauseGapMs is the silence between consecutive words that splits an
	// utterance into separate speech segments.
	pauseGapMs = 200.0

	// wordMsPerChar estimates spoken duration for the final word of an
	// utterance, which has no following mark to measure against.
	wordMsPerChar = 75.0

	// zonePadMs extends a sampled viseme instant into a playable interval.
	zonePadMs = 150.0

	visemeConfidence = 0.8
)

// Difficulty controls how densely safe zones are sampled from speech timing.
type Difficulty int

const (
	DifficultyEasy   Difficulty = 1
	DifficultyNormal Difficulty = 2
	DifficultyHard   Difficulty = 3
)

type difficultyProfile struct {
	samplingRate   float64 // fraction of candidate visemes kept
	minVisemeGapMs float64 // minimum silence the spacing pass enforces (×2)
}

var difficultyProfiles = map[Difficulty]difficultyProfile{
	DifficultyEasy:   {samplingRate: 0.25, minVisemeGapMs: 800},
	DifficultyNormal: {samplingRate: 0.50, minVisemeGapMs: 500},
	DifficultyHard:   {samplingRate: 0.75, minVisemeGapMs: 300},
}

func (d Difficulty) profile() difficultyProfile {
	if p, ok := difficultyProfiles[d]; ok {
		return p
	}
	return difficultyProfiles[DifficultyNormal]
}

// SafeZone is a derived interval during which a risky release is advantageous.
// Zones for one utterance are time-ordered and non-overlapping after the
// merge pass; EndMs > StartMs always.
type SafeZone struct {
	StartMs    float64
	EndMs      float64
	Confidence float64 // 0..1
	Bucket     VowelBucket
	KeyToPress string
}

// speechSegment is a contiguous stretch of an utterance: words flowing
// without a long gap (safe) or the silence between them (unsafe).
type speechSegment struct {
	startMs float64
	endMs   float64
	safe    bool
}

// segmentWords partitions word marks into alternating speech and pause
// segments. words must be sorted by time.
func segmentWords(words []SpeechMark) []speechSegment {
	if len(words) == 0 {
		return nil
	}
	var segs []speechSegment
	segStart := words[0].TimeMs
	prevEnd := wordEndMs(words, 0)
	for i := 1; i < len(words); i++ {
		gap := words[i].TimeMs - prevEnd
		if gap > pauseGapMs {
			segs = append(segs, speechSegment{startMs: segStart, endMs: prevEnd, safe: true})
			segs = append(segs, speechSegment{startMs: prevEnd, endMs: words[i].TimeMs, safe: false})
			segStart = words[i].TimeMs
		}
		prevEnd = wordEndMs(words, i)
	}
	segs = append(segs, speechSegment{startMs: segStart, endMs: prevEnd, safe: true})
	return segs
}

func inSafeSegment(segs []speechSegment, tMs float64) bool {
	for _, s := range segs {
		if s.safe && tMs >= s.startMs && tMs < s.endMs {
			return true
		}
	}
	return false
}

// DeriveSafeZones converts raw speech-mark timestamps for one utterance into
// an ordered, non-overlapping list of safe zones. Returns nil when the marks
// carry no word events at all; the caller falls back to SynthesizeSafeZones.
//
// Sampling is by running count, not randomness, so output is deterministic
// given the same marks and difficulty.
func DeriveSafeZones(marks []SpeechMark, totalDurationMs float64, difficulty Difficulty) []SafeZone {
	words := filterMarks(marks, MarkWord)
	if len(words) == 0 {
		return nil
	}
	segs := segmentWords(words)
	prof := difficulty.profile()

	var zones []SafeZone
	visemes := filterMarks(marks, MarkViseme)
	if len(visemes) > 0 {
		zones = sampleVisemeZones(visemes, segs, prof)
	} else {
		zones = sampleSegmentZones(segs, prof)
	}

	sort.SliceStable(zones, func(i, j int) bool { return zones[i].StartMs < zones[j].StartMs })
	zones = enforceMinSpacing(zones, 2*prof.minVisemeGapMs)
	return mergeZones(zones)
}

// sampleVisemeZones keeps every 1/samplingRate-th viseme that falls inside a
// safe speech segment and pads each retained instant into an interval.
func sampleVisemeZones(visemes []SpeechMark, segs []speechSegment, prof difficultyProfile) []SafeZone {
	every := int(math.Round(1 / prof.samplingRate))
	if every < 1 {
		every = 1
	}
	var zones []SafeZone
	count := 0
	rr := 0
	for _, v := range visemes {
		if !inSafeSegment(segs, v.TimeMs) {
			continue
		}
		keep := count%every == 0
		count++
		if !keep {
			continue
		}
		bucket, ok := vowelBucketOf(v.Value)
		if !ok {
			bucket = fallbackBuckets[rr%vowelBucketCount]
			rr++
		}
		zones = append(zones, SafeZone{
			StartMs:    v.TimeMs - zonePadMs,
			EndMs:      v.TimeMs + zonePadMs,
			Confidence: visemeConfidence,
			Bucket:     bucket,
			KeyToPress: bucket.Letter(),
		})
	}
	return zones
}

// sampleSegmentZones is the no-viseme path: an evenly spaced subset of the
// safe word segments, one zone per selected segment, round-robin buckets.
func sampleSegmentZones(segs []speechSegment, prof difficultyProfile) []SafeZone {
	var safe []speechSegment
	for _, s := range segs {
		if s.safe && s.endMs > s.startMs {
			safe = append(safe, s)
		}
	}
	if len(safe) == 0 {
		return nil
	}
	n := int(math.Ceil(float64(len(safe)) * prof.samplingRate))
	if n < 1 {
		n = 1
	}
	if n > len(safe) {
		n = len(safe)
	}
	step := float64(len(safe)) / float64(n)
	var zones []SafeZone
	for i := 0; i < n; i++ {
		seg := safe[int(float64(i)*step)]
		bucket := fallbackBuckets[i%vowelBucketCount]
		zones = append(zones, SafeZone{
			StartMs:    seg.startMs,
			EndMs:      seg.endMs,
			Confidence: visemeConfidence,
			Bucket:     bucket,
			KeyToPress: bucket.Letter(),
		})
	}
	return zones
}

// enforceMinSpacing walks time-sorted zones and drops any whose start is
// closer than minGapMs to the previous retained zone's end.
func enforceMinSpacing(zones []SafeZone, minGapMs float64) []SafeZone {
	if len(zones) == 0 {
		return zones
	}
	kept := zones[:1]
	for _, z := range zones[1:] {
		if z.StartMs-kept[len(kept)-1].EndMs < minGapMs {
			continue
		}
		kept = append(kept, z)
	}
	return kept
}

// mergeZones collapses adjacent or overlapping zones of the same bucket.
func mergeZones(zones []SafeZone) []SafeZone {
	if len(zones) == 0 {
		return zones
	}
	out := zones[:1]
	for _, z := range zones[1:] {
		prev := &out[len(out)-1]
		if z.Bucket == prev.Bucket && z.StartMs <= prev.EndMs {
			if z.EndMs > prev.EndMs {
				prev.EndMs = z.EndMs
			}
			if z.Confidence > prev.Confidence {
				prev.Confidence = z.Confidence
			}
			continue
		}
		out = append(out, z)
	}
	return out
}

// SynthesizeSafeZones builds a crude zone pattern from a coarse manual safety
// label. This is the degradation path for dialogue whose speech marks are
// missing or failed to load — it always produces some playable zones.
func SynthesizeSafeZones(status SafetyStatus, durationMs float64) []SafeZone {
	if durationMs <= 0 {
		return nil
	}
	switch status {
	case SafetySafe:
		b := fallbackBuckets[0]
		return []SafeZone{{
			StartMs:    0,
			EndMs:      durationMs,
			Confidence: 0.8,
			Bucket:     b,
			KeyToPress: b.Letter(),
		}}
	case SafetyDanger:
		b := fallbackBuckets[0]
		return []SafeZone{{
			StartMs:    0.4 * durationMs,
			EndMs:      0.6 * durationMs,
			Confidence: 0.4,
			Bucket:     b,
			KeyToPress: b.Letter(),
		}}
	default: // neutral: even quarters only
		quarter := durationMs / 4
		var zones []SafeZone
		for i := 0; i < 4; i += 2 {
			b := fallbackBuckets[(i/2)%vowelBucketCount]
			zones = append(zones, SafeZone{
				StartMs:    float64(i) * quarter,
				EndMs:      float64(i+1) * quarter,
				Confidence: 0.6,
				Bucket:     b,
				KeyToPress: b.Letter(),
			})
		}
		return zones
	}
}
