// Package matching scores and pairs available agents, gating each
// candidate pair behind a simulated mutual swipe.
package matching

import (
	"math/rand/v2"

	"github.com/hingebot/hingebot/internal/repository"
)

type archetypePair struct {
	a, b string
}

// Chemistry matrix, 0-10 per unordered primary-archetype pair.
var chemistryTable = map[archetypePair]float64{
	{"villain_arc", "golden_retriever"}:       9.5,
	{"philosopher", "memelord"}:               9.0,
	{"chaos_agent", "hopeless_romantic"}:      8.5,
	{"tech_bro", "philosopher"}:               7.5,
	{"main_character", "villain_arc"}:         8.0,
	{"memelord", "chaos_agent"}:               7.0,
	{"golden_retriever", "hopeless_romantic"}: 6.0,
	{"tech_bro", "memelord"}:                  6.5,
	{"main_character", "hopeless_romantic"}:   7.5,
	{"chaos_agent", "philosopher"}:            8.0,
}

const (
	defaultChemistry       = 5.0
	sameArchetypeChemistry = 4.0
)

// ChemistryRating returns the 0-10 archetype chemistry for two primary
// archetypes. Identical primaries always score the same-archetype
// constant; unlisted pairs fall back to neutral.
func ChemistryRating(archA, archB string) float64 {
	if archA == archB {
		return sameArchetypeChemistry
	}
	if v, ok := chemistryTable[archetypePair{archA, archB}]; ok {
		return v
	}
	if v, ok := chemistryTable[archetypePair{archB, archA}]; ok {
		return v
	}
	return defaultChemistry
}

// interestOverlap maps Jaccard similarity of interest sets through a
// non-monotonic curve: a middle band scores best, near-identical sets
// are penalized as redundant.
func interestOverlap(interestsA, interestsB []string) float64 {
	setA := make(map[string]struct{}, len(interestsA))
	for _, s := range interestsA {
		setA[s] = struct{}{}
	}
	setB := make(map[string]struct{}, len(interestsB))
	for _, s := range interestsB {
		setB[s] = struct{}{}
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0.3
	}
	intersection := 0
	for s := range setA {
		if _, ok := setB[s]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	jaccard := float64(intersection) / float64(union)
	switch {
	case jaccard >= 0.2 && jaccard <= 0.5:
		return 1.0
	case jaccard < 0.2:
		return 0.5
	default:
		return 0.6
	}
}

// karmaDifferential rewards a moderate karma gap over both near-equals
// and lopsided pairings.
func karmaDifferential(karmaA, karmaB int) float64 {
	diff := karmaA - karmaB
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff < 100:
		return 0.7
	case diff < 500:
		return 1.0
	case diff < 2000:
		return 0.6
	default:
		return 0.3
	}
}

func noveltyScore(a, b *repository.Agent, recent map[string]struct{}) float64 {
	credit := 0
	if _, ok := recent[a.ID]; !ok {
		credit++
	}
	if _, ok := recent[b.ID]; !ok {
		credit++
	}
	return float64(credit) / 2.0
}

// scorePair combines the weighted components into a 0-100 pair score.
// The jitter term is intentionally non-reproducible.
func scorePair(a, b *repository.Agent, recent map[string]struct{}) float64 {
	chemistry := ChemistryRating(a.ArchetypePrimary, b.ArchetypePrimary) / 10.0 * 40
	interest := interestOverlap(a.Interests, b.Interests) * 20
	karma := karmaDifferential(a.Karma, b.Karma) * 15
	novelty := noveltyScore(a, b, recent) * 15
	jitter := rand.Float64() * 10
	return chemistry + interest + karma + novelty + jitter
}
