package matching

import (
	"testing"

	"github.com/hingebot/hingebot/internal/repository"
)

func TestChemistryRating_SameArchetypeConstant(t *testing.T) {
	if got := ChemistryRating("philosopher", "philosopher"); got != 4.0 {
		t.Fatalf("expected same-archetype constant 4.0, got %f", got)
	}
	// 4.0/10 x 40 = 16 points of the total score.
	if points := ChemistryRating("philosopher", "philosopher") / 10.0 * 40; points != 16.0 {
		t.Fatalf("expected 16.0 chemistry points, got %f", points)
	}
}

func TestChemistryRating_SymmetricLookup(t *testing.T) {
	forward := ChemistryRating("villain_arc", "golden_retriever")
	reverse := ChemistryRating("golden_retriever", "villain_arc")
	if forward != 9.5 || reverse != 9.5 {
		t.Fatalf("expected symmetric 9.5, got %f / %f", forward, reverse)
	}
}

func TestChemistryRating_UnlistedPairNeutral(t *testing.T) {
	if got := ChemistryRating("tech_bro", "golden_retriever"); got != 5.0 {
		t.Fatalf("expected neutral 5.0 for unlisted pair, got %f", got)
	}
}

func TestInterestOverlap_SweetSpotScoresMax(t *testing.T) {
	// Jaccard 2/4 = 0.5, inside the sweet-spot band.
	got := interestOverlap([]string{"tech", "art"}, []string{"tech", "music", "art"})
	if got != 1.0 {
		t.Fatalf("expected 1.0 at jaccard 0.5, got %f", got)
	}
}

func TestInterestOverlap_IdenticalSetsPenalized(t *testing.T) {
	got := interestOverlap([]string{"tech", "art"}, []string{"tech", "art"})
	if got != 0.6 {
		t.Fatalf("expected reduced 0.6 for identical sets, got %f", got)
	}
}

func TestInterestOverlap_LowSimilarity(t *testing.T) {
	// Jaccard 1/7, below the band.
	got := interestOverlap(
		[]string{"tech", "art", "music", "food"},
		[]string{"tech", "gaming", "crypto", "fitness"})
	if got != 0.5 {
		t.Fatalf("expected 0.5 below the band, got %f", got)
	}
}

func TestInterestOverlap_EmptySideDefault(t *testing.T) {
	if got := interestOverlap(nil, []string{"tech"}); got != 0.3 {
		t.Fatalf("expected 0.3 for empty set, got %f", got)
	}
}

func TestKarmaDifferential_Bands(t *testing.T) {
	cases := []struct {
		a, b int
		want float64
	}{
		{100, 150, 0.7},
		{100, 400, 1.0},
		{100, 1500, 0.6},
		{100, 5000, 0.3},
	}
	for _, tc := range cases {
		if got := karmaDifferential(tc.a, tc.b); got != tc.want {
			t.Fatalf("karma %d vs %d: expected %f, got %f", tc.a, tc.b, tc.want, got)
		}
		if got := karmaDifferential(tc.b, tc.a); got != tc.want {
			t.Fatalf("karma differential must be symmetric for %d/%d", tc.a, tc.b)
		}
	}
}

func TestNoveltyScore_Averaged(t *testing.T) {
	a := &repository.Agent{ID: "a"}
	b := &repository.Agent{ID: "b"}
	recent := map[string]struct{}{"a": {}}
	if got := noveltyScore(a, b, recent); got != 0.5 {
		t.Fatalf("expected 0.5 with one recent participant, got %f", got)
	}
	if got := noveltyScore(a, b, map[string]struct{}{}); got != 1.0 {
		t.Fatalf("expected 1.0 with no recent participants, got %f", got)
	}
}

func TestScorePair_WithinJitterBounds(t *testing.T) {
	a := &repository.Agent{ID: "a", ArchetypePrimary: "philosopher", Interests: []string{"tech", "art"}, Karma: 100}
	b := &repository.Agent{ID: "b", ArchetypePrimary: "memelord", Interests: []string{"tech", "music", "art"}, Karma: 400}
	// chemistry 9.0 -> 36, interest 1.0 -> 20, karma 1.0 -> 15, novelty 1.0 -> 15.
	base := 86.0
	for i := 0; i < 50; i++ {
		got := scorePair(a, b, map[string]struct{}{})
		if got < base || got > base+10 {
			t.Fatalf("expected score in [%f, %f], got %f", base, base+10, got)
		}
	}
}
