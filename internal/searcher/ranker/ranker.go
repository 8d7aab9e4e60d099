package ranker

import (
	"math"
	"sort"
)

// MachineEpsilon is the gap between 1.0 and the next float64. Relevances
// closer than this are ties.
const MachineEpsilon = 0x1p-52

type ScoredDoc struct {
	DocID     int     `json:"doc_id"`
	Relevance float64 `json:"relevance"`
	Rating    int     `json:"rating"`
}

// Rank turns accumulated relevances into a result list ordered by descending
// relevance. Relevances closer than epsilon are treated as equal and ordered
// by descending rating, then by ascending id. The list is cut to limit when
// limit is positive.
func Rank(
	relevance map[int]float64,
	ratingOf func(docID int) int,
	epsilon float64,
	limit int,
) []ScoredDoc {
	result := make([]ScoredDoc, 0, len(relevance))
	for docID, score := range relevance {
		result = append(result, ScoredDoc{
			DocID:     docID,
			Relevance: score,
			Rating:    ratingOf(docID),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DocID < result[j].DocID
	})
	sort.SliceStable(result, func(i, j int) bool {
		if math.Abs(result[i].Relevance-result[j].Relevance) < epsilon {
			return result[i].Rating > result[j].Rating
		}
		return result[i].Relevance > result[j].Relevance
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}
