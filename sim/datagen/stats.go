// Aggregate statistics over a loaded corpus, for the inspect command
// and for sanity-checking generated data before training.

package datagen

// CorpusStats summarizes a corpus.
type CorpusStats struct {
	TotalSamples int
	PassSamples  int // samples with an empty chosen-action list
	ByCountry    map[string]int
	ByYear       map[int32]int
	// ActionDist counts every chosen action index; ActionUnmatched (-2)
	// gets its own bucket so consumers can measure upstream desync.
	ActionDist map[int32]int
	// MinTick and MaxTick are both zero for an empty corpus.
	MinTick uint64
	MaxTick uint64
}

func newCorpusStats() CorpusStats {
	return CorpusStats{
		ByCountry:  make(map[string]int),
		ByYear:     make(map[int32]int),
		ActionDist: make(map[int32]int),
	}
}

func (st *CorpusStats) add(s *TrainingSample) {
	if st.TotalSamples == 0 || s.Tick < st.MinTick {
		st.MinTick = s.Tick
	}
	st.TotalSamples++
	st.ByCountry[string(s.Country)]++
	st.ByYear[s.State.Date.Year]++

	if len(s.ChosenActions) == 0 {
		st.PassSamples++
	}
	for _, action := range s.ChosenActions {
		st.ActionDist[action]++
	}
	if s.Tick > st.MaxTick {
		st.MaxTick = s.Tick
	}
}

// UnmatchedActions returns the count of recorded desync sentinels.
func (st *CorpusStats) UnmatchedActions() int {
	return st.ActionDist[ActionUnmatched]
}
