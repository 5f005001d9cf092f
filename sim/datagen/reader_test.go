package datagen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campaign-sim/campaign-sim/sim"
)

func TestReadCorpus_JSONL(t *testing.T) {
	// GIVEN a stream-mode corpus on disk
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	obs, err := File(path)
	require.NoError(t, err)

	space := testSpace("SWE")
	tickAt(t, obs, 1, sim.Date{Year: 1444, Month: 11, Day: 12}, "SWE", "FRA")
	in := testInputs("SWE", space[2])
	require.NoError(t, obs.OnTickWithInputs(
		testSnapshot(2, sim.Date{Year: 1444, Month: 11, Day: 13}), []sim.PlayerInputs{in}))
	obs.OnShutdown()

	// WHEN reading it back
	corpus, err := ReadCorpus(path)
	require.NoError(t, err)

	// THEN samples and stats agree with what was written
	require.Equal(t, 3, corpus.Stats.TotalSamples)
	assert.Equal(t, 2, corpus.Stats.PassSamples)
	assert.Equal(t, 2, corpus.Stats.ByCountry["SWE"])
	assert.Equal(t, 1, corpus.Stats.ByCountry["FRA"])
	assert.Equal(t, 3, corpus.Stats.ByYear[1444])
	assert.Equal(t, uint64(1), corpus.Stats.MinTick)
	assert.Equal(t, uint64(2), corpus.Stats.MaxTick)
	assert.Equal(t, 1, corpus.Stats.ActionDist[2])
	assert.Zero(t, corpus.Stats.UnmatchedActions())
}

func TestReadCorpus_EmptyCorpusStats(t *testing.T) {
	// GIVEN a run that produced no samples at all
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	obs, err := File(path)
	require.NoError(t, err)
	obs.OnShutdown()

	// WHEN reading it back
	corpus, err := ReadCorpus(path)
	require.NoError(t, err)

	// THEN the stats are all-zero, tick range included
	assert.Empty(t, corpus.Samples)
	assert.Zero(t, corpus.Stats.TotalSamples)
	assert.Zero(t, corpus.Stats.MinTick)
	assert.Zero(t, corpus.Stats.MaxTick)
}

func TestCorpusStats_MinTickTracksSmallestSeen(t *testing.T) {
	// GIVEN samples arriving out of tick order
	st := newCorpusStats()
	for _, tick := range []uint64{7, 3, 9} {
		s := TrainingSample{Tick: tick, Country: "SWE", ChosenActions: []int32{}}
		st.add(&s)
	}

	// THEN the range covers exactly what was added
	assert.Equal(t, uint64(3), st.MinTick)
	assert.Equal(t, uint64(9), st.MaxTick)
}

func TestReadCorpus_FilterCountry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	obs, err := File(path)
	require.NoError(t, err)
	tickAt(t, obs, 1, sim.Date{Year: 1444, Month: 11, Day: 12}, "SWE", "FRA", "ENG")
	obs.OnShutdown()

	corpus, err := ReadCorpus(path)
	require.NoError(t, err)

	swe := corpus.FilterCountry("SWE")
	require.Len(t, swe, 1)
	assert.Equal(t, sim.Tag("SWE"), swe[0].Country)
}

func TestReadCorpus_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	content := `{"tick":1,"country":"SWE","state":{"date":{"year":1444,"month":11,"day":12},"observer":"SWE","own_country":{"treasury":0,"manpower":0,"stability":0,"prestige":0,"army_size":0},"at_war":false},"available_commands":[{"type":"pass"}],"chosen_actions":[]}

`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	corpus, err := ReadCorpus(path)
	require.NoError(t, err)
	assert.Equal(t, 1, corpus.Stats.TotalSamples)
}

func TestReadCorpus_UnmatchedBucket(t *testing.T) {
	// GIVEN a corpus containing a desync sentinel
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	obs, err := File(path)
	require.NoError(t, err)
	rogue := sim.Command{Type: sim.CmdDeclareWar, Target: "MOS"}
	in := testInputs("SWE", rogue)
	require.NoError(t, obs.OnTickWithInputs(
		testSnapshot(1, sim.CampaignStart), []sim.PlayerInputs{in}))
	obs.OnShutdown()

	// WHEN reading stats
	corpus, err := ReadCorpus(path)
	require.NoError(t, err)

	// THEN the sentinel has its own bucket
	assert.Equal(t, 1, corpus.Stats.UnmatchedActions())
	assert.Equal(t, 1, corpus.Stats.ActionDist[ActionUnmatched])
}

// End to end: a real campaign drives the observer and the corpus comes
// back intact in every output mode.
func TestCampaignToCorpus_AllModes(t *testing.T) {
	for _, name := range []string{"corpus.jsonl", "corpus.zip", "corpus.cpb.zip"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			obs, err := File(path)
			require.NoError(t, err)
			obs.WithCountries("SWE", "FRA").ExcludeCountries("FRA")

			registry := sim.NewRegistry()
			registry.Register(obs)
			campaign := sim.NewCampaign(sim.CampaignConfig{Seed: 7, Horizon: 120}, registry)
			require.NoError(t, campaign.Run())

			corpus, err := ReadCorpus(path)
			require.NoError(t, err)

			// One sample per tick: SWE only (FRA excluded wins).
			require.Equal(t, 120, corpus.Stats.TotalSamples)
			assert.Equal(t, 120, corpus.Stats.ByCountry["SWE"])
			assert.Empty(t, corpus.Stats.ByCountry["FRA"])
			assert.Zero(t, corpus.Stats.UnmatchedActions(),
				"driver decisions always come from the offered space")
			for i, s := range corpus.Samples {
				assert.Equal(t, uint64(i+1), s.Tick)
			}
		})
	}
}
