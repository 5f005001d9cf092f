// Core state types shared between the campaign driver, the AI layer and
// observers: country tags, per-country visible state, per-tick player
// inputs and immutable tick snapshots.

package sim

// Tag is the stable short identifier of a country (e.g. "SWE", "FRA").
type Tag string

// CountryFacts is the numeric summary of one country an observer may see.
type CountryFacts struct {
	Treasury  float64 `json:"treasury"`
	Manpower  float64 `json:"manpower"`
	Stability int8    `json:"stability"`
	Prestige  float64 `json:"prestige"`
	ArmySize  int32   `json:"army_size"`
}

// VisibleState is the per-country observation computed at decision time.
// It is built once by the AI layer and carried through PlayerInputs so
// observers never recompute it; training pipelines serialize it as the
// model prompt.
type VisibleState struct {
	Date          Date           `json:"date"`
	Observer      Tag            `json:"observer"`
	OwnCountry    CountryFacts   `json:"own_country"`
	AtWar         bool           `json:"at_war"`
	KnownStrength map[Tag]int32  `json:"known_country_strength,omitempty"`
	WarScores     map[int32]int8 `json:"our_war_score,omitempty"`
}

// PlayerInputs carries one country's decisions for one tick: the commands
// actually issued, the action space they were chosen from, and the
// visible state at decision time.
//
// AvailableCommands and VisibleState are populated only when an observer
// needs inputs (training-data mode); in a bare simulation run they stay
// empty to save memory.
type PlayerInputs struct {
	Country           Tag           `json:"country"`
	Commands          []Command     `json:"commands"`
	AvailableCommands []Command     `json:"available_commands,omitempty"`
	VisibleState      *VisibleState `json:"visible_state,omitempty"`
}

// Snapshot is an immutable view of campaign state as of one tick.
// Observers receive it after the tick has been applied and must not
// retain or mutate the Countries map.
type Snapshot struct {
	Tick      uint64
	Date      Date
	Countries map[Tag]CountryFacts
	Checksum  uint64
}
