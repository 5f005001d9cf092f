// Synthetic campaign driver. Advances the calendar one day per tick,
// drifts country facts on month starts, asks the scripted policy for
// each country's commands, and fans snapshots out to observers.
//
// The driver is deliberately small: it exists to exercise the observer
// pipeline end to end, not to model game rules.

package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// CampaignConfig parameterizes a synthetic campaign run.
type CampaignConfig struct {
	Seed    int64
	Horizon uint64 // number of ticks (days) to simulate
	Start   Date   // zero value means CampaignStart
	Tags    []Tag  // countries in the world; empty means DefaultTags
	RunID   string // correlates logs across a run; informational only
}

// DefaultTags is the country set used when CampaignConfig.Tags is empty.
var DefaultTags = []Tag{"SWE", "FRA", "ENG", "CAS", "TUR", "MOS"}

// Campaign is a running synthetic campaign.
type Campaign struct {
	cfg       CampaignConfig
	rng       *PartitionedRNG
	registry  *Registry
	tags      []Tag
	countries map[Tag]*CountryFacts
	date      Date
	tick      uint64
}

// NewCampaign creates a campaign with deterministically generated
// starting facts for every country.
func NewCampaign(cfg CampaignConfig, registry *Registry) *Campaign {
	if cfg.Start == (Date{}) {
		cfg.Start = CampaignStart
	}
	tags := cfg.Tags
	if len(tags) == 0 {
		tags = DefaultTags
	}

	c := &Campaign{
		cfg:       cfg,
		rng:       NewPartitionedRNG(CampaignKey(cfg.Seed)),
		registry:  registry,
		tags:      tags,
		countries: make(map[Tag]*CountryFacts, len(tags)),
		date:      cfg.Start,
	}

	world := c.rng.ForSubsystem(SubsystemWorld)
	for _, tag := range tags {
		c.countries[tag] = &CountryFacts{
			Treasury:  float64(50 + world.Intn(200)),
			Manpower:  float64(5000 + world.Intn(20000)),
			Stability: int8(world.Intn(4) - 1),
			Prestige:  float64(world.Intn(25)),
			ArmySize:  int32(3 + world.Intn(12)),
		}
	}
	return c
}

// Date returns the current campaign date.
func (c *Campaign) Date() Date {
	return c.date
}

// Tick returns the current tick counter.
func (c *Campaign) Tick() uint64 {
	return c.tick
}

// Run advances the campaign to its horizon and shuts observers down.
func (c *Campaign) Run() error {
	if c.cfg.Horizon == 0 {
		return fmt.Errorf("campaign horizon must be positive")
	}
	logrus.Infof("campaign %s: %d countries, horizon=%d ticks, start=%s",
		c.cfg.RunID, len(c.tags), c.cfg.Horizon, c.date)

	needsInputs := c.registry.NeedsInputs()
	for c.tick < c.cfg.Horizon {
		c.Step(needsInputs)
	}
	c.registry.Shutdown()

	logrus.Infof("campaign %s complete at %s (%d ticks)", c.cfg.RunID, c.date, c.tick)
	return nil
}

// Step advances the campaign by one tick and notifies observers.
// Action spaces and visible states are collected only when collectInputs
// is set; a bare run skips that work entirely.
func (c *Campaign) Step(collectInputs bool) {
	c.tick++
	c.date = c.date.Next()

	if c.date.MonthStart() {
		c.driftEconomy()
	}

	var inputs []PlayerInputs
	if collectInputs {
		inputs = c.decide()
	}

	snapshot := &Snapshot{
		Tick:      c.tick,
		Date:      c.date,
		Countries: c.snapshotCountries(),
		Checksum:  c.checksum(),
	}
	c.registry.NotifyWithInputs(snapshot, inputs)
}

// driftEconomy applies monthly income and attrition to every country.
func (c *Campaign) driftEconomy() {
	economy := c.rng.ForSubsystem(SubsystemEconomy)
	for _, tag := range c.tags {
		facts := c.countries[tag]
		facts.Treasury += float64(economy.Intn(20)) - 5
		facts.Manpower += float64(economy.Intn(500)) - 100
		if facts.Manpower < 0 {
			facts.Manpower = 0
		}
		if economy.Intn(12) == 0 {
			facts.Prestige += float64(economy.Intn(5)) - 2
		}
	}
}

// decide builds the per-country action space, picks commands with the
// scripted policy, and packages both with the visible state.
func (c *Campaign) decide() []PlayerInputs {
	policy := c.rng.ForSubsystem(SubsystemPolicy)
	inputs := make([]PlayerInputs, 0, len(c.tags))

	for _, tag := range c.tags {
		available := c.availableCommands(tag)

		// Most ticks are a pass; occasionally issue one or two commands
		// drawn from the action space.
		var commands []Command
		switch policy.Intn(10) {
		case 0:
			commands = []Command{available[1+policy.Intn(len(available)-1)]}
		case 1:
			commands = []Command{
				available[1+policy.Intn(len(available)-1)],
				available[1+policy.Intn(len(available)-1)],
			}
		}

		state := c.visibleState(tag)
		inputs = append(inputs, PlayerInputs{
			Country:           tag,
			Commands:          commands,
			AvailableCommands: available,
			VisibleState:      &state,
		})
	}
	return inputs
}

// availableCommands enumerates the legal actions for a country this tick.
// Pass is always index 0; the rest of the space is stable for a given
// country and date so chosen indices stay meaningful.
func (c *Campaign) availableCommands(tag Tag) []Command {
	facts := c.countries[tag]
	h := fnv1a64(string(tag))
	if h < 0 {
		h = -h
	}
	province := int32(h%400) + 400 // stable home province per tag

	space := []Command{
		Pass,
		{Type: CmdDevelopProvince, Province: province, Amount: 1},
		{Type: CmdBuildInProvince, Province: province, Amount: 1},
	}
	if facts.Manpower >= 1000 {
		space = append(space, Command{Type: CmdRecruitRegiment, Province: province, Amount: 1})
	}
	for _, other := range c.tags {
		if other == tag {
			continue
		}
		space = append(space, Command{Type: CmdImproveRelations, Target: other})
	}
	return space
}

// visibleState builds one country's observation for this tick.
func (c *Campaign) visibleState(tag Tag) VisibleState {
	strength := make(map[Tag]int32, len(c.tags))
	for _, other := range c.tags {
		strength[other] = c.countries[other].ArmySize
	}
	return VisibleState{
		Date:          c.date,
		Observer:      tag,
		OwnCountry:    *c.countries[tag],
		AtWar:         false,
		KnownStrength: strength,
	}
}

// snapshotCountries copies country facts so observers can never mutate
// driver state.
func (c *Campaign) snapshotCountries() map[Tag]CountryFacts {
	out := make(map[Tag]CountryFacts, len(c.countries))
	for tag, facts := range c.countries {
		out[tag] = *facts
	}
	return out
}

// checksum folds country facts into a cheap desync-detection value.
func (c *Campaign) checksum() uint64 {
	var sum uint64
	for _, tag := range c.tags {
		facts := c.countries[tag]
		sum = sum*31 + uint64(int64(facts.Treasury)) + uint64(int64(facts.Manpower))<<16
	}
	return sum
}
