// Defines the command vocabulary: the legal actions a country may issue
// on a tick. Training-data generation indexes chosen commands into the
// per-tick action space by value equality, so Command is a comparable
// struct rather than an interface.

package sim

import "fmt"

// CommandType discriminates the closed set of command kinds.
type CommandType string

const (
	// CmdPass issues no action this tick.
	CmdPass CommandType = "pass"
	// CmdMoveArmy moves an army to an adjacent province.
	CmdMoveArmy CommandType = "move_army"
	// CmdRecruitRegiment raises one regiment in a home province.
	CmdRecruitRegiment CommandType = "recruit_regiment"
	// CmdBuildInProvince starts a building construction.
	CmdBuildInProvince CommandType = "build_in_province"
	// CmdDevelopProvince spends monarch power on province development.
	CmdDevelopProvince CommandType = "develop_province"
	// CmdDeclareWar opens hostilities against another country.
	CmdDeclareWar CommandType = "declare_war"
	// CmdImproveRelations assigns a diplomat to another country.
	CmdImproveRelations CommandType = "improve_relations"
)

// Command is one issuable action. Fields beyond Type are populated per
// kind: Province for province-targeted commands, Target for diplomatic
// ones, Amount for quantities (development clicks, regiment counts).
//
// All fields are comparable, so == is value equality. Action-space
// indexing depends on that.
type Command struct {
	Type     CommandType `json:"type"`
	Province int32       `json:"province,omitempty"`
	Target   Tag         `json:"target,omitempty"`
	Amount   int32       `json:"amount,omitempty"`
}

// Pass is the do-nothing command, always legal.
var Pass = Command{Type: CmdPass}

func (c Command) String() string {
	switch c.Type {
	case CmdPass:
		return "Pass"
	case CmdMoveArmy, CmdRecruitRegiment, CmdBuildInProvince, CmdDevelopProvince:
		return fmt.Sprintf("%s(province=%d, amount=%d)", c.Type, c.Province, c.Amount)
	case CmdDeclareWar, CmdImproveRelations:
		return fmt.Sprintf("%s(target=%s)", c.Type, c.Target)
	default:
		return string(c.Type)
	}
}

// IndexOf returns the index of the first command in space equal to c,
// or -1 if no command matches.
func IndexOf(space []Command, c Command) int {
	for i, candidate := range space {
		if candidate == c {
			return i
		}
	}
	return -1
}
