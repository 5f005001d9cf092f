// Implements the campaign calendar. One simulation tick is one day;
// observers are gated on month starts, so Date arithmetic lives here.

package sim

import "fmt"

// daysPerMonth holds the length of each month, 1-indexed (no leap years;
// the campaign calendar is the historical game calendar, not the Gregorian one).
var daysPerMonth = [13]uint8{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// Date is a campaign calendar date.
type Date struct {
	Year  int32 `json:"year" yaml:"year"`
	Month uint8 `json:"month" yaml:"month"`
	Day   uint8 `json:"day" yaml:"day"`
}

// CampaignStart is the canonical first day of a campaign.
var CampaignStart = Date{Year: 1444, Month: 11, Day: 11}

// Next returns the date one day later, rolling months and years.
func (d Date) Next() Date {
	d.Day++
	if d.Day > daysPerMonth[d.Month] {
		d.Day = 1
		d.Month++
		if d.Month > 12 {
			d.Month = 1
			d.Year++
		}
	}
	return d
}

// AddDays advances the date by n days.
func (d Date) AddDays(n int) Date {
	for i := 0; i < n; i++ {
		d = d.Next()
	}
	return d
}

// MonthStart reports whether the date is the first day of its month.
func (d Date) MonthStart() bool {
	return d.Day == 1
}

func (d Date) String() string {
	return fmt.Sprintf("%d.%d.%d", d.Year, d.Month, d.Day)
}
