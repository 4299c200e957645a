package workbench

import (
	"fmt"
	"strings"

	"github.com/mechforge/mechforge/pkg/model"
)

// ComponentSummary reports one location of a loadout.
type ComponentSummary struct {
	Location  string   `json:"location" yaml:"location"`
	Items     []string `json:"items,omitempty" yaml:"items,omitempty"`
	SlotsUsed int      `json:"slots_used" yaml:"slots_used"`
	Slots     int      `json:"slots" yaml:"slots"`
	Armor     int      `json:"armor" yaml:"armor"`
	ArmorBack int      `json:"armor_back,omitempty" yaml:"armor_back,omitempty"`
	ArmorMax  int      `json:"armor_max" yaml:"armor_max"`
}

// Summary is a value report of a loadout at one point in time.
type Summary struct {
	LoadoutID  string             `json:"loadout_id" yaml:"loadout_id"`
	Name       string             `json:"name" yaml:"name"`
	Chassis    string             `json:"chassis" yaml:"chassis"`
	Mass       float64            `json:"mass" yaml:"mass"`
	MassMax    float64            `json:"mass_max" yaml:"mass_max"`
	FreeMass   float64            `json:"free_mass" yaml:"free_mass"`
	SlotsUsed  int                `json:"slots_used" yaml:"slots_used"`
	SlotsTotal int                `json:"slots_total" yaml:"slots_total"`
	Armor      int                `json:"armor" yaml:"armor"`
	ArmorMax   int                `json:"armor_max" yaml:"armor_max"`
	HeatSinks  int                `json:"heat_sinks" yaml:"heat_sinks"`
	Engine     string             `json:"engine,omitempty" yaml:"engine,omitempty"`
	Upgrades   []string           `json:"upgrades" yaml:"upgrades"`
	Components []ComponentSummary `json:"components" yaml:"components"`
}

// Summary reports the current state of the loadout.
func (w *Workbench) Summary() Summary {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Summarize(w.loadout)
}

// Summarize builds a Summary of l.
func Summarize(l *model.Loadout) Summary {
	s := Summary{
		LoadoutID:  l.ID.String(),
		Name:       l.Name,
		Chassis:    l.Chassis.ID,
		Mass:       l.Mass(),
		MassMax:    l.Chassis.MassMax,
		FreeMass:   l.FreeMass(),
		SlotsUsed:  l.SlotsUsed(),
		SlotsTotal: l.SlotsTotal(),
		Armor:      l.ArmorTotal(),
		ArmorMax:   l.ArmorMaxTotal(),
		HeatSinks:  l.HeatSinkCount(),
	}
	if e := l.Engine(); e != nil {
		s.Engine = e.ID
	}
	for _, t := range []model.UpgradeType{model.UpgradeArmor, model.UpgradeStructure, model.UpgradeHeatSink, model.UpgradeGuidance} {
		if u := l.Upgrades.Get(t); u != nil {
			s.Upgrades = append(s.Upgrades, u.ID)
		}
	}
	for _, comp := range l.Components() {
		cs := ComponentSummary{
			Location:  comp.Location().String(),
			SlotsUsed: comp.SlotsUsed(l.Upgrades),
			Slots:     comp.Def().Slots,
			ArmorMax:  comp.Def().MaxArmor,
		}
		for _, it := range comp.Items() {
			cs.Items = append(cs.Items, it.ID)
		}
		if comp.Location().TwoSided() {
			cs.Armor = comp.Armor(model.SideFront)
			cs.ArmorBack = comp.Armor(model.SideBack)
		} else {
			cs.Armor = comp.Armor(model.SideOnly)
		}
		s.Components = append(s.Components, cs)
	}
	return s
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", s.Name, s.Chassis)
	fmt.Fprintf(&b, "mass %.2f/%.2f t, slots %d/%d, armor %d/%d, heat sinks %d\n",
		s.Mass, s.MassMax, s.SlotsUsed, s.SlotsTotal, s.Armor, s.ArmorMax, s.HeatSinks)
	fmt.Fprintf(&b, "upgrades %s\n", strings.Join(s.Upgrades, ", "))
	for _, c := range s.Components {
		armor := fmt.Sprintf("%d", c.Armor)
		if c.ArmorBack > 0 {
			armor = fmt.Sprintf("%d/%d", c.Armor, c.ArmorBack)
		}
		fmt.Fprintf(&b, "  %-2s %2d/%-2d armor %-7s %s\n", c.Location, c.SlotsUsed, c.Slots, armor, strings.Join(c.Items, " "))
	}
	return b.String()
}
