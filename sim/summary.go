package sim

import (
	"io"
	"log"

	"github.com/milk9111/waterball/ball"
	"github.com/milk9111/waterball/ecs"
	"gopkg.in/yaml.v3"
)

type BallSummary struct {
	Name     string        `yaml:"name"`
	Entries  int           `yaml:"water_entries"`
	Exits    int           `yaml:"water_exits"`
	Snapshot ball.Snapshot `yaml:"state"`
}

// Summary is the end-of-run report written by headless runs and copied by the
// viewer.
type Summary struct {
	Scene    string        `yaml:"scene"`
	Tick     uint64        `yaml:"tick"`
	TickRate int           `yaml:"tick_rate"`
	Balls    []BallSummary `yaml:"balls"`
}

func (s *Simulation) Summary() Summary {
	out := Summary{Scene: s.scene.Name, Tick: s.Tick(), TickRate: s.TickRate()}

	counts := make(map[ecs.Entity][2]int)
	for _, sample := range s.Samples() {
		counts[sample.Entity] = [2]int{sample.Entries, sample.Exits}
	}
	for _, b := range s.Balls() {
		c := counts[b.Entity]
		out.Balls = append(out.Balls, BallSummary{
			Name:     b.Name,
			Entries:  c[0],
			Exits:    c[1],
			Snapshot: b.Snapshot,
		})
	}
	return out
}

func (s *Simulation) MarshalSummary() ([]byte, error) {
	return yaml.Marshal(s.Summary())
}

// RunHeadless advances ticks (the scene's default when <= 0) and writes the
// YAML summary to out.
func (s *Simulation) RunHeadless(ticks int, out io.Writer) error {
	if ticks <= 0 {
		ticks = s.scene.Simulation.Ticks
	}
	if ticks <= 0 {
		ticks = 10 * s.TickRate()
	}
	log.Printf("headless: scene %q for %d ticks at %d Hz", s.scene.Name, ticks, s.TickRate())

	s.Run(ticks)

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(s.Summary()); err != nil {
		return err
	}
	return enc.Close()
}
