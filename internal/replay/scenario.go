package replay

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/relabs-tech/gps_fix/internal/port"
)

// Scenario is a scripted receiver session used for bench runs and tests.
//
// Each cycle is what the UART buffer holds at one poll: the framer drains
// it, then sees the line go idle. Sentences are written without the leading
// '$'; it is added unless Raw is set, in which case Data is sent verbatim.
//
// YAML schema (v1):
//
//	version: 1
//	name: cold start
//	cycles:
//	  - sentences:
//	      - "GPGGA,123519,,,,,0,00,,,M,,M,,*66"
//	      - "GPGSA,A,1,,,,,,,,,,,,,,,*1E"
//	  - idle: true
//	  - raw: "$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A\r\n$GPGSA,..."
//
// Keep this struct stable: scenarios are test fixtures.
type Scenario struct {
	Version int     `yaml:"version"`
	Name    string  `yaml:"name"`
	Repeat  int     `yaml:"repeat"`
	Cycles  []Cycle `yaml:"cycles"`
}

// Cycle is the data available during one polling cycle.
type Cycle struct {
	Sentences []string `yaml:"sentences"`
	Raw       string   `yaml:"raw"`
	Idle      bool     `yaml:"idle"`
}

// Bytes renders the cycle as it would appear on the wire.
func (c Cycle) Bytes() string {
	if c.Idle {
		return ""
	}
	if c.Raw != "" {
		return c.Raw
	}
	var b strings.Builder
	for _, s := range c.Sentences {
		b.WriteByte('$')
		b.WriteString(s)
		b.WriteString("\r\n")
	}
	return b.String()
}

// ParseScenarioYAML decodes and validates a scenario.
func ParseScenarioYAML(b []byte) (Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

// LoadScenario reads a scenario from a YAML file.
func LoadScenario(path string) (Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenarioYAML(b)
}

func (s Scenario) validate() error {
	if s.Version != 1 {
		return fmt.Errorf("scenario: unsupported version %d", s.Version)
	}
	if len(s.Cycles) == 0 {
		return fmt.Errorf("scenario: at least one cycle is required")
	}
	if s.Repeat < 0 {
		return fmt.Errorf("scenario: repeat must be >= 0")
	}
	for i, c := range s.Cycles {
		n := 0
		if c.Idle {
			n++
		}
		if c.Raw != "" {
			n++
		}
		if len(c.Sentences) > 0 {
			n++
		}
		if n != 1 {
			return fmt.Errorf("scenario: cycle %d must set exactly one of sentences, raw or idle", i)
		}
	}
	return nil
}

// Source returns a byte source that plays the scenario Repeat+1 times.
func (s Scenario) Source() *port.Mock {
	var chunks []string
	for i := 0; i < s.Repeat+1; i++ {
		for _, c := range s.Cycles {
			chunks = append(chunks, c.Bytes())
		}
	}
	return port.NewMock(chunks...)
}
