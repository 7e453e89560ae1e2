package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/gps_fix/internal/sentence"
)

const coldStart = `
version: 1
name: cold start
cycles:
  - sentences:
      - "GPGGA,123519,,,,,0,00,,,M,,M,,*66"
      - "GPGSA,A,1,,,,,,,,,,,,,,,*1E"
  - idle: true
  - sentences:
      - "GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A"
      - "GPGSA,A,3,04,05,,09,12,,,24,,,,,2.5,1.3,2.1*39"
`

func TestParseScenarioYAML(t *testing.T) {
	s, err := ParseScenarioYAML([]byte(coldStart))
	require.NoError(t, err)
	assert.Equal(t, "cold start", s.Name)
	require.Len(t, s.Cycles, 3)
	assert.True(t, s.Cycles[1].Idle)
	assert.Equal(t, "$GPGGA,123519,,,,,0,00,,,M,,M,,*66\r\n$GPGSA,A,1,,,,,,,,,,,,,,,*1E\r\n", s.Cycles[0].Bytes())
}

func TestScenarioSource_PlaysCyclesInOrder(t *testing.T) {
	s, err := ParseScenarioYAML([]byte(coldStart))
	require.NoError(t, err)
	src := s.Source()

	snap, _ := sentence.Aggregate(src, sentence.AggregateOptions{})
	assert.Equal(t, "0", snap["GPGGA"][5])

	snap, _ = sentence.Aggregate(src, sentence.AggregateOptions{})
	assert.Empty(t, snap)

	snap, _ = sentence.Aggregate(src, sentence.AggregateOptions{})
	assert.Equal(t, "A", snap["GPRMC"][1])
}

func TestScenarioSource_Repeat(t *testing.T) {
	s := Scenario{Version: 1, Repeat: 2, Cycles: []Cycle{{Raw: "$GPGLL,1$GPGSA"}}}
	require.NoError(t, s.validate())
	assert.Equal(t, 3, s.Source().Pending())
}

func TestParseScenarioYAML_Invalid(t *testing.T) {
	tests := map[string]string{
		"version":   "version: 2\ncycles:\n  - idle: true\n",
		"no cycles": "version: 1\n",
		"ambiguous": "version: 1\ncycles:\n  - idle: true\n    raw: \"$GPGGA\"\n",
		"empty":     "version: 1\ncycles:\n  - {}\n",
		"repeat":    "version: 1\nrepeat: -1\ncycles:\n  - idle: true\n",
		"not yaml":  "version: [1\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScenarioYAML([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(coldStart), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Len(t, s.Cycles, 3)

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
