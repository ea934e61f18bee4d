package screener

import (
	"math"
	"strconv"
	"time"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Float marshals NaN as JSON null. Missing metrics stay NaN end to end
// inside the pipeline; only the serialized report needs the translation.
type Float float64

// MarshalJSON implements json.Marshaler
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return []byte(formatFloat(v)), nil
}

// IsNaN reports whether the value carries no signal
func (f Float) IsNaN() bool {
	return math.IsNaN(float64(f))
}

// Result is the scored outcome for one ticker
type Result struct {
	Rank    int     `json:"rank"`
	Ticker  string  `json:"ticker"`
	Company string  `json:"company,omitempty"`
	Weight  float64 `json:"index_weight,omitempty"`

	// Composite is the mean of the group composites, NaN groups skipped
	Composite Float            `json:"composite"`
	Groups    map[string]Float `json:"groups"`

	// Raw inputs kept for auditability
	Metrics   map[string]Float `json:"metrics"`
	EPSSource string           `json:"eps_source,omitempty"`
}

// Report is the full output of one screening pass
type Report struct {
	StrategyID   string    `json:"strategy_id"`
	StrategyHash string    `json:"strategy_hash,omitempty"`
	Index        string    `json:"index"`
	GeneratedAt  time.Time `json:"generated_at"`
	Universe     int       `json:"universe"`
	Results      []Result  `json:"results"`
}
