package server

import (
	"time"

	"github.com/shopspring/decimal"

	"PriceBoard/internal/dashboard"
	"PriceBoard/internal/timeframe"
)

// StateView is the JSON shape of the dashboard state.
type StateView struct {
	Symbol        string            `json:"symbol"`
	Timeframe     string            `json:"timeframe"`
	Tab           string            `json:"tab"`
	Loading       bool              `json:"loading"`
	Error         string            `json:"error,omitempty"`
	Current       *decimal.Decimal  `json:"current,omitempty"`
	ChangePercent *decimal.Decimal  `json:"change_percent,omitempty"`
	ChangeDefined bool              `json:"change_defined"`
	Samples       int               `json:"samples"`
	DatasetTitle  string            `json:"dataset_title,omitempty"`
	DatasetLabels []string          `json:"dataset_labels,omitempty"`
	DatasetValues []decimal.Decimal `json:"dataset_values,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func newStateView(s dashboard.State) StateView {
	v := StateView{
		Symbol:    s.Symbol,
		Timeframe: s.Timeframe.String(),
		Tab:       string(s.Tab),
		Loading:   s.Loading,
		Error:     s.LastError,
		Samples:   s.Series.Len(),
		UpdatedAt: s.UpdatedAt,
	}
	if s.Summary != nil {
		cur, pct := s.Summary.Current, s.Summary.ChangePercent
		v.Current = &cur
		v.ChangePercent = &pct
		v.ChangeDefined = s.Summary.ChangeDefined
	}
	if s.Dataset != nil {
		v.DatasetTitle = s.Dataset.Title
		v.DatasetLabels = s.Dataset.Labels
		v.DatasetValues = s.Dataset.Values
	}
	return v
}

// TimeframeView describes one selectable timeframe.
type TimeframeView struct {
	Timeframe   string `json:"timeframe"`
	Label       string `json:"label"`
	Granularity string `json:"granularity"`
	Limit       int    `json:"limit"`
}

func timeframeViews() []TimeframeView {
	all := timeframe.All()
	out := make([]TimeframeView, 0, len(all))
	for _, tf := range all {
		spec := timeframe.Resolve(tf)
		out = append(out, TimeframeView{
			Timeframe:   tf.String(),
			Label:       tf.Label(),
			Granularity: spec.Granularity,
			Limit:       spec.Limit,
		})
	}
	return out
}
