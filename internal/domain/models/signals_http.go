package models

// Requests for the sentiment HTTP and websocket endpoints. Defaults are applied
// before binding so an explicit zero from the client is kept. The timeframe and
// evaldate tags are registered by the API handler.

type SentimentRequest struct {
	TF          string `query:"tf" json:"tf" default:"Daily" validate:"timeframe"`
	MacroUS     int    `query:"macro_us" json:"macro_us" default:"40"`
	MacroEU     int    `query:"macro_eu" json:"macro_eu" default:"30"`
	MacroAsia   int    `query:"macro_asia" json:"macro_asia" default:"30"`
	OptionsBias int    `query:"options_bias" json:"options_bias"`
	GeoRisk     int    `query:"geo_risk" json:"geo_risk"`
	Date        string `query:"date" json:"date" validate:"omitempty,evaldate"`
	Sort        string `query:"sort" json:"sort" validate:"omitempty,oneof=symbol score sentiment"`
	Order       string `query:"order" json:"order" default:"asc" validate:"oneof=asc desc"`
}

// Inputs extracts the scoring inputs.
func (r *SentimentRequest) Inputs() SignalInputs {
	return SignalInputs{
		MacroUS:     r.MacroUS,
		MacroEU:     r.MacroEU,
		MacroAsia:   r.MacroAsia,
		OptionsBias: r.OptionsBias,
		GeoRisk:     r.GeoRisk,
	}
}

type ScoreRequest struct {
	Symbol      string `query:"symbol" json:"symbol" validate:"required"`
	TF          string `query:"tf" json:"tf" default:"Daily" validate:"timeframe"`
	MacroUS     int    `query:"macro_us" json:"macro_us" default:"40"`
	MacroEU     int    `query:"macro_eu" json:"macro_eu" default:"30"`
	MacroAsia   int    `query:"macro_asia" json:"macro_asia" default:"30"`
	OptionsBias int    `query:"options_bias" json:"options_bias"`
	GeoRisk     int    `query:"geo_risk" json:"geo_risk"`
	Date        string `query:"date" json:"date" validate:"omitempty,evaldate"`
}

func (r *ScoreRequest) Inputs() SignalInputs {
	return SignalInputs{
		MacroUS:     r.MacroUS,
		MacroEU:     r.MacroEU,
		MacroAsia:   r.MacroAsia,
		OptionsBias: r.OptionsBias,
		GeoRisk:     r.GeoRisk,
	}
}

type WeightsRequest struct {
	TF string `query:"tf" json:"tf" default:"Daily" validate:"timeframe"`
}
