package api

import (
	"fmt"
	"net/url"
	"strconv"

	models "EdgeFinder/internal/domain/models"
	"EdgeFinder/internal/usecase"
)

type sliderView struct {
	Name  string
	Label string
	Min   int
	Max   int
	Value int
}

type optionView struct {
	Value    string
	Selected bool
}

type rowView struct {
	Symbol    string
	Score     string
	Sentiment string
	Class     string
}

type headerView struct {
	Key   string
	Label string
	URL   string
	Arrow string
	Next  string // order applied when the header is clicked
}

type dashboardView struct {
	Title       string
	Caption     string
	Date        string
	EvaluatedAt string
	Timeframes  []optionView
	Sliders     []sliderView
	Headers     []headerView
	Rows        []rowView
	PinnedDate  string
	Sort        string
	Order       string
}

func newDashboardView(ev *models.Evaluation, req *models.SentimentRequest, presets []models.TimeframeWeights) dashboardView {
	v := dashboardView{
		Title:       "EdgeFinder: Timeframe-Aware Sentiment Dashboard",
		Caption:     ev.Caption,
		Date:        ev.Date,
		EvaluatedAt: ev.EvaluatedAt.UTC().Format("2006-01-02 15:04:05 MST"),
		PinnedDate:  req.Date,
		Sort:        req.Sort,
		Order:       req.Order,
	}

	for _, p := range presets {
		v.Timeframes = append(v.Timeframes, optionView{Value: string(p.Timeframe), Selected: p.Timeframe == ev.Timeframe})
	}

	in := ev.Inputs
	v.Sliders = []sliderView{
		{Name: "macro_us", Label: "US Macro", Min: 0, Max: 100, Value: in.MacroUS},
		{Name: "macro_eu", Label: "EU Macro", Min: 0, Max: 100, Value: in.MacroEU},
		{Name: "macro_asia", Label: "Asia Macro", Min: 0, Max: 100, Value: in.MacroAsia},
		{Name: "options_bias", Label: "Options Bias", Min: -3, Max: 3, Value: in.OptionsBias},
		{Name: "geo_risk", Label: "Geopolitical Risk", Min: -3, Max: 3, Value: in.GeoRisk},
	}

	for _, col := range []struct{ key, label string }{
		{usecase.SortBySymbol, "Symbol"},
		{usecase.SortByScore, "Score"},
		{usecase.SortBySentiment, "Sentiment"},
	} {
		v.Headers = append(v.Headers, sortHeader(col.key, col.label, req))
	}

	for _, r := range ev.Rows {
		v.Rows = append(v.Rows, rowView{
			Symbol:    r.Symbol,
			Score:     fmt.Sprintf("%.2f", r.Score),
			Sentiment: r.Sentiment.Badge(),
			Class:     string(r.Sentiment),
		})
	}
	return v
}

// sortHeader links a column to itself with the current inputs. Clicking the
// active column flips its direction.
func sortHeader(key, label string, req *models.SentimentRequest) headerView {
	order := usecase.OrderAsc
	arrow := ""
	if req.Sort == key {
		if req.Order == usecase.OrderDesc {
			arrow = "▼"
		} else {
			arrow = "▲"
			order = usecase.OrderDesc
		}
	}
	q := dashboardQuery(req)
	q.Set("sort", key)
	q.Set("order", order)
	return headerView{Key: key, Label: label, URL: "/?" + q.Encode(), Arrow: arrow, Next: order}
}

func dashboardQuery(req *models.SentimentRequest) url.Values {
	q := url.Values{}
	q.Set("tf", req.TF)
	q.Set("macro_us", strconv.Itoa(req.MacroUS))
	q.Set("macro_eu", strconv.Itoa(req.MacroEU))
	q.Set("macro_asia", strconv.Itoa(req.MacroAsia))
	q.Set("options_bias", strconv.Itoa(req.OptionsBias))
	q.Set("geo_risk", strconv.Itoa(req.GeoRisk))
	if req.Date != "" {
		q.Set("date", req.Date)
	}
	return q
}
