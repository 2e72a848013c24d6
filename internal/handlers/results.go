package handlers

import (
	"net/http"
	"strings"

	"interview-ace/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

type ResultsHandler struct {
	log *zap.Logger
}

func NewResultsHandler(log *zap.Logger) *ResultsHandler {
	return &ResultsHandler{log: log}
}

// ShowProgress returns the ECharts options for the score-over-time line
// chart. The client hydrates them straight into echarts.
func (h *ResultsHandler) ShowProgress(c *gin.Context) {
	user := currentUser(c)

	overall, err := repository.GetScoreTimeline(c, user.ID, "overall")
	if err != nil {
		h.log.Error("Failed to get overall timeline", zap.Error(err), zap.Uint("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load progress data"})
		return
	}
	posture, err := repository.GetScoreTimeline(c, user.ID, "posture")
	if err != nil {
		h.log.Error("Failed to get posture timeline", zap.Error(err), zap.Uint("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load progress data"})
		return
	}
	eyeContact, err := repository.GetScoreTimeline(c, user.ID, "eye_contact")
	if err != nil {
		h.log.Error("Failed to get eye contact timeline", zap.Error(err), zap.Uint("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load progress data"})
		return
	}

	chart := generateProgressChart(overall, posture, eyeContact)
	c.JSON(http.StatusOK, gin.H{"chart": chart.JSON()})
}

// ShowViolations returns two charts: violations by kind across all sessions
// and the per-session violation totals over time.
func (h *ResultsHandler) ShowViolations(c *gin.Context) {
	user := currentUser(c)

	breakdown, err := repository.GetViolationBreakdown(c, user.ID)
	if err != nil {
		h.log.Error("Failed to get violation breakdown", zap.Error(err), zap.Uint("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load violation data"})
		return
	}
	timeline, err := repository.GetViolationTimeline(c, user.ID)
	if err != nil {
		h.log.Error("Failed to get violation timeline", zap.Error(err), zap.Uint("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load violation data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"byKind":   generateViolationChart(breakdown).JSON(),
		"timeline": generateViolationTimelineChart(timeline).JSON(),
	})
}

func generateProgressChart(overall, posture, eyeContact []repository.TimelineDataPoint) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Interview Performance Over Time",
			Subtitle: "Per-session scores",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "time",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	line.AddSeries("Overall", timelineItems(overall))
	line.AddSeries("Posture", timelineItems(posture))
	line.AddSeries("Eye Contact", timelineItems(eyeContact))
	line.SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}

func generateViolationTimelineChart(data []repository.TimelineDataPoint) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Violations per Session",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "time",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	line.AddSeries("Violations", timelineItems(data))
	return line
}

func generateViolationChart(breakdown []repository.ViolationBreakdownPoint) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Integrity Violations by Type",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	labels := make([]string, 0, len(breakdown))
	items := make([]opts.BarData, 0, len(breakdown))
	for _, point := range breakdown {
		labels = append(labels, kindLabel(point.Kind))
		items = append(items, opts.BarData{Value: point.Count})
	}

	bar.SetXAxis(labels).AddSeries("Violations", items)
	return bar
}

// timelineItems converts repository points into [date, value] pairs.
func timelineItems(data []repository.TimelineDataPoint) []opts.LineData {
	items := make([]opts.LineData, 0, len(data))
	for _, point := range data {
		items = append(items, opts.LineData{Value: []interface{}{point.Date, point.Value}})
	}
	return items
}

func kindLabel(kind string) string {
	return strings.Title(strings.ReplaceAll(kind, "_", " "))
}
