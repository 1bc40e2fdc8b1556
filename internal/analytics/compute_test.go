package analytics

import (
	"testing"
	"time"

	"github.com/senticheck/senticheck/internal/models"
)

func TestTrend(t *testing.T) {
	cases := []struct {
		name             string
		today, yesterday int
		want             float64
	}{
		{"growth", 15, 10, 50.0},
		{"decline", 5, 10, -50.0},
		{"flat", 10, 10, 0.0},
		{"no activity yesterday", 5, 0, 0.0},
		{"no activity either day", 0, 0, 0.0},
		{"dropped to zero", 0, 10, -100.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Trend(tc.today, tc.yesterday); got != tc.want {
				t.Errorf("Trend(%d, %d) = %v, want %v", tc.today, tc.yesterday, got, tc.want)
			}
		})
	}
}

func TestVolumeTrend(t *testing.T) {
	if got := VolumeTrend(20, 10); got != 100.0 {
		t.Errorf("VolumeTrend(20, 10) = %v, want 100.0", got)
	}
	if got := VolumeTrend(5, 0); got != 100.0 {
		t.Errorf("VolumeTrend(5, 0) = %v, want 100.0", got)
	}
	if got := VolumeTrend(0, 0); got != 0.0 {
		t.Errorf("VolumeTrend(0, 0) = %v, want 0.0", got)
	}
}

func TestFillDateRangeDenseAxis(t *testing.T) {
	end := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)
	sparse := []models.DailySentiment{
		{Date: "2025-06-05", Positive: 3, Negative: 1},
		{Date: "2025-06-09", Neutral: 7},
	}

	got := FillDateRange(sparse, end, 7)

	if len(got) != 7 {
		t.Fatalf("expected 7 entries, got %d", len(got))
	}
	if got[0].Date != "2025-06-04" {
		t.Errorf("first date = %s, want 2025-06-04", got[0].Date)
	}
	if got[6].Date != "2025-06-10" {
		t.Errorf("last date = %s, want 2025-06-10", got[6].Date)
	}
	if got[1].Positive != 3 || got[1].Negative != 1 {
		t.Errorf("2025-06-05 counts not carried over: %+v", got[1])
	}
	if got[5].Neutral != 7 {
		t.Errorf("2025-06-09 counts not carried over: %+v", got[5])
	}
	for _, i := range []int{0, 2, 3, 4, 6} {
		if got[i].Positive != 0 || got[i].Negative != 0 || got[i].Neutral != 0 {
			t.Errorf("gap date %s should have zero counts: %+v", got[i].Date, got[i])
		}
	}
}

func TestFillDateRangeEmptyInput(t *testing.T) {
	end := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	got := FillDateRange(nil, end, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	for _, row := range got {
		if row.Positive != 0 || row.Negative != 0 || row.Neutral != 0 {
			t.Errorf("expected zero counts for %s: %+v", row.Date, row)
		}
	}
}

func TestClassifyMomentum(t *testing.T) {
	cases := []struct {
		name               string
		recent, earlier    float64
		wantClass          string
		wantChange         float64
	}{
		{"improving", 60.0, 50.0, MomentumImproving, 10.0},
		{"declining", 40.0, 50.0, MomentumDeclining, -10.0},
		{"stable small gain", 54.0, 50.0, MomentumStable, 4.0},
		{"stable small drop", 46.0, 50.0, MomentumStable, -4.0},
		{"exactly at threshold", 55.0, 50.0, MomentumStable, 5.0},
		{"just past threshold", 55.1, 50.0, MomentumImproving, 5.1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			class, change := ClassifyMomentum(tc.recent, tc.earlier)
			if class != tc.wantClass {
				t.Errorf("class = %s, want %s", class, tc.wantClass)
			}
			if change != tc.wantChange {
				t.Errorf("change = %v, want %v", change, tc.wantChange)
			}
		})
	}
}

func TestShare(t *testing.T) {
	if got := Share(1, 3); got < 33.3 || got > 33.4 {
		t.Errorf("Share(1, 3) = %v, want ~33.33", got)
	}
	if got := Share(5, 0); got != 0.0 {
		t.Errorf("Share(5, 0) = %v, want 0.0", got)
	}
}

func TestRankKeyword(t *testing.T) {
	counts := []models.KeywordCount{
		{Keyword: "golang", Count: 50},
		{Keyword: "python", Count: 30},
		{Keyword: "rust", Count: 10},
	}

	rank, total := RankKeyword(counts, "python")
	if rank != 2 || total != 3 {
		t.Errorf("rank = %d/%d, want 2/3", rank, total)
	}

	rank, total = RankKeyword(counts, "missing")
	if rank != 0 || total != 3 {
		t.Errorf("absent keyword rank = %d/%d, want 0/3", rank, total)
	}

	rank, total = RankKeyword(nil, "anything")
	if rank != 0 || total != 0 {
		t.Errorf("empty leaderboard rank = %d/%d, want 0/0", rank, total)
	}
}

func TestScoreMappings(t *testing.T) {
	if got := PositivityScore(models.SentimentPositive); got != 1.0 {
		t.Errorf("PositivityScore(positive) = %v", got)
	}
	if got := PositivityScore(models.SentimentNeutral); got != 0.5 {
		t.Errorf("PositivityScore(neutral) = %v", got)
	}
	if got := PositivityScore(models.SentimentNegative); got != 0.0 {
		t.Errorf("PositivityScore(negative) = %v", got)
	}

	if got := SimplifiedScore(models.SentimentPositive); got != 0.8 {
		t.Errorf("SimplifiedScore(positive) = %v", got)
	}
	if got := SimplifiedScore(models.SentimentNegative); got != 0.2 {
		t.Errorf("SimplifiedScore(negative) = %v", got)
	}
	if got := SimplifiedScore(models.SentimentNeutral); got != 0.5 {
		t.Errorf("SimplifiedScore(neutral) = %v", got)
	}
}

func TestPeakDayPicksBestQualifyingDate(t *testing.T) {
	rows := []models.DailySentiment{
		{Date: "2026-08-01", Positive: 3, Negative: 1, Neutral: 1},
		{Date: "2026-08-02", Positive: 5, Negative: 0, Neutral: 0},
		{Date: "2026-08-03", Positive: 1, Negative: 4, Neutral: 0},
	}

	score, date := PeakDay(rows)
	if date != "2026-08-02" {
		t.Errorf("peak date = %q, want 2026-08-02", date)
	}
	if score != 100.0 {
		t.Errorf("peak score = %v, want 100.0", score)
	}
}

func TestPeakDaySkipsLowVolumeDates(t *testing.T) {
	rows := []models.DailySentiment{
		{Date: "2026-08-01", Positive: 2, Negative: 0, Neutral: 0},
		{Date: "2026-08-02", Positive: 2, Negative: 2, Neutral: 1},
	}

	score, date := PeakDay(rows)
	if date != "2026-08-02" {
		t.Errorf("peak date = %q, want 2026-08-02", date)
	}
	if score != 50.0 {
		t.Errorf("peak score = %v, want 50.0", score)
	}
}

func TestPeakDayTieGoesToLaterDate(t *testing.T) {
	rows := []models.DailySentiment{
		{Date: "2026-08-01", Positive: 5, Negative: 0, Neutral: 0},
		{Date: "2026-08-04", Positive: 5, Negative: 0, Neutral: 0},
	}

	_, date := PeakDay(rows)
	if date != "2026-08-04" {
		t.Errorf("tied peak date = %q, want 2026-08-04", date)
	}
}

func TestPeakDayNoQualifyingDates(t *testing.T) {
	score, date := PeakDay([]models.DailySentiment{
		{Date: "2026-08-01", Positive: 1, Negative: 0, Neutral: 0},
	})
	if score != 0.0 || date != "" {
		t.Errorf("PeakDay = (%v, %q), want (0.0, \"\")", score, date)
	}

	score, date = PeakDay(nil)
	if score != 0.0 || date != "" {
		t.Errorf("PeakDay(nil) = (%v, %q), want (0.0, \"\")", score, date)
	}
}
