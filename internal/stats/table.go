package stats

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/shapematch/internal/model"
)

const playedLayout = "2006-01-02 15:04"

// resultRow is one line of the recent games table.
type resultRow struct {
	index  string
	played string
	moves  string
}

var resultHeader = resultRow{index: "#", played: "Played", moves: "Moves"}

// resultRows lists records newest first, numbered in play order.
func resultRows(records []model.ResultRecord) []resultRow {
	rows := make([]resultRow, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		played := "-"
		if !r.Timestamp.IsZero() {
			played = r.Timestamp.Local().Format(playedLayout)
		}
		rows = append(rows, resultRow{
			index:  strconv.Itoa(i + 1),
			played: played,
			moves:  strconv.Itoa(r.Clicks),
		})
	}
	return rows
}

// formatResults lays rows out under the header. The played column always fits a
// full timestamp; index and moves are right-aligned.
func formatResults(rows []resultRow) []string {
	indexW := runewidth.StringWidth(resultHeader.index)
	playedW := max(runewidth.StringWidth(resultHeader.played), len(playedLayout))
	movesW := runewidth.StringWidth(resultHeader.moves)
	for _, r := range rows {
		indexW = max(indexW, runewidth.StringWidth(r.index))
		playedW = max(playedW, runewidth.StringWidth(r.played))
		movesW = max(movesW, runewidth.StringWidth(r.moves))
	}

	lines := make([]string, 0, len(rows)+1)
	for _, r := range append([]resultRow{resultHeader}, rows...) {
		lines = append(lines, strings.Join([]string{
			runewidth.FillLeft(r.index, indexW),
			runewidth.FillRight(r.played, playedW),
			runewidth.FillLeft(r.moves, movesW),
		}, " "))
	}
	return lines
}
