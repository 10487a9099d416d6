package ui

import (
	"fmt"

	"snake-rl/config"
	"snake-rl/game"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	plotHeight    = 160 // height of the score panel under the board
	borderPadding = 10  // padding around the score panel
	fontSize      = 25
	smallFontSize = 16
)

var (
	bodyOuter = rl.Color{R: 0, G: 0, B: 255, A: 255}
	bodyInner = rl.Color{R: 0, G: 100, B: 255, A: 255}
	foodColor = rl.Color{R: 200, G: 0, B: 0, A: 255}
	meanColor = rl.Color{R: 255, G: 200, B: 0, A: 255}
)

// PlotData is the score history drawn in the panel under the board.
type PlotData struct {
	Scores []int
	Means  []float64
	Record int
}

// Renderer draws the board and the optional score panel with raylib.
type Renderer struct {
	cellSize    int32
	boardWidth  int32
	boardHeight int32
	showPlot    bool
}

// NewRenderer sizes cells and window from the board config.
func NewRenderer(board config.Board, showPlot bool) *Renderer {
	cell := int32(board.BlockSize)
	return &Renderer{
		cellSize:    cell,
		boardWidth:  cell * int32(board.Width),
		boardHeight: cell * int32(board.Height),
		showPlot:    showPlot,
	}
}

// WindowSize is the size the window must be opened with.
func (r *Renderer) WindowSize() (int32, int32) {
	if r.showPlot {
		return r.boardWidth, r.boardHeight + plotHeight
	}
	return r.boardWidth, r.boardHeight
}

// Draw renders one frame. plot may be nil; every overlay line is centred on
// the board.
func (r *Renderer) Draw(snap game.Snapshot, plot *PlotData, overlay ...string) {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	inset := r.cellSize / 5
	inner := r.cellSize - 2*inset
	for _, p := range snap.Snake {
		x := int32(p.X) * r.cellSize
		y := int32(p.Y) * r.cellSize
		rl.DrawRectangle(x, y, r.cellSize, r.cellSize, bodyOuter)
		rl.DrawRectangle(x+inset, y+inset, inner, inner, bodyInner)
	}
	rl.DrawRectangle(int32(snap.Food.X)*r.cellSize, int32(snap.Food.Y)*r.cellSize, r.cellSize, r.cellSize, foodColor)

	rl.DrawText(fmt.Sprintf("Score: %d", snap.Score), 0, 0, fontSize, rl.White)

	for i, line := range overlay {
		textWidth := rl.MeasureText(line, fontSize)
		rl.DrawText(line,
			(r.boardWidth-textWidth)/2,
			r.boardHeight/2+int32(i)*(fontSize+5),
			fontSize, rl.White)
	}

	if r.showPlot && plot != nil {
		r.drawPerformanceGraph(plot)
	}
	rl.EndDrawing()
}

// drawPerformanceGraph traccia i punteggi per partita e la media mobile.
func (r *Renderer) drawPerformanceGraph(plot *PlotData) {
	graphX := int32(borderPadding)
	graphY := r.boardHeight + borderPadding + smallFontSize
	graphWidth := r.boardWidth - 2*borderPadding
	graphHeight := int32(plotHeight) - 2*borderPadding - smallFontSize

	rl.DrawLine(0, r.boardHeight, r.boardWidth, r.boardHeight, rl.DarkGray)
	rl.DrawRectangleLines(graphX, graphY, graphWidth, graphHeight, rl.White)

	mean := 0.0
	if len(plot.Means) > 0 {
		mean = plot.Means[len(plot.Means)-1]
	}
	header := fmt.Sprintf("Games: %d  Record: %d  Mean: %.2f", len(plot.Scores), plot.Record, mean)
	rl.DrawText(header, graphX, r.boardHeight+borderPadding/2, smallFontSize, rl.White)

	if len(plot.Scores) < 2 {
		return
	}

	maxScore := 1
	for _, s := range plot.Scores {
		maxScore = max(maxScore, s)
	}
	n := len(plot.Scores)
	xAt := func(i int) int32 {
		return graphX + int32(float32(graphWidth)*float32(i)/float32(n-1))
	}
	yAt := func(v float64) int32 {
		return graphY + graphHeight - int32(float32(graphHeight)*float32(v)/float32(maxScore))
	}

	for j := 1; j < n; j++ {
		rl.DrawLine(xAt(j-1), yAt(float64(plot.Scores[j-1])), xAt(j), yAt(float64(plot.Scores[j])), bodyInner)
		rl.DrawLine(xAt(j-1), yAt(plot.Means[j-1]), xAt(j), yAt(plot.Means[j]), meanColor)
	}
}
