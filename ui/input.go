package ui

import (
	"snake-rl/game"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var arrowKeys = []struct {
	key int32
	dir game.Direction
}{
	{rl.KeyLeft, game.Left},
	{rl.KeyRight, game.Right},
	{rl.KeyUp, game.Up},
	{rl.KeyDown, game.Down},
}

// ReadDirection returns the direction of an arrow key pressed this frame.
// When several are pressed the last one in the table wins.
func ReadDirection() (game.Direction, bool) {
	var (
		dir     game.Direction
		pressed bool
	)
	for _, k := range arrowKeys {
		if rl.IsKeyPressed(k.key) {
			dir, pressed = k.dir, true
		}
	}
	return dir, pressed
}
