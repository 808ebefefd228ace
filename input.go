package main

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

// Movement per key, x to the right and y forward
var moveKeys = map[glfw.Key]mgl32.Vec2{
	glfw.KeyW: {0, 1},
	glfw.KeyS: {0, -1},
	glfw.KeyA: {-1, 0},
	glfw.KeyD: {1, 0},
}

// InputHandler collects key and cursor state from glfw callbacks
type InputHandler struct {
	pressed map[glfw.Key]bool

	haveCursor  bool
	cursor      [2]float64
	lastCursor  [2]float64
	cursorDelta [2]float64
}

func NewInputHandler() *InputHandler {
	return &InputHandler{pressed: make(map[glfw.Key]bool)}
}

func (in *InputHandler) attach(w *glfw.Window) {
	w.SetKeyCallback(in.keyCallback)
	w.SetCursorPosCallback(in.cursorCallback)
}

func (in *InputHandler) keyCallback(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	switch action {
	case glfw.Press:
		in.pressed[key] = true
	case glfw.Release:
		delete(in.pressed, key)
	}
}

func (in *InputHandler) cursorCallback(_ *glfw.Window, x, y float64) {
	in.cursor = [2]float64{x, y}
	if !in.haveCursor {
		in.lastCursor = in.cursor
		in.haveCursor = true
	}
}

// endFrame latches the cursor movement since the previous frame
func (in *InputHandler) endFrame() {
	in.cursorDelta = [2]float64{in.cursor[0] - in.lastCursor[0], in.cursor[1] - in.lastCursor[1]}
	in.lastCursor = in.cursor
}

func (in *InputHandler) CursorDelta() [2]float64 {
	return in.cursorDelta
}

// Movement sums the directions of all held movement keys
func (in *InputHandler) Movement() mgl32.Vec2 {
	var m mgl32.Vec2
	for key, dir := range moveKeys {
		if in.pressed[key] {
			m = m.Add(dir)
		}
	}
	return m
}

func (in *InputHandler) quit() bool {
	return in.pressed[glfw.KeyEscape]
}
