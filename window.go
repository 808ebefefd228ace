package main

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Window owns the glfw window and GL context of the preview
type Window struct {
	win   *glfw.Window
	Input *InputHandler

	lastFrame float64
}

// NewWindow opens a window with a 4.1 core context and captures the
// cursor. glfw must be initialized.
func NewWindow(width, height int, title string) (*Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create OpenGL window: %w", err)
	}
	win.MakeContextCurrent()
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		gl.Viewport(0, 0, int32(w), int32(h))
	})
	win.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)

	input := NewInputHandler()
	input.attach(win)
	return &Window{win: win, Input: input, lastFrame: glfw.GetTime()}, nil
}

// NextFrame shows the finished frame, handles events and returns the
// seconds since the previous call
func (w *Window) NextFrame() float32 {
	w.win.SwapBuffers()
	glfw.PollEvents()
	if w.Input.quit() {
		w.win.SetShouldClose(true)
	}
	w.Input.endFrame()

	now := glfw.GetTime()
	dt := now - w.lastFrame
	w.lastFrame = now
	return float32(dt)
}

func (w *Window) Aspect() float32 {
	width, height := w.win.GetFramebufferSize()
	return float32(width) / float32(max(height, 1))
}

func (w *Window) Closed() bool {
	return w.win.ShouldClose()
}
