package window

import "github.com/go-gl/glfw/v3.3/glfw"

// Key identifies a keyboard key. Values are GLFW key codes.
type Key int

const (
	KeyUnknown Key = Key(glfw.KeyUnknown)
	KeySpace   Key = Key(glfw.KeySpace)
	KeyEscape  Key = Key(glfw.KeyEscape)
	KeyW       Key = Key(glfw.KeyW)
	KeyA       Key = Key(glfw.KeyA)
	KeyS       Key = Key(glfw.KeyS)
	KeyD       Key = Key(glfw.KeyD)
	KeyQ       Key = Key(glfw.KeyQ)
	KeyE       Key = Key(glfw.KeyE)
	KeyL       Key = Key(glfw.KeyL)
	KeyP       Key = Key(glfw.KeyP)
	Key1       Key = Key(glfw.Key1)
	Key2       Key = Key(glfw.Key2)
	KeyLeft    Key = Key(glfw.KeyLeft)
	KeyRight   Key = Key(glfw.KeyRight)
	KeyUp      Key = Key(glfw.KeyUp)
	KeyDown    Key = Key(glfw.KeyDown)
)
