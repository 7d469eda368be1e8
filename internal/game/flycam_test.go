package game

import (
	"math"
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/kbjakex/voxels03/internal/config"
	"github.com/kbjakex/voxels03/internal/input"
)

func TestFlyCamDefaultFacesNegativeZ(t *testing.T) {
	cam := NewFlyCam(mgl32.Vec3{})
	front := cam.Front()
	if front.Sub(mgl32.Vec3{0, 0, -1}).Len() > 1e-6 {
		t.Fatalf("front = %v, want (0, 0, -1)", front)
	}
}

func TestFlyCamFirstCursorEventSwallowed(t *testing.T) {
	cam := NewFlyCam(mgl32.Vec3{})
	cam.HandleMouseMovement(500, 300)
	if cam.Yaw != -90 || cam.Pitch != 0 {
		t.Fatalf("first cursor event moved the view: yaw %v, pitch %v", cam.Yaw, cam.Pitch)
	}
	cam.HandleMouseMovement(510, 300)
	if cam.Yaw == -90 {
		t.Fatal("second cursor event did not move the view")
	}
}

func TestFlyCamPitchClamped(t *testing.T) {
	cam := NewFlyCam(mgl32.Vec3{})
	cam.HandleMouseMovement(0, 0)
	cam.HandleMouseMovement(0, -1e6)
	if cam.Pitch != 89 {
		t.Fatalf("pitch = %v, want clamp at 89", cam.Pitch)
	}
	cam.HandleMouseMovement(0, 1e6)
	if cam.Pitch != -89 {
		t.Fatalf("pitch = %v, want clamp at -89", cam.Pitch)
	}
}

func TestFlyCamUpdateMovesAlongLook(t *testing.T) {
	config.SetFlySpeed(10)
	cam := NewFlyCam(mgl32.Vec3{})
	im := input.NewInputManager()
	im.HandleKeyEvent(glfw.KeyW, glfw.Press)

	cam.Update(1.0, im)

	if cam.Position.Sub(mgl32.Vec3{0, 0, -10}).Len() > 1e-3 {
		t.Fatalf("position = %v, want (0, 0, -10)", cam.Position)
	}
}

func TestFlyCamDiagonalNotFaster(t *testing.T) {
	config.SetFlySpeed(10)
	cam := NewFlyCam(mgl32.Vec3{})
	im := input.NewInputManager()
	im.HandleKeyEvent(glfw.KeyW, glfw.Press)
	im.HandleKeyEvent(glfw.KeyD, glfw.Press)

	cam.Update(1.0, im)

	if got := float64(cam.Position.Len()); math.Abs(got-10) > 1e-3 {
		t.Fatalf("diagonal distance = %v, want 10", got)
	}
}

func TestFlyCamSprintMultiplier(t *testing.T) {
	config.SetFlySpeed(10)
	cam := NewFlyCam(mgl32.Vec3{})
	im := input.NewInputManager()
	im.HandleKeyEvent(glfw.KeyW, glfw.Press)
	im.HandleKeyEvent(glfw.KeyLeftControl, glfw.Press)

	cam.Update(1.0, im)

	if got := float64(cam.Position.Len()); math.Abs(got-10*sprintMultiplier) > 1e-3 {
		t.Fatalf("sprint distance = %v, want %v", got, 10*sprintMultiplier)
	}
}

func TestFlyCamOpposedInputsCancel(t *testing.T) {
	start := mgl32.Vec3{1, 2, 3}
	cam := NewFlyCam(start)
	im := input.NewInputManager()
	im.HandleKeyEvent(glfw.KeyW, glfw.Press)
	im.HandleKeyEvent(glfw.KeyS, glfw.Press)

	cam.Update(1.0, im)

	if cam.Position != start {
		t.Fatalf("position = %v, want unchanged %v", cam.Position, start)
	}
}

func TestFlyCamAscendIsWorldVertical(t *testing.T) {
	config.SetFlySpeed(10)
	cam := NewFlyCam(mgl32.Vec3{})
	cam.Pitch = 45 // looking up must not tilt vertical flight
	im := input.NewInputManager()
	im.HandleKeyEvent(glfw.KeySpace, glfw.Press)

	cam.Update(1.0, im)

	if cam.Position.Sub(mgl32.Vec3{0, 10, 0}).Len() > 1e-3 {
		t.Fatalf("position = %v, want (0, 10, 0)", cam.Position)
	}
}
