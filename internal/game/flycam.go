package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/kbjakex/voxels03/internal/config"
	"github.com/kbjakex/voxels03/internal/input"
)

const sprintMultiplier = 4.0

// FlyCam is a free camera: mouse look plus unclipped 6-way movement. There is
// no physics body; the camera is the eye.
type FlyCam struct {
	Position mgl32.Vec3
	Yaw      float64 // degrees, -90 faces -Z
	Pitch    float64 // degrees, clamped to +-89

	// FirstMouse swallows the first cursor event after the cursor is
	// captured, so the jump to the captured position does not spin the view.
	FirstMouse bool
	lastX      float64
	lastY      float64
}

// NewFlyCam creates a camera at the given position, facing -Z.
func NewFlyCam(pos mgl32.Vec3) *FlyCam {
	return &FlyCam{
		Position:   pos,
		Yaw:        -90,
		FirstMouse: true,
	}
}

// HandleMouseMovement applies a cursor position event to yaw and pitch.
func (c *FlyCam) HandleMouseMovement(xpos, ypos float64) {
	if c.FirstMouse {
		c.lastX = xpos
		c.lastY = ypos
		c.FirstMouse = false
		return
	}

	xoffset := xpos - c.lastX
	yoffset := c.lastY - ypos
	c.lastX = xpos
	c.lastY = ypos

	sensitivity := config.GetMouseSensitivity()
	c.Yaw += xoffset * sensitivity
	c.Pitch += yoffset * sensitivity

	if c.Pitch > 89.0 {
		c.Pitch = 89.0
	}
	if c.Pitch < -89.0 {
		c.Pitch = -89.0
	}
}

// Front returns the unit look direction.
func (c *FlyCam) Front() mgl32.Vec3 {
	yaw := c.Yaw * math.Pi / 180
	pitch := c.Pitch * math.Pi / 180
	return mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}
}

// Update moves the camera from the held movement actions. Forward follows the
// look direction, ascend and descend stay on the world Y axis.
func (c *FlyCam) Update(dt float64, im *input.InputManager) {
	front := c.Front()
	up := mgl32.Vec3{0, 1, 0}
	right := front.Cross(up).Normalize()

	speed := config.GetFlySpeed()
	if im.IsActive(input.ActionSprint) {
		speed *= sprintMultiplier
	}
	step := float32(speed * dt)

	var move mgl32.Vec3
	if im.IsActive(input.ActionMoveForward) {
		move = move.Add(front)
	}
	if im.IsActive(input.ActionMoveBackward) {
		move = move.Sub(front)
	}
	if im.IsActive(input.ActionMoveRight) {
		move = move.Add(right)
	}
	if im.IsActive(input.ActionMoveLeft) {
		move = move.Sub(right)
	}
	if im.IsActive(input.ActionAscend) {
		move = move.Add(up)
	}
	if im.IsActive(input.ActionDescend) {
		move = move.Sub(up)
	}
	if move.Len() > 0 {
		c.Position = c.Position.Add(move.Normalize().Mul(step))
	}
}

// View returns the view matrix.
func (c *FlyCam) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 1, 0})
}
