package main

import (
	"github.com/EBonura/bonnie-engine/pkg/render"
	"github.com/charmbracelet/harmonica"
)

// motion is one movement axis. Input sets a target speed in [-1, 1] and a
// critically damped spring eases the actual speed toward it.
type motion struct {
	speed  float64
	accel  float64 // spring velocity of speed
	target float64
	spring harmonica.Spring
}

func newMotion(fps int) motion {
	return motion{
		// Frequency 6 reaches full speed in about a quarter second.
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

func (m *motion) update() {
	m.speed, m.accel = m.spring.Update(m.speed, m.accel, m.target)
}

// player moves the camera with spring-smoothed velocities.
type player struct {
	cam *render.Camera

	forward, strafe, lift motion
	turn, look            motion

	moveSpeed float64 // World units per second at full input
	turnSpeed float64 // Radians per second at full input
	fps       int
}

func newPlayer(cam *render.Camera, fps int, moveSpeed, turnSpeed float64) *player {
	p := &player{cam: cam, moveSpeed: moveSpeed, turnSpeed: turnSpeed, fps: fps}
	p.stop()
	return p
}

func (p *player) axes() []*motion {
	return []*motion{&p.forward, &p.strafe, &p.lift, &p.turn, &p.look}
}

// stop zeroes every axis, as after a teleport.
func (p *player) stop() {
	for _, m := range p.axes() {
		*m = newMotion(p.fps)
	}
}

// update advances one frame of dt seconds. With decay set, targets fade
// toward zero; terminals send no key release events, so held keys are
// seen as repeated presses.
func (p *player) update(dt float64, decay bool) {
	for _, m := range p.axes() {
		m.update()
		if decay {
			m.target *= 0.8
		}
	}

	p.cam.MoveForward(p.forward.speed * p.moveSpeed * dt)
	p.cam.MoveRight(p.strafe.speed * p.moveSpeed * dt)
	p.cam.MoveUp(p.lift.speed * p.moveSpeed * dt)
	p.cam.Rotate(p.look.speed*p.turnSpeed*dt, p.turn.speed*p.turnSpeed*dt, 0)
}
