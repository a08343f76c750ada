// Package physics holds the physical constants of the demos and the small
// amount of shared math built on them: Larmor frequencies, the off-resonant
// effective field, label formatting, and quaternion rotations of [r3.Vec].
//
// Rotations follow the usual raise/rotate/lower pattern:
//
//	v := physics.RotateZ(physics.UnitX, math.Pi/2) // ≈ (0, 1, 0)
package physics
