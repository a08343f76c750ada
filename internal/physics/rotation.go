package physics

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	UnitX = r3.Vec{X: 1}
	UnitY = r3.Vec{Y: 1}
	UnitZ = r3.Vec{Z: 1}
)

func raise(v r3.Vec) quat.Number {
	return quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
}

func lower(q quat.Number) r3.Vec {
	return r3.Vec{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
}

// Rotate turns v by angle (radians, right-handed) about axis.
func Rotate(v, axis r3.Vec, angle float64) r3.Vec {
	n := r3.Norm(axis)
	if n == 0 {
		return v
	}
	u := r3.Scale(1/n, axis)
	s, c := math.Sincos(angle / 2)
	q := quat.Number{Real: c, Imag: s * u.X, Jmag: s * u.Y, Kmag: s * u.Z}
	return lower(quat.Mul(quat.Mul(q, raise(v)), quat.Conj(q)))
}

func RotateZ(v r3.Vec, angle float64) r3.Vec { return Rotate(v, UnitZ, angle) }
func RotateY(v r3.Vec, angle float64) r3.Vec { return Rotate(v, UnitY, angle) }

// Polar returns r·(cos φ, sin φ, 0).
func Polar(r, phi float64) r3.Vec {
	s, c := math.Sincos(phi)
	return r3.Vec{X: r * c, Y: r * s}
}

func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// RoundVec rounds every component to prec decimals.
func RoundVec(v r3.Vec, prec int) r3.Vec {
	return r3.Vec{X: scalar.Round(v.X, prec), Y: scalar.Round(v.Y, prec), Z: scalar.Round(v.Z, prec)}
}
