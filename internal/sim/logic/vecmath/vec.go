package vecmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a world-space vector. Y is up; the arena ground plane is XZ.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

var (
	Zero    = Vec3{}
	Up      = Vec3{Y: 1}
	Forward = Vec3{Z: 1}
)

func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// GL returns a as an mgl64 vector.
func (a Vec3) GL() mgl64.Vec3 { return mgl64.Vec3{a.X, a.Y, a.Z} }

func FromGL(v mgl64.Vec3) Vec3 { return Vec3{X: v[0], Y: v[1], Z: v[2]} }

func (a Vec3) Add(b Vec3) Vec3      { return FromGL(a.GL().Add(b.GL())) }
func (a Vec3) Sub(b Vec3) Vec3      { return FromGL(a.GL().Sub(b.GL())) }
func (a Vec3) Scale(s float64) Vec3 { return FromGL(a.GL().Mul(s)) }
func (a Vec3) Dot(b Vec3) float64   { return a.GL().Dot(b.GL()) }
func (a Vec3) Cross(b Vec3) Vec3    { return FromGL(a.GL().Cross(b.GL())) }
func (a Vec3) Len() float64         { return a.GL().Len() }
func (a Vec3) LenSq() float64       { return a.GL().LenSqr() }

func (a Vec3) IsZero() bool { return a.X == 0 && a.Y == 0 && a.Z == 0 }

// Normalize returns the unit vector, or Zero for vectors shorter than 1e-5.
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l < 1e-5 {
		return Zero
	}
	return FromGL(a.GL().Normalize())
}

// WithLen rescales a to length l (Zero stays Zero).
func (a Vec3) WithLen(l float64) Vec3 { return a.Normalize().Scale(l) }

// Flat drops the vertical component.
func (a Vec3) Flat() Vec3 { return Vec3{X: a.X, Z: a.Z} }

func Dist(a, b Vec3) float64 { return a.Sub(b).Len() }

// AngleDeg returns the unsigned angle between a and b in degrees (0 when either is ~zero).
func AngleDeg(a, b Vec3) float64 {
	den := math.Sqrt(a.LenSq() * b.LenSq())
	if den < 1e-15 {
		return 0
	}
	c := a.Dot(b) / den
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return mgl64.RadToDeg(math.Acos(c))
}

// YawDir is +Z rotated by deg degrees about +Y (clockwise seen from above).
func YawDir(deg float64) Vec3 { return RotateY(Forward, deg) }

// RotateY rotates v by deg degrees about +Y with the same handedness as YawDir.
func RotateY(v Vec3, deg float64) Vec3 {
	return FromGL(mgl64.Rotate3DY(mgl64.DegToRad(deg)).Mul3x1(v.GL()))
}

func Lerp(a, b Vec3, t float64) Vec3 { return a.Add(b.Sub(a).Scale(t)) }

func (a Vec3) Array() [3]float64 { return [3]float64{a.X, a.Y, a.Z} }

func FromArray(v [3]float64) Vec3 { return Vec3{X: v[0], Y: v[1], Z: v[2]} }
