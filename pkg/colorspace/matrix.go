package colorspace

import "math"

// Matrix3 is a row-major 3x3 matrix
type Matrix3 [3][3]float64

// Identity3 is the identity matrix
var Identity3 = Matrix3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// Apply multiplies the matrix by a column vector
func (m Matrix3) Apply(v [3]float64) [3]float64 {
	return [3]float64{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// Mul returns m*o
func (m Matrix3) Mul(o Matrix3) Matrix3 {
	var r Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][0]*o[0][j] + m[i][1]*o[1][j] + m[i][2]*o[2][j]
		}
	}
	return r
}

// Inverse returns the inverse matrix; ok is false for a singular matrix
func (m Matrix3) Inverse() (inv Matrix3, ok bool) {
	c00 := m[1][1]*m[2][2] - m[1][2]*m[2][1]
	c01 := m[1][2]*m[2][0] - m[1][0]*m[2][2]
	c02 := m[1][0]*m[2][1] - m[1][1]*m[2][0]
	det := m[0][0]*c00 + m[0][1]*c01 + m[0][2]*c02
	if math.Abs(det) < 1e-15 {
		return Matrix3{}, false
	}
	d := 1 / det
	inv[0][0] = c00 * d
	inv[0][1] = (m[0][2]*m[2][1] - m[0][1]*m[2][2]) * d
	inv[0][2] = (m[0][1]*m[1][2] - m[0][2]*m[1][1]) * d
	inv[1][0] = c01 * d
	inv[1][1] = (m[0][0]*m[2][2] - m[0][2]*m[2][0]) * d
	inv[1][2] = (m[0][2]*m[1][0] - m[0][0]*m[1][2]) * d
	inv[2][0] = c02 * d
	inv[2][1] = (m[0][1]*m[2][0] - m[0][0]*m[2][1]) * d
	inv[2][2] = (m[0][0]*m[1][1] - m[0][1]*m[1][0]) * d
	return inv, true
}

func (m Matrix3) rounded(places int) Matrix3 {
	p := math.Pow(10, float64(places))
	var r Matrix3
	for i := range m {
		for j := range m[i] {
			r[i][j] = math.Round(m[i][j]*p) / p
		}
	}
	return r
}

func mustInverse(m Matrix3) Matrix3 {
	inv, ok := m.Inverse()
	if !ok {
		panic("colorspace: singular matrix in static table")
	}
	return inv
}
