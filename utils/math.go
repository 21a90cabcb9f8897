package utils

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Mat4FromAffine rebuilds a full transform from the 12 floats stored as
// 4 rows of 3: three basis rows and the translation row.
func Mat4FromAffine(f [12]float32) mgl32.Mat4 {
	return mgl32.Mat4{
		f[0], f[1], f[2], 0,
		f[3], f[4], f[5], 0,
		f[6], f[7], f[8], 0,
		f[9], f[10], f[11], 1,
	}
}

// Mat4ToAffine drops the projective column kept implicit on disk.
func Mat4ToAffine(m mgl32.Mat4) (f [12]float32) {
	for row := 0; row < 4; row++ {
		for col := 0; col < 3; col++ {
			f[row*3+col] = m[row*4+col]
		}
	}
	return f
}

// Mat3To4 places a 3x3 rotation and a position into one transform.
func Mat3To4(rot mgl32.Mat3, pos mgl32.Vec3) mgl32.Mat4 {
	m := rot.Mat4()
	m[12], m[13], m[14] = pos[0], pos[1], pos[2]
	return m
}
