package colorspace

// linear RGB -> CIE XYZ (D65) per primaries
var rgbToXYZ = map[Primaries]Matrix3{
	PrimariesBT709: {
		{0.4123908, 0.35758433, 0.1804808},
		{0.212639, 0.71516865, 0.07219232},
		{0.019330818, 0.11919478, 0.95053214},
	},
	PrimariesP3D65: {
		{0.48657095, 0.2656677, 0.19821729},
		{0.22897457, 0.69173855, 0.07928691},
		{0, 0.04511338, 1.0439444},
	},
	PrimariesBT2020: {
		{0.636958048, 0.144616904, 0.168880975},
		{0.262700212, 0.677998072, 0.059301716},
		{0, 0.028072693, 1.060985058},
	},
}

// GamutMatrix returns the linear-light matrix converting RGB in from primaries
// to RGB in to primaries. ok is false when either side has no D65 definition.
func GamutMatrix(from, to Primaries) (m Matrix3, ok bool) {
	if from == to {
		return Identity3, true
	}
	src, ok1 := rgbToXYZ[from]
	dst, ok2 := rgbToXYZ[to]
	if !ok1 || !ok2 {
		return Matrix3{}, false
	}
	inv, ok := dst.Inverse()
	if !ok {
		return Matrix3{}, false
	}
	return inv.Mul(src), true
}
