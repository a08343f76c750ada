package physics

import "math"

const (
	// Gamma is the proton gyromagnetic ratio in rad/s/T.
	Gamma = 2.67513e8

	VacuumPermeability = 4 * math.Pi * 1e-7
	CoilSurface        = 1e7

	// FormatFactor converts Hz and rad/s to their mega-unit labels.
	FormatFactor = 1e6
)

// Scale factors map real Larmor rates onto animatable per-frame rates.
const (
	PrecessionScale = 3831841466.0

	ResonantScaleW0 = 3831841466.0
	ResonantScaleW1 = 159660.0611

	OffResonantScaleW0 = 3.8e9
	OffResonantScaleW1 = 159660.6579
)

// Frame rates and graph time factors.
const (
	SlowFrameRate = 30
	FastFrameRate = 100

	PrecessionTimeFactor = 7.829  // ns
	WorldTimeFactor      = 26.097 // ns
	RotatingTimeFactor   = 0.6263 // ms
)

// Parameter domains.
const (
	MinB0 = 0.1
	MaxB0 = 3.0

	MaxB1 = 5e-6

	MaxPhase = 180.0
)

var (
	DiscreteB0   = []float64{0.5, 1.5, 3}
	DiscreteB1   = []float64{1e-6, 3e-6, 5e-6}
	OffsetsPPM   = []float64{-5e-6, 1e-6, 10e-6}
	TiltAngles   = []float64{5, 15, 45, 90}
	GradientStep = 10.0
	MaxGradient  = 40.0
)

// OneOf reports whether v matches one of the choices within a relative 1e-9.
func OneOf(v float64, choices []float64) bool {
	for _, c := range choices {
		if math.Abs(v-c) <= 1e-9*math.Max(math.Abs(c), 1e-12) {
			return true
		}
	}
	return false
}
