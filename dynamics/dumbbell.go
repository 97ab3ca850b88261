package dynamics

import (
	"fmt"

	"github.com/BlenderCN-Org/asteroid-dumbbell/attitude"
)

// Dumbbell is the rigid spacecraft of §3: two point masses joined by a
// massless rod along body +x, inertia diagonal by the structure-of-two-
// points argument.
type Dumbbell struct {
	M1, M2 float64    // point masses, kg
	L      float64    // rod half-length, km
	Zeta1  [3]float64 // body-frame offset of mass 1, (-L,0,0)
	Zeta2  [3]float64 // body-frame offset of mass 2, (+L,0,0)
	J      attitude.Mat3
	JInv   attitude.Mat3
}

// NewDumbbell builds a Dumbbell and asserts inertia symmetry at
// construction (§9's resolution of the source's two inconsistent inertia
// conventions: the diagonal form of §3 is authoritative, and symmetry is
// checked rather than assumed).
func NewDumbbell(m1, m2, l float64) (*Dumbbell, error) {
	m := 0.5 * (m1 + m2)
	j := attitude.Mat3{
		{0, 0, 0},
		{0, m * l * l, 0},
		{0, 0, m * l * l},
	}
	if j[0][1] != j[1][0] || j[0][2] != j[2][0] || j[1][2] != j[2][1] {
		return nil, fmt.Errorf("dynamics: dumbbell inertia tensor %v is not symmetric", j)
	}
	jInv := attitude.Mat3{}
	jInv[0][0] = 0 // J[0][0] is zero by construction; handled specially in EOM
	if j[1][1] != 0 {
		jInv[1][1] = 1 / j[1][1]
	}
	if j[2][2] != 0 {
		jInv[2][2] = 1 / j[2][2]
	}
	return &Dumbbell{
		M1: m1, M2: m2, L: l,
		Zeta1: [3]float64{-l, 0, 0},
		Zeta2: [3]float64{l, 0, 0},
		J:     j, JInv: jInv,
	}, nil
}

// Mass returns the total point mass m1+m2.
func (d *Dumbbell) Mass() float64 { return d.M1 + d.M2 }
