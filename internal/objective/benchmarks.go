// Package objective provides built-in benchmark objectives used by the CLI,
// the server, and scenario tests. Each type structurally satisfies
// shgo.Objective (F, Grad, LB, UB) without importing the root package, so
// there is no import cycle between the public API and its sample callers.
package objective

// Sphere is f(x) = sum(x_i^2), the textbook single-basin test function.
type Sphere struct {
	Dim int
	Lo  float64
	Hi  float64
}

func (s Sphere) F(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}

func (s Sphere) Grad(x []float64) []float64 {
	g := make([]float64, len(x))
	for i, v := range x {
		g[i] = 2 * v
	}
	return g
}

func (s Sphere) LB() []float64 { return fill(s.Dim, s.Lo) }
func (s Sphere) UB() []float64 { return fill(s.Dim, s.Hi) }

// Rosenbrock is the classic banana-valley function in 2D:
// f(x,y) = (1-x)^2 + 100*(y-x^2)^2, with a single, narrow-basin minimum at
// (1,1).
type Rosenbrock struct {
	Lo, Hi float64
}

func (r Rosenbrock) F(x []float64) float64 {
	a := 1 - x[0]
	b := x[1] - x[0]*x[0]
	return a*a + 100*b*b
}

func (r Rosenbrock) Grad(x []float64) []float64 {
	b := x[1] - x[0]*x[0]
	dfdx := -2*(1-x[0]) - 400*x[0]*b
	dfdy := 200 * b
	return []float64{dfdx, dfdy}
}

func (r Rosenbrock) LB() []float64 { return []float64{r.Lo, r.Lo} }
func (r Rosenbrock) UB() []float64 { return []float64{r.Hi, r.Hi} }

// Himmelblau is f(x,y) = (x^2+y-11)^2 + (x+y^2-7)^2, with four symmetric
// global minima.
type Himmelblau struct {
	Lo, Hi float64
}

func (h Himmelblau) F(x []float64) float64 {
	a := x[0]*x[0] + x[1] - 11
	b := x[0] + x[1]*x[1] - 7
	return a*a + b*b
}

func (h Himmelblau) Grad(x []float64) []float64 {
	a := x[0]*x[0] + x[1] - 11
	b := x[0] + x[1]*x[1] - 7
	dfdx := 2*a*2*x[0] + 2*b
	dfdy := 2*a + 2*b*2*x[1]
	return []float64{dfdx, dfdy}
}

func (h Himmelblau) LB() []float64 { return []float64{h.Lo, h.Lo} }
func (h Himmelblau) UB() []float64 { return []float64{h.Hi, h.Hi} }

// SixHumpCamel is the six-hump camelback function, with two global minima
// and four additional local minima within the conventional bounds.
type SixHumpCamel struct {
	LoX, HiX, LoY, HiY float64
}

func (c SixHumpCamel) F(x []float64) float64 {
	x1, x2 := x[0], x[1]
	x1sq, x2sq := x1*x1, x2*x2
	term1 := (4 - 2.1*x1sq + x1sq*x1sq/3) * x1sq
	term2 := x1 * x2
	term3 := (-4 + 4*x2sq) * x2sq
	return term1 + term2 + term3
}

func (c SixHumpCamel) Grad(x []float64) []float64 {
	x1, x2 := x[0], x[1]
	x1sq := x1 * x1
	x2sq := x2 * x2
	dfdx1 := (8 - 8.4*x1sq + 2*x1sq*x1sq)*x1 + x2
	dfdx2 := x1 + (-8+16*x2sq)*x2
	return []float64{dfdx1, dfdx2}
}

func (c SixHumpCamel) LB() []float64 { return []float64{c.LoX, c.LoY} }
func (c SixHumpCamel) UB() []float64 { return []float64{c.HiX, c.HiY} }

// ByName looks up a built-in objective by its CLI name, with the
// conventional literature bounds for each. ok is false for unknown names.
func ByName(name string) (obj interface {
	F([]float64) float64
	Grad([]float64) []float64
	LB() []float64
	UB() []float64
}, ok bool) {
	switch name {
	case "sphere":
		return Sphere{Dim: 2, Lo: -5, Hi: 5}, true
	case "rosenbrock":
		return Rosenbrock{Lo: -2, Hi: 2}, true
	case "himmelblau":
		return Himmelblau{Lo: -5, Hi: 5}, true
	case "six-hump-camel":
		return SixHumpCamel{LoX: -3, HiX: 3, LoY: -2, HiY: 2}, true
	default:
		return nil, false
	}
}

// Names lists the built-in objective names, in the order the CLI's `list`
// subcommand prints them.
func Names() []string {
	return []string{"sphere", "rosenbrock", "himmelblau", "six-hump-camel"}
}

func fill(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
