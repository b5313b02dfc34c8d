package mandel

// NotEscaped is returned by EscapeTime for points that stay bounded.
const NotEscaped = 0

// EscapeTime iterates z = z*z + c from z = 0 and returns the first iteration
// (1-based) at which |z|^2 >= 4, or NotEscaped if that never happens within
// maxIter iterations. maxIter >= 1 is the caller's responsibility.
func EscapeTime(c complex128, maxIter int) int {
	cr, ci := real(c), imag(c)
	var zr, zi float64

	for i := 1; i <= maxIter; i++ {
		// Every product is converted explicitly so the compiler may not fuse it
		// into an FMA; results must not depend on the architecture.
		zr2 := float64(zr * zr)
		zi2 := float64(zi * zi)
		zri := float64(zr * zi)
		zr, zi = zr2-zi2+cr, zri+zri+ci

		if float64(zr*zr)+float64(zi*zi) >= 4 {
			return i
		}
	}
	return NotEscaped
}
