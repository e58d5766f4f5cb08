package rating

import "gonum.org/v1/gonum/stat/distuv"

// stdNormal is the standard normal distribution backing all belief updates.
var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

func pdf(x float64) float64 {
	return stdNormal.Prob(x)
}

func cdf(x float64) float64 {
	return stdNormal.CDF(x)
}

func invCDF(p float64) float64 {
	return stdNormal.Quantile(p)
}

// vNonDraw is the additive correction to the winner's mean, given the
// scaled performance difference t and draw margin e.
func vNonDraw(t, e float64) float64 {
	return pdf(t-e) / cdf(t-e)
}

// wNonDraw is the multiplicative variance correction for a decided match.
func wNonDraw(t, e float64) float64 {
	v := vNonDraw(t, e)
	return v * (v + t - e)
}

// vDraw is the mean correction when the match ended level. Its sign pulls
// the stronger side down and the weaker side up.
func vDraw(t, e float64) float64 {
	a := -e - t
	b := e - t
	den := cdf(b) - cdf(a)
	if den == 0 {
		return 0
	}
	return (pdf(a) - pdf(b)) / den
}

// wDraw is the variance correction for a draw.
func wDraw(t, e float64) float64 {
	a := -e - t
	b := e - t
	den := cdf(b) - cdf(a)
	if den == 0 {
		return 0
	}
	pdfA := pdf(a)
	pdfB := pdf(b)
	v := (pdfA - pdfB) / den
	term := (a*pdfA - b*pdfB) / den
	return v*v - term
}
