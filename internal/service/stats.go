package service

import "math"

// wilsonInterval 二项比例的 Wilson 置信区间，小样本下比正态近似稳健
func wilsonInterval(successes, trials int64, confidence float64) (lower, upper float64) {
	if trials == 0 {
		return 0, 0
	}

	z := zScore(confidence)
	p := float64(successes) / float64(trials)
	n := float64(trials)

	denominator := 1 + z*z/n
	center := (p + z*z/(2*n)) / denominator
	spread := (z / denominator) * math.Sqrt(p*(1-p)/n+z*z/(4*n*n))

	lower = center - spread
	upper = center + spread

	// p=0 / p=1 时端点在数学上恰为 0 和 1，浮点残差会留下 ~1e-17 的偏移
	if successes == 0 {
		lower = 0
	}
	if successes == trials {
		upper = 1
	}

	if lower < 0 {
		lower = 0
	}
	if upper > 1 {
		upper = 1
	}

	return lower, upper
}

func zScore(confidence float64) float64 {
	switch {
	case confidence >= 0.99:
		return 2.576
	case confidence >= 0.95:
		return 1.96
	case confidence >= 0.90:
		return 1.645
	default:
		return 1.28
	}
}

// twoProportionTest 双比例 z 检验：A 的偏好率高于 B 的置信度 (0-1)
func twoProportionTest(aWins, aTotal, bWins, bTotal int64) float64 {
	if aTotal == 0 || bTotal == 0 {
		return 0.5
	}

	pA := float64(aWins) / float64(aTotal)
	pB := float64(bWins) / float64(bTotal)

	// 原假设 pA = pB 下的合并比例
	pooledP := float64(aWins+bWins) / float64(aTotal+bTotal)

	se := math.Sqrt(pooledP * (1 - pooledP) * (1/float64(aTotal) + 1/float64(bTotal)))
	if se == 0 {
		if pA > pB {
			return 1.0
		} else if pA < pB {
			return 0.0
		}
		return 0.5
	}

	z := (pA - pB) / se
	return normalCDF(z)
}

// normalCDF 标准正态分布 CDF 近似
// Abramowitz & Stegun, Handbook of Mathematical Functions, 7.1.26
func normalCDF(x float64) float64 {
	a1 := 0.254829592
	a2 := -0.284496736
	a3 := 1.421413741
	a4 := -1.453152027
	a5 := 1.061405429
	p := 0.3275911

	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	x = math.Abs(x) / math.Sqrt(2)

	t := 1.0 / (1.0 + p*x)
	y := 1.0 - (((((a5*t+a4)*t)+a3)*t+a2)*t+a1)*t*math.Exp(-x*x)

	return 0.5 * (1.0 + sign*y)
}
