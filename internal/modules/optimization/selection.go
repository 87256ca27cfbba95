package optimization

// MaxSharpe returns the sample with the highest Sharpe ratio.
func MaxSharpe(samples []FrontierSample) (FrontierSample, bool) {
	if len(samples) == 0 {
		return FrontierSample{}, false
	}
	best := samples[0]
	for _, s := range samples[1:] {
		if s.SharpeRatio > best.SharpeRatio {
			best = s
		}
	}
	return best, true
}

// MinVolatility returns the sample with the lowest volatility.
func MinVolatility(samples []FrontierSample) (FrontierSample, bool) {
	if len(samples) == 0 {
		return FrontierSample{}, false
	}
	best := samples[0]
	for _, s := range samples[1:] {
		if s.Volatility < best.Volatility {
			best = s
		}
	}
	return best, true
}
