package calibration

import "math"

// ECE is the expected calibration error over equal-width confidence bins.
// The confidence of a prediction is its max class probability; each bin
// contributes |accuracy - mean confidence| weighted by its share of the
// sample.
func ECE(probs [][]float64, labels []int, classes []int, bins int) float64 {
	if len(probs) == 0 || len(probs) != len(labels) || bins <= 0 {
		return 0
	}

	confidences := make([]float64, len(probs))
	correct := make([]bool, len(probs))
	for i, p := range probs {
		best, bestConf := 0, math.Inf(-1)
		for k := range p {
			if p[k] > bestConf {
				best, bestConf = k, p[k]
			}
		}
		confidences[i] = bestConf
		correct[i] = best < len(classes) && classes[best] == labels[i]
	}

	n := float64(len(probs))
	width := 1.0 / float64(bins)
	ece := 0.0
	for b := 0; b < bins; b++ {
		lo, hi := float64(b)*width, float64(b+1)*width
		count, hits, confSum := 0, 0, 0.0
		for i := range confidences {
			if confidences[i] > lo && confidences[i] <= hi {
				count++
				confSum += confidences[i]
				if correct[i] {
					hits++
				}
			}
		}
		if count == 0 {
			continue
		}
		acc := float64(hits) / float64(count)
		conf := confSum / float64(count)
		ece += math.Abs(acc-conf) * float64(count) / n
	}
	return ece
}
