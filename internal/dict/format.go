package dict

import "strconv"

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

func parseInt(b []byte) (int64, error) {
	return strconv.ParseInt(string(b), 10, 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// addOverflow reports whether a+b overflows int64, returning the truncated
// sum in that case (the caller must not use it then).
func addOverflow(a, b int64) (sum int64, overflow bool) {
	sum = a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return sum, true
	}
	return sum, false
}
