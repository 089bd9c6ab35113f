package currency

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Format renders amount the way the Polish UI does: space as thousands
// separator, comma as decimal mark, currency code last ("1 234,50 EUR").
func Format(amount float64, code string) string {
	cents := math.Round(amount * 100)

	negative := cents < 0
	if negative {
		cents = -cents
	}

	whole := fmt.Sprintf("%.0f", math.Floor(cents/100))
	frac := int64(cents) % 100

	result := addThousandsSeparator(whole, " ") + fmt.Sprintf(",%02d", frac)
	if negative {
		result = "-" + result
	}
	if code != "" {
		result += " " + strings.ToUpper(code)
	}
	return result
}

// ParseAmount parses the decimal strings the upstream uses for prices,
// e.g. "546.70".
func ParseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}
