package numerology

import "fmt"

// Reduction selects the stop condition of Reduce.
type Reduction int

const (
	// ReduceFull sums digits until the value is a single digit.
	ReduceFull Reduction = iota
	// ReduceMaster sums digits until the value is a single digit or one of
	// the master numbers 11, 22, 33.
	ReduceMaster
)

func (r Reduction) String() string {
	switch r {
	case ReduceFull:
		return "full"
	case ReduceMaster:
		return "master"
	default:
		return fmt.Sprintf("Reduction(%d)", int(r))
	}
}

// IsMaster reports whether n is a master number.
func IsMaster(n int) bool {
	return n == 11 || n == 22 || n == 33
}

// Reduce repeatedly replaces |n| by its digit sum until the strategy stops.
func Reduce(n int, r Reduction) int {
	n = abs(n)
	for n > 9 {
		if r == ReduceMaster && IsMaster(n) {
			break
		}
		n = DigitSum(n)
	}
	return n
}

// DigitSum returns the sum of the decimal digits of |n|.
func DigitSum(n int) int {
	n = abs(n)
	sum := 0
	for n > 0 {
		sum += n % 10
		n /= 10
	}
	return sum
}

// DecimalDigits returns the decimal digits of |n|, most significant first.
// DecimalDigits(0) is [0].
func DecimalDigits(n int) []int {
	n = abs(n)
	if n == 0 {
		return []int{0}
	}
	var buf [20]int
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = n % 10
		n /= 10
	}
	out := make([]int, len(buf)-i)
	copy(out, buf[i:])
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
