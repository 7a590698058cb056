package numerology

import "encoding/json"

// DigitPool is the multiset of digits the matrix is counted from. Append
// order is preserved for display.
type DigitPool []int

// Count returns how often digit occurs in the pool.
func (p DigitPool) Count(digit int) int {
	n := 0
	for _, d := range p {
		if d == digit {
			n++
		}
	}
	return n
}

// BuildPool concatenates the date digits, the decimal digits of every core
// number in emission order and, for years >= ExtraNineYear, one extra 9.
func BuildPool(d BirthDate, core CoreNumbers) DigitPool {
	digits := d.Digits()
	pool := make(DigitPool, 0, len(digits)+16)
	pool = append(pool, digits...)
	for _, v := range core.Values() {
		pool = append(pool, DecimalDigits(v)...)
	}
	if HasExtraNine(d) {
		pool = append(pool, 9)
	}
	return pool
}

// HasExtraNine reports whether the pool of d carries the extra 9.
func HasExtraNine(d BirthDate) bool {
	return d.Year() >= ExtraNineYear
}

// Matrix holds the occurrence count of each digit 1-9. Digit 0 has no cell.
type Matrix [9]int

// BuildMatrix tallies digits 1-9 of pool. Zeros are dropped.
func BuildMatrix(pool DigitPool) Matrix {
	var m Matrix
	for _, d := range pool {
		if d >= 1 && d <= 9 {
			m[d-1]++
		}
	}
	return m
}

// Count returns the count for digit (1-9), 0 for anything else.
func (m Matrix) Count(digit int) int {
	if digit < 1 || digit > 9 {
		return 0
	}
	return m[digit-1]
}

// Total returns the sum of all cells.
func (m Matrix) Total() int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}

// Cell is one matrix position.
type Cell struct {
	Digit int `json:"digit"`
	Count int `json:"count"`
}

// Cells returns the nine cells ordered by digit.
func (m Matrix) Cells() []Cell {
	cells := make([]Cell, 9)
	for i, n := range m {
		cells[i] = Cell{Digit: i + 1, Count: n}
	}
	return cells
}

// MarshalJSON encodes the matrix as {"1": n1, ..., "9": n9}.
func (m Matrix) MarshalJSON() ([]byte, error) {
	out := make(map[int]int, 9)
	for i, n := range m {
		out[i+1] = n
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var in map[int]int
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*m = Matrix{}
	for d, n := range in {
		if d >= 1 && d <= 9 {
			m[d-1] = n
		}
	}
	return nil
}
