// SPDX-License-Identifier: MIT
package dsp

import "fmt"

func errWindowSize(n int) error {
	return fmt.Errorf("window length must be greater than 1, got %d", n)
}

func errTransformSize(n int) error {
	return fmt.Errorf("transform size must be a power of 2, got %d", n)
}

func errLength(want, got int) error {
	return fmt.Errorf("slice length must be %d, got %d", want, got)
}
