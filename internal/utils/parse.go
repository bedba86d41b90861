package utils

import "strconv"

// StringToUint converts a decimal route or query parameter to uint.
func StringToUint(s string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}
